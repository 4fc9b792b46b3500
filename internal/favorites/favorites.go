package favorites

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/fifilen/foodapp/internal/domain"
	"go.uber.org/zap"
)

type API interface {
	ListFavorites(ctx context.Context, token string) ([]domain.Favorite, error)
	AddFavorite(ctx context.Context, token string, restaurantID int64) error
	RemoveFavorite(ctx context.Context, token string, restaurantID int64) error
}

// Service keeps each user's favorite restaurants. Toggles are applied
// locally first and reverted if the upstream call fails.
type Service struct {
	api    API
	logger *zap.Logger

	mu   sync.Mutex
	sets map[string]map[int64]struct{}
}

func NewService(api API, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{
		api:    api,
		logger: logger,
		sets:   make(map[string]map[int64]struct{}),
	}
}

// Toggle flips restaurantID for userID and returns the new state. On
// failure the previous state is restored and returned with the error.
func (s *Service) Toggle(ctx context.Context, userID, token string, restaurantID int64) (bool, error) {
	s.mu.Lock()
	set := s.setFor(userID)
	_, was := set[restaurantID]
	if was {
		delete(set, restaurantID)
	} else {
		set[restaurantID] = struct{}{}
	}
	s.mu.Unlock()

	var err error
	if was {
		err = s.api.RemoveFavorite(ctx, token, restaurantID)
	} else {
		err = s.api.AddFavorite(ctx, token, restaurantID)
	}
	if err == nil {
		return !was, nil
	}

	s.mu.Lock()
	set = s.setFor(userID)
	if was {
		set[restaurantID] = struct{}{}
	} else {
		delete(set, restaurantID)
	}
	s.mu.Unlock()

	s.logger.Warn("favorite toggle reverted",
		zap.String("user_id", userID),
		zap.Int64("restaurant_id", restaurantID),
		zap.Error(err))
	return was, fmt.Errorf("toggle favorite %d: %w", restaurantID, err)
}

// List refreshes the user's favorites from upstream and returns them sorted.
func (s *Service) List(ctx context.Context, userID, token string) ([]int64, error) {
	favorites, err := s.api.ListFavorites(ctx, token)
	if err != nil {
		return nil, fmt.Errorf("list favorites: %w", err)
	}

	set := make(map[int64]struct{}, len(favorites))
	for _, f := range favorites {
		set[f.RestaurantID] = struct{}{}
	}

	s.mu.Lock()
	s.sets[userID] = set
	s.mu.Unlock()

	return sortedIDs(set), nil
}

func (s *Service) IsFavorite(userID string, restaurantID int64) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.sets[userID][restaurantID]
	return ok
}

func (s *Service) setFor(userID string) map[int64]struct{} {
	set, ok := s.sets[userID]
	if !ok {
		set = make(map[int64]struct{})
		s.sets[userID] = set
	}
	return set
}

func sortedIDs(set map[int64]struct{}) []int64 {
	ids := make([]int64, 0, len(set))
	for id := range set {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids
}
