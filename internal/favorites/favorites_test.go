package favorites

import (
	"context"
	"errors"
	"testing"

	"github.com/fifilen/foodapp/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type mockAPI struct {
	favorites []domain.Favorite
	listErr   error
	addErr    error
	removeErr error

	added   []int64
	removed []int64
	// sawLocal records IsFavorite while the upstream call is in flight
	sawLocal func()
}

func (m *mockAPI) ListFavorites(context.Context, string) ([]domain.Favorite, error) {
	return m.favorites, m.listErr
}

func (m *mockAPI) AddFavorite(_ context.Context, _ string, id int64) error {
	if m.sawLocal != nil {
		m.sawLocal()
	}
	m.added = append(m.added, id)
	return m.addErr
}

func (m *mockAPI) RemoveFavorite(_ context.Context, _ string, id int64) error {
	if m.sawLocal != nil {
		m.sawLocal()
	}
	m.removed = append(m.removed, id)
	return m.removeErr
}

func TestToggle_AddsOptimistically(t *testing.T) {
	api := &mockAPI{}
	svc := NewService(api, nil)
	var during bool
	api.sawLocal = func() { during = svc.IsFavorite("u1", 5) }

	fav, err := svc.Toggle(context.Background(), "u1", "tok", 5)

	require.NoError(t, err)
	assert.True(t, fav)
	assert.True(t, during, "state must flip before the upstream call")
	assert.True(t, svc.IsFavorite("u1", 5))
	assert.Equal(t, []int64{5}, api.added)
}

func TestToggle_RemovesExisting(t *testing.T) {
	api := &mockAPI{favorites: []domain.Favorite{{RestaurantID: 5}}}
	svc := NewService(api, nil)
	_, err := svc.List(context.Background(), "u1", "tok")
	require.NoError(t, err)

	fav, err := svc.Toggle(context.Background(), "u1", "tok", 5)

	require.NoError(t, err)
	assert.False(t, fav)
	assert.False(t, svc.IsFavorite("u1", 5))
	assert.Equal(t, []int64{5}, api.removed)
}

func TestToggle_RevertsAddOnFailure(t *testing.T) {
	api := &mockAPI{addErr: errors.New("503")}
	svc := NewService(api, nil)

	fav, err := svc.Toggle(context.Background(), "u1", "tok", 5)

	require.Error(t, err)
	assert.False(t, fav)
	assert.False(t, svc.IsFavorite("u1", 5))
}

func TestToggle_RevertsRemoveOnFailure(t *testing.T) {
	api := &mockAPI{favorites: []domain.Favorite{{RestaurantID: 5}, {RestaurantID: 6}}, removeErr: errors.New("503")}
	svc := NewService(api, nil)
	_, err := svc.List(context.Background(), "u1", "tok")
	require.NoError(t, err)

	fav, err := svc.Toggle(context.Background(), "u1", "tok", 5)

	require.Error(t, err)
	assert.True(t, fav)
	assert.True(t, svc.IsFavorite("u1", 5))
	assert.True(t, svc.IsFavorite("u1", 6))
}

func TestToggle_UsersAreIndependent(t *testing.T) {
	svc := NewService(&mockAPI{}, nil)

	_, err := svc.Toggle(context.Background(), "u1", "tok", 5)
	require.NoError(t, err)

	assert.True(t, svc.IsFavorite("u1", 5))
	assert.False(t, svc.IsFavorite("u2", 5))
}

func TestList_ReplacesLocalState(t *testing.T) {
	api := &mockAPI{favorites: []domain.Favorite{{RestaurantID: 9}, {RestaurantID: 2}}}
	svc := NewService(api, nil)
	_, err := svc.Toggle(context.Background(), "u1", "tok", 4)
	require.NoError(t, err)

	ids, err := svc.List(context.Background(), "u1", "tok")

	require.NoError(t, err)
	assert.Equal(t, []int64{2, 9}, ids)
	assert.False(t, svc.IsFavorite("u1", 4))
}

func TestList_Error(t *testing.T) {
	svc := NewService(&mockAPI{listErr: errors.New("boom")}, nil)

	_, err := svc.List(context.Background(), "u1", "tok")

	require.Error(t, err)
	assert.Contains(t, err.Error(), "list favorites")
}
