package journal

import (
	"context"
	"database/sql"
	"embed"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/fifilen/foodapp/internal/domain"
	"github.com/golang-migrate/migrate/v4"
	sqlitemigrate "github.com/golang-migrate/migrate/v4/database/sqlite"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"modernc.org/sqlite"
	sqlite3 "modernc.org/sqlite/lib"
)

//go:embed migrations/*.sql
var migrations embed.FS

// Entry is one checkout attempt as recorded in the journal.
type Entry struct {
	ID             string                `json:"id"`
	UserID         string                `json:"user_id"`
	IdempotencyKey string                `json:"idempotency_key"`
	RestaurantID   int64                 `json:"restaurant_id"`
	ItemCount      int                   `json:"item_count"`
	TotalPrice     decimal.Decimal       `json:"total_price"`
	Snapshot       domain.CartSnapshot   `json:"cart_snapshot"`
	Status         domain.CheckoutStatus `json:"status"`
	OrderID        *int64                `json:"order_id,omitempty"`
	OrderTotal     float64               `json:"order_total,omitempty"`
	FailureReason  string                `json:"failure_reason,omitempty"`
	CreatedAt      time.Time             `json:"created_at"`
	UpdatedAt      time.Time             `json:"updated_at"`
	PublishedAt    *time.Time            `json:"published_at,omitempty"`
}

// Journal records checkout attempts in a local SQLite database.
type Journal struct {
	db  *sql.DB
	now func() time.Time
}

func NewJournal(path string) (*Journal, error) {
	dsn := fmt.Sprintf("file:%s?_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)", path)
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if e2 := db.Ping(); e2 != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping database: %w", e2)
	}

	return &Journal{db: db, now: time.Now}, nil
}

func (j *Journal) RunMigrations() error {
	driver, err := sqlitemigrate.WithInstance(j.db, &sqlitemigrate.Config{
		MigrationsTable: "journal_schema_migrations",
	})
	if err != nil {
		return fmt.Errorf("could not create migration driver: %w", err)
	}

	source, err := iofs.New(migrations, "migrations")
	if err != nil {
		return fmt.Errorf("could not open embedded migrations: %w", err)
	}

	m, err := migrate.NewWithInstance("iofs", source, "sqlite", driver)
	if err != nil {
		return fmt.Errorf("could not create migrate instance: %w", err)
	}

	if e2 := m.Up(); e2 != nil && !errors.Is(e2, migrate.ErrNoChange) {
		return fmt.Errorf("could not run migrations: %w", e2)
	}

	// sqlite allows one writer at a time
	j.db.SetMaxOpenConns(1)
	return nil
}

func (j *Journal) Close() error {
	return j.db.Close()
}

// Begin records a new attempt in INITIATED state and returns its id.
func (j *Journal) Begin(ctx context.Context, userID string, snapshot domain.CartSnapshot, idempotencyKey string) (string, error) {
	snapshotJSON, err := json.Marshal(snapshot)
	if err != nil {
		return "", fmt.Errorf("marshal cart snapshot: %w", err)
	}

	id := uuid.NewString()
	now := j.now().UTC().UnixMilli()
	query := `INSERT INTO checkouts (id, user_id, idempotency_key, restaurant_id, item_count, total_price,
	              cart_snapshot, status, created_at, updated_at)
	          VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`

	_, insertErr := j.db.ExecContext(ctx, query,
		id,
		userID,
		idempotencyKey,
		snapshot.RestaurantID,
		snapshot.ItemCount,
		snapshot.TotalPrice.String(),
		string(snapshotJSON),
		domain.CheckoutStatusInitiated,
		now,
		now)

	if insertErr != nil {
		var sqliteErr *sqlite.Error
		if errors.As(insertErr, &sqliteErr) && sqliteErr.Code() == sqlite3.SQLITE_CONSTRAINT_UNIQUE {
			return "", ErrDuplicateKey
		}
		return "", fmt.Errorf("insert checkout: %w", insertErr)
	}
	return id, nil
}

// MarkOrderCreated records the upstream order id and the total the upstream
// computed for it.
func (j *Journal) MarkOrderCreated(ctx context.Context, id string, orderID int64, total float64) error {
	return j.transition(ctx, id, domain.CheckoutStatusOrderCreated, "order_id = ?, order_total = ?", orderID, total)
}

func (j *Journal) MarkFailed(ctx context.Context, id string, status domain.CheckoutStatus, reason string) error {
	switch status {
	case domain.CheckoutStatusOrderFailed, domain.CheckoutStatusPaymentFailed, domain.CheckoutStatusOrderUnconfirmed:
	default:
		return fmt.Errorf("%w: %s is not a failure status", ErrIllegalTransition, status)
	}
	return j.transition(ctx, id, status, "failure_reason = ?", reason)
}

func (j *Journal) MarkCompleted(ctx context.Context, id string) error {
	return j.transition(ctx, id, domain.CheckoutStatusCompleted, "")
}

// transition moves id to status when the current state allows it. The
// update is conditional on the status read, so a concurrent change is
// reported as an illegal transition rather than overwritten.
func (j *Journal) transition(ctx context.Context, id string, to domain.CheckoutStatus, extraSet string, extraArgs ...any) error {
	var from domain.CheckoutStatus
	err := j.db.QueryRowContext(ctx, `SELECT status FROM checkouts WHERE id = ?`, id).Scan(&from)
	if errors.Is(err, sql.ErrNoRows) {
		return ErrCheckoutNotFound
	}
	if err != nil {
		return fmt.Errorf("query checkout status: %w", err)
	}

	if !domain.CanTransitionTo(from, to) {
		return fmt.Errorf("%w: %s -> %s", ErrIllegalTransition, from, to)
	}

	query := `UPDATE checkouts SET status = ?, updated_at = ?`
	args := []any{to, j.now().UTC().UnixMilli()}
	if extraSet != "" {
		query += ", " + extraSet
		args = append(args, extraArgs...)
	}
	query += ` WHERE id = ? AND status = ?`
	args = append(args, id, from)

	res, err := j.db.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("update checkout status: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("update checkout status: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("%w: %s changed concurrently", ErrIllegalTransition, id)
	}
	return nil
}

const selectEntry = `SELECT id, user_id, idempotency_key, restaurant_id, item_count, total_price, cart_snapshot,
	          status, order_id, order_total, failure_reason, created_at, updated_at, published_at
	          FROM checkouts`

func (j *Journal) Get(ctx context.Context, id string) (*Entry, error) {
	entry, err := scanEntry(j.db.QueryRowContext(ctx, selectEntry+` WHERE id = ?`, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrCheckoutNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("query checkout by id: %w", err)
	}
	return entry, nil
}

// PendingPayments lists the user's attempts whose order exists but whose
// payment failed, newest first.
func (j *Journal) PendingPayments(ctx context.Context, userID string) ([]*Entry, error) {
	entries, err := j.queryEntries(ctx,
		selectEntry+` WHERE user_id = ? AND status = ? ORDER BY created_at DESC, rowid DESC`,
		userID, domain.CheckoutStatusPaymentFailed)
	if err != nil {
		return nil, fmt.Errorf("query pending payments: %w", err)
	}
	return entries, nil
}

// Unpublished returns up to limit finished attempts whose outcome has not
// been announced yet, oldest first.
func (j *Journal) Unpublished(ctx context.Context, limit int) ([]*Entry, error) {
	entries, err := j.queryEntries(ctx,
		selectEntry+` WHERE published_at IS NULL AND status IN (?, ?, ?)
		              ORDER BY updated_at ASC, rowid ASC LIMIT ?`,
		domain.CheckoutStatusCompleted,
		domain.CheckoutStatusPaymentFailed,
		domain.CheckoutStatusOrderUnconfirmed,
		limit)
	if err != nil {
		return nil, fmt.Errorf("query unpublished checkouts: %w", err)
	}
	return entries, nil
}

// MarkPublished stamps id as announced. Stamping twice is a no-op.
func (j *Journal) MarkPublished(ctx context.Context, id string) error {
	res, err := j.db.ExecContext(ctx,
		`UPDATE checkouts SET published_at = ? WHERE id = ? AND published_at IS NULL`,
		j.now().UTC().UnixMilli(), id)
	if err != nil {
		return fmt.Errorf("mark checkout published: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("mark checkout published: %w", err)
	}
	if n == 0 {
		if _, err := j.Get(ctx, id); err != nil {
			return err
		}
	}
	return nil
}

func (j *Journal) queryEntries(ctx context.Context, query string, args ...any) ([]*Entry, error) {
	rows, err := j.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	entries := []*Entry{}
	for rows.Next() {
		entry, err := scanEntry(rows)
		if err != nil {
			return nil, fmt.Errorf("scan checkout: %w", err)
		}
		entries = append(entries, entry)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return entries, nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanEntry(row scanner) (*Entry, error) {
	var (
		entry        Entry
		totalPrice   string
		snapshotJSON string
		orderID      sql.NullInt64
		orderTotal   sql.NullFloat64
		createdAt    int64
		updatedAt    int64
		publishedAt  sql.NullInt64
	)
	err := row.Scan(
		&entry.ID,
		&entry.UserID,
		&entry.IdempotencyKey,
		&entry.RestaurantID,
		&entry.ItemCount,
		&totalPrice,
		&snapshotJSON,
		&entry.Status,
		&orderID,
		&orderTotal,
		&entry.FailureReason,
		&createdAt,
		&updatedAt,
		&publishedAt,
	)
	if err != nil {
		return nil, err
	}

	entry.TotalPrice, err = decimal.NewFromString(totalPrice)
	if err != nil {
		return nil, fmt.Errorf("parse total price: %w", err)
	}
	if err := json.Unmarshal([]byte(snapshotJSON), &entry.Snapshot); err != nil {
		return nil, fmt.Errorf("unmarshal cart snapshot: %w", err)
	}
	if orderID.Valid {
		entry.OrderID = &orderID.Int64
	}
	entry.OrderTotal = orderTotal.Float64
	entry.CreatedAt = time.UnixMilli(createdAt).UTC()
	entry.UpdatedAt = time.UnixMilli(updatedAt).UTC()
	if publishedAt.Valid {
		t := time.UnixMilli(publishedAt.Int64).UTC()
		entry.PublishedAt = &t
	}
	return &entry, nil
}
