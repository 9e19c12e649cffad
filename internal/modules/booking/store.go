// README: Booking stores: PostgreSQL, SQLite and in-memory.
package booking

import (
	"context"
	"database/sql"
	"errors"
	"sync"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"concierge/migrations"
)

type Store interface {
	Create(ctx context.Context, b *Booking) error
	Get(ctx context.Context, id string) (*Booking, error)
	// UpdateStatus moves b from `from` to b.Status, recording reference and tx. It reports
	// false when the stored status no longer equals `from`.
	UpdateStatus(ctx context.Context, b *Booking, from Status) (bool, error)
}

type PGStore struct {
	db *pgxpool.Pool
}

func NewPGStore(db *pgxpool.Pool) *PGStore {
	return &PGStore{db: db}
}

// Migrate applies the embedded Postgres schema.
func (s *PGStore) Migrate(ctx context.Context) error {
	_, err := s.db.Exec(ctx, migrations.Postgres)
	return err
}

func (s *PGStore) Create(ctx context.Context, b *Booking) error {
	_, err := s.db.Exec(ctx, `
		INSERT INTO bookings (
			id, thread_id, description, destination, usd_total, swap_amount,
			status, reference, tx_hash, degraded, created_at, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)`,
		b.ID, b.ThreadID, b.Description, b.Destination, b.USDTotal, b.SwapAmount,
		string(b.Status), b.Reference, b.TxHash, b.Degraded, b.CreatedAt, b.UpdatedAt,
	)
	return err
}

func (s *PGStore) Get(ctx context.Context, id string) (*Booking, error) {
	row := s.db.QueryRow(ctx, `
		SELECT id, thread_id, description, destination, usd_total, swap_amount,
		       status, reference, tx_hash, degraded, created_at, updated_at
		FROM bookings
		WHERE id = $1`, id,
	)
	var b Booking
	err := row.Scan(
		&b.ID, &b.ThreadID, &b.Description, &b.Destination, &b.USDTotal, &b.SwapAmount,
		&b.Status, &b.Reference, &b.TxHash, &b.Degraded, &b.CreatedAt, &b.UpdatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &b, nil
}

func (s *PGStore) UpdateStatus(ctx context.Context, b *Booking, from Status) (bool, error) {
	tag, err := s.db.Exec(ctx, `
		UPDATE bookings
		SET status = $1, reference = $2, tx_hash = $3, degraded = $4, updated_at = $5
		WHERE id = $6 AND status = $7`,
		string(b.Status), b.Reference, b.TxHash, b.Degraded, b.UpdatedAt, b.ID, string(from),
	)
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() == 1, nil
}

// SQLiteStore keeps bookings in the same SQLite file as the sessions.
type SQLiteStore struct {
	db *sql.DB
}

func NewSQLiteStore(db *sql.DB) *SQLiteStore {
	return &SQLiteStore{db: db}
}

func (s *SQLiteStore) Migrate(ctx context.Context) error {
	_, err := s.db.ExecContext(ctx, migrations.SQLite)
	return err
}

func (s *SQLiteStore) Create(ctx context.Context, b *Booking) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO bookings (
			id, thread_id, description, destination, usd_total, swap_amount,
			status, reference, tx_hash, degraded, created_at, updated_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		b.ID, b.ThreadID, b.Description, b.Destination, b.USDTotal, b.SwapAmount,
		string(b.Status), b.Reference, b.TxHash, b.Degraded, b.CreatedAt, b.UpdatedAt,
	)
	return err
}

func (s *SQLiteStore) Get(ctx context.Context, id string) (*Booking, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT id, thread_id, description, destination, usd_total, swap_amount,
		       status, reference, tx_hash, degraded, created_at, updated_at
		FROM bookings
		WHERE id = ?`, id,
	)
	var b Booking
	err := row.Scan(
		&b.ID, &b.ThreadID, &b.Description, &b.Destination, &b.USDTotal, &b.SwapAmount,
		&b.Status, &b.Reference, &b.TxHash, &b.Degraded, &b.CreatedAt, &b.UpdatedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &b, nil
}

func (s *SQLiteStore) UpdateStatus(ctx context.Context, b *Booking, from Status) (bool, error) {
	res, err := s.db.ExecContext(ctx, `
		UPDATE bookings
		SET status = ?, reference = ?, tx_hash = ?, degraded = ?, updated_at = ?
		WHERE id = ? AND status = ?`,
		string(b.Status), b.Reference, b.TxHash, b.Degraded, b.UpdatedAt, b.ID, string(from),
	)
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return n == 1, nil
}

type MemoryStore struct {
	mu       sync.Mutex
	bookings map[string]Booking
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{bookings: make(map[string]Booking)}
}

func (s *MemoryStore) Create(_ context.Context, b *Booking) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.bookings[b.ID]; ok {
		return errors.New("booking already exists")
	}
	s.bookings[b.ID] = *b
	return nil
}

func (s *MemoryStore) Get(_ context.Context, id string) (*Booking, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	b, ok := s.bookings[id]
	if !ok {
		return nil, ErrNotFound
	}
	return &b, nil
}

func (s *MemoryStore) UpdateStatus(_ context.Context, b *Booking, from Status) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	cur, ok := s.bookings[b.ID]
	if !ok || cur.Status != from {
		return false, nil
	}
	s.bookings[b.ID] = *b
	return true, nil
}

// Len reports the number of stored bookings.
func (s *MemoryStore) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.bookings)
}

func now() time.Time { return time.Now().UTC() }
