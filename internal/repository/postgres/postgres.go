package postgres

import (
	"context"
	"database/sql"
	"fmt"

	"clubhub-backend/internal/logger"
	"clubhub-backend/internal/repository"

	_ "github.com/lib/pq"
)

type Store struct {
	db *sql.DB
	repository.MembershipRequestRepository
}

func NewStore(db *sql.DB) *Store {
	return &Store{
		db:                          db,
		MembershipRequestRepository: NewMembershipRequestRepository(db),
	}
}

// Open connects to PostgreSQL, verifies the connection and applies the schema.
func Open(ctx context.Context, dsn string) (*Store, error) {
	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}
	if err := EnsureSchema(ctx, db); err != nil {
		db.Close()
		return nil, err
	}
	logger.Info("Database connection established")
	return NewStore(db), nil
}

func (s *Store) Close() error {
	return s.db.Close()
}
