package repository

import (
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/segni49/plugpost/internal/config"
)

// Repository implements the engine's store contracts over PostgreSQL.
type Repository struct {
	pool    *pgxpool.Pool
	scoring config.Scoring
}

func New(pool *pgxpool.Pool, scoring config.Scoring) *Repository {
	return &Repository{pool: pool, scoring: scoring}
}
