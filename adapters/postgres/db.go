package postgres

import (
	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"

	"stockcast/internal/config"
	"stockcast/internal/errors"
)

// Connect opens and pings a Postgres connection pool
func Connect(cfg config.DatabaseConfig) (*sqlx.DB, error) {
	db, err := sqlx.Connect("postgres", cfg.URL)
	if err != nil {
		return nil, errors.Wrap(err, "failed to connect to database")
	}

	db.SetMaxOpenConns(cfg.MaxOpenConns)
	db.SetMaxIdleConns(cfg.MaxIdleConns)
	db.SetConnMaxLifetime(cfg.ConnMaxLifetime)

	return db, nil
}
