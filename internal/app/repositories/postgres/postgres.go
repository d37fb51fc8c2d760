// Package postgres implements the repository interfaces on PostgreSQL with pgx and squirrel.
package postgres

import (
	"context"
	"fmt"

	"github.com/Masterminds/squirrel"
	"github.com/fitalumni/alumni/internal/app/repositories"
	"github.com/fitalumni/alumni/internal/db"
	"github.com/fitalumni/alumni/internal/pkg/logger"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// NewRepositories initializes all repositories
func NewRepositories(pool *pgxpool.Pool) *repositories.Repositories {
	b := newBase(pool)
	return &repositories.Repositories{
		Users:          &UserRepository{b},
		Sessions:       &SessionRepository{b},
		PasswordResets: &PasswordResetRepository{b},
		Profiles:       &ProfileRepository{b},
		Posts:          &PostRepository{b},
		Jobs:           &JobRepository{b},
		Applications:   &ApplicationRepository{b},
		Events:         &EventRepository{b},
		Connections:    &ConnectionRepository{b},
		Messages:       &MessageRepository{b},
		Activities:     &ActivityRepository{b},
		Settings:       &SettingsRepository{b},
		Stats:          &StatsRepository{b},
	}
}

// base carries the pool and a squirrel builder with Postgres placeholders
type base struct {
	db *pgxpool.Pool
	sb squirrel.StatementBuilderType
}

func newBase(pool *pgxpool.Pool) base {
	return base{
		db: pool,
		sb: squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar),
	}
}

func (b base) tx(ctx context.Context, fn db.TransactionFn) error {
	return db.WithTransaction(ctx, b.db, fn)
}

// count runs a SELECT COUNT(*) built from q
func (b base) count(ctx context.Context, q squirrel.SelectBuilder) (int64, error) {
	query, args, err := q.ToSql()
	if err != nil {
		return 0, fmt.Errorf("failed to build count query: %w", err)
	}
	var n int64
	if err := b.db.QueryRow(ctx, query, args...).Scan(&n); err != nil {
		return 0, fmt.Errorf("error counting rows: %w", err)
	}
	return n, nil
}

// execAll runs each statement in order on the transaction
func execAll(ctx context.Context, tx pgx.Tx, stmts []string, args ...any) error {
	for _, stmt := range stmts {
		if _, err := tx.Exec(ctx, stmt, args...); err != nil {
			logger.Error().Err(err).Str("statement", stmt).Msg("Cascade statement failed")
			return fmt.Errorf("error executing cascade statement: %w", err)
		}
	}
	return nil
}

// collectStrings reads a single text column from rows, skipping blanks
func collectStrings(rows pgx.Rows) ([]string, error) {
	defer rows.Close()
	var out []string
	for rows.Next() {
		var s string
		if err := rows.Scan(&s); err != nil {
			return nil, err
		}
		if s != "" {
			out = append(out, s)
		}
	}
	return out, rows.Err()
}
