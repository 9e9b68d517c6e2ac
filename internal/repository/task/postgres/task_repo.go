package postgres

import (
	"context"
	"errors"
	"fmt"
	"taskboard/internal/config"
	"taskboard/internal/logger"
	"taskboard/internal/migrations"
	"taskboard/internal/models/task"
	repo "taskboard/internal/repository"
	"time"

	"github.com/golang-migrate/migrate/v4/database"
	pgxmigrate "github.com/golang-migrate/migrate/v4/database/pgx/v5"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jackc/pgx/v5/stdlib"
	"go.uber.org/zap"
)

const slowQuery = 100 * time.Millisecond

type Storage struct {
	pool *pgxpool.Pool
}

func New(ctx context.Context, dbCfg config.DatabaseConfig) (*Storage, error) {
	poolCfg, err := pgxpool.ParseConfig(dbCfg.URL)
	if err != nil {
		logger.Error("Repository: failed to parse connection string", err)
		return nil, fmt.Errorf("parse config: %w", err)
	}

	poolCfg.MaxConns = 10
	poolCfg.MinConns = 2
	poolCfg.MaxConnIdleTime = time.Minute * 5
	if dbCfg.MaxConnections > 0 {
		poolCfg.MaxConns = dbCfg.MaxConnections
	}
	if dbCfg.MinConnections > 0 {
		poolCfg.MinConns = dbCfg.MinConnections
	}
	if dbCfg.IdleTimeout > 0 {
		poolCfg.MaxConnIdleTime = dbCfg.IdleTimeout
	}

	pool, err := pgxpool.NewWithConfig(ctx, poolCfg)
	if err != nil {
		logger.Error("Repository: failed to create pool", err)
		return nil, fmt.Errorf("create pool: %w", err)
	}

	err = pool.Ping(ctx)
	if err != nil {
		pool.Close()
		logger.Error("Repository: ping failed", err)
		return nil, fmt.Errorf("ping: %w", err)
	}

	logger.Info("Repository: connected to PostgreSQL")
	return &Storage{pool: pool}, nil
}

func (s *Storage) Close() {
	s.pool.Close()
	logger.Info("Repository: PostgreSQL connections closed")
}

func (s *Storage) HealthCheck(ctx context.Context) error {
	err := s.pool.Ping(ctx)
	if err != nil {
		logger.Error("Repository: ping failed", err)
		return fmt.Errorf("ping: %w", err)
	}
	return nil
}

func warnIfSlow(op string, start time.Time) {
	if elapsed := time.Since(start); elapsed > slowQuery {
		logger.Warn("Repository: slow query", zap.String("operation", op), zap.Duration("ms", elapsed))
	}
}

func scanTask(row pgx.Row) (*task.Task, error) {
	t := &task.Task{}
	err := row.Scan(
		&t.ID,
		&t.Title,
		&t.Completed,
		&t.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	return t, nil
}

func (s *Storage) Create(ctx context.Context, taskToCreate *task.Task) error {
	start := time.Now()
	defer warnIfSlow("create", start)

	query := `INSERT INTO tasks (title, completed)
				VALUES ($1, FALSE)
				RETURNING id, completed, created_at`

	err := s.pool.QueryRow(ctx, query, taskToCreate.Title).
		Scan(&taskToCreate.ID, &taskToCreate.Completed, &taskToCreate.CreatedAt)
	if err != nil {
		logger.Error("Repository: failed to insert task", err, zap.Duration("ms", time.Since(start)))
		return fmt.Errorf("insert task: %w", err)
	}
	return nil
}

func (s *Storage) FindByID(ctx context.Context, id int64) (*task.Task, error) {
	start := time.Now()
	defer warnIfSlow("find_by_id", start)

	query := `SELECT id, title, completed, created_at
				FROM tasks
				WHERE id = $1`

	t, err := scanTask(s.pool.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, repo.ErrNotFound
		}
		logger.Error("Repository: failed to get task", err, zap.Int64("task_id", id))
		return nil, fmt.Errorf("get task: %w", err)
	}
	return t, nil
}

func (s *Storage) FindAll(ctx context.Context) ([]*task.Task, error) {
	start := time.Now()
	defer warnIfSlow("find_all", start)

	query := `SELECT id, title, completed, created_at
				FROM tasks
				ORDER BY created_at DESC, id DESC`

	rows, err := s.pool.Query(ctx, query)
	if err != nil {
		logger.Error("Repository: failed to list tasks", err, zap.Duration("ms", time.Since(start)))
		return nil, fmt.Errorf("list tasks: %w", err)
	}
	defer rows.Close()

	tasks := []*task.Task{}
	for rows.Next() {
		t, err := scanTask(rows)
		if err != nil {
			logger.Error("Repository: failed to scan task", err)
			return nil, fmt.Errorf("scan task: %w", err)
		}
		tasks = append(tasks, t)
	}

	if err := rows.Err(); err != nil {
		logger.Error("Repository: row iteration failed", err)
		return nil, fmt.Errorf("iterate rows: %w", err)
	}
	return tasks, nil
}

func (s *Storage) UpdateCompleted(ctx context.Context, id int64, completed bool) (*task.Task, error) {
	start := time.Now()
	defer warnIfSlow("update_completed", start)

	// the row only changes when the flag differs, so concurrent writers cannot both succeed
	query := `UPDATE tasks
				SET completed = $2
				WHERE id = $1 AND completed <> $2
				RETURNING id, title, completed, created_at`

	t, err := scanTask(s.pool.QueryRow(ctx, query, id, completed))
	if err == nil {
		return t, nil
	}
	if !errors.Is(err, pgx.ErrNoRows) {
		logger.Error("Repository: failed to update task", err, zap.Int64("task_id", id))
		return nil, fmt.Errorf("update task: %w", err)
	}

	var exists bool
	if err := s.pool.QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM tasks WHERE id = $1)`, id).Scan(&exists); err != nil {
		logger.Error("Repository: failed to check task", err, zap.Int64("task_id", id))
		return nil, fmt.Errorf("check task: %w", err)
	}
	if !exists {
		return nil, repo.ErrNotFound
	}
	return nil, repo.ErrUnchanged
}

func (s *Storage) Delete(ctx context.Context, id int64) error {
	start := time.Now()
	defer warnIfSlow("delete", start)

	tag, err := s.pool.Exec(ctx, `DELETE FROM tasks WHERE id = $1`, id)
	if err != nil {
		logger.Error("Repository: failed to delete task", err, zap.Int64("task_id", id))
		return fmt.Errorf("delete task: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return repo.ErrNotFound
	}
	return nil
}

// Migrate applies the embedded postgres schema over a database/sql view of the pool.
func (s *Storage) Migrate(ctx context.Context) error {
	logger.Info("Repository: applying migrations")
	return s.withMigrationDriver(ctx, func(driver database.Driver) error {
		return migrations.Up(migrations.DialectPostgres, "pgx5", driver)
	})
}

// Down rolls the schema back. Used by integration tests to leave the database empty.
func (s *Storage) Down(ctx context.Context) error {
	logger.Info("Repository: rolling back migrations")
	return s.withMigrationDriver(ctx, func(driver database.Driver) error {
		return migrations.Down(migrations.DialectPostgres, "pgx5", driver)
	})
}

// withMigrationDriver lends fn a migrate driver bound to a single pooled connection and
// releases that connection when fn returns. Closing the driver closes the database/sql
// wrapper, never the pool itself.
func (s *Storage) withMigrationDriver(ctx context.Context, fn func(database.Driver) error) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	db := stdlib.OpenDBFromPool(s.pool)

	driver, err := pgxmigrate.WithInstance(db, &pgxmigrate.Config{})
	if err != nil {
		db.Close()
		return fmt.Errorf("migration driver: %w", err)
	}
	defer func() {
		if err := driver.Close(); err != nil {
			logger.Warn("Repository: failed to release migration connection", zap.Error(err))
		}
	}()

	return fn(driver)
}
