package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"

	"github.com/vasari/tienda/internal/platform/logger"
)

// Accessor is the data access object of one entity type.
type Accessor[T any] interface {
	// PrepareTable leaves the table empty and of the mapped shape: it removes
	// every row when the table exists and creates it otherwise.
	PrepareTable(ctx context.Context) error

	// Insert stores a new record. Returns an error wrapping ErrDuplicate when
	// the key is taken and ErrConstraintViolation for any other rejected value.
	Insert(ctx context.Context, entity T) error

	// GetByID retrieves a record by its key.
	// Returns an error wrapping ErrNotFound if no row matches.
	GetByID(ctx context.Context, id int) (T, error)

	// List returns every record in the order the engine yields them.
	List(ctx context.Context) ([]T, error)

	// Update rewrites the mutable fields of the record with the same key.
	// It reports whether a row was changed; the key itself never changes.
	Update(ctx context.Context, entity T) (bool, error)

	// Delete removes the record with the given key and reports whether a
	// row was removed.
	Delete(ctx context.Context, id int) (bool, error)

	// Count returns the number of rows in the table.
	Count(ctx context.Context) (int, error)
}

// Repository implements Accessor for any entity described by a Mapping.
type Repository[T any] struct {
	db      DBTX
	dialect Dialect
	mapping Mapping[T]
	stmts   Statements
	logger  *slog.Logger
}

// NewRepository creates a repository over db, which may be a *sql.DB or a *sql.Tx.
// When db can begin transactions every mutation is committed on its own;
// otherwise the caller owns the transaction. If logger is nil the default
// logger is used.
func NewRepository[T any](db DBTX, dialect Dialect, mapping Mapping[T], log *slog.Logger) (*Repository[T], error) {
	if db == nil {
		return nil, errors.New("db cannot be nil")
	}
	if dialect == nil {
		return nil, errors.New("dialect cannot be nil")
	}
	if err := mapping.Validate(); err != nil {
		return nil, err
	}
	if log == nil {
		log = slog.Default()
	}

	stmts := mapping.Statements
	return &Repository[T]{
		db:      db,
		dialect: dialect,
		mapping: mapping,
		stmts: Statements{
			Insert:     dialect.Rebind(stmts.Insert),
			SelectByID: dialect.Rebind(stmts.SelectByID),
			SelectAll:  dialect.Rebind(stmts.SelectAll),
			DeleteByID: dialect.Rebind(stmts.DeleteByID),
			Update:     dialect.Rebind(stmts.Update),
			Count:      dialect.Rebind(stmts.Count),
		},
		logger: log.With(
			slog.String("component", mapping.Entity+"_repository"),
			slog.String("dialect", dialect.Name()),
		),
	}, nil
}

// Ensure Repository implements the Accessor interface
var _ Accessor[struct{}] = (*Repository[struct{}])(nil)

// WithTx returns a copy of the repository bound to a caller-owned transaction.
func (r *Repository[T]) WithTx(tx *sql.Tx) *Repository[T] {
	clone := *r
	clone.db = tx
	return &clone
}

// Table returns the name of the table behind the repository.
func (r *Repository[T]) Table() string {
	return r.mapping.Table
}

// PrepareTable implements Accessor.PrepareTable.
func (r *Repository[T]) PrepareTable(ctx context.Context) error {
	log := logger.FromContextOrDefault(ctx, r.logger)

	exists, err := r.dialect.TableExists(ctx, r.db, r.mapping.Table)
	if err != nil {
		return r.fail(ctx, "prepare", err)
	}

	action, stmt := "create", r.mapping.CreateTable
	if exists {
		action, stmt = "truncate", r.dialect.TruncateStatement(r.mapping.Table)
	}

	err = r.mutate(ctx, func(ctx context.Context, q DBTX) error {
		_, err := r.exec(ctx, q, stmt)
		return err
	})
	if err != nil {
		return r.fail(ctx, "prepare", err, slog.String("action", action))
	}

	log.Info("table prepared",
		slog.String("table", r.mapping.Table),
		slog.String("action", action))
	return nil
}

// Insert implements Accessor.Insert.
func (r *Repository[T]) Insert(ctx context.Context, entity T) error {
	log := logger.FromContextOrDefault(ctx, r.logger)
	id := r.mapping.ID(entity)

	err := r.mutate(ctx, func(ctx context.Context, q DBTX) error {
		_, err := r.exec(ctx, q, r.stmts.Insert, r.mapping.InsertArgs(entity)...)
		return err
	})
	if err != nil {
		return r.fail(ctx, "insert", err, slog.Int("id", id))
	}

	log.Info(r.mapping.Entity+" inserted", slog.Int("id", id))
	return nil
}

// GetByID implements Accessor.GetByID.
func (r *Repository[T]) GetByID(ctx context.Context, id int) (T, error) {
	log := logger.FromContextOrDefault(ctx, r.logger)
	log.Debug("executing statement", slog.String("sql", r.stmts.SelectByID), slog.Int("id", id))

	entity, err := r.mapping.Scan(r.db.QueryRowContext(ctx, r.stmts.SelectByID, id))
	if err != nil {
		var zero T
		return zero, r.fail(ctx, "get", err, slog.Int("id", id))
	}

	log.Debug(r.mapping.Entity+" retrieved", slog.Int("id", id))
	return entity, nil
}

// List implements Accessor.List.
func (r *Repository[T]) List(ctx context.Context) ([]T, error) {
	log := logger.FromContextOrDefault(ctx, r.logger)
	log.Debug("executing statement", slog.String("sql", r.stmts.SelectAll))

	rows, err := r.db.QueryContext(ctx, r.stmts.SelectAll)
	if err != nil {
		return nil, r.fail(ctx, "list", err)
	}
	defer func() {
		if err := rows.Close(); err != nil {
			log.Warn("failed to close rows", slog.String("error", err.Error()))
		}
	}()

	entities := make([]T, 0)
	for rows.Next() {
		entity, err := r.mapping.Scan(rows)
		if err != nil {
			return nil, r.fail(ctx, "list", err)
		}
		entities = append(entities, entity)
	}
	if err := rows.Err(); err != nil {
		return nil, r.fail(ctx, "list", err)
	}

	log.Debug(r.mapping.Entity+" rows listed", slog.Int("count", len(entities)))
	return entities, nil
}

// Update implements Accessor.Update.
func (r *Repository[T]) Update(ctx context.Context, entity T) (bool, error) {
	log := logger.FromContextOrDefault(ctx, r.logger)
	id := r.mapping.ID(entity)

	var affected int64
	err := r.mutate(ctx, func(ctx context.Context, q DBTX) error {
		result, err := r.exec(ctx, q, r.stmts.Update, r.mapping.UpdateArgs(entity)...)
		if err != nil {
			return err
		}
		affected, err = result.RowsAffected()
		return err
	})
	if err != nil {
		return false, r.fail(ctx, "update", err, slog.Int("id", id))
	}

	if affected == 0 {
		log.Debug(r.mapping.Entity+" not found for update", slog.Int("id", id))
		return false, nil
	}

	log.Info(r.mapping.Entity+" updated", slog.Int("id", id))
	return true, nil
}

// Delete implements Accessor.Delete.
func (r *Repository[T]) Delete(ctx context.Context, id int) (bool, error) {
	log := logger.FromContextOrDefault(ctx, r.logger)

	var affected int64
	err := r.mutate(ctx, func(ctx context.Context, q DBTX) error {
		result, err := r.exec(ctx, q, r.stmts.DeleteByID, id)
		if err != nil {
			return err
		}
		affected, err = result.RowsAffected()
		return err
	})
	if err != nil {
		return false, r.fail(ctx, "delete", err, slog.Int("id", id))
	}

	if affected == 0 {
		log.Debug(r.mapping.Entity+" not found for delete", slog.Int("id", id))
		return false, nil
	}

	log.Info(r.mapping.Entity+" deleted", slog.Int("id", id))
	return true, nil
}

// Count implements Accessor.Count.
func (r *Repository[T]) Count(ctx context.Context) (int, error) {
	var n int
	if err := r.db.QueryRowContext(ctx, r.stmts.Count).Scan(&n); err != nil {
		return 0, r.fail(ctx, "count", err)
	}
	return n, nil
}

// mutate runs fn in its own committed transaction when the repository owns
// the connection, or directly on the caller's transaction otherwise.
func (r *Repository[T]) mutate(ctx context.Context, fn func(ctx context.Context, q DBTX) error) error {
	if beginner, ok := r.db.(TxBeginner); ok {
		return RunInTransaction(ctx, beginner, func(ctx context.Context, tx *sql.Tx) error {
			return fn(ctx, tx)
		})
	}
	return fn(ctx, r.db)
}

func (r *Repository[T]) exec(ctx context.Context, q DBTX, stmt string, args ...any) (sql.Result, error) {
	logger.FromContextOrDefault(ctx, r.logger).Debug("executing statement", slog.String("sql", stmt))
	return q.ExecContext(ctx, stmt, args...)
}

// fail classifies err, logs it with the engine diagnostics and the cause
// chain, and wraps it in a StoreError.
func (r *Repository[T]) fail(ctx context.Context, op string, err error, attrs ...slog.Attr) error {
	log := logger.FromContextOrDefault(ctx, r.logger)
	mapped := r.dialect.MapError(err)

	attrs = append(attrs,
		slog.String("operation", op),
		slog.String("table", r.mapping.Table),
		slog.String("error", mapped.Error()),
	)

	if errors.Is(mapped, ErrNotFound) {
		log.LogAttrs(ctx, slog.LevelDebug, r.mapping.Entity+" not found", attrs...)
		return NewStoreError(r.mapping.Entity, op, "not found", mapped)
	}

	attrs = append(attrs, r.dialect.Diagnose(err)...)
	attrs = append(attrs, slog.Any("cause_chain", CauseChain(err)))

	level, message := slog.LevelError, "statement failed"
	var constraintErr *ConstraintError
	switch {
	case errors.As(mapped, &constraintErr):
		level, message = slog.LevelWarn, "constraint violation"
		attrs = append(attrs,
			slog.String("constraint_kind", string(constraintErr.Kind)),
			slog.String("constraint", constraintErr.Constraint),
			slog.String("column", constraintErr.Column))
	case errors.Is(mapped, ErrConnectivity):
		message = "database unreachable"
	}

	log.LogAttrs(ctx, level, fmt.Sprintf("%s %s failed: %s", r.mapping.Entity, op, message), attrs...)
	return NewStoreError(r.mapping.Entity, op, message, mapped)
}
