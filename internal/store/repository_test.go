package store_test

import (
	"context"
	"database/sql"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vasari/tienda/internal/domain"
	"github.com/vasari/tienda/internal/platform/logger"
	"github.com/vasari/tienda/internal/platform/sqlite"
	"github.com/vasari/tienda/internal/store"
)

func openInMemoryDB(t *testing.T) *sql.DB {
	t.Helper()
	db, err := sql.Open("sqlite", ":memory:")
	require.NoError(t, err)
	// A single connection keeps every statement on the same in-memory database.
	db.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = db.Close() })
	return db
}

// newRepositories returns prepared repositories and the buffer their logs go to.
func newRepositories(t *testing.T) (*store.Repositories, *sql.DB, *logger.TestLogBuffer) {
	t.Helper()
	db := openInMemoryDB(t)
	buf, log := logger.NewTestLogger(t)

	repos, err := store.NewRepositories(db, sqlite.New(), log)
	require.NoError(t, err)
	require.NoError(t, repos.PrepareAll(context.Background()))
	return repos, db, buf
}

func tableExists(t *testing.T, db *sql.DB, table string) bool {
	t.Helper()
	exists, err := sqlite.New().TableExists(context.Background(), db, table)
	require.NoError(t, err)
	return exists
}

func TestRoundTrip(t *testing.T) {
	repos, _, _ := newRepositories(t)
	ctx := context.Background()

	t.Run("store", func(t *testing.T) {
		s := domain.Store{ID: 1, Name: "La Nena", Address: "Callejon de la Nena"}
		require.NoError(t, repos.Stores.Insert(ctx, s))

		got, err := repos.Stores.GetByID(ctx, 1)
		require.NoError(t, err)
		assert.Equal(t, s, got)
	})

	t.Run("article", func(t *testing.T) {
		a := domain.Article{ID: 3, Name: "Teclado", Description: "USB", Price: 1500}
		require.NoError(t, repos.Articles.Insert(ctx, a))

		got, err := repos.Articles.GetByID(ctx, 3)
		require.NoError(t, err)
		assert.Equal(t, a, got)
	})

	t.Run("user", func(t *testing.T) {
		u := domain.User{ID: 9, Name: "Ana", Email: "ana@example.com"}
		require.NoError(t, repos.Users.Insert(ctx, u))

		got, err := repos.Users.GetByID(ctx, 9)
		require.NoError(t, err)
		assert.Equal(t, u, got)
	})
}

// TestArticleLifecycle walks one article through insert, read, update and delete.
func TestArticleLifecycle(t *testing.T) {
	repos, _, _ := newRepositories(t)
	ctx := context.Background()

	cd := domain.Article{ID: 1, Name: "CD-DVD", Description: "900 MB", Price: 35}
	require.NoError(t, repos.Articles.Insert(ctx, cd))

	got, err := repos.Articles.GetByID(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, cd, got)

	cd.Price = 40
	updated, err := repos.Articles.Update(ctx, cd)
	require.NoError(t, err)
	assert.True(t, updated)

	got, err = repos.Articles.GetByID(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, 40, got.Price)

	deleted, err := repos.Articles.Delete(ctx, 1)
	require.NoError(t, err)
	assert.True(t, deleted)

	all, err := repos.Articles.List(ctx)
	require.NoError(t, err)
	assert.Empty(t, all)
}

func TestDeleteReportsExistence(t *testing.T) {
	repos, _, _ := newRepositories(t)
	ctx := context.Background()

	require.NoError(t, repos.Stores.Insert(ctx, domain.Store{ID: 2, Name: "La Virgen", Address: "Calle Rosa de Guadalupe"}))

	deleted, err := repos.Stores.Delete(ctx, 2)
	require.NoError(t, err)
	assert.True(t, deleted)

	deleted, err = repos.Stores.Delete(ctx, 2)
	require.NoError(t, err)
	assert.False(t, deleted, "second delete finds nothing")

	deleted, err = repos.Stores.Delete(ctx, 7)
	require.NoError(t, err)
	assert.False(t, deleted)
}

func TestUpdateChangesOnlyMutableFields(t *testing.T) {
	repos, _, _ := newRepositories(t)
	ctx := context.Background()

	require.NoError(t, repos.Stores.Insert(ctx, domain.Store{ID: 1, Name: "La Nena", Address: "Callejon de la Nena"}))
	require.NoError(t, repos.Stores.Insert(ctx, domain.Store{ID: 3, Name: "La Piscina", Address: "Avenida De los Charcos"}))

	updated, err := repos.Stores.Update(ctx, domain.Store{ID: 1, Name: "Nuevo usuario", Address: "Callejon de la Nena"})
	require.NoError(t, err)
	assert.True(t, updated)

	got, err := repos.Stores.GetByID(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, domain.Store{ID: 1, Name: "Nuevo usuario", Address: "Callejon de la Nena"}, got)

	other, err := repos.Stores.GetByID(ctx, 3)
	require.NoError(t, err)
	assert.Equal(t, "La Piscina", other.Name, "other rows are untouched")

	updated, err = repos.Stores.Update(ctx, domain.Store{ID: 8, Name: "Fantasma", Address: "Ninguna"})
	require.NoError(t, err)
	assert.False(t, updated, "updating a missing key changes nothing")

	count, err := repos.Stores.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, count)
}

func TestListEmptyAfterPrepare(t *testing.T) {
	repos, _, _ := newRepositories(t)

	stores, err := repos.Stores.List(context.Background())
	require.NoError(t, err)
	assert.NotNil(t, stores)
	assert.Empty(t, stores)
}

func TestListReturnsEveryRow(t *testing.T) {
	repos, _, _ := newRepositories(t)
	ctx := context.Background()

	users := []domain.User{
		{ID: 1, Name: "Ana", Email: "ana@example.com"},
		{ID: 2, Name: "Luis", Email: "luis@example.com"},
		{ID: 3, Name: "Marta", Email: "marta@example.com"},
	}
	for _, u := range users {
		require.NoError(t, repos.Users.Insert(ctx, u))
	}

	got, err := repos.Users.List(ctx)
	require.NoError(t, err)
	assert.ElementsMatch(t, users, got)
}

func TestInsertRejectsNonPositivePrice(t *testing.T) {
	repos, _, buf := newRepositories(t)
	ctx := context.Background()

	require.NoError(t, repos.Articles.Insert(ctx, domain.Article{ID: 1, Name: "CD-DVD", Description: "900 MB", Price: 35}))

	for _, price := range []int{0, -10} {
		err := repos.Articles.Insert(ctx, domain.Article{ID: 2, Name: "Regalo", Description: "gratis", Price: price})

		require.Error(t, err)
		assert.ErrorIs(t, err, store.ErrConstraintViolation)
		assert.NotErrorIs(t, err, store.ErrDuplicate)

		var constraintErr *store.ConstraintError
		require.ErrorAs(t, err, &constraintErr)
		assert.Equal(t, store.ConstraintCheck, constraintErr.Kind)
	}

	count, err := repos.Articles.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, count, "rejected inserts leave the table unchanged")

	logger.AssertLogContains(t, buf, "article insert failed: constraint violation")
	logger.AssertLogField(t, buf, "constraint_kind", "check")
}

func TestInsertDuplicateKey(t *testing.T) {
	repos, _, buf := newRepositories(t)
	ctx := context.Background()

	s := domain.Store{ID: 1, Name: "La Nena", Address: "Callejon de la Nena"}
	require.NoError(t, repos.Stores.Insert(ctx, s))

	err := repos.Stores.Insert(ctx, s)

	require.Error(t, err)
	assert.ErrorIs(t, err, store.ErrDuplicate)
	assert.ErrorIs(t, err, store.ErrConstraintViolation)

	var storeErr *store.StoreError
	require.ErrorAs(t, err, &storeErr)
	assert.Equal(t, "store", storeErr.Entity)
	assert.Equal(t, "insert", storeErr.Operation)
	assert.Equal(t, "constraint violation", storeErr.Message)

	logger.AssertLogContains(t, buf, "cause_chain")
	logger.AssertLogContains(t, buf, "sqlite_code")
	logger.AssertLogField(t, buf, "level", "WARN")
}

func TestGetByIDMissing(t *testing.T) {
	repos, _, buf := newRepositories(t)

	got, err := repos.Stores.GetByID(context.Background(), 4)

	require.Error(t, err)
	assert.ErrorIs(t, err, store.ErrNotFound)
	assert.True(t, store.IsNotFoundError(err))
	assert.Equal(t, domain.Store{}, got)
	logger.AssertLogContains(t, buf, "store not found")
}

func TestPrepareTable(t *testing.T) {
	db := openInMemoryDB(t)
	ctx := context.Background()
	buf, log := logger.NewTestLogger(t)

	repo, err := store.NewRepository(db, sqlite.New(), store.StoreMapping, log)
	require.NoError(t, err)
	assert.Equal(t, "tienda", repo.Table())

	// Missing table is created
	assert.False(t, tableExists(t, db, "tienda"))
	require.NoError(t, repo.PrepareTable(ctx))
	assert.True(t, tableExists(t, db, "tienda"))
	logger.AssertLogField(t, buf, "action", "create")

	// Existing, populated table is emptied
	require.NoError(t, repo.Insert(ctx, domain.Store{ID: 4, Name: "El churro", Address: "Calle del Pason"}))
	require.NoError(t, repo.Insert(ctx, domain.Store{ID: 5, Name: "Don Pancho", Address: "Avenida del Reboso"}))

	require.NoError(t, repo.PrepareTable(ctx))

	count, err := repo.Count(ctx)
	require.NoError(t, err)
	assert.Zero(t, count)
	logger.AssertLogField(t, buf, "action", "truncate")
}

func TestWithTx(t *testing.T) {
	repos, db, _ := newRepositories(t)
	ctx := context.Background()

	t.Run("rollback discards", func(t *testing.T) {
		tx, err := db.BeginTx(ctx, nil)
		require.NoError(t, err)

		txRepo := repos.Users.WithTx(tx)
		require.NoError(t, txRepo.Insert(ctx, domain.User{ID: 1, Name: "Ana", Email: "ana@example.com"}))

		count, err := txRepo.Count(ctx)
		require.NoError(t, err)
		assert.Equal(t, 1, count, "the transaction sees its own insert")

		require.NoError(t, tx.Rollback())

		count, err = repos.Users.Count(ctx)
		require.NoError(t, err)
		assert.Zero(t, count)
	})

	t.Run("commit keeps", func(t *testing.T) {
		err := store.RunInTransaction(ctx, db, func(ctx context.Context, tx *sql.Tx) error {
			txRepo := repos.Users.WithTx(tx)
			if err := txRepo.Insert(ctx, domain.User{ID: 1, Name: "Ana", Email: "ana@example.com"}); err != nil {
				return err
			}
			return txRepo.Insert(ctx, domain.User{ID: 2, Name: "Luis", Email: "luis@example.com"})
		})
		require.NoError(t, err)

		count, err := repos.Users.Count(ctx)
		require.NoError(t, err)
		assert.Equal(t, 2, count)
	})

	t.Run("failure inside transaction rolls back", func(t *testing.T) {
		err := store.RunInTransaction(ctx, db, func(ctx context.Context, tx *sql.Tx) error {
			txRepo := repos.Users.WithTx(tx)
			if err := txRepo.Insert(ctx, domain.User{ID: 3, Name: "Marta", Email: "marta@example.com"}); err != nil {
				return err
			}
			// ID 1 was committed by the previous subtest
			return txRepo.Insert(ctx, domain.User{ID: 1, Name: "Ana", Email: "ana@example.com"})
		})
		require.ErrorIs(t, err, store.ErrDuplicate)

		_, err = repos.Users.GetByID(ctx, 3)
		assert.ErrorIs(t, err, store.ErrNotFound)
	})
}

func TestLoggerFromContextWins(t *testing.T) {
	repos, _, repoBuf := newRepositories(t)
	ctxBuf, ctxLog := logger.NewTestLogger(t)
	ctx := logger.WithLogger(context.Background(), ctxLog.With("correlation_id", "run-1"))

	require.NoError(t, repos.Stores.Insert(ctx, domain.Store{ID: 1, Name: "La Nena", Address: "Callejon de la Nena"}))

	logger.AssertLogField(t, ctxBuf, "correlation_id", "run-1")
	assert.NotContains(t, repoBuf.String(), "store inserted")
}

func TestNewRepositoryValidation(t *testing.T) {
	db := openInMemoryDB(t)

	_, err := store.NewRepository(nil, sqlite.New(), store.StoreMapping, nil)
	assert.Error(t, err)

	_, err = store.NewRepository[domain.Store](db, nil, store.StoreMapping, nil)
	assert.Error(t, err)

	broken := store.StoreMapping
	broken.Statements.Update = ""
	broken.Scan = nil
	_, err = store.NewRepository(db, sqlite.New(), broken, nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "update is empty")
	assert.Contains(t, err.Error(), "Scan are required")
}

func TestOperationsOnMissingTable(t *testing.T) {
	db := openInMemoryDB(t)
	repo, err := store.NewRepository(db, sqlite.New(), store.ArticleMapping, nil)
	require.NoError(t, err)

	_, err = repo.List(context.Background())
	require.Error(t, err)
	assert.False(t, errors.Is(err, store.ErrNotFound))
	assert.False(t, errors.Is(err, store.ErrConstraintViolation))

	var storeErr *store.StoreError
	require.ErrorAs(t, err, &storeErr)
	assert.Equal(t, "statement failed", storeErr.Message)
}
