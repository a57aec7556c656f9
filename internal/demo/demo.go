package demo

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	"github.com/vasari/tienda/internal/domain"
	"github.com/vasari/tienda/internal/platform/logger"
	"github.com/vasari/tienda/internal/store"
)

// Options controls a demo run.
type Options struct {
	// Prepare empties (or creates) every table before seeding.
	Prepare bool
	// Rounds is how many times the seeds are inserted. Rounds after the
	// first produce duplicate key failures. Values below 1 mean 1.
	Rounds int
}

// Failure kinds, from the store error taxonomy.
const (
	KindDuplicate    = "duplicate"
	KindConstraint   = "constraint"
	KindNotFound     = "not_found"
	KindConnectivity = "connectivity"
	KindTransaction  = "transaction"
	KindOther        = "other"
)

// Failure records one operation that did not succeed.
type Failure struct {
	Entity    string `json:"entity" yaml:"entity"`
	Operation string `json:"operation" yaml:"operation"`
	ID        *int   `json:"id,omitempty" yaml:"id,omitempty"`
	Kind      string `json:"kind" yaml:"kind"`
	Error     string `json:"error" yaml:"error"`
}

// Result is the outcome of a run: the final contents of every table and the
// operations that failed on the way.
type Result struct {
	CorrelationID string           `json:"correlation_id" yaml:"correlation_id"`
	Operations    int              `json:"operations" yaml:"operations"`
	Stores        []domain.Store   `json:"stores" yaml:"stores"`
	Articles      []domain.Article `json:"articles" yaml:"articles"`
	Users         []domain.User    `json:"users" yaml:"users"`
	Failures      []Failure        `json:"failures" yaml:"failures"`
}

// Classify names the failure kind of an error returned by a repository.
func Classify(err error) string {
	switch {
	case errors.Is(err, store.ErrDuplicate):
		return KindDuplicate
	case errors.Is(err, store.ErrConstraintViolation):
		return KindConstraint
	case errors.Is(err, store.ErrNotFound):
		return KindNotFound
	case errors.Is(err, store.ErrConnectivity):
		return KindConnectivity
	case errors.Is(err, store.ErrTransactionFailed):
		return KindTransaction
	}
	return KindOther
}

// recorder counts operations and collects failures.
type recorder struct {
	log    *slog.Logger
	result *Result
}

func (r *recorder) record(entity, op string, id *int, err error) bool {
	r.result.Operations++
	if err == nil {
		return true
	}

	f := Failure{Entity: entity, Operation: op, ID: id, Kind: Classify(err), Error: err.Error()}
	r.result.Failures = append(r.result.Failures, f)

	attrs := []any{
		slog.String("entity", entity),
		slog.String("operation", op),
		slog.String("kind", f.Kind),
		slog.String("error", f.Error),
	}
	if id != nil {
		attrs = append(attrs, slog.Int("id", *id))
	}
	r.log.Warn("operation failed, continuing", attrs...)
	return false
}

// Run executes the exercise against repos. Operation failures are recorded in
// the result and never stop the run; an error is returned only when ctx is
// done.
func Run(ctx context.Context, repos *store.Repositories, opts Options) (*Result, error) {
	if repos == nil {
		return nil, errors.New("repositories cannot be nil")
	}
	rounds := max(opts.Rounds, 1)

	res := &Result{CorrelationID: uuid.New().String(), Failures: []Failure{}}
	log := logger.FromContext(ctx).With(
		slog.String("component", "demo"),
		slog.String("correlation_id", res.CorrelationID),
	)
	ctx = logger.WithLogger(ctx, log)
	rec := &recorder{log: log, result: res}

	log.Info("demo run started",
		slog.Bool("prepare", opts.Prepare),
		slog.Int("rounds", rounds))

	if opts.Prepare {
		for _, prepare := range []struct {
			entity string
			fn     func(context.Context) error
		}{
			{"store", repos.Stores.PrepareTable},
			{"article", repos.Articles.PrepareTable},
			{"user", repos.Users.PrepareTable},
		} {
			rec.record(prepare.entity, "prepare", nil, prepare.fn(ctx))
		}
	}

	var err error
	res.Stores, err = runScenario(ctx, rec, scenario[domain.Store]{
		entity: "store",
		repo:   repos.Stores,
		seeds:  StoreSeeds,
		id:     store.StoreMapping.ID,
		modify: func(s domain.Store) domain.Store {
			s.Name = RenamedStore
			return s
		},
	}, rounds)
	if err != nil {
		return nil, err
	}

	res.Articles, err = runScenario(ctx, rec, scenario[domain.Article]{
		entity: "article",
		repo:   repos.Articles,
		seeds:  ArticleSeeds,
		id:     store.ArticleMapping.ID,
		modify: func(a domain.Article) domain.Article {
			a.Price = UpdatedPrice
			return a
		},
	}, rounds)
	if err != nil {
		return nil, err
	}

	res.Users, err = runScenario(ctx, rec, scenario[domain.User]{
		entity: "user",
		repo:   repos.Users,
		seeds:  UserSeeds,
		id:     store.UserMapping.ID,
		modify: func(u domain.User) domain.User {
			u.Email = UpdatedEmail
			return u
		},
	}, rounds)
	if err != nil {
		return nil, err
	}

	log.Info("demo run finished",
		slog.Int("operations", res.Operations),
		slog.Int("failures", len(res.Failures)))
	return res, nil
}

type scenario[T any] struct {
	entity string
	repo   store.Accessor[T]
	seeds  []T
	id     func(T) int
	modify func(T) T
}

// runScenario seeds one table, updates UpdatedID, deletes DeletedID and
// returns the remaining rows.
func runScenario[T fmt.Stringer](ctx context.Context, rec *recorder, sc scenario[T], rounds int) ([]T, error) {
	for round := 1; round <= rounds; round++ {
		for _, seed := range sc.seeds {
			if err := ctx.Err(); err != nil {
				return nil, fmt.Errorf("demo interrupted: %w", err)
			}
			id := sc.id(seed)
			rec.record(sc.entity, "insert", &id, sc.repo.Insert(ctx, seed))
		}
	}

	updatedID, deletedID := UpdatedID, DeletedID
	entity, err := sc.repo.GetByID(ctx, updatedID)
	if rec.record(sc.entity, "get", &updatedID, err) {
		rec.log.Info(sc.entity+" found", slog.String("row", entity.String()))
		_, err := sc.repo.Update(ctx, sc.modify(entity))
		rec.record(sc.entity, "update", &updatedID, err)
	}

	deleted, err := sc.repo.Delete(ctx, deletedID)
	if rec.record(sc.entity, "delete", &deletedID, err) && !deleted {
		rec.log.Info(sc.entity+" to delete was not present", slog.Int("id", deletedID))
	}

	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("demo interrupted: %w", err)
	}
	rows, err := sc.repo.List(ctx)
	if !rec.record(sc.entity, "list", nil, err) {
		return []T{}, nil
	}
	return rows, nil
}
