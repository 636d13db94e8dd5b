package repository

import (
	"context"
	"errors"
	"fmt"
	"sort"

	"go.uber.org/zap"

	"github.com/manojoshi/sdborm/driver"
	"github.com/manojoshi/sdborm/internal"
	"github.com/manojoshi/sdborm/mapping"
	q "github.com/manojoshi/sdborm/query"
	"github.com/manojoshi/sdborm/scan"
)

// ErrNotFound is returned by Get when the item has no stored attributes.
var ErrNotFound = errors.New("repository: item not found")

// BatchSize is the number of items written per pipeline by BatchPut.
const BatchSize = 25

// Repo is the single, reusable handle you inject everywhere.
type Repo struct {
	exec   driver.Executor
	reg    *mapping.Registry
	log    *zap.Logger
	prefix string
}

type Option func(*Repo)

// WithLogger sets the logger used for write and read tracing.
func WithLogger(l *zap.Logger) Option { return func(r *Repo) { r.log = l } }

// WithKeyPrefix namespaces every key, e.g. "app:" gives "app:user:u1".
func WithKeyPrefix(p string) Option { return func(r *Repo) { r.prefix = p } }

// New constructs a Repo over an executor and a mapping registry.
func New(exec driver.Executor, reg *mapping.Registry, opts ...Option) *Repo {
	r := &Repo{exec: exec, reg: reg, log: zap.NewNop()}
	for _, o := range opts {
		o(r)
	}
	return r
}

// Key is the hash key an item of domain is stored under.
func (r *Repo) Key(domain, item string) string { return r.prefix + domain + ":" + item }

/*───────────────────────────────────────────────────────────────
|  Writes                                                        |
└───────────────────────────────────────────────────────────────*/

// Put replaces the stored attributes of record's item. Fields without a
// value are dropped from the store.
func (r *Repo) Put(ctx context.Context, record any) error {
	cmds, err := r.putCmds(record)
	if err != nil {
		return err
	}
	return r.run(ctx, cmds)
}

// BatchPut writes records in pipelines of BatchSize items. Records are
// encoded before anything is sent, so an encoding error writes nothing.
func (r *Repo) BatchPut(ctx context.Context, records []any) error {
	all := make([][]interface{}, 0, 2*len(records))
	for _, rec := range records {
		cmds, err := r.putCmds(rec)
		if err != nil {
			return err
		}
		all = append(all, cmds...)
	}
	for i, chunk := range internal.Chunk(all, 2*BatchSize) {
		if err := r.run(ctx, chunk); err != nil {
			return fmt.Errorf("repository: batch %d: %w", i, err)
		}
	}
	r.log.Debug("batch put", zap.Int("items", len(records)))
	return nil
}

func (r *Repo) putCmds(record any) ([][]interface{}, error) {
	e, err := r.reg.Describe(record)
	if err != nil {
		return nil, err
	}
	item, attrs, err := e.Encode(record)
	if err != nil {
		return nil, err
	}
	if len(attrs) == 0 {
		return nil, fmt.Errorf("repository: %s %q has no attributes to store", e.Domain, item)
	}
	key := r.Key(e.Domain, item)

	names := make([]string, 0, len(attrs))
	for n := range attrs {
		names = append(names, n)
	}
	sort.Strings(names)
	hset := make([]interface{}, 0, 2+2*len(attrs))
	hset = append(hset, "HSET", key)
	for _, n := range names {
		hset = append(hset, n, attrs[n])
	}

	r.log.Debug("put", zap.String("key", key), zap.Int("attributes", len(attrs)))
	return [][]interface{}{{"DEL", key}, hset}, nil
}

// Delete removes one item of model's domain.
func (r *Repo) Delete(ctx context.Context, model any, item string) error {
	e, err := r.reg.Describe(model)
	if err != nil {
		return err
	}
	key := r.Key(e.Domain, item)
	if _, err := r.exec.Do(ctx, "DEL", key); err != nil {
		return fmt.Errorf("repository: delete %s: %w", key, err)
	}
	r.log.Debug("delete", zap.String("key", key))
	return nil
}

/*───────────────────────────────────────────────────────────────
|  Reads                                                         |
└───────────────────────────────────────────────────────────────*/

// Get loads item into out, a pointer to a mapped struct.
func (r *Repo) Get(ctx context.Context, item string, out any) error {
	e, err := r.reg.Describe(out)
	if err != nil {
		return err
	}
	key := r.Key(e.Domain, item)
	resp, err := r.exec.Do(ctx, "HGETALL", key)
	if err != nil {
		return fmt.Errorf("repository: get %s: %w", key, err)
	}
	kv, err := scan.Attributes(resp)
	if err != nil {
		return err
	}
	if len(kv) == 0 {
		return fmt.Errorf("%w: %s", ErrNotFound, key)
	}
	r.log.Debug("get", zap.String("key", key), zap.Int("attributes", len(kv)))
	return scan.Decode(e, item, kv, out)
}

// Select assembles the select expression for model's domain.
//
//	stmt, err := repo.Select(User{}, where,
//	    repository.Fields("name", "age"),
//	    repository.SortDesc("age"),
//	    repository.Limit(100),
//	)
func (r *Repo) Select(model any, where q.Expr, opts ...Opt) (string, error) {
	e, err := r.reg.Describe(model)
	if err != nil {
		return "", err
	}
	sb := q.NewSelect(e.Domain).Where(where)
	for _, o := range opts {
		if err := o.applySelect(e, sb); err != nil {
			return "", err
		}
	}
	return sb.Statement()
}

/*───────────────────────────────────────────────────────────────
|  Execution                                                     |
└───────────────────────────────────────────────────────────────*/

// run sends cmds in one pipeline when the executor supports it.
func (r *Repo) run(ctx context.Context, cmds [][]interface{}) error {
	if p, ok := r.exec.(driver.Pipeliner); ok {
		res, err := p.Pipeline(ctx, cmds)
		if err != nil {
			return fmt.Errorf("repository: pipeline: %w", err)
		}
		for i, v := range res {
			if err, ok := v.(error); ok {
				return fmt.Errorf("repository: %v: %w", cmds[i][0], err)
			}
		}
		return nil
	}
	for _, c := range cmds {
		if _, err := r.exec.Do(ctx, c...); err != nil {
			return fmt.Errorf("repository: %v: %w", c[0], err)
		}
	}
	return nil
}
