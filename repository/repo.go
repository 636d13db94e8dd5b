// Package repository stores mapped structs as hashes keyed by domain and
// item name, and assembles select expressions over them. It follows the
// functional-options pattern so callers can keep code terse.
//
//	users, _ := repository.NewTyped[User](repository.New(conn, reg))
//	_ = users.Put(ctx, User{ID: "u1", Age: 30})
//	u, err := users.Get(ctx, "u1")
//	age, _ := users.Entity().Attr("age").In(30, 31)
//	stmt, _ := users.Select(age, repository.SortAsc("age"), repository.Limit(10))
package repository

import (
	"context"

	"github.com/manojoshi/sdborm/mapping"
	q "github.com/manojoshi/sdborm/query"
)

// Typed is a Repo bound to one model type.
type Typed[T any] struct {
	repo   *Repo
	entity *mapping.Entity
}

// NewTyped describes T once and binds it to r.
func NewTyped[T any](r *Repo) (*Typed[T], error) {
	var zero T
	e, err := r.reg.Describe(zero)
	if err != nil {
		return nil, err
	}
	return &Typed[T]{repo: r, entity: e}, nil
}

// Entity exposes the mapping for building predicates.
func (t *Typed[T]) Entity() *mapping.Entity { return t.entity }

func (t *Typed[T]) Put(ctx context.Context, v T) error { return t.repo.Put(ctx, v) }

func (t *Typed[T]) BatchPut(ctx context.Context, vs []T) error {
	recs := make([]any, len(vs))
	for i, v := range vs {
		recs[i] = v
	}
	return t.repo.BatchPut(ctx, recs)
}

func (t *Typed[T]) Get(ctx context.Context, item string) (T, error) {
	var out T
	err := t.repo.Get(ctx, item, &out)
	return out, err
}

func (t *Typed[T]) Delete(ctx context.Context, item string) error {
	var zero T
	return t.repo.Delete(ctx, zero, item)
}

func (t *Typed[T]) Select(where q.Expr, opts ...Opt) (string, error) {
	var zero T
	return t.repo.Select(zero, where, opts...)
}
