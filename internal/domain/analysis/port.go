package analysis

import "context"

// Repository port (interface untuk persistence)
//
// Writes insert at the head of recency order and must be serialized by the
// implementation: the persisted form is a single collection, so concurrent
// read-modify-write cycles would otherwise lose updates. History returns
// user records most-recent-first. Clear empties user records only; shipped
// sample data is merged above this port.
type Repository interface {
	Save(ctx context.Context, a *Analysis) error
	History(ctx context.Context) ([]*Analysis, error)
	Get(ctx context.Context, id ID) (*Analysis, error)
	Clear(ctx context.Context) error
}
