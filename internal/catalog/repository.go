package catalog

import "context"

// Repository exposes read access to the practitioner catalog.
type Repository interface {
	List(ctx context.Context, filter ListFilter) ([]*Practitioner, int, error)
	GetByID(ctx context.Context, id string) (*Practitioner, error)
}
