package league

import "context"

// Repository exposes league configuration reads.
type Repository interface {
	GetByID(ctx context.Context, id string) (League, bool, error)
	List(ctx context.Context) ([]League, error)
}
