package schema

import "context"

// Repository persists content types. Implementations return *NotFoundError
// when an id is unknown.
type Repository interface {
	Create(ctx context.Context, ct *ContentType) (*ContentType, error)
	GetByID(ctx context.Context, id string) (*ContentType, error)
	Update(ctx context.Context, ct *ContentType) (*ContentType, error)
	Delete(ctx context.Context, id string) error
	List(ctx context.Context) ([]*ContentType, error)
}
