package category

import "context"

// Repository is a persistence port for Category.
type Repository interface {
	GetByID(ctx context.Context, id string) (Category, error)
	// List returns categories ordered by name. includeInactive=false returns active ones only.
	List(ctx context.Context, includeInactive bool) ([]Category, error)
	Create(ctx context.Context, c Category) (Category, error)
	Save(ctx context.Context, c Category) (Category, error)
}
