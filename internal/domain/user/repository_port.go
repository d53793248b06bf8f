// internal/domain/user/repository_port.go
package user

import "context"

// Filter narrows admin listings. nil / "" means unfiltered.
type Filter struct {
	Role   Role
	Active *bool
}

// Repository is a persistence port for User.
type Repository interface {
	// GetByID / GetByEmail return ErrNotFound when absent.
	GetByID(ctx context.Context, id string) (User, error)
	GetByEmail(ctx context.Context, email string) (User, error)

	// List returns users ordered by createdAt desc.
	List(ctx context.Context, f Filter) ([]User, error)

	// Create fails with ErrEmailTaken when the document already exists.
	Create(ctx context.Context, u User) (User, error)
	Save(ctx context.Context, u User) (User, error)
}
