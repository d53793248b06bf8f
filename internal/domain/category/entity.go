// internal/domain/category/entity.go
package category

import (
	"strings"
	"time"

	"storefront/internal/domain/common"
)

var (
	ErrNotFound    = common.NewError(common.ErrNotFound, "Category not found")
	ErrInvalidName = common.NewError(common.ErrInvalidArgument, "category: name is required")
	ErrHasProducts = common.NewError(common.ErrInvalidState, "Cannot delete category with active products")
)

// Category groups products. ParentID is optional.
type Category struct {
	ID          string
	Name        string
	Description string
	ParentID    string
	ImageURL    string
	Lifecycle   common.Lifecycle
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// New builds an active category.
func New(id, name, description, parentID, imageURL string, now time.Time) (Category, error) {
	c := Category{
		ID:          strings.TrimSpace(id),
		Name:        strings.TrimSpace(name),
		Description: strings.TrimSpace(description),
		ParentID:    strings.TrimSpace(parentID),
		ImageURL:    strings.TrimSpace(imageURL),
		Lifecycle:   common.Active,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if c.Name == "" {
		return Category{}, ErrInvalidName
	}
	return c, nil
}

// Patch is a partial update.
type Patch struct {
	Name        *string
	Description *string
	ParentID    *string
	ImageURL    *string
	IsActive    *bool
}

func (c *Category) Apply(p Patch, now time.Time) error {
	if p.Name != nil {
		c.Name = strings.TrimSpace(*p.Name)
	}
	if p.Description != nil {
		c.Description = strings.TrimSpace(*p.Description)
	}
	if p.ParentID != nil {
		c.ParentID = strings.TrimSpace(*p.ParentID)
	}
	if p.ImageURL != nil {
		c.ImageURL = strings.TrimSpace(*p.ImageURL)
	}
	if p.IsActive != nil {
		c.Lifecycle = common.LifecycleOf(*p.IsActive)
	}
	if c.Name == "" {
		return ErrInvalidName
	}
	c.UpdatedAt = now
	return nil
}

// Deactivate soft-deletes the category. activeProducts is the number of active
// products that still reference it; any non-zero count blocks the delete.
func (c *Category) Deactivate(activeProducts int, now time.Time) error {
	if activeProducts > 0 {
		return ErrHasProducts
	}
	c.Lifecycle = common.Inactive
	c.UpdatedAt = now
	return nil
}
