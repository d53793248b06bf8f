package common

// Lifecycle is the soft-delete state of catalog records (products, categories).
type Lifecycle string

const (
	Active   Lifecycle = "active"
	Inactive Lifecycle = "inactive"
)

// LifecycleOf converts the stored isActive flag.
func LifecycleOf(isActive bool) Lifecycle {
	if isActive {
		return Active
	}
	return Inactive
}

func (l Lifecycle) IsActive() bool { return l == Active }

// VisibleTo is the one rule for hiding soft-deleted records:
// inactive records are visible to admins only.
func (l Lifecycle) VisibleTo(isAdmin bool) bool {
	return l == Active || isAdmin
}
