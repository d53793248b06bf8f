// internal/domain/user/entity.go
package user

import (
	"net/mail"
	"strings"
	"time"

	"storefront/internal/domain/common"
)

// Errors (single source)
var (
	ErrNotFound     = common.NewError(common.ErrNotFound, "User not found")
	ErrEmailTaken   = common.NewError(common.ErrConflict, "User with this email already exists")
	ErrDeactivated  = common.NewError(common.ErrForbidden, "Account is deactivated")
	ErrInvalidID    = common.NewError(common.ErrInvalidArgument, "user: invalid id")
	ErrInvalidEmail = common.NewError(common.ErrInvalidArgument, "user: invalid email")
	ErrInvalidName  = common.NewError(common.ErrInvalidArgument, "user: first and last name are required")
	ErrInvalidRole  = common.NewError(common.ErrInvalidArgument, "user: role must be customer, admin or guest")
	ErrNameTooLong  = common.NewError(common.ErrInvalidArgument, "user: name is too long")
	ErrInsufficient = common.NewError(common.ErrForbidden, "Insufficient permissions")
	ErrNotOwner     = common.NewError(common.ErrForbidden, "Access denied")
)

// Policy
var (
	MaxNameLength = 100
)

// Role is the authorization role stored on the user document.
type Role string

const (
	RoleCustomer Role = "customer"
	RoleAdmin    Role = "admin"
	RoleGuest    Role = "guest"
)

func (r Role) IsValid() bool {
	switch r {
	case RoleCustomer, RoleAdmin, RoleGuest:
		return true
	}
	return false
}

// Effective treats an unset role as guest.
func (r Role) Effective() Role {
	if r == "" {
		return RoleGuest
	}
	return r
}

// Allowed is the single role policy: it reports whether role is in the allow-list.
func Allowed(role Role, allowed ...Role) bool {
	role = role.Effective()
	for _, a := range allowed {
		if role == a {
			return true
		}
	}
	return false
}

// Preferences are user-level switches.
type Preferences struct {
	Newsletter    bool `json:"newsletter" firestore:"newsletter"`
	Notifications bool `json:"notifications" firestore:"notifications"`
}

// DefaultPreferences applies to newly registered users.
func DefaultPreferences() Preferences {
	return Preferences{Newsletter: false, Notifications: true}
}

// User is the profile document keyed by the identity provider uid.
type User struct {
	ID          string
	Email       string
	FirstName   string
	LastName    string
	PhoneNumber string
	Role        Role
	Addresses   AddressBook
	IsActive    bool
	Preferences Preferences
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// New builds an active user with default preferences and no addresses.
func New(id, email, firstName, lastName, phone string, role Role, now time.Time) (User, error) {
	u := User{
		ID:          strings.TrimSpace(id),
		Email:       NormalizeEmail(email),
		FirstName:   strings.TrimSpace(firstName),
		LastName:    strings.TrimSpace(lastName),
		PhoneNumber: strings.TrimSpace(phone),
		Role:        role,
		Addresses:   AddressBook{},
		IsActive:    true,
		Preferences: DefaultPreferences(),
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := u.validate(); err != nil {
		return User{}, err
	}
	return u, nil
}

// NormalizeEmail trims and lower-cases so uniqueness checks compare like with like.
func NormalizeEmail(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

// FullName joins first and last name.
func (u User) FullName() string {
	return strings.TrimSpace(u.FirstName + " " + u.LastName)
}

func (u User) IsAdmin() bool { return u.Role == RoleAdmin }

// Patch is a partial profile update. Role and IsActive are admin-only; callers enforce that.
type Patch struct {
	FirstName   *string
	LastName    *string
	PhoneNumber *string
	Preferences *Preferences
	Role        *Role
	IsActive    *bool
}

// HasAdminFields reports whether the patch touches admin-only fields.
func (p Patch) HasAdminFields() bool {
	return p.Role != nil || p.IsActive != nil
}

func (u *User) Apply(p Patch, now time.Time) error {
	if p.FirstName != nil {
		u.FirstName = strings.TrimSpace(*p.FirstName)
	}
	if p.LastName != nil {
		u.LastName = strings.TrimSpace(*p.LastName)
	}
	if p.PhoneNumber != nil {
		u.PhoneNumber = strings.TrimSpace(*p.PhoneNumber)
	}
	if p.Preferences != nil {
		u.Preferences = *p.Preferences
	}
	if p.Role != nil {
		u.Role = *p.Role
	}
	if p.IsActive != nil {
		u.IsActive = *p.IsActive
	}
	u.touch(now)
	return u.validate()
}

// Deactivate is the soft delete for users.
func (u *User) Deactivate(now time.Time) {
	u.IsActive = false
	u.touch(now)
}

func (u *User) touch(now time.Time) {
	u.UpdatedAt = now
}

func (u User) validate() error {
	if u.ID == "" {
		return ErrInvalidID
	}
	if _, err := mail.ParseAddress(u.Email); err != nil || !strings.Contains(u.Email, "@") {
		return ErrInvalidEmail
	}
	if u.FirstName == "" || u.LastName == "" {
		return ErrInvalidName
	}
	if len([]rune(u.FirstName)) > MaxNameLength || len([]rune(u.LastName)) > MaxNameLength {
		return ErrNameTooLong
	}
	if !u.Role.Effective().IsValid() {
		return ErrInvalidRole
	}
	return nil
}
