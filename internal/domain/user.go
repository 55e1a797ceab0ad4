package domain

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// AccountStatus gates whether an owner's listings appear publicly.
// Only Validate and Warning accounts surface in the feed.
type AccountStatus string

const (
	AccountValidate   AccountStatus = "Validate"
	AccountWarning    AccountStatus = "Warning"
	AccountRestricted AccountStatus = "Restricted"
)

// Role of an authenticated caller, supplied by the upstream gateway.
type Role string

const (
	RoleUser       Role = "User"
	RoleAdmin      Role = "Admin"
	RoleSuperAdmin Role = "SuperAdmin"
)

// IsModerator reports whether the role may trigger moderation
// transitions (approve/decline/report-withdrawal, account actions).
func (r Role) IsModerator() bool {
	return r == RoleAdmin || r == RoleSuperAdmin
}

// Actor is the already-authenticated identity a request carries.
type Actor struct {
	ID   primitive.ObjectID
	Role Role
}

// User is the slice of the users collection this service reads and
// moderates. Credentials and verification flows live elsewhere.
type User struct {
	ID            primitive.ObjectID
	Name          string
	Email         string
	Phone         string
	AccountStatus AccountStatus
	WarningCount  int
	CreatedAt     time.Time
	UpdatedAt     time.Time
}
