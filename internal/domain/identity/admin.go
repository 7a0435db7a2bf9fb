package identity

import (
	"context"
	"strings"

	"github.com/tallysync/backend/internal/domain/shared"
)

// Admin is a back-office user linked to an identity-provider account
type Admin struct {
	ID           int64   `json:"id"`
	Username     string  `json:"username"`
	MobileNumber *string `json:"mobile_number"`
	Email        *string `json:"email"`
	Role         string  `json:"role"`
	FirebaseUID  *string `json:"firebase_uid"`
}

// AdminRole is the role projection returned for the signed-in user
type AdminRole struct {
	Role string `json:"role"`
}

// HasUID reports whether the admin is linked to the given identity uid
func (a *Admin) HasUID(uid string) bool {
	return a.FirebaseUID != nil && *a.FirebaseUID == strings.TrimSpace(uid)
}

// AdminRepository defines read access to admins
type AdminRepository interface {
	// FindByID returns ErrAdminNotFound when no admin has the id
	FindByID(ctx context.Context, id int64) (*Admin, error)

	// FindByFirebaseUID returns ErrAdminNotFound when the uid is not linked to any admin
	FindByFirebaseUID(ctx context.Context, uid string) (*Admin, error)

	// RolesByFirebaseUID lists the role rows for the uid; empty when not linked
	RolesByFirebaseUID(ctx context.Context, uid string) ([]AdminRole, error)
}

// ErrAdminNotFound is returned by lookups that find no admin. It matches
// shared.ErrNotFound under errors.Is.
var ErrAdminNotFound = shared.NewDomainError(shared.ErrNotFound.Code, "Admin not found")
