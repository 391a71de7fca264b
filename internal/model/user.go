package model

import "time"

// Account roles.  Scorers and admins may mutate match sessions; viewers
// can only read.
const (
	RoleScorer = "SCORER"
	RoleViewer = "VIEWER"
	RoleAdmin  = "ADMIN"
)

// User represents a scorer account as stored in the `users` table.  Each
// field corresponds to a column in the database.  The json tags are omitted
// here because these structs are primarily used internally by the
// repository layer; handlers define their own response types.
//
// Fields:
//  ID           – primary key identifier of the user.
//  Email        – unique email address.
//  DisplayName  – name shown as the scorer of a match.
//  PasswordHash – bcrypt hashed password.
//  Role         – SCORER, VIEWER or ADMIN.
//  IsActive     – whether the account is active.
//  CreatedAt    – timestamp of creation.
//  UpdatedAt    – timestamp of last update.
type User struct {
	ID           uint64    // users.id
	Email        string    // users.email
	DisplayName  string    // users.display_name
	PasswordHash string    // users.password_hash
	Role         string    // users.role
	IsActive     bool      // users.is_active
	CreatedAt    time.Time // users.created_at
	UpdatedAt    time.Time // users.updated_at
}

// NormalizeRole maps free-form input to a known role.  Anything unknown
// becomes a viewer; accounts are promoted by an admin, not at signup.
func NormalizeRole(role string) string {
	switch role {
	case RoleScorer, RoleAdmin:
		return role
	}
	return RoleViewer
}
