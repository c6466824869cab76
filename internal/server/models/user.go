// Package models defines the persisted records of the service: users and
// their API usage, endpoint call statistics, classification audit rows, and
// the legacy flat-file export consumed once at startup.
package models

// User roles. Roles are a flat two-value set; there is no policy engine.
const (
	RoleUser  = "user"
	RoleAdmin = "admin"
)

// User is an identity record. PasswordHash is a bcrypt hash and is never
// serialized. Usage is always populated from the api_usage row on reads.
type User struct {
	ID           string   `json:"id"`
	Email        string   `json:"email"`
	PasswordHash string   `json:"-"`
	FirstName    *string  `json:"firstName,omitempty"`
	Role         string   `json:"role"`
	CreatedAt    string   `json:"createdAt"`
	Usage        APIUsage `json:"usage"`
}

// APIUsage is the 1:1 quota child of a User. Used only ever grows; the limit
// is a soft quota that triggers a warning, not a block.
type APIUsage struct {
	Used          int     `json:"used"`
	Limit         int     `json:"limit"`
	LastRequestAt *string `json:"lastRequestAt,omitempty"`
}

// UserUsageStat is the admin projection of one user's quota state.
type UserUsageStat struct {
	Email string `json:"email"`
	Role  string `json:"role"`
	Used  int    `json:"used"`
	Limit int    `json:"limit"`
}
