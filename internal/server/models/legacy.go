package models

// LegacyExport mirrors the deprecated flat-file user store
// ({"users":[...]}) consumed exactly once as a migration source.
type LegacyExport struct {
	Users []LegacyUser `json:"users"`
}

// LegacyUser is one entry of the legacy export. Usage may be absent.
type LegacyUser struct {
	ID           string       `json:"id"`
	Email        string       `json:"email"`
	PasswordHash string       `json:"passwordHash"`
	Role         string       `json:"role"`
	Usage        *LegacyUsage `json:"usage"`
}

// LegacyUsage carries quota counters over from the legacy store.
type LegacyUsage struct {
	Used  int `json:"used"`
	Limit int `json:"limit"`
}
