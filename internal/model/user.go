// Package model defines the data structures used throughout the application.
package model

import "time"

// Auth providers a user account can originate from. Credential accounts use
// ProviderLocal; social logins record which upstream identity they came from.
const (
	ProviderLocal  = "local"
	ProviderGoogle = "google"
	ProviderGitHub = "github"
)

// Genders accepted at registration.
var Genders = []string{"Male", "Female", "Other"}

// User represents a registered account.
//
// IDs are UUIDs (google/uuid) so that credential and OAuth accounts share one
// keyspace and nothing about signup order leaks through the ID.
//
// PasswordHash is a bcrypt hash for credential accounts and empty for OAuth
// accounts. ProviderID is the upstream subject (Google sub, GitHub numeric ID
// as a string) and is empty for credential accounts. The pair
// (provider, provider_id) is UNIQUE in the database for OAuth accounts, as is
// email across all accounts.
type User struct {
	ID           string    `json:"id"`
	FullName     string    `json:"fullName"`
	Email        string    `json:"email"`
	Phone        string    `json:"phone"`
	Gender       string    `json:"gender"`
	PasswordHash string    `json:"-"` // never serialized
	Provider     string    `json:"provider"`
	ProviderID   string    `json:"-"`
	CreatedAt    time.Time `json:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt"`
}

// Profile is the denormalized slice of a User that the session caches for
// display. The navbar greeting and the profile screen render from this copy
// without a database lookup.
type Profile struct {
	Name   string `json:"name"`
	Email  string `json:"email"`
	Phone  string `json:"phone"`
	Gender string `json:"gender"`
}

// Profile projects the user's display fields.
func (u *User) Profile() *Profile {
	return &Profile{
		Name:   u.FullName,
		Email:  u.Email,
		Phone:  u.Phone,
		Gender: u.Gender,
	}
}
