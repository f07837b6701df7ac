package domain

import "time"

const (
	RoleAdmin = "ADMIN"
	RoleUser  = "USER"
)

// User models an authenticated actor in the system.
type User struct {
	ID               string    `json:"id"`
	Email            string    `json:"email"`
	FirstName        string    `json:"first_name"`
	LastName         string    `json:"last_name"`
	Patronymic       string    `json:"patronymic,omitempty"`
	PasswordHash     string    `json:"-"`
	Role             string    `json:"role"`
	Enabled          bool      `json:"enabled"`
	AccountNonLocked bool      `json:"account_non_locked"`
	CreatedAt        time.Time `json:"created_at"`
	UpdatedAt        time.Time `json:"updated_at"`
}
