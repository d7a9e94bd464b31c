package models

// Known user roles.
const (
	RoleAdmin = "admin"
	RoleUser  = "user"
)

type User struct {
	ID           int    `json:"id"`
	Username     string `json:"username"`
	Email        string `json:"email"`
	FirstName    string `json:"first_name,omitempty"`
	Role         string `json:"role"`
	PasswordHash string `json:"-"` // don’t expose hash
}
