package user

import "time"

type Role string

const (
	RoleCustomer Role = "customer"
	RoleAdmin    Role = "admin"
)

type User struct {
	ID        uint
	Email     string
	Password  string
	Role      Role
	CreatedAt time.Time
}

// AuthResult is returned by Register and Login.
type AuthResult struct {
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expires_at"`
	UserID    uint      `json:"user_id"`
	Email     string    `json:"email"`
	Role      Role      `json:"role"`
}
