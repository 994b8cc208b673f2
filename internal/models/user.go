package models

import (
	"time"
)

// UserDB represents a user record in the database
type UserDB struct {
	Username    string     `json:"username" db:"username"`           // Primary key
	Password    string     `json:"-" db:"password"`                  // Bcrypt hash, never serialized
	FirstName   string     `json:"first_name" db:"first_name"`       // First name
	LastName    string     `json:"last_name" db:"last_name"`         // Last name
	Phone       string     `json:"phone" db:"phone"`                 // Phone number
	JoinAt      time.Time  `json:"join_at" db:"join_at"`             // Registration timestamp
	LastLoginAt *time.Time `json:"last_login_at" db:"last_login_at"` // Last successful login, nil until first login
}

// Profile returns the public profile of the user record.
func (u *UserDB) Profile() *User {
	return &User{
		Username:    u.Username,
		FirstName:   u.FirstName,
		LastName:    u.LastName,
		Phone:       u.Phone,
		JoinAt:      u.JoinAt,
		LastLoginAt: u.LastLoginAt,
	}
}

// User is the public profile of a registered user
// swagger:model User
type User struct {
	// Username
	// example: alice
	Username string `json:"username"`

	// First name
	// example: Alice
	FirstName string `json:"first_name"`

	// Last name
	// example: Liddell
	LastName string `json:"last_name"`

	// Phone
	// example: +15550100
	Phone string `json:"phone"`

	// Registration timestamp
	JoinAt time.Time `json:"join_at"`

	// Last successful login, null until the first login
	LastLoginAt *time.Time `json:"last_login_at"`
}

// UserBasic holds the profile fields embedded into message views and user listings
// swagger:model UserBasic
type UserBasic struct {
	Username  string `json:"username" db:"username"`
	FirstName string `json:"first_name" db:"first_name"`
	LastName  string `json:"last_name" db:"last_name"`
	Phone     string `json:"phone" db:"phone"`
}
