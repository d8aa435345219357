package domain

import "time"

// User is a registered account. Email is the unique, case-sensitive login
// key. PasswordHash is an opaque bcrypt credential and never leaves the
// server.
type User struct {
	ID           int64     `json:"id"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"`
	CreatedAt    time.Time `json:"created_at"`
}
