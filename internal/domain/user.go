package domain

import "time"

// User is a registered credential holder. Users are immutable once created.
type User struct {
	ID           string
	Email        string
	PasswordHash string
	CreatedAt    time.Time
}
