package domain

import "time"

// Identity is the caller proven by a verified token. It lives for a single request.
type Identity struct {
	SubjectID string
	Email     string
}

// Token describes an issued access token.
type Token struct {
	Value     string
	SubjectID string
	Email     string
	IssuedAt  time.Time
	ExpiresAt time.Time
}
