package domain

import "time"

// User is the credential store record.
type User struct {
	ID           string
	Username     string
	PasswordHash string
	CreatedAt    time.Time
}
