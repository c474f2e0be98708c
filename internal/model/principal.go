package model

import "github.com/google/uuid"

// Principal is the authenticated caller extracted from the bearer token.
type Principal struct {
	UserID uuid.UUID
	Email  string
}
