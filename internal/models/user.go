package models

import "time"

// User is an account record in the internal store.
type User struct {
	ID           string    `json:"id" badgerhold:"key"`
	Email        string    `json:"email"`
	Name         string    `json:"name"`
	PasswordHash string    `json:"-"`
	CreatedAt    time.Time `json:"created_at"`
}

// ExchangeKey is a stored exchange API credential. The secret is encrypted
// at rest (AES-256-GCM) and never serialized to clients.
type ExchangeKey struct {
	ID              string    `json:"id" badgerhold:"key"`
	UserID          string    `json:"user_id"`
	Exchange        string    `json:"exchange"` // e.g. "binance"
	Label           string    `json:"label"`
	APIKey          string    `json:"api_key"`
	EncryptedSecret string    `json:"-"`
	CreatedAt       time.Time `json:"created_at"`
}
