// Package internaldb implements InternalStore using BadgerHold.
// It manages user accounts and system-level KV.
package internaldb

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/timshannon/badgerhold/v4"

	"github.com/bobmcallan/coinfolio/internal/common"
	"github.com/bobmcallan/coinfolio/internal/models"
)

// Store implements interfaces.InternalStore using BadgerHold.
type Store struct {
	db     *badgerhold.Store
	logger *common.Logger
}

// systemKV is a system-level key-value record.
type systemKV struct {
	Key      string `badgerhold:"key"`
	Value    string
	Version  int
	DateTime time.Time
}

// NewStore creates a new InternalStore backed by BadgerHold.
func NewStore(logger *common.Logger, path string) (*Store, error) {
	if err := os.MkdirAll(path, 0755); err != nil {
		return nil, fmt.Errorf("failed to create internal db path %s: %w", path, err)
	}
	opts := badgerhold.DefaultOptions
	opts.Dir = path
	opts.ValueDir = path
	opts.Logger = nil
	db, err := badgerhold.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("failed to open internal db at %s: %w", path, err)
	}
	logger.Info().Str("path", path).Msg("InternalDB opened")
	return &Store{db: db, logger: logger}, nil
}

// --- User accounts ---

func (s *Store) GetUser(_ context.Context, userID string) (*models.User, error) {
	var user models.User
	if err := s.db.Get(userID, &user); err != nil {
		if err == badgerhold.ErrNotFound {
			return nil, fmt.Errorf("user '%s' not found", userID)
		}
		return nil, fmt.Errorf("failed to get user '%s': %w", userID, err)
	}
	return &user, nil
}

func (s *Store) GetUserByEmail(_ context.Context, email string) (*models.User, error) {
	var users []models.User
	if err := s.db.Find(&users, badgerhold.Where("Email").Eq(email)); err != nil {
		return nil, fmt.Errorf("failed to find user by email: %w", err)
	}
	if len(users) == 0 {
		return nil, fmt.Errorf("user with email '%s' not found", email)
	}
	return &users[0], nil
}

func (s *Store) SaveUser(_ context.Context, user *models.User) error {
	if user.CreatedAt.IsZero() {
		user.CreatedAt = time.Now()
	}
	if err := s.db.Upsert(user.ID, user); err != nil {
		return fmt.Errorf("failed to save user '%s': %w", user.ID, err)
	}
	s.logger.Debug().Str("user_id", user.ID).Msg("User saved")
	return nil
}

func (s *Store) DeleteUser(_ context.Context, userID string) error {
	if err := s.db.Delete(userID, models.User{}); err != nil && err != badgerhold.ErrNotFound {
		return fmt.Errorf("failed to delete user '%s': %w", userID, err)
	}
	s.logger.Debug().Str("user_id", userID).Msg("User deleted")
	return nil
}

func (s *Store) ListUserIDs(_ context.Context) ([]string, error) {
	var users []models.User
	if err := s.db.Find(&users, nil); err != nil {
		return nil, fmt.Errorf("failed to list users: %w", err)
	}
	ids := make([]string, len(users))
	for i, u := range users {
		ids[i] = u.ID
	}
	return ids, nil
}

// --- System key-value ---

func (s *Store) GetSystemKV(_ context.Context, key string) (string, error) {
	var kv systemKV
	if err := s.db.Get(key, &kv); err != nil {
		if err == badgerhold.ErrNotFound {
			return "", nil
		}
		return "", fmt.Errorf("failed to get system kv '%s': %w", key, err)
	}
	return kv.Value, nil
}

func (s *Store) SetSystemKV(_ context.Context, key, value string) error {
	version := 1
	var existing systemKV
	if err := s.db.Get(key, &existing); err == nil {
		version = existing.Version + 1
	}
	kv := &systemKV{
		Key:      key,
		Value:    value,
		Version:  version,
		DateTime: time.Now(),
	}
	if err := s.db.Upsert(key, kv); err != nil {
		return fmt.Errorf("failed to set system kv '%s': %w", key, err)
	}
	return nil
}

// Close shuts down the BadgerHold database.
func (s *Store) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}
