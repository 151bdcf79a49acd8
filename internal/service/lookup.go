package service

import (
	"context"

	"user_auth/internal/repository"
	"user_auth/internal/validator"
)

type storeLookup struct {
	store repository.Store
}

// NewLookup exposes the store's uniqueness checks to the validator
func NewLookup(store repository.Store) validator.Lookup {
	return &storeLookup{store: store}
}

func (l *storeLookup) EmailExists(ctx context.Context, email string) (bool, error) {
	return l.store.Users().EmailExists(ctx, email)
}

func (l *storeLookup) PhoneExists(ctx context.Context, phone string, excludeProfileID int64) (bool, error) {
	return l.store.Profiles().PhoneExists(ctx, phone, excludeProfileID)
}
