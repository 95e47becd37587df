// Package repository defines the storage interfaces the service layer
// programs against. The sqlite subpackage provides the concrete
// implementation; tests substitute in-memory fakes.
package repository

import (
	"context"

	"github.com/vichithchamodya/product-catalog/internal/model"
)

// UserRepository persists user accounts. The methods carry a User suffix so
// a single store can implement both repositories side by side.
type UserRepository interface {
	// CreateUser inserts a new credential account. Returns a conflict error
	// when the email is already registered.
	CreateUser(ctx context.Context, user *model.User) error

	// GetUserByEmail looks up a credential account by email.
	GetUserByEmail(ctx context.Context, email string) (*model.User, error)

	// GetUserByID looks up any account by internal ID.
	GetUserByID(ctx context.Context, id string) (*model.User, error)

	// UpsertOAuthUser inserts or refreshes an OAuth account keyed by
	// (provider, provider_id). The user's internal ID is populated on return.
	UpsertOAuthUser(ctx context.Context, user *model.User) error
}

// ProductRepository persists catalog products. Every read and write beyond
// Create carries the owner's userID in its match condition; a product is
// only ever visible to or mutable by its owner.
type ProductRepository interface {
	Create(ctx context.Context, product *model.Product) error
	ListByUser(ctx context.Context, userID string) ([]model.Product, error)
	GetByID(ctx context.Context, id, userID string) (*model.Product, error)
	Update(ctx context.Context, product *model.Product) error
	Delete(ctx context.Context, id, userID string) error
}
