package store

import (
	"context"
	"errors"

	"campus-chat/models"
)

// ErrNotFound is returned when a referenced row does not exist.
var ErrNotFound = errors.New("not found")

// MessageStore is the durable record of every message and the single source
// of truth. A message only exists once Insert has returned nil.
type MessageStore interface {
	// Insert durably writes msg and fills in its assigned ID and CreatedAt.
	Insert(ctx context.Context, msg *models.Message) error
	// Count returns the number of messages in the referenced history.
	Count(ctx context.Context, ref models.RoomRef) (int64, error)
	// Messages returns up to limit messages newest-first, skipping offset
	// newest ones. Callers reverse the slice for display order.
	Messages(ctx context.Context, ref models.RoomRef, limit, offset int) ([]models.Message, error)
}

// UserStore backs the identity collaborator.
type UserStore interface {
	CreateUser(ctx context.Context, user *models.User) error
	GetUserByUsername(ctx context.Context, username string) (*models.User, error)
	ListUsers(ctx context.Context) ([]models.User, error)
}

// GroupStore backs the group-membership collaborator that gates joinGroup
// and group sends.
type GroupStore interface {
	CreateGroup(ctx context.Context, group *models.Group) error
	GetGroup(ctx context.Context, id string) (*models.Group, error)
	ListGroups(ctx context.Context) ([]models.Group, error)
	AddMember(ctx context.Context, groupID, userID string) error
	IsMember(ctx context.Context, groupID, userID string) (bool, error)
}
