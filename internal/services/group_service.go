package services

import (
	"context"

	"github.com/google/uuid"

	"campus-chat/internal/store"
	"campus-chat/models"
)

// GroupService is the group-membership collaborator. The chat core consults
// it to decide whether a joinGroup should be honored.
type GroupService struct {
	groups store.GroupStore
}

func NewGroupService(groups store.GroupStore) *GroupService {
	return &GroupService{groups: groups}
}

func (s *GroupService) Create(ctx context.Context, name, creatorID string) (*models.Group, error) {
	group := &models.Group{ID: uuid.New().String(), Name: name}
	if err := s.groups.CreateGroup(ctx, group); err != nil {
		return nil, err
	}
	if err := s.groups.AddMember(ctx, group.ID, creatorID); err != nil {
		return nil, err
	}
	return group, nil
}

func (s *GroupService) List(ctx context.Context) ([]models.Group, error) {
	return s.groups.ListGroups(ctx)
}

func (s *GroupService) AddMember(ctx context.Context, groupID, userID string) error {
	if _, err := s.groups.GetGroup(ctx, groupID); err != nil {
		return err
	}
	return s.groups.AddMember(ctx, groupID, userID)
}

// CanJoin reports whether a user may subscribe to a group room.
func (s *GroupService) CanJoin(ctx context.Context, groupID, userID string) (bool, error) {
	return s.groups.IsMember(ctx, groupID, userID)
}
