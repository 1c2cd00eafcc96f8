package service

import (
	"context"
	"log/slog"
	"strings"

	"github.com/splitledger/splitledger/internal/models"
	"github.com/splitledger/splitledger/internal/storage"
)

// GroupService manages users, groups and membership.
type GroupService struct {
	store storage.Store
}

// NewGroupService creates a new GroupService with the given storage
// backend.
func NewGroupService(store storage.Store) *GroupService {
	return &GroupService{store: store}
}

// CreateUser registers a new user. Email is optional.
func (s *GroupService) CreateUser(ctx context.Context, name, email string) (*models.User, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, validationErr("user name must not be empty")
	}

	user := &models.User{Name: name, Email: strings.TrimSpace(email)}
	if err := s.store.CreateUser(ctx, user); err != nil {
		return nil, &RepositoryError{Op: "CreateUser", Err: err}
	}

	slog.Info("user created", "user_id", user.ID, "name", user.Name)
	return user, nil
}

// CreateGroup creates a group, optionally with initial members. Every
// initial member must be a registered user.
func (s *GroupService) CreateGroup(ctx context.Context, name string, memberIDs []string) (*models.Group, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, validationErr("group name must not be empty")
	}
	for _, uid := range memberIDs {
		if _, err := s.store.GetUser(ctx, uid); err != nil {
			return nil, storeErr("GetUser", "user", uid, err)
		}
	}

	group := &models.Group{Name: name, Members: memberIDs}
	if err := s.store.CreateGroup(ctx, group); err != nil {
		return nil, &RepositoryError{Op: "CreateGroup", Err: err}
	}

	slog.Info("group created", "group_id", group.ID, "name", group.Name, "members", len(group.Members))
	return group, nil
}

// GetGroup retrieves a group with its member list.
func (s *GroupService) GetGroup(ctx context.Context, groupID string) (*models.Group, error) {
	group, err := s.store.GetGroup(ctx, groupID)
	if err != nil {
		return nil, storeErr("GetGroup", "group", groupID, err)
	}
	return group, nil
}

// AddMember adds a registered user to a group. Adding an existing
// member is a no-op.
func (s *GroupService) AddMember(ctx context.Context, groupID, userID string) (*models.Group, error) {
	if _, err := s.store.GetGroup(ctx, groupID); err != nil {
		return nil, storeErr("GetGroup", "group", groupID, err)
	}
	if _, err := s.store.GetUser(ctx, userID); err != nil {
		return nil, storeErr("GetUser", "user", userID, err)
	}

	if err := s.store.AddGroupMember(ctx, groupID, userID); err != nil {
		return nil, &RepositoryError{Op: "AddGroupMember", Err: err}
	}

	slog.Info("member added", "group_id", groupID, "user_id", userID)
	return s.GetGroup(ctx, groupID)
}
