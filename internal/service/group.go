package service

import (
	"context"

	"github.com/pkg/errors"
	"go.uber.org/multierr"

	"github.com/omunroe-com/shiftspace/internal/domain"
	"github.com/omunroe-com/shiftspace/internal/usecase"
)

var _ usecase.GroupService = (*GroupService)(nil)

type MemberDirectory interface {
	Members(ctx context.Context, groupID string) ([]string, error)
}

// GroupService keeps a group's shared copy of a shift and feeds it to the
// members of the group.
type GroupService struct {
	engine  *usecase.ReplicationEngine
	members MemberDirectory
}

func NewGroupService(engine *usecase.ReplicationEngine, members MemberDirectory) *GroupService {
	return &GroupService{
		engine:  engine,
		members: members,
	}
}

func (s *GroupService) AddShift(ctx context.Context, groupID string, shift *domain.Shift) error {
	store := domain.Resolve(groupID, domain.RoleGroupShared)
	if err := s.engine.CopyTo(ctx, shift, store); err != nil {
		return errors.Wrap(err, "group add shift")
	}
	return s.feedMembers(ctx, groupID, store)
}

func (s *GroupService) UpdateShift(ctx context.Context, groupID string, shift *domain.Shift) error {
	store := domain.Resolve(groupID, domain.RoleGroupShared)
	if _, err := s.engine.CopyOrUpdateTo(ctx, shift, store); err != nil {
		return errors.Wrap(err, "group update shift")
	}
	return s.feedMembers(ctx, groupID, store)
}

func (s *GroupService) feedMembers(ctx context.Context, groupID string, store domain.StoreID) error {
	members, err := s.members.Members(ctx, groupID)
	if err != nil {
		return errors.Wrap(err, "group members")
	}

	var errs error
	for _, member := range members {
		feed := domain.Resolve(member, domain.RoleFeed)
		errs = multierr.Append(errs, s.engine.Replicate(ctx, store, feed))
	}
	return errs
}
