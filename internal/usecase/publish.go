package usecase

import (
	"context"
	"time"

	"github.com/pkg/errors"
	"go.uber.org/zap"

	"github.com/omunroe-com/shiftspace"
	"github.com/omunroe-com/shiftspace/internal/domain"
	"github.com/omunroe-com/shiftspace/internal/utils"
)

const defaultFanoutLimit = 8

// PublishInput is a parsed publish request. DbsSet is false when the request
// did not mention destinations at all, in which case the current set is kept.
type PublishInput struct {
	Private *bool
	Dbs     []shiftspace.Destination
	DbsSet  bool
}

// Publisher drives the visibility state machine of a shift:
// draft/private -> published/private (re-enterable) -> published/public.
type Publisher struct {
	engine      *ReplicationEngine
	groups      GroupService
	actors      ActorDirectory
	join        *JoinAggregator
	logger      *zap.Logger
	fanoutLimit int
}

func NewPublisher(
	engine *ReplicationEngine,
	groups GroupService,
	actors ActorDirectory,
	join *JoinAggregator,
	logger *zap.Logger,
	fanoutLimit int,
) *Publisher {
	if fanoutLimit <= 0 {
		fanoutLimit = defaultFanoutLimit
	}
	return &Publisher{
		engine:      engine,
		groups:      groups,
		actors:      actors,
		join:        join,
		logger:      logger,
		fanoutLimit: fanoutLimit,
	}
}

// Publish applies input to shift and distributes copies. The shift passed in is
// not modified; the published state is returned. Only the canonical write can
// fail the call, fan-out failures end up in the report.
func (p *Publisher) Publish(ctx context.Context, shift *domain.Shift, input PublishInput) (*domain.Shift, *domain.PublishReport, error) {
	ctx, span := tracer.Start(ctx, "Shift.Usecase.Publish")
	defer span.End()

	report := &domain.PublishReport{}
	owner := shift.CreatedBy
	privateStore := domain.Resolve(owner, domain.RolePrivate)
	publicStore := domain.Resolve(owner, domain.RolePublic)

	isPrivate := shift.PublishData.Private
	if input.Private != nil {
		isPrivate = *input.Private
	}
	if isPrivate && shift.IsPublic() {
		span.RecordError(domain.ErrUnsupportedTransition)
		return nil, nil, errors.Wrap(domain.ErrUnsupportedTransition, "public shifts cannot become private")
	}

	prevDbs := utils.NewOrderedSet(shift.PublishData.Dbs...)
	requested := prevDbs
	if input.DbsSet {
		requested = utils.NewOrderedSet(input.Dbs...)
	}

	nextDbs, err := p.authorize(ctx, owner, requested, report)
	if err != nil {
		span.RecordError(err)
		return nil, nil, err
	}

	next := shift.Clone()
	next.PublishData.Private = isPrivate
	next.PublishData.Draft = false
	if next.PublishData.PublishTime == nil {
		now := time.Now()
		next.PublishData.PublishTime = &now
	}
	next.PublishData.Dbs = nextDbs.Items()

	// canonical write, fatal on failure
	firstPublic := !isPrivate && !shift.IsPublic()
	canonical := privateStore
	if !isPrivate {
		canonical = publicStore
	}
	if _, err := p.engine.CopyOrUpdateTo(ctx, next.Persisted(), canonical); err != nil {
		span.RecordError(err)
		return nil, nil, errors.Wrap(err, "failed to store canonical copy")
	}

	snapshot := next.Persisted()
	fo := newFanout(p.fanoutLimit, report, p.logger, snapshot.ID)

	followers, err := p.actors.Followers(ctx, owner)
	if err != nil {
		fo.fail("followers", owner, err)
	}

	for _, d := range nextDbs.Items() {
		existing := prevDbs.Has(d)
		switch {
		case d.IsUser() && existing:
			fo.run("updateIn", d.String(), func() error { return p.engine.UpdateIn(ctx, snapshot, domain.StoreFor(d)) })
		case d.IsUser():
			fo.run("copyTo", d.String(), func() error { return p.engine.CopyTo(ctx, snapshot, domain.StoreFor(d)) })
		case existing:
			fo.run("group.updateShift", d.String(), func() error { return p.groups.UpdateShift(ctx, d.ID, snapshot) })
		default:
			fo.run("group.addShift", d.String(), func() error { return p.groups.AddShift(ctx, d.ID, snapshot) })
		}
	}

	// destinations left out of an explicit set keep their copies and still get the new state
	if input.DbsSet {
		for _, d := range prevDbs.Difference(nextDbs) {
			if d.IsUser() {
				fo.run("updateIn", d.String(), func() error { return p.engine.UpdateIn(ctx, snapshot, domain.StoreFor(d)) })
			} else {
				fo.run("group.updateShift", d.String(), func() error { return p.groups.UpdateShift(ctx, d.ID, snapshot) })
			}
		}
	}

	if firstPublic {
		fo.run("remove", string(privateStore), func() error { return p.engine.Remove(ctx, snapshot.ID, privateStore) })
		fo.run("replicate", string(domain.GlobalPublic), func() error { return p.engine.Replicate(ctx, publicStore, domain.GlobalPublic) })
	}
	feed := domain.Resolve(owner, domain.RoleFeed)
	fo.run("replicate", string(feed), func() error { return p.engine.Replicate(ctx, next.CanonicalStore(), feed) })

	for _, follower := range followers {
		target := domain.Resolve(follower, domain.RoleFeed)
		fo.run("replicate", string(target), func() error { return p.engine.Replicate(ctx, publicStore, target) })
	}
	fo.run("copyOrUpdate", string(domain.GlobalShared), func() error {
		_, err := p.engine.CopyOrUpdateTo(ctx, snapshot, domain.GlobalShared)
		return err
	})

	fo.wait()

	joined, err := p.join.JoinOne(ctx, next, owner)
	if err != nil {
		span.RecordError(err)
		return nil, report, err
	}
	return joined, report, nil
}

// Unpublish is not supported; withdrawing a published shift has no defined semantics.
func (p *Publisher) Unpublish(ctx context.Context, shift *domain.Shift) (*domain.Shift, error) {
	return nil, domain.ErrUnsupportedTransition
}

// authorize drops requested groups the owner cannot write to. User destinations
// always pass.
func (p *Publisher) authorize(
	ctx context.Context,
	owner string,
	requested *utils.OrderedSet[shiftspace.Destination],
	report *domain.PublishReport,
) (*utils.OrderedSet[shiftspace.Destination], error) {
	groups := requested.Filter(shiftspace.Destination.IsGroup)
	if len(groups) == 0 {
		return requested, nil
	}

	writable, err := p.actors.WritableGroups(ctx, owner)
	if err != nil {
		return nil, errors.Wrap(err, "failed to resolve writable groups")
	}
	permitted := utils.NewOrderedSet(requested.Filter(shiftspace.Destination.IsUser)...)
	for _, id := range writable {
		permitted.Add(shiftspace.GroupDestination(id))
	}

	for _, d := range requested.Difference(permitted) {
		report.Drop(d, domain.DropUnauthorized)
	}
	next := utils.NewOrderedSet(requested.Intersect(permitted)...)
	return next, nil
}
