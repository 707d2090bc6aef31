package usecase

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"

	"github.com/omunroe-com/shiftspace"
	"github.com/omunroe-com/shiftspace/internal/domain"
)

var tracer = otel.Tracer("shift")

type CreateInput struct {
	Author  string
	Request shiftspace.ShiftRequest
}

type ShiftUsecase struct {
	repo        ShiftRepository
	engine      *ReplicationEngine
	publisher   *Publisher
	join        *JoinAggregator
	groups      GroupService
	comments    CommentRepository
	search      SearchGateway
	notifier    Notifier
	logger      *zap.Logger
	fanoutLimit int
	now         func() time.Time
}

func NewShiftUsecase(
	repo ShiftRepository,
	engine *ReplicationEngine,
	publisher *Publisher,
	join *JoinAggregator,
	groups GroupService,
	comments CommentRepository,
	search SearchGateway,
	notifier Notifier,
	logger *zap.Logger,
	fanoutLimit int,
) *ShiftUsecase {
	if fanoutLimit <= 0 {
		fanoutLimit = defaultFanoutLimit
	}
	return &ShiftUsecase{
		repo:        repo,
		engine:      engine,
		publisher:   publisher,
		join:        join,
		groups:      groups,
		comments:    comments,
		search:      search,
		notifier:    notifier,
		logger:      logger,
		fanoutLimit: fanoutLimit,
		now:         time.Now,
	}
}

func (uc *ShiftUsecase) Create(ctx context.Context, input CreateInput) (*domain.Shift, error) {
	ctx, span := tracer.Start(ctx, "Shift.Usecase.Create")
	defer span.End()

	req := input.Request
	switch {
	case input.Author == "":
		return nil, domain.InvalidInputError{Field: "createdBy"}
	case req.Href == "":
		return nil, domain.InvalidInputError{Field: "href"}
	case req.Space.Name == "":
		return nil, domain.InvalidInputError{Field: "space"}
	case req.Content == nil:
		return nil, domain.InvalidInputError{Field: "content"}
	}

	shift := domain.NewShift(uuid.NewString(), input.Author, uc.now())
	shift.UserName = req.UserName
	shift.Href = req.Href
	shift.Domain = shiftspace.DomainOf(req.Href)
	shift.Space = req.Space
	shift.Summary = req.Summary
	shift.Content = req.Content
	shift.CommentStream = req.CommentStream
	span.SetAttributes(attribute.String("shift", shift.ID))

	private := domain.Resolve(input.Author, domain.RolePrivate)
	if err := uc.repo.Store(ctx, private, shift.Persisted()); err != nil {
		span.RecordError(err)
		return nil, errors.Wrap(err, "failed to store shift")
	}

	feed := domain.Resolve(input.Author, domain.RoleFeed)
	if err := uc.engine.Replicate(ctx, private, feed); err != nil {
		uc.logger.Warn("feed replication failed", zap.String("shift", shift.ID), zap.Error(err))
	}

	uc.notify(ctx, domain.ShiftCreated, shift, private)
	return uc.join.JoinOne(ctx, shift, input.Author)
}

// Read returns nil without error when the shift is not visible to requester.
func (uc *ShiftUsecase) Read(ctx context.Context, id, requester string) (*domain.Shift, error) {
	ctx, span := tracer.Start(ctx, "Shift.Usecase.Read")
	defer span.End()

	candidates := []domain.StoreID{}
	if requester != "" {
		candidates = append(candidates,
			domain.Resolve(requester, domain.RolePublic),
			domain.Resolve(requester, domain.RolePrivate),
			domain.Resolve(requester, domain.RoleInbox),
		)
	}
	candidates = append(candidates, domain.GlobalPublic)

	for _, store := range candidates {
		shift, err := uc.repo.Load(ctx, store, id)
		if errors.Is(err, domain.ErrNotFound) {
			continue
		}
		if err != nil {
			span.RecordError(err)
			return nil, err
		}
		return uc.join.JoinOne(ctx, shift, requester)
	}
	return nil, nil
}

// UpdateResult carries the updated shift and the outcome of its fan-out.
type UpdateResult struct {
	Shift  *domain.Shift
	Report *domain.PublishReport
}

// Update changes content, summary and broken only; every other field is left as stored.
func (uc *ShiftUsecase) Update(ctx context.Context, id, requester string, req shiftspace.UpdateRequest) (UpdateResult, error) {
	ctx, span := tracer.Start(ctx, "Shift.Usecase.Update")
	defer span.End()

	shift, err := uc.loadOwned(ctx, id, requester)
	if err != nil {
		span.RecordError(err)
		return UpdateResult{}, err
	}

	if req.Content != nil {
		shift.Content = req.Content
	}
	if req.Summary != nil {
		shift.Summary = *req.Summary
		if shift.Content != nil {
			shift.Content["summary"] = *req.Summary
		}
	}
	if req.Broken != nil {
		shift.Broken = *req.Broken
	}
	shift.Modified = uc.now()

	canonical := shift.CanonicalStore()
	snapshot := shift.Persisted()
	if err := uc.repo.Store(ctx, canonical, snapshot); err != nil {
		span.RecordError(err)
		return UpdateResult{}, errors.Wrap(err, "failed to store shift")
	}

	report := &domain.PublishReport{}
	fo := newFanout(uc.fanoutLimit, report, uc.logger, shift.ID)
	feed := domain.Resolve(shift.CreatedBy, domain.RoleFeed)
	fo.run("replicate", string(feed), func() error { return uc.engine.Replicate(ctx, canonical, feed) })
	for _, d := range snapshot.PublishData.Dbs {
		if d.IsUser() {
			fo.run("copyOrUpdate", d.String(), func() error {
				_, err := uc.engine.CopyOrUpdateTo(ctx, snapshot, domain.StoreFor(d))
				return err
			})
		} else {
			fo.run("group.updateShift", d.String(), func() error { return uc.groups.UpdateShift(ctx, d.ID, snapshot) })
		}
	}
	if !snapshot.PublishData.Draft {
		fo.run("copyOrUpdate", string(domain.GlobalShared), func() error {
			_, err := uc.engine.CopyOrUpdateTo(ctx, snapshot, domain.GlobalShared)
			return err
		})
	}
	fo.wait()

	uc.notify(ctx, domain.ShiftUpdated, shift, canonical)

	joined, err := uc.join.JoinOne(ctx, shift, shift.CreatedBy)
	if err != nil {
		span.RecordError(err)
		return UpdateResult{}, err
	}
	return UpdateResult{Shift: joined, Report: report}, nil
}

// Delete removes the owner's public and private copies. Copies delivered
// elsewhere are left alone.
func (uc *ShiftUsecase) Delete(ctx context.Context, id, requester string) error {
	ctx, span := tracer.Start(ctx, "Shift.Usecase.Delete")
	defer span.End()

	if requester == "" {
		return domain.NotFoundError{Resource: "shift"}
	}

	var deletedFrom domain.StoreID
	for _, store := range []domain.StoreID{
		domain.Resolve(requester, domain.RolePublic),
		domain.Resolve(requester, domain.RolePrivate),
	} {
		err := uc.repo.Delete(ctx, store, id)
		if errors.Is(err, domain.ErrNotFound) {
			continue
		}
		if err != nil {
			span.RecordError(err)
			return errors.Wrap(err, "failed to delete shift")
		}
		if deletedFrom == "" {
			deletedFrom = store
		}
	}
	if deletedFrom == "" {
		return domain.NotFoundError{Resource: "shift"}
	}

	if err := uc.comments.DeleteThread(ctx, id); err != nil && !errors.Is(err, domain.ErrNotFound) {
		uc.logger.Warn("comment thread cleanup failed", zap.String("shift", id), zap.Error(err))
	}

	uc.notify(ctx, domain.ShiftDeleted, &domain.Shift{ID: id, CreatedBy: requester}, deletedFrom)
	return nil
}

func (uc *ShiftUsecase) Publish(ctx context.Context, id, requester string, input PublishInput) (*domain.Shift, *domain.PublishReport, error) {
	shift, err := uc.loadOwned(ctx, id, requester)
	if err != nil {
		return nil, nil, err
	}

	published, report, err := uc.publisher.Publish(ctx, shift, input)
	if err != nil {
		return nil, report, err
	}

	uc.notify(ctx, domain.ShiftPublished, published, published.CanonicalStore())
	return published, report, nil
}

func (uc *ShiftUsecase) Unpublish(ctx context.Context, id, requester string) (*domain.Shift, error) {
	shift, err := uc.loadOwned(ctx, id, requester)
	if err != nil {
		return nil, err
	}
	return uc.publisher.Unpublish(ctx, shift)
}

// loadOwned finds the canonical copy of a shift owned by requester. The public
// copy wins over a private one left behind by an interrupted publish, and the
// leftover is removed.
func (uc *ShiftUsecase) loadOwned(ctx context.Context, id, requester string) (*domain.Shift, error) {
	if requester == "" {
		return nil, domain.NotFoundError{Resource: "shift"}
	}
	private := domain.Resolve(requester, domain.RolePrivate)
	for _, store := range []domain.StoreID{
		domain.Resolve(requester, domain.RolePublic),
		private,
	} {
		shift, err := uc.repo.Load(ctx, store, id)
		if errors.Is(err, domain.ErrNotFound) {
			continue
		}
		if err != nil {
			return nil, err
		}
		if store != private {
			uc.dropStalePrivate(ctx, id, private)
		}
		return shift, nil
	}
	return nil, domain.NotFoundError{Resource: "shift"}
}

func (uc *ShiftUsecase) dropStalePrivate(ctx context.Context, id string, private domain.StoreID) {
	found, err := uc.repo.Exists(ctx, private, []string{id})
	if err == nil && !found[id] {
		return
	}
	if err == nil {
		err = uc.engine.Remove(ctx, id, private)
	}
	if err != nil {
		uc.logger.Warn("stale private copy not removed", zap.String("shift", id), zap.Error(err))
	}
}

func (uc *ShiftUsecase) notify(ctx context.Context, kind domain.ShiftEventKind, shift *domain.Shift, store domain.StoreID) {
	event := domain.ShiftEvent{
		Kind:      kind,
		ShiftID:   shift.ID,
		CreatedBy: shift.CreatedBy,
		Store:     store,
		At:        uc.now(),
	}
	if err := uc.notifier.Notify(ctx, event); err != nil {
		uc.logger.Warn("shift event not delivered", zap.String("shift", shift.ID), zap.String("kind", string(kind)), zap.Error(err))
	}
}
