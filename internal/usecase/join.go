package usecase

import (
	"context"

	"github.com/pkg/errors"
	"golang.org/x/sync/errgroup"

	"github.com/omunroe-com/shiftspace"
	"github.com/omunroe-com/shiftspace/internal/domain"
	"github.com/omunroe-com/shiftspace/internal/utils"
)

// JoinAggregator attaches favorite, comment and author data to shifts with a
// fixed number of batched lookups per call.
type JoinAggregator struct {
	favorites FavoriteRepository
	comments  CommentRepository
	actors    ActorDirectory
}

func NewJoinAggregator(favorites FavoriteRepository, comments CommentRepository, actors ActorDirectory) *JoinAggregator {
	return &JoinAggregator{
		favorites: favorites,
		comments:  comments,
		actors:    actors,
	}
}

// JoinOne is Join for a single shift. A nil shift stays nil.
func (j *JoinAggregator) JoinOne(ctx context.Context, shift *domain.Shift, requester string) (*domain.Shift, error) {
	if shift == nil {
		return nil, nil
	}
	joined, err := j.Join(ctx, []*domain.Shift{shift}, requester)
	if err != nil {
		return nil, err
	}
	return joined[0], nil
}

// Join fills the joined fields of every shift in place and returns the same
// slice. The four lookups run concurrently.
func (j *JoinAggregator) Join(ctx context.Context, shifts []*domain.Shift, requester string) ([]*domain.Shift, error) {
	ctx, span := tracer.Start(ctx, "Shift.Usecase.Join")
	defer span.End()

	if len(shifts) == 0 {
		return shifts, nil
	}

	ids := make([]string, len(shifts))
	authors := utils.NewOrderedSet[string]()
	for i, s := range shifts {
		ids[i] = s.ID
		authors.Add(s.CreatedBy)
	}

	var (
		favorited     map[string]bool
		favCounts     map[string]int64
		commentCounts map[string]int64
		profiles      map[string]domain.Profile
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		favorited, err = j.favorites.Exists(gctx, requester, ids)
		return errors.Wrap(err, "favorite lookup failed")
	})
	g.Go(func() error {
		var err error
		favCounts, err = j.favorites.CountByShift(gctx, ids)
		return errors.Wrap(err, "favorite count failed")
	})
	g.Go(func() error {
		var err error
		commentCounts, err = j.comments.CountByShift(gctx, ids)
		return errors.Wrap(err, "comment count failed")
	})
	g.Go(func() error {
		var err error
		profiles, err = j.actors.Profiles(gctx, authors.Items())
		return errors.Wrap(err, "author lookup failed")
	})
	if err := g.Wait(); err != nil {
		span.RecordError(err)
		return nil, err
	}

	for _, s := range shifts {
		s.Favorite = favorited[s.ID]
		s.FavoriteCount = favCounts[s.ID]
		s.CommentCount = commentCounts[s.ID]
		s.Gravatar = shiftspace.DefaultGravatar
		if p, ok := profiles[s.CreatedBy]; ok && p.Gravatar != "" {
			s.Gravatar = p.Gravatar
		}
	}

	return shifts, nil
}
