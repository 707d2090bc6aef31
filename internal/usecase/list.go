package usecase

import (
	"context"
	"fmt"
	"strings"

	"github.com/pkg/errors"

	"github.com/omunroe-com/shiftspace/internal/domain"
)

const (
	defaultListLimit = 25
	maxListLimit     = 100
)

type ListInput struct {
	Href      string
	Requester string
	Start     int
	Limit     int
}

// BuildListQuery returns the search query for shifts on href visible to requester:
// published public shifts, the requester's own shifts, and shifts delivered to
// the requester's inbox.
func BuildListQuery(href, requester string) string {
	var b strings.Builder
	fmt.Fprintf(&b, "href:%q AND ((draft:false AND private:false)", href)
	if requester != "" {
		fmt.Fprintf(&b, " OR createdBy:%q", requester)
		fmt.Fprintf(&b, " OR (draft:false AND dbs:%q)", "user/"+requester)
	}
	b.WriteString(")")
	return b.String()
}

// List pages through shifts on a page. Bodies are fetched in bulk from the
// shared aggregate store, falling back to the requester's private store for
// shifts that were never published.
func (uc *ShiftUsecase) List(ctx context.Context, input ListInput) ([]*domain.Shift, error) {
	ctx, span := tracer.Start(ctx, "Shift.Usecase.List")
	defer span.End()

	if input.Href == "" {
		return nil, domain.InvalidInputError{Field: "href"}
	}
	limit := input.Limit
	if limit <= 0 {
		limit = defaultListLimit
	}
	if limit > maxListLimit {
		limit = maxListLimit
	}
	start := input.Start
	if start < 0 {
		start = 0
	}

	ids, err := uc.search.Search(ctx, BuildListQuery(input.Href, input.Requester), start, limit)
	if err != nil {
		span.RecordError(err)
		return nil, errors.Wrap(err, "search failed")
	}
	if len(ids) == 0 {
		return []*domain.Shift{}, nil
	}

	found := make(map[string]*domain.Shift, len(ids))
	shared, err := uc.repo.LoadMany(ctx, domain.GlobalShared, ids)
	if err != nil {
		span.RecordError(err)
		return nil, err
	}
	for _, s := range shared {
		found[s.ID] = s
	}

	missing := []string{}
	for _, id := range ids {
		if _, ok := found[id]; !ok {
			missing = append(missing, id)
		}
	}
	if len(missing) > 0 && input.Requester != "" {
		own, err := uc.repo.LoadMany(ctx, domain.Resolve(input.Requester, domain.RolePrivate), missing)
		if err != nil {
			span.RecordError(err)
			return nil, err
		}
		for _, s := range own {
			found[s.ID] = s
		}
	}

	shifts := make([]*domain.Shift, 0, len(ids))
	for _, id := range ids {
		if s, ok := found[id]; ok {
			shifts = append(shifts, s)
		}
	}
	return uc.join.Join(ctx, shifts, input.Requester)
}
