package gateway

import (
	"context"

	"github.com/omunroe-com/shiftspace/client"
	"github.com/omunroe-com/shiftspace/internal/usecase"
)

var _ usecase.SearchGateway = (*SearchGateway)(nil)

type SearchGateway struct {
	client *client.Client
}

func NewSearchGateway(cl *client.Client) *SearchGateway {
	return &SearchGateway{client: cl}
}

func (g *SearchGateway) Search(ctx context.Context, query string, start, limit int) ([]string, error) {
	result, err := g.client.Search(ctx, query, start, limit)
	if err != nil {
		return nil, err
	}
	return result.IDs, nil
}
