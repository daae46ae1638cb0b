package collection

import (
	"context"
	"fmt"
	"net/url"
	"strconv"

	"github.com/sifan077/CharacterVault/internal/app/model"
	"github.com/sifan077/CharacterVault/internal/client/api"
)

const (
	basePath = "/collection"
	// maxPages bounds ListAll against a server that always reports hasNext.
	maxPages = 1000
)

// Client talks to the local character collection service.
type Client struct {
	api *api.Client
}

func New(baseURL string, opts ...api.Option) *Client {
	return &Client{api: api.New(baseURL, opts...)}
}

// List fetches one page. Zero page or limit leaves the server default in place.
func (c *Client) List(ctx context.Context, page, limit int) api.Response[model.CollectionPage] {
	q := url.Values{}
	if page > 0 {
		q.Set("page", strconv.Itoa(page))
	}
	if limit > 0 {
		q.Set("limit", strconv.Itoa(limit))
	}
	endpoint := basePath
	if len(q) > 0 {
		endpoint += "?" + q.Encode()
	}
	return api.Get[model.CollectionPage](ctx, c.api, endpoint)
}

// ListAll walks every page at the maximum page size.
func (c *Client) ListAll(ctx context.Context) ([]model.Character, error) {
	var all []model.Character
	for page := 1; page <= maxPages; page++ {
		resp := c.List(ctx, page, 100)
		data, err := resp.Unwrap()
		if err != nil {
			return nil, fmt.Errorf("list collection page %d: %w", page, err)
		}
		all = append(all, data.Results...)
		if !data.Info.HasNext {
			break
		}
	}
	if all == nil {
		all = []model.Character{}
	}
	return all, nil
}

func (c *Client) Get(ctx context.Context, id int64) api.Response[model.Character] {
	return api.Get[model.Character](ctx, c.api, fmt.Sprintf("%s/%d", basePath, id))
}

func (c *Client) Create(ctx context.Context, req *model.CreateCharacterRequest) api.Response[model.Character] {
	return api.Post[model.Character](ctx, c.api, basePath, req)
}
