package altbackend

import (
	"context"
	"fmt"

	"github.com/sifan077/CharacterVault/internal/app/model"
	"github.com/sifan077/CharacterVault/internal/client/api"
)

// Client talks to the alternate character backend, which serves plain
// arrays under /characters.
type Client struct {
	api *api.Client
}

func New(baseURL string, opts ...api.Option) *Client {
	return &Client{api: api.New(baseURL, opts...)}
}

func (c *Client) List(ctx context.Context) api.Response[[]model.Character] {
	resp := api.Get[[]model.Character](ctx, c.api, "/characters")
	if resp.Success && resp.Data == nil {
		resp.Data = []model.Character{}
	}
	return resp
}

func (c *Client) Get(ctx context.Context, id int64) api.Response[model.Character] {
	return api.Get[model.Character](ctx, c.api, fmt.Sprintf("/characters/%d", id))
}

func (c *Client) Create(ctx context.Context, req *model.CreateCharacterRequest) api.Response[model.Character] {
	return api.Post[model.Character](ctx, c.api, "/characters", req)
}
