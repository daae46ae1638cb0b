package rickmorty

import (
	"context"
	"fmt"
	"net/url"
	"strconv"

	"github.com/sifan077/CharacterVault/internal/app/model"
	"github.com/sifan077/CharacterVault/internal/client/api"
)

// DefaultBaseURL is the public Rick and Morty API.
const DefaultBaseURL = "https://rickandmortyapi.com/api"

// Client reads characters from the public Rick and Morty API.
type Client struct {
	api *api.Client
}

func New(baseURL string, opts ...api.Option) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	return &Client{api: api.New(baseURL, opts...)}
}

func (c *Client) GetCharacters(ctx context.Context, page int) api.Response[model.ExternalPage] {
	if page < 1 {
		page = 1
	}
	return api.Get[model.ExternalPage](ctx, c.api, "/character?page="+strconv.Itoa(page))
}

func (c *Client) GetCharacter(ctx context.Context, id int64) api.Response[model.Character] {
	return api.Get[model.Character](ctx, c.api, fmt.Sprintf("/character/%d", id))
}

// SearchCharacters filters by name. The API answers 404 when nothing matches.
func (c *Client) SearchCharacters(ctx context.Context, name string, page int) api.Response[model.ExternalPage] {
	if page < 1 {
		page = 1
	}
	q := url.Values{"name": {name}, "page": {strconv.Itoa(page)}}
	return api.Get[model.ExternalPage](ctx, c.api, "/character?"+q.Encode())
}
