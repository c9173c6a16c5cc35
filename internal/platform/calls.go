package platform

import (
	"context"
	"net/http"
	"net/url"
)

// GetCall fetches the platform's current snapshot of one call.
// Returns ErrNotFound (wrapped) when the platform does not know the id.
func (c *Client) GetCall(ctx context.Context, id string) (CallSnapshot, error) {
	var out CallSnapshot
	if err := c.do(ctx, http.MethodGet, "/call/"+url.PathEscape(id), nil, &out); err != nil {
		return CallSnapshot{}, err
	}
	return out, nil
}
