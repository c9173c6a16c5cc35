package platform

import (
	"context"
	"net/http"
)

func (c *Client) ListPhoneNumbers(ctx context.Context) ([]PhoneNumber, error) {
	var out []PhoneNumber
	if err := c.do(ctx, http.MethodGet, "/phone-number", nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}
