package platform

import (
	"context"
	"net/http"
	"net/url"
)

func (c *Client) ListAssistants(ctx context.Context) ([]Assistant, error) {
	var out []Assistant
	if err := c.do(ctx, http.MethodGet, "/assistant", nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Client) GetAssistant(ctx context.Context, id string) (Assistant, error) {
	var out Assistant
	if err := c.do(ctx, http.MethodGet, "/assistant/"+url.PathEscape(id), nil, &out); err != nil {
		return Assistant{}, err
	}
	return out, nil
}

func (c *Client) CreateAssistant(ctx context.Context, req AssistantRequest) (Assistant, error) {
	var out Assistant
	if err := c.do(ctx, http.MethodPost, "/assistant", req, &out); err != nil {
		return Assistant{}, err
	}
	return out, nil
}

func (c *Client) UpdateAssistant(ctx context.Context, id string, req AssistantRequest) (Assistant, error) {
	var out Assistant
	if err := c.do(ctx, http.MethodPatch, "/assistant/"+url.PathEscape(id), req, &out); err != nil {
		return Assistant{}, err
	}
	return out, nil
}

func (c *Client) DeleteAssistant(ctx context.Context, id string) error {
	return c.do(ctx, http.MethodDelete, "/assistant/"+url.PathEscape(id), nil, nil)
}
