package api

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
)

const itemsPath = "/items"

func itemPath(id string) string {
	return itemsPath + "/" + url.PathEscape(id)
}

// ListItems fetches all items.
func (c *Client) ListItems(ctx context.Context) (*Response, error) {
	return c.Request(ctx, itemsPath, RequestOptions{})
}

// GetItem fetches one item.
func (c *Client) GetItem(ctx context.Context, id string) (*Response, error) {
	return c.Request(ctx, itemPath(id), RequestOptions{})
}

// CreateItem sends item, serialized as JSON, as a new item.
func (c *Client) CreateItem(ctx context.Context, item any) (*Response, error) {
	body, err := json.Marshal(item)
	if err != nil {
		return nil, fmt.Errorf("encoding item: %w", err)
	}
	return c.Request(ctx, itemsPath, RequestOptions{Method: http.MethodPost, Body: body})
}

// UpdateItem replaces the item with the given id.
func (c *Client) UpdateItem(ctx context.Context, id string, item any) (*Response, error) {
	body, err := json.Marshal(item)
	if err != nil {
		return nil, fmt.Errorf("encoding item: %w", err)
	}
	return c.Request(ctx, itemPath(id), RequestOptions{Method: http.MethodPut, Body: body})
}

// DeleteItem deletes the item with the given id.
func (c *Client) DeleteItem(ctx context.Context, id string) (*Response, error) {
	return c.Request(ctx, itemPath(id), RequestOptions{Method: http.MethodDelete})
}
