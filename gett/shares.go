package gett

import (
	"context"
	"net/http"
	"strconv"
)

type listOptions struct {
	limit int
	skip  int
}

// ListOption configures a share listing.
type ListOption func(*listOptions)

// WithLimit caps the number of shares returned. Values <= 0 are ignored.
func WithLimit(limit int) ListOption {
	return func(o *listOptions) {
		o.limit = limit
	}
}

// WithSkip skips the first n shares. Values <= 0 are ignored.
func WithSkip(skip int) ListOption {
	return func(o *listOptions) {
		o.skip = skip
	}
}

// GetShares returns the user's shares keyed by share name.
func (c *Client) GetShares(ctx context.Context, opts ...ListOption) (map[string]*Share, error) {
	shares, err := c.GetSharesList(ctx, opts...)
	if err != nil {
		return nil, err
	}

	result := make(map[string]*Share, len(shares))
	for _, s := range shares {
		result[s.Name] = s
	}
	return result, nil
}

// GetSharesList returns the user's shares in the order Ge.tt lists them.
func (c *Client) GetSharesList(ctx context.Context, opts ...ListOption) ([]*Share, error) {
	var o listOptions
	for _, opt := range opts {
		opt(&o)
	}

	req, err := c.authedRequest(ctx)
	if err != nil {
		return nil, err
	}
	if o.limit > 0 {
		req.SetQueryParam("limit", strconv.Itoa(o.limit))
	}
	if o.skip > 0 {
		req.SetQueryParam("skip", strconv.Itoa(o.skip))
	}

	var result []shareJSON
	if err := c.execute("list shares", req, http.MethodGet, "/shares", &result); err != nil {
		return nil, err
	}

	shares := make([]*Share, 0, len(result))
	for _, sj := range result {
		shares = append(shares, c.newShare(sj))
	}
	return shares, nil
}

// GetShare fetches a single share with its files.
func (c *Client) GetShare(ctx context.Context, name string) (*Share, error) {
	if name == "" {
		return nil, &ConfigurationError{Param: "sharename", Reason: "must not be empty"}
	}

	req, err := c.authedRequest(ctx)
	if err != nil {
		return nil, err
	}
	req.SetPathParam("sharename", name)

	var result shareJSON
	if err := c.execute("get share", req, http.MethodGet, "/shares/{sharename}", &result); err != nil {
		return nil, err
	}
	return c.newShare(result), nil
}

// CreateShare creates an empty share. title may be empty.
func (c *Client) CreateShare(ctx context.Context, title string) (*Share, error) {
	req, err := c.authedRequest(ctx)
	if err != nil {
		return nil, err
	}
	body := map[string]string{}
	if title != "" {
		body["title"] = title
	}
	req.SetBody(body)

	var result shareJSON
	if err := c.execute("create share", req, http.MethodPost, "/shares/create", &result); err != nil {
		return nil, err
	}
	return c.newShare(result), nil
}

// UpdateShare changes the title of a share and returns the updated share.
func (c *Client) UpdateShare(ctx context.Context, name, title string) (*Share, error) {
	if name == "" {
		return nil, &ConfigurationError{Param: "sharename", Reason: "must not be empty"}
	}

	req, err := c.authedRequest(ctx)
	if err != nil {
		return nil, err
	}
	req.SetPathParam("sharename", name).SetBody(map[string]string{"title": title})

	var result shareJSON
	if err := c.execute("update share", req, http.MethodPost, "/shares/{sharename}/update", &result); err != nil {
		return nil, err
	}
	return c.newShare(result), nil
}

// DestroyShare deletes a share and every file in it.
func (c *Client) DestroyShare(ctx context.Context, name string) error {
	if name == "" {
		return &ConfigurationError{Param: "sharename", Reason: "must not be empty"}
	}

	req, err := c.authedRequest(ctx)
	if err != nil {
		return err
	}
	req.SetPathParam("sharename", name)

	return c.execute("destroy share", req, http.MethodPost, "/shares/{sharename}/destroy", nil)
}
