package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-resty/resty/v2"
	"github.com/mattn/go-runewidth"
	"github.com/tidwall/gjson"

	"github.com/abelbrown/stockroom/internal/logging"
)

// CSRFToken fetches a token from the companion csrf endpoint.
func (c *Client) CSRFToken(ctx context.Context) (string, error) {
	path := resourcePath("csrf")
	body, err := c.get(ctx, path)
	if err != nil {
		return "", err
	}
	tok := gjson.GetBytes(body, "csrfToken")
	if tok.Type != gjson.String || tok.Str == "" {
		return "", &FormatError{Endpoint: path, Reason: "missing csrfToken"}
	}
	return tok.Str, nil
}

type batchDeleteRequest struct {
	ItemIDs []any `json:"item_ids"`
}

// BatchDelete removes ids from the collection at endpoint. Numeric ids are
// sent as JSON numbers. csrf is sent as X-CSRFToken when non-empty.
func (c *Client) BatchDelete(ctx context.Context, endpoint string, ids []string, csrf string) error {
	body := batchDeleteRequest{ItemIDs: make([]any, len(ids))}
	for i, id := range ids {
		if n, err := strconv.ParseInt(id, 10, 64); err == nil {
			body.ItemIDs[i] = n
		} else {
			body.ItemIDs[i] = id
		}
	}

	req, err := c.request(ctx)
	if err != nil {
		return &ActionError{Action: "delete", Err: err}
	}
	req.SetBody(body)
	if csrf != "" {
		req.SetHeader("X-CSRFToken", csrf)
	}

	_, err = c.mutate(ctx, req, "delete", http.MethodPost, resourcePath(endpoint, "batch-delete"))
	if err == nil {
		logging.Info("batch delete", "endpoint", endpoint, "count", len(ids))
	}
	return err
}

// Update PATCHes fields onto the record id and returns the server's reply.
func (c *Client) Update(ctx context.Context, endpoint, id string, fields map[string]any) (json.RawMessage, error) {
	req, err := c.request(ctx)
	if err != nil {
		return nil, &ActionError{Action: "edit", Err: err}
	}
	req.SetBody(fields)
	return c.mutate(ctx, req, "edit", http.MethodPatch, resourcePath(endpoint, id))
}

// Create POSTs a new record and returns the server's reply.
func (c *Client) Create(ctx context.Context, endpoint string, record any) (json.RawMessage, error) {
	req, err := c.request(ctx)
	if err != nil {
		return nil, &ActionError{Action: "create", Err: err}
	}
	req.SetBody(record)
	return c.mutate(ctx, req, "create", http.MethodPost, resourcePath(endpoint))
}

// mutate sends a non-idempotent request once and wraps failures in ActionError.
func (c *Client) mutate(ctx context.Context, req *resty.Request, action, method, path string) (json.RawMessage, error) {
	body, err := c.do(ctx, req, method, path)
	if err != nil {
		logging.Warn("api action failed", "action", action, "path", path, "error", err)
		return nil, actionError(action, body, err)
	}
	return json.RawMessage(body), nil
}

func actionError(action string, body []byte, err error) error {
	ae := &ActionError{Action: action, Err: err, Body: serverMessage(body)}
	var ne *NetworkError
	var au *AuthError
	switch {
	case errors.As(err, &ne):
		ae.Status = ne.Status
	case errors.As(err, &au):
		ae.Status = au.Status
	}
	return ae
}

// maxServerMessage caps the display width of a raw error body.
const maxServerMessage = 200

// serverMessage pulls a human readable message out of an error body.
func serverMessage(body []byte) string {
	if len(body) == 0 {
		return ""
	}
	for _, key := range []string{"detail", "error", "message"} {
		if v := gjson.GetBytes(body, key); v.Type == gjson.String {
			return v.Str
		}
	}
	return runewidth.Truncate(strings.TrimSpace(string(body)), maxServerMessage, "…")
}
