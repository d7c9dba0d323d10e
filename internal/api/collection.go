package api

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/tidwall/gjson"
)

// FetchCollection GETs endpoint and returns the raw elements of the record
// array. The body may be a bare array or an object; for objects the array is
// arrayField when present, otherwise the first array-valued member.
func (c *Client) FetchCollection(ctx context.Context, endpoint, arrayField string) ([]json.RawMessage, error) {
	path := resourcePath(endpoint)
	body, err := c.get(ctx, path)
	if err != nil {
		return nil, err
	}
	return extractArray(path, body, arrayField)
}

func extractArray(endpoint string, body []byte, field string) ([]json.RawMessage, error) {
	if !gjson.ValidBytes(body) {
		return nil, &FormatError{Endpoint: endpoint, Reason: "response is not valid JSON"}
	}
	res := gjson.ParseBytes(body)

	var arr gjson.Result
	switch {
	case res.IsArray():
		arr = res
	case res.IsObject():
		if field != "" {
			if v := res.Get(field); v.IsArray() {
				arr = v
				break
			}
		}
		res.ForEach(func(_, v gjson.Result) bool {
			if v.IsArray() {
				arr = v
				return false
			}
			return true
		})
		if !arr.IsArray() {
			reason := "no array field in response"
			if field != "" {
				reason = fmt.Sprintf("missing array field %q", field)
			}
			return nil, &FormatError{Endpoint: endpoint, Reason: reason}
		}
	default:
		return nil, &FormatError{Endpoint: endpoint, Reason: "expected array or object, got " + res.Type.String()}
	}

	elems := arr.Array()
	out := make([]json.RawMessage, len(elems))
	for i, e := range elems {
		out[i] = json.RawMessage(e.Raw)
	}
	return out, nil
}

// Decode unmarshals each element into T.
func Decode[T any](endpoint string, raw []json.RawMessage) ([]T, error) {
	out := make([]T, len(raw))
	for i, r := range raw {
		if err := json.Unmarshal(r, &out[i]); err != nil {
			return nil, &FormatError{
				Endpoint: endpoint,
				Reason:   fmt.Sprintf("record %d", i),
				Err:      err,
			}
		}
	}
	return out, nil
}
