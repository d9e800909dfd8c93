package admin

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/url"
	"strings"

	"github.com/pkg/errors"

	"github.com/conneroisu/pubnub-mcp/pkg/pnerrs"
)

const maxResponseSize = 8 << 20

// restClient performs JSON requests against one admin API base URL.
type restClient struct {
	service string
	baseURL string
	http    *http.Client
}

type request struct {
	method  string
	path    string
	query   url.Values
	body    any
	headers http.Header
}

// do sends req and decodes a 2xx JSON response into out. Non-2xx
// responses come back as *pnerrs.UpstreamError carrying the parsed body.
func (c *restClient) do(ctx context.Context, req request, out any) error {
	target := strings.TrimRight(c.baseURL, "/") + req.path
	if len(req.query) > 0 {
		target += "?" + req.query.Encode()
	}

	var payload io.Reader
	if req.body != nil {
		raw, err := json.Marshal(req.body)
		if err != nil {
			return errors.Wrapf(err, "encode %s request", c.service)
		}
		payload = bytes.NewReader(raw)
	}

	httpReq, err := http.NewRequestWithContext(ctx, req.method, target, payload)
	if err != nil {
		return errors.Wrapf(err, "build %s request", c.service)
	}
	httpReq.Header.Set("Accept", "application/json")
	if payload != nil {
		httpReq.Header.Set("Content-Type", "application/json")
	}
	for k, vs := range req.headers {
		for _, v := range vs {
			httpReq.Header.Add(k, v)
		}
	}

	resp, err := c.http.Do(httpReq)
	if err != nil {
		return pnerrs.NewRequestError(c.service+" request failed", httpReq.URL.Host, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseSize))
	if err != nil {
		return pnerrs.NewRequestError("read "+c.service+" response", httpReq.URL.Host, err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return pnerrs.NewResponseError(c.service, resp, body)
	}

	if out == nil || len(body) == 0 {
		return nil
	}
	if err := json.Unmarshal(body, out); err != nil {
		decodeErr := pnerrs.NewDecodeError(c.service, resp.StatusCode, err)
		_ = decodeErr.WithMetadata("path", req.path)

		return decodeErr
	}

	return nil
}
