package v1

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/vvangelov/brregservice/internal"
	"github.com/vvangelov/brregservice/internal/handler"
	"github.com/vvangelov/brregservice/internal/logging"
)

// Errors returned by the client
var (
	ErrClient           = errors.New("brreg client error")
	ErrNotFound         = fmt.Errorf("%w organization not found", ErrClient)
	ErrUnexpectedStatus = fmt.Errorf("%w unexpected status", ErrClient)
)

type OrganizationService interface {
	LookupOrganization(ctx context.Context, number string) (*handler.LookupResponse, error)
	RetrieveOrganization(ctx context.Context, number string) (*handler.RetrieveResponse, error)
}

type ClientFunc func(c *Client)

// WithHTTPClient replaces the default http client.
func WithHTTPClient(hc *http.Client) ClientFunc {
	return func(c *Client) {
		c.http = hc
	}
}

type Client struct {
	baseURL string
	http    *http.Client
}

func New(baseURL string, opts ...ClientFunc) (OrganizationService, error) {
	u, err := url.Parse(baseURL)
	if err != nil {
		return nil, fmt.Errorf("%w invalid base url: %w", ErrClient, err)
	}
	if u.Scheme == "" || u.Host == "" {
		return nil, fmt.Errorf("%w invalid base url %q", ErrClient, baseURL)
	}
	c := &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{Timeout: 20 * time.Second},
	}
	for _, f := range opts {
		f(c)
	}
	return c, nil
}

// LookupOrganization triggers a registry lookup. The envelope is returned for every
// status the service answers with; the error reports non 200 statuses.
func (c *Client) LookupOrganization(ctx context.Context, number string) (*handler.LookupResponse, error) {
	res := &handler.LookupResponse{}
	status, err := c.send(ctx, internal.OrganizationLookupEndpoint, http.MethodPost,
		fmt.Sprintf("/v1/organization/%s/lookup", url.PathEscape(number)), res)
	if err != nil {
		return nil, err
	}
	switch status {
	case http.StatusOK:
		return res, nil
	case http.StatusNotFound:
		return res, ErrNotFound
	default:
		return res, fmt.Errorf("%w %d", ErrUnexpectedStatus, status)
	}
}

func (c *Client) RetrieveOrganization(ctx context.Context, number string) (*handler.RetrieveResponse, error) {
	res := &handler.RetrieveResponse{}
	status, err := c.send(ctx, internal.OrganizationRetrieveEndpoint, http.MethodGet,
		fmt.Sprintf("/v1/organization/%s", url.PathEscape(number)), res)
	if err != nil {
		return nil, err
	}
	switch status {
	case http.StatusOK:
		return res, nil
	case http.StatusNotFound:
		return nil, ErrNotFound
	default:
		return nil, fmt.Errorf("%w %d", ErrUnexpectedStatus, status)
	}
}

// send decodes JSON bodies into out regardless of status. Non JSON bodies leave out
// untouched.
func (c *Client) send(ctx context.Context, api, method, path string, out interface{}) (int, error) {
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, nil)
	if err != nil {
		return 0, fmt.Errorf("%w: %w", ErrClient, err)
	}
	req.Header.Set("Accept", "application/json")

	ts := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		return 0, fmt.Errorf("%w: %w", ErrClient, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return 0, fmt.Errorf("%w: %w", ErrClient, err)
	}
	logging.Info(ctx, logging.Data{
		"api":         api,
		"status":      resp.StatusCode,
		"duration_ms": time.Since(ts).Milliseconds(),
	}, "brreg service call")

	if len(body) > 0 && strings.HasPrefix(resp.Header.Get("Content-Type"), "application/json") {
		if err := json.Unmarshal(body, out); err != nil {
			return resp.StatusCode, fmt.Errorf("%w decoding response: %w", ErrClient, err)
		}
	}
	return resp.StatusCode, nil
}
