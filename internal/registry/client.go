// Package registry talks to the Brønnøysund Register Centre entity API and turns its
// responses into storage.Organization records.
package registry

import (
	"context"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/vvangelov/brregservice/internal"
	"github.com/vvangelov/brregservice/internal/logging"
	"github.com/vvangelov/brregservice/internal/storage"
)

const (
	DefaultConnectTimeout = 3 * time.Second
	DefaultTimeout        = 15 * time.Second

	format       = "json"
	maxBodyBytes = 1 << 20
)

type OptionFunc func(opt *Options)

type Options struct {
	ConnectTimeout time.Duration
	Timeout        time.Duration
}

func WithTimeouts(connect, total time.Duration) OptionFunc {
	return func(opt *Options) {
		opt.ConnectTimeout = connect
		opt.Timeout = total
	}
}

func defaultOptions() *Options {
	return &Options{
		ConnectTimeout: DefaultConnectTimeout,
		Timeout:        DefaultTimeout,
	}
}

// Response is the raw answer of the registry for one organization number.
type Response struct {
	StatusCode int
	Body       []byte
}

type Client struct {
	baseURL string
	c       *http.Client
}

// New returns a client for the registry rooted at baseURL. An empty baseURL selects the
// public Brønnøysund endpoint.
func New(baseURL string, opts ...OptionFunc) *Client {
	opt := defaultOptions()
	for _, f := range opts {
		f(opt)
	}
	if baseURL == "" {
		baseURL = internal.RegistryEndpoint
	}
	transport := http.DefaultTransport.(*http.Transport).Clone()
	transport.DialContext = (&net.Dialer{
		Timeout:   opt.ConnectTimeout,
		KeepAlive: 30 * time.Second,
	}).DialContext
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		c: &http.Client{
			Transport: transport,
			Timeout:   opt.Timeout,
		},
	}
}

func (c *Client) url(number string) string {
	return fmt.Sprintf("%s/%s.%s", c.baseURL, url.PathEscape(number), format)
}

// Fetch issues a single GET for number. The number is passed through as is; callers
// validate its format. Network failures and 5xx answers are reported as ErrTransport.
func (c *Client) Fetch(ctx context.Context, number string) (*Response, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.url(number), nil)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrTransport, err)
	}
	req.Header.Set("Accept", "application/json")

	ts := time.Now()
	res, err := c.c.Do(req)
	if err != nil {
		logging.Error(ctx, err, logging.Data{"number": number}, "registry request failed")
		return nil, fmt.Errorf("%w: %w", ErrTransport, err)
	}
	defer res.Body.Close()

	body, err := io.ReadAll(io.LimitReader(res.Body, maxBodyBytes))
	if err != nil {
		logging.Error(ctx, err, logging.Data{"number": number}, "failed to read registry response")
		return nil, fmt.Errorf("%w: %w", ErrTransport, err)
	}
	logging.Info(ctx, logging.Data{"number": number, "status": res.StatusCode, "request_time": time.Since(ts)}, "registry stats")
	if res.StatusCode >= http.StatusInternalServerError {
		return nil, fmt.Errorf("%w: registry answered %d", ErrTransport, res.StatusCode)
	}
	return &Response{StatusCode: res.StatusCode, Body: body}, nil
}

// Organization fetches and normalizes the record for number. found is false when the
// registry does not know the number.
func (c *Client) Organization(ctx context.Context, number string) (storage.Organization, bool, error) {
	res, err := c.Fetch(ctx, number)
	if err != nil {
		return storage.Organization{}, false, err
	}
	switch res.StatusCode {
	case http.StatusNotFound, http.StatusGone:
		return storage.Organization{}, false, nil
	}
	return Normalize(res.Body)
}
