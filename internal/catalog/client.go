package catalog

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"storefront/internal/domain"
)

var (
	// ErrFetch wraps every failure to obtain catalog data: transport errors,
	// non-success statuses and undecodable bodies.
	ErrFetch = errors.New("catalog fetch failed")
	// ErrNotFound means the catalog has no product with the requested id.
	ErrNotFound = errors.New("product not found")
)

// Source is the read-only product catalog.
type Source interface {
	FetchAllProducts(ctx context.Context) ([]domain.Product, error)
	FetchCategories(ctx context.Context) ([]string, error)
	FetchProductByID(ctx context.Context, id int) (domain.Product, error)
}

// ErrorRecorder counts failed fetches by operation.
type ErrorRecorder interface {
	CatalogFetchError(op string)
}

type nopErrorRecorder struct{}

func (nopErrorRecorder) CatalogFetchError(string) {}

const DefaultTimeout = 10 * time.Second

type ClientOption func(*Client)

func WithTimeout(d time.Duration) ClientOption {
	return func(c *Client) {
		if d > 0 {
			c.timeout = d
		}
	}
}

func WithClientLogger(l zerolog.Logger) ClientOption { return func(c *Client) { c.logger = l } }

func WithErrorRecorder(r ErrorRecorder) ClientOption {
	return func(c *Client) {
		if r != nil {
			c.recorder = r
		}
	}
}

// Client reads the catalog from a fakestoreapi-compatible HTTP API.
type Client struct {
	baseURL  string
	timeout  time.Duration
	logger   zerolog.Logger
	recorder ErrorRecorder
}

func NewClient(baseURL string, opts ...ClientOption) *Client {
	c := &Client{
		baseURL:  strings.TrimRight(baseURL, "/"),
		timeout:  DefaultTimeout,
		logger:   zerolog.Nop(),
		recorder: nopErrorRecorder{},
	}
	for _, opt := range opts {
		opt(c)
	}
	c.logger = c.logger.With().Str("tag", "catalog.Client").Logger()
	return c
}

func (c *Client) FetchAllProducts(ctx context.Context) ([]domain.Product, error) {
	var out []domain.Product
	if err := c.getList(ctx, "products", "/products", &out); err != nil {
		return nil, err
	}
	if out == nil {
		out = []domain.Product{}
	}
	return out, nil
}

func (c *Client) FetchCategories(ctx context.Context) ([]string, error) {
	var out []string
	if err := c.getList(ctx, "categories", "/products/categories", &out); err != nil {
		return nil, err
	}
	if out == nil {
		out = []string{}
	}
	return out, nil
}

// FetchProductByID returns ErrNotFound for a 404 and for the empty body the
// upstream API answers unknown ids with.
func (c *Client) FetchProductByID(ctx context.Context, id int) (domain.Product, error) {
	if id < 1 {
		return domain.Product{}, ErrNotFound
	}
	var p domain.Product
	found, err := c.get(ctx, "product", "/products/"+strconv.Itoa(id), &p)
	if err != nil {
		return domain.Product{}, err
	}
	if !found || p.ID == 0 {
		return domain.Product{}, ErrNotFound
	}
	return p, nil
}

// getList is get for collection endpoints, which always exist.
func (c *Client) getList(ctx context.Context, op, path string, dst any) error {
	found, err := c.get(ctx, op, path, dst)
	if err != nil {
		return err
	}
	if !found {
		return c.fail(c.logger, op, fmt.Errorf("%w: GET %s returned no content", ErrFetch, path))
	}
	return nil
}

// get decodes the JSON body at path into dst. It reports false without an
// error when the resource does not exist (404 or an empty body).
func (c *Client) get(ctx context.Context, op, path string, dst any) (bool, error) {
	logger := c.logger.With().Str("process", "fetching "+op).Str("path", path).Logger()

	if err := ctx.Err(); err != nil {
		return false, c.fail(logger, op, fmt.Errorf("%w: GET %s cancelled with error=%w", ErrFetch, path, err))
	}
	timeout := c.timeout
	if deadline, ok := ctx.Deadline(); ok {
		timeout = min(timeout, time.Until(deadline))
	}

	agent := fiber.Get(c.baseURL + path)
	agent.Set(fiber.HeaderAccept, fiber.MIMEApplicationJSON)
	code, body, errs := agent.Timeout(timeout).Bytes()
	if len(errs) > 0 {
		return false, c.fail(logger, op, fmt.Errorf("%w: GET %s failed with error=%w", ErrFetch, path, errors.Join(errs...)))
	}
	if code == fiber.StatusNotFound {
		logger.Debug().Msg("resource not found")
		return false, nil
	}
	if code < 200 || code > 299 {
		return false, c.fail(logger, op, fmt.Errorf("%w: GET %s returned status %d", ErrFetch, path, code))
	}

	body = bytes.TrimSpace(body)
	if len(body) == 0 || bytes.Equal(body, []byte("null")) {
		logger.Debug().Msg("empty response body")
		return false, nil
	}
	if err := json.Unmarshal(body, dst); err != nil {
		return false, c.fail(logger, op, fmt.Errorf("%w: decoding %s failed with error=%w", ErrFetch, path, err))
	}
	logger.Debug().Int("bytes", len(body)).Msg("fetched")
	return true, nil
}

func (c *Client) fail(logger zerolog.Logger, op string, err error) error {
	c.recorder.CatalogFetchError(op)
	logger.Error().Err(err).Msg("catalog request failed")
	return err
}
