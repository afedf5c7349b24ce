package fetcher

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/mr1hm/go-maritime-dashboard/internal/logging"
	"github.com/mr1hm/go-maritime-dashboard/internal/models"
	"github.com/mr1hm/go-maritime-dashboard/internal/worker"
)

const (
	etaPath    = "/api/eta"
	portsPath  = "/api/ports"
	stormsPath = "/api/storm-alerts"

	maxBodyBytes = 8 << 20
)

// Client reads the shipping API. Every request is cache-busted.
type Client struct {
	baseURL *url.URL
	http    *http.Client
	now     func() time.Time
	log     *slog.Logger
}

type Option func(*Client)

func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.http = hc }
}

// WithClock replaces the time source used for the cache-busting parameter.
func WithClock(now func() time.Time) Option {
	return func(c *Client) { c.now = now }
}

func New(baseURL string, timeout time.Duration, opts ...Option) (*Client, error) {
	u, err := url.Parse(strings.TrimRight(baseURL, "/"))
	if err != nil {
		return nil, fmt.Errorf("error parsing base url: %w", err)
	}
	if u.Scheme == "" || u.Host == "" {
		return nil, fmt.Errorf("base url %q must be absolute", baseURL)
	}
	u.RawQuery = ""
	u.Fragment = ""

	c := &Client{
		baseURL: u,
		http:    &http.Client{Timeout: timeout},
		now:     time.Now,
		log:     logging.Component("fetcher"),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

func (c *Client) BaseURL() string { return c.baseURL.String() }

// FetchETA returns every tracked vessel.
func (c *Client) FetchETA(ctx context.Context) ([]models.ETA, error) {
	return fetchList[models.ETA](ctx, c, etaPath)
}

// FetchShipETA returns the latest record for one vessel.
func (c *Client) FetchShipETA(ctx context.Context, shipName string) (*models.ETA, error) {
	return fetchOne[models.ETA](ctx, c, etaPath+"/"+url.PathEscape(shipName))
}

// FetchPorts returns every port with its status normalized.
func (c *Client) FetchPorts(ctx context.Context) ([]models.Port, error) {
	ports, err := fetchList[models.Port](ctx, c, portsPath)
	for i := range ports {
		ports[i].Status = models.NormalizePortStatus(ports[i].Status)
	}
	return ports, err
}

func (c *Client) FetchPort(ctx context.Context, id int) (*models.Port, error) {
	p, err := fetchOne[models.Port](ctx, c, portsPath+"/"+strconv.Itoa(id))
	if p != nil {
		p.Status = models.NormalizePortStatus(p.Status)
	}
	return p, err
}

func (c *Client) FetchStormAlerts(ctx context.Context) ([]models.StormAlert, error) {
	return fetchList[models.StormAlert](ctx, c, stormsPath)
}

// WatchETA fetches immediately and again delay after each fetch completes,
// successful or not. The returned task is not started.
func (c *Client) WatchETA(delay time.Duration, onData func([]models.ETA, error)) *worker.Task {
	return worker.NewTask("eta", delay, func(ctx context.Context) {
		records, err := c.FetchETA(ctx)
		if ctx.Err() != nil {
			return
		}
		onData(records, err)
	})
}

// fetchList decodes each record on its own. A record that cannot be decoded
// is logged and skipped so one bad row does not blank the whole stream.
func fetchList[T any](ctx context.Context, c *Client, path string) ([]T, error) {
	items, bare, err := c.getRecords(ctx, path)
	if err != nil {
		return []T{}, err
	}
	if bare {
		return []T{}, &Error{Kind: KindShape, Endpoint: path, Err: errNoRecordList}
	}

	out := make([]T, 0, len(items))
	for i, raw := range items {
		var v T
		if err := json.Unmarshal(raw, &v); err != nil {
			c.log.Warn("skipping undecodable record", "endpoint", path, "index", i, "error", err)
			continue
		}
		out = append(out, v)
	}

	c.log.Debug("fetched", "endpoint", path, "count", len(out), "skipped", len(items)-len(out))
	return out, nil
}

func fetchOne[T any](ctx context.Context, c *Client, path string) (*T, error) {
	items, _, err := c.getRecords(ctx, path)
	if err != nil {
		return nil, err
	}
	if len(items) == 0 {
		return nil, &Error{Kind: KindShape, Endpoint: path, Err: fmt.Errorf("empty response")}
	}

	var v T
	if err := json.Unmarshal(items[0], &v); err != nil {
		return nil, &Error{Kind: KindDecode, Endpoint: path, Err: err}
	}
	return &v, nil
}

func (c *Client) getRecords(ctx context.Context, path string) ([]json.RawMessage, bool, error) {
	body, err := c.get(ctx, path)
	if err != nil {
		return nil, false, err
	}

	if !json.Valid(body) {
		return nil, false, &Error{Kind: KindDecode, Endpoint: path, Err: fmt.Errorf("invalid json")}
	}
	items, bare, err := normalize(body)
	if err != nil {
		return nil, false, &Error{Kind: KindShape, Endpoint: path, Err: err}
	}
	return items, bare, nil
}

func (c *Client) get(ctx context.Context, path string) ([]byte, error) {
	q := url.Values{}
	q.Set("_t", strconv.FormatInt(c.now().UnixMilli(), 10))
	endpoint := c.baseURL.String() + path + "?" + q.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, &Error{Kind: KindNetwork, Endpoint: path, Err: fmt.Errorf("error creating request: %w", err)}
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("Cache-Control", "no-cache, no-store, must-revalidate")
	req.Header.Set("Pragma", "no-cache")
	req.Header.Set("Expires", "0")

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, &Error{Kind: KindNetwork, Endpoint: path, Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		io.Copy(io.Discard, io.LimitReader(resp.Body, maxBodyBytes))
		return nil, &Error{Kind: KindStatus, Endpoint: path, StatusCode: resp.StatusCode}
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return nil, &Error{Kind: KindNetwork, Endpoint: path, Err: fmt.Errorf("error reading body: %w", err)}
	}
	return body, nil
}
