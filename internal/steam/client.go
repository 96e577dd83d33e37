// Package steam implements clients for the two remote catalog endpoints:
// the partner app-list service (cursor-paged discovery) and the store
// appdetails service (batched detail fetch). Both calls are stateless
// request/response functions; retry policy lives in the crawl loop.
package steam

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
)

const (
	defaultAppListURL    = "https://partner.steam-api.com/IStoreService/GetAppList/v1/"
	defaultAppDetailsURL = "https://store.steampowered.com/api/appdetails"
	userAgent            = "steamreqs-mirror/1.0"
)

// ErrRateLimited signals an HTTP 429 from either endpoint. The crawl loop
// backs off longer for this class than for other transport failures.
var ErrRateLimited = errors.New("rate limited by remote endpoint")

// ClientOptions configures a Client.
type ClientOptions struct {
	// Key is the partner access credential for the app-list endpoint.
	Key          string
	CountryCode  string
	Language     string
	IncludeGames bool
	IncludeDLC   bool
	PageSize     int
	Timeout      time.Duration

	// Endpoint overrides, used by tests.
	AppListURL    string
	AppDetailsURL string
}

// Client talks to the remote catalog. It is safe for reuse across calls but
// performs no retries of its own.
type Client struct {
	http          *resty.Client
	opts          ClientOptions
	appListURL    string
	appDetailsURL string
}

// NewClient builds a Client from options.
func NewClient(opts ClientOptions) (*Client, error) {
	if opts.Key == "" {
		return nil, fmt.Errorf("steam key is required")
	}
	if opts.PageSize <= 0 {
		return nil, fmt.Errorf("page size must be > 0")
	}
	client := resty.New()
	client.SetHeader("User-Agent", userAgent)
	if opts.Timeout > 0 {
		client.SetTimeout(opts.Timeout)
	}

	c := &Client{
		http:          client,
		opts:          opts,
		appListURL:    opts.AppListURL,
		appDetailsURL: opts.AppDetailsURL,
	}
	if c.appListURL == "" {
		c.appListURL = defaultAppListURL
	}
	if c.appDetailsURL == "" {
		c.appDetailsURL = defaultAppDetailsURL
	}
	return c, nil
}

// appListPayload is the input_json body of an app-list request.
type appListPayload struct {
	IncludeGames    bool  `json:"include_games"`
	IncludeDLC      bool  `json:"include_dlc"`
	IncludeSoftware bool  `json:"include_software"`
	IncludeVideos   bool  `json:"include_videos"`
	IncludeHardware bool  `json:"include_hardware"`
	MaxResults      int   `json:"max_results"`
	LastAppID       int64 `json:"last_appid"`
}

// AppListPage fetches one discovery page starting just after cursor. The
// returned slice is ordered ascending by appid; an empty slice signals
// catalog exhaustion.
func (c *Client) AppListPage(ctx context.Context, cursor int64) ([]App, error) {
	payload, err := json.Marshal(appListPayload{
		IncludeGames: c.opts.IncludeGames,
		IncludeDLC:   c.opts.IncludeDLC,
		MaxResults:   c.opts.PageSize,
		LastAppID:    cursor,
	})
	if err != nil {
		return nil, fmt.Errorf("marshal app list payload: %w", err)
	}

	var body appListResponse
	resp, err := c.http.R().
		SetContext(ctx).
		SetQueryParam("key", c.opts.Key).
		SetQueryParam("input_json", string(payload)).
		SetResult(&body).
		Get(c.appListURL)
	if err != nil {
		return nil, fmt.Errorf("fetch app list page: %w", err)
	}
	if err := classifyStatus(resp); err != nil {
		return nil, fmt.Errorf("app list page: %w", err)
	}
	return body.Response.Apps, nil
}

// AppDetails fetches full details for a bounded batch of ids. The response
// maps each requested appid (as text) to its result; individual entries may
// carry Success false.
func (c *Client) AppDetails(ctx context.Context, ids []int64) (map[string]DetailResult, error) {
	if len(ids) == 0 {
		return map[string]DetailResult{}, nil
	}
	joined := make([]string, len(ids))
	for i, id := range ids {
		joined[i] = strconv.FormatInt(id, 10)
	}

	var body map[string]DetailResult
	resp, err := c.http.R().
		SetContext(ctx).
		SetQueryParam("appids", strings.Join(joined, ",")).
		SetQueryParam("cc", c.opts.CountryCode).
		SetQueryParam("l", c.opts.Language).
		SetResult(&body).
		Get(c.appDetailsURL)
	if err != nil {
		return nil, fmt.Errorf("fetch app details: %w", err)
	}
	if err := classifyStatus(resp); err != nil {
		return nil, fmt.Errorf("app details: %w", err)
	}
	return body, nil
}

func classifyStatus(resp *resty.Response) error {
	switch {
	case resp.StatusCode() == http.StatusTooManyRequests:
		return ErrRateLimited
	case resp.IsError():
		return fmt.Errorf("unexpected status %d", resp.StatusCode())
	default:
		return nil
	}
}
