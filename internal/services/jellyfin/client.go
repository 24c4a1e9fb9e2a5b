package jellyfin

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/goccy/go-json"
	"github.com/google/uuid"
	"golang.org/x/time/rate"

	"watchmigrate/internal/catalog"
	"watchmigrate/internal/config"
	"watchmigrate/internal/services"
)

const (
	clientName      = "watchmigrate"
	clientVersion   = "1.0.0"
	defaultPageSize = 500
	errorBodyLimit  = 512
)

// Options configures a Client.
type Options struct {
	BaseURL           string
	APIKey            string
	PageSize          int
	RequestsPerSecond float64
	DeviceID          string
	HTTPClient        services.HTTPDoer
}

// Client talks to the Jellyfin REST API on behalf of a single migration run.
type Client struct {
	baseURL  string
	apiKey   string
	deviceID string
	pageSize int
	limiter  *rate.Limiter
	client   services.HTTPDoer
}

// User is a Jellyfin account.
type User struct {
	ID   string `json:"Id"`
	Name string `json:"Name"`
}

type userData struct {
	Played bool `json:"Played"`
}

type item struct {
	ID                string            `json:"Id"`
	Name              string            `json:"Name"`
	Type              string            `json:"Type"`
	SeriesName        string            `json:"SeriesName"`
	SeriesID          string            `json:"SeriesId"`
	ProviderIDs       map[string]string `json:"ProviderIds"`
	ParentIndexNumber *int              `json:"ParentIndexNumber"`
	IndexNumber       *int              `json:"IndexNumber"`
	UserData          *userData         `json:"UserData"`
}

type itemsResponse struct {
	Items            []item `json:"Items"`
	TotalRecordCount int    `json:"TotalRecordCount"`
}

// New validates opts and returns a Client.
func New(opts Options) (*Client, error) {
	baseURL := strings.TrimRight(strings.TrimSpace(opts.BaseURL), "/")
	apiKey := strings.TrimSpace(opts.APIKey)
	if baseURL == "" || apiKey == "" {
		return nil, services.Wrap(services.ErrConfiguration, "jellyfin", "init", "url and api key are required", nil)
	}
	pageSize := opts.PageSize
	if pageSize <= 0 {
		pageSize = defaultPageSize
	}
	limit := rate.Inf
	if opts.RequestsPerSecond > 0 {
		limit = rate.Limit(opts.RequestsPerSecond)
	}
	deviceID := strings.TrimSpace(opts.DeviceID)
	if deviceID == "" {
		deviceID = uuid.NewString()
	}
	client := opts.HTTPClient
	if client == nil {
		client = services.NewHTTPClient(30*time.Second, false)
	}
	return &Client{
		baseURL:  baseURL,
		apiKey:   apiKey,
		deviceID: deviceID,
		pageSize: pageSize,
		limiter:  rate.NewLimiter(limit, 1),
		client:   client,
	}, nil
}

// NewFromConfig builds a Client from the [jellyfin] config section.
func NewFromConfig(cfg *config.Config, insecure bool) (*Client, error) {
	if cfg == nil {
		return nil, services.Wrap(services.ErrConfiguration, "jellyfin", "init", "config is required", nil)
	}
	timeout := time.Duration(cfg.Jellyfin.TimeoutSeconds) * time.Second
	return New(Options{
		BaseURL:           cfg.Jellyfin.URL,
		APIKey:            cfg.Jellyfin.APIKey,
		PageSize:          cfg.Jellyfin.PageSize,
		RequestsPerSecond: cfg.Jellyfin.RequestsPerSecond,
		HTTPClient:        services.NewHTTPClient(timeout, insecure),
	})
}

// Users lists the server's accounts.
func (c *Client) Users(ctx context.Context) ([]User, error) {
	var users []User
	if err := c.do(ctx, http.MethodGet, "/Users", nil, &users); err != nil {
		return nil, err
	}
	return users, nil
}

// ResolveUser returns the ID of the account named name.
func (c *Client) ResolveUser(ctx context.Context, name string) (string, error) {
	users, err := c.Users(ctx)
	if err != nil {
		return "", err
	}
	for _, u := range users {
		if u.Name == name {
			return u.ID, nil
		}
	}
	return "", services.Wrap(services.ErrNotFound, "jellyfin", "resolve user", fmt.Sprintf("no user named %q", name), nil)
}

// ListAllItems fetches every movie and episode visible to userID with provider
// IDs and played state, paging through the full library.
func (c *Client) ListAllItems(ctx context.Context, userID string) ([]catalog.LibraryRecord, error) {
	path := "/Users/" + url.PathEscape(userID) + "/Items"
	var records []catalog.LibraryRecord
	for start := 0; ; {
		query := url.Values{}
		query.Set("Recursive", "true")
		query.Set("IncludeItemTypes", "Movie,Episode")
		query.Set("Fields", "ProviderIds")
		query.Set("EnableUserData", "true")
		query.Set("StartIndex", strconv.Itoa(start))
		query.Set("Limit", strconv.Itoa(c.pageSize))

		var page itemsResponse
		if err := c.do(ctx, http.MethodGet, path, query, &page); err != nil {
			return nil, err
		}
		for _, it := range page.Items {
			records = append(records, it.record())
		}
		start += len(page.Items)
		if len(page.Items) == 0 || start >= page.TotalRecordCount {
			return records, nil
		}
	}
}

// SeriesProviderIDs returns the provider IDs attached to a series.
func (c *Client) SeriesProviderIDs(ctx context.Context, userID, seriesID string) (map[string]string, error) {
	if strings.TrimSpace(seriesID) == "" {
		return nil, services.Wrap(services.ErrValidation, "jellyfin", "series provider ids", "series id is empty", nil)
	}
	var series item
	path := "/Users/" + url.PathEscape(userID) + "/Items/" + url.PathEscape(seriesID)
	if err := c.do(ctx, http.MethodGet, path, nil, &series); err != nil {
		return nil, err
	}
	return series.ProviderIDs, nil
}

// MarkWatched marks itemID played for userID.
func (c *Client) MarkWatched(ctx context.Context, userID, itemID string) error {
	path := "/Users/" + url.PathEscape(userID) + "/PlayedItems/" + url.PathEscape(itemID)
	return c.do(ctx, http.MethodPost, path, nil, nil)
}

func (c *Client) do(ctx context.Context, method, path string, query url.Values, out any) error {
	operation := method + " " + path
	if err := c.limiter.Wait(ctx); err != nil {
		return err
	}
	endpoint := c.baseURL + path
	if len(query) > 0 {
		endpoint += "?" + query.Encode()
	}
	req, err := http.NewRequestWithContext(ctx, method, endpoint, nil)
	if err != nil {
		return services.Wrap(services.ErrValidation, "jellyfin", operation, "build request", err)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("Authorization", c.authorization())
	req.Header.Set("X-Emby-Token", c.apiKey)

	resp, err := c.client.Do(req)
	if err != nil {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		return services.Wrap(services.ErrExternalService, "jellyfin", operation, "request failed", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= http.StatusMultipleChoices {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, errorBodyLimit))
		marker := services.ErrExternalService
		switch resp.StatusCode {
		case http.StatusUnauthorized, http.StatusForbidden:
			marker = services.ErrConfiguration
		case http.StatusNotFound:
			marker = services.ErrNotFound
		}
		message := fmt.Sprintf("status %d", resp.StatusCode)
		if text := strings.TrimSpace(string(body)); text != "" {
			message += ": " + text
		}
		return services.Wrap(marker, "jellyfin", operation, message, nil)
	}
	if out == nil {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return services.Wrap(services.ErrExternalService, "jellyfin", operation, "decode response", err)
	}
	return nil
}

func (c *Client) authorization() string {
	return fmt.Sprintf(`MediaBrowser Client=%q, Device=%q, DeviceId=%q, Version=%q, Token=%q`,
		clientName, clientName, c.deviceID, clientVersion, c.apiKey)
}

func (it item) record() catalog.LibraryRecord {
	rec := catalog.LibraryRecord{
		ID:          it.ID,
		Type:        catalog.Kind(it.Type),
		Name:        it.Name,
		SeriesName:  it.SeriesName,
		SeriesID:    it.SeriesID,
		ProviderIDs: it.ProviderIDs,
		Season:      it.ParentIndexNumber,
		Episode:     it.IndexNumber,
	}
	if it.UserData != nil {
		rec.Watched = it.UserData.Played
	}
	return rec
}
