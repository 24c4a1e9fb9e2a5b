package plex

import (
	"context"
	"encoding/xml"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"runtime"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"watchmigrate/internal/config"
	"watchmigrate/internal/services"
)

const (
	productName    = "watchmigrate"
	productVersion = "1.0.0"
	userAgent      = "watchmigrate-go/1.0.0"
)

// Options configures a Client.
type Options struct {
	BaseURL    string
	Token      string
	ClientID   string
	HTTPClient services.HTTPDoer
}

// Client reads library sections and watched state from a Plex Media Server.
type Client struct {
	baseURL  string
	token    string
	clientID string
	client   services.HTTPDoer

	mu       sync.Mutex
	sections map[string]Section
}

// New validates opts and returns a Client.
func New(opts Options) (*Client, error) {
	baseURL := strings.TrimRight(strings.TrimSpace(opts.BaseURL), "/")
	token := strings.TrimSpace(opts.Token)
	if baseURL == "" || token == "" {
		return nil, services.Wrap(services.ErrConfiguration, "plex", "init", "url and token are required", nil)
	}
	clientID := strings.TrimSpace(opts.ClientID)
	if clientID == "" {
		clientID = uuid.NewString()
	}
	client := opts.HTTPClient
	if client == nil {
		client = services.NewHTTPClient(30*time.Second, false)
	}
	return &Client{baseURL: baseURL, token: token, clientID: clientID, client: client}, nil
}

// NewFromConfig builds a Client from the [plex] config section.
func NewFromConfig(cfg *config.Config, insecure bool) (*Client, error) {
	if cfg == nil {
		return nil, services.Wrap(services.ErrConfiguration, "plex", "init", "config is required", nil)
	}
	timeout := time.Duration(cfg.Plex.TimeoutSeconds) * time.Second
	return New(Options{
		BaseURL:    cfg.Plex.URL,
		Token:      cfg.Plex.Token,
		HTTPClient: services.NewHTTPClient(timeout, insecure),
	})
}

func (c *Client) getXML(ctx context.Context, path string, query url.Values, out any) error {
	operation := "GET " + path
	endpoint := c.baseURL + path
	if len(query) > 0 {
		endpoint += "?" + query.Encode()
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return services.Wrap(services.ErrValidation, "plex", operation, "build request", err)
	}
	req.Header.Set("Accept", "application/xml")
	req.Header.Set("User-Agent", userAgent)
	req.Header.Set("X-Plex-Token", c.token)
	applyStandardHeaders(req, c.clientID)

	resp, err := c.client.Do(req)
	if err != nil {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		return services.Wrap(services.ErrExternalService, "plex", operation, "request failed", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= http.StatusMultipleChoices {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 2048))
		marker := services.ErrExternalService
		if resp.StatusCode == http.StatusUnauthorized {
			marker = services.ErrConfiguration
		}
		return services.Wrap(marker, "plex", operation,
			fmt.Sprintf("returned %d: %s", resp.StatusCode, strings.TrimSpace(string(body))), nil)
	}
	if err := xml.NewDecoder(resp.Body).Decode(out); err != nil {
		return services.Wrap(services.ErrExternalService, "plex", operation, "decode response", err)
	}
	return nil
}

func applyStandardHeaders(req *http.Request, clientIdentifier string) {
	req.Header.Set("X-Plex-Client-Identifier", clientIdentifier)
	req.Header.Set("X-Plex-Product", productName)
	req.Header.Set("X-Plex-Version", productVersion)
	req.Header.Set("X-Plex-Device-Name", productName)
	req.Header.Set("X-Plex-Platform", runtime.GOOS)
}
