package mojang

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/smiileyface/ezpunishments/internal/common/logger"
	"github.com/smiileyface/ezpunishments/internal/observability/metrics"
)

// Resolver maps a Minecraft display name to its stable profile UUID.
type Resolver interface {
	Resolve(ctx context.Context, username string) (string, error)
}

// ErrNameNotFound means the directory has no account for the name.
var ErrNameNotFound = errors.New("minecraft username not found")

type Client struct {
	baseURL    string
	httpClient *http.Client
	log        *logger.Logger
}

func NewClient(baseURL string, timeout time.Duration, log *logger.Logger) *Client {
	return &Client{
		baseURL:    baseURL,
		httpClient: &http.Client{Timeout: timeout},
		log:        log,
	}
}

type profileResponse struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// Resolve performs one lookup against the Mojang profile directory. A 204
// or 404 response means the name is unassigned; transient failures
// propagate unchanged.
func (c *Client) Resolve(ctx context.Context, username string) (string, error) {
	start := time.Now()

	req, err := http.NewRequestWithContext(
		ctx,
		http.MethodGet,
		c.baseURL+"/users/profiles/minecraft/"+url.PathEscape(username),
		nil,
	)
	if err != nil {
		return "", fmt.Errorf("failed to build mojang request: %w", err)
	}

	res, err := c.httpClient.Do(req)
	if err != nil {
		metrics.MojangLookupsTotal.WithLabelValues("error").Inc()
		c.log.WithFields(ctx, logger.Fields{
			"username": username,
			"action":   "mojang_lookup_failed",
		}).Errorf("mojang lookup failed: %v", err)
		return "", fmt.Errorf("mojang lookup failed: %w", err)
	}
	defer res.Body.Close()

	metrics.MojangLookupDurationSeconds.Observe(time.Since(start).Seconds())

	switch res.StatusCode {
	case http.StatusOK:
	case http.StatusNoContent, http.StatusNotFound:
		metrics.MojangLookupsTotal.WithLabelValues("miss").Inc()
		c.log.WithFields(ctx, logger.Fields{
			"username": username,
			"action":   "mojang_name_not_found",
		}).Warn("mojang lookup: name not found")
		return "", ErrNameNotFound
	default:
		metrics.MojangLookupsTotal.WithLabelValues("error").Inc()
		return "", fmt.Errorf("mojang lookup returned status %d", res.StatusCode)
	}

	var profile profileResponse
	if err := json.NewDecoder(res.Body).Decode(&profile); err != nil {
		metrics.MojangLookupsTotal.WithLabelValues("error").Inc()
		return "", fmt.Errorf("failed to decode mojang response: %w", err)
	}

	if profile.ID == "" {
		metrics.MojangLookupsTotal.WithLabelValues("error").Inc()
		return "", fmt.Errorf("mojang response missing profile id for %q", username)
	}

	metrics.MojangLookupsTotal.WithLabelValues("hit").Inc()
	return profile.ID, nil
}
