package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"math/rand"
	"net/http"
	"strconv"
	"sync"
	"time"

	"golang.org/x/time/rate"

	"github.com/andrescamacho/colonysim-go/internal/domain/planetary"
	"github.com/andrescamacho/colonysim-go/internal/domain/shared"
)

const (
	defaultBaseURL     = "https://esi.evetech.net/latest"
	defaultTimeout     = 30 * time.Second
	defaultMaxRetries  = 3
	defaultBackoffBase = time.Second
	defaultUserAgent   = "colonysim-go"
	defaultListingTTL  = time.Minute

	endpointPlanets      = "planets"
	endpointPlanetLayout = "planet_layout"
)

// ClientOptions configures an ESIClient. Zero values fall back to defaults.
type ClientOptions struct {
	BaseURL         string
	UserAgent       string
	Timeout         time.Duration
	RequestsPerSec  float64
	Burst           int
	MaxRetries      int // negative selects the default, zero disables retries
	BackoffBase     time.Duration
	BreakerFailures int
	BreakerCooldown time.Duration
	ListingTTL      time.Duration // how long a planet listing serves snapshot headers
	Metrics         RequestMetrics
}

// ESIClient fetches colony layouts from the game API. It implements
// planetary.SnapshotProvider.
type ESIClient struct {
	httpClient  *http.Client
	rateLimiter *rate.Limiter
	breaker     *CircuitBreaker
	tokens      TokenSource
	baseURL     string
	userAgent   string
	maxRetries  int
	backoffBase time.Duration
	clock       shared.Clock
	metrics     RequestMetrics

	listingTTL time.Duration
	listingsMu sync.Mutex
	listings   map[int64]cachedListing
}

type cachedListing struct {
	planets   []planetListing
	fetchedAt time.Time
}

// NewESIClient creates a client. If clock is nil, uses RealClock.
func NewESIClient(tokens TokenSource, opts ClientOptions, clock shared.Clock) *ESIClient {
	if clock == nil {
		clock = shared.NewRealClock()
	}
	if opts.BaseURL == "" {
		opts.BaseURL = defaultBaseURL
	}
	if opts.UserAgent == "" {
		opts.UserAgent = defaultUserAgent
	}
	if opts.Timeout <= 0 {
		opts.Timeout = defaultTimeout
	}
	if opts.RequestsPerSec <= 0 {
		opts.RequestsPerSec = 10
	}
	if opts.Burst <= 0 {
		opts.Burst = 10
	}
	if opts.MaxRetries < 0 {
		opts.MaxRetries = defaultMaxRetries
	}
	if opts.BackoffBase <= 0 {
		opts.BackoffBase = defaultBackoffBase
	}
	if opts.BreakerFailures <= 0 {
		opts.BreakerFailures = 5
	}
	if opts.BreakerCooldown <= 0 {
		opts.BreakerCooldown = 30 * time.Second
	}
	if opts.Metrics == nil {
		opts.Metrics = noOpRequestMetrics{}
	}
	if opts.ListingTTL <= 0 {
		opts.ListingTTL = defaultListingTTL
	}

	return &ESIClient{
		httpClient:  &http.Client{Timeout: opts.Timeout},
		rateLimiter: rate.NewLimiter(rate.Limit(opts.RequestsPerSec), opts.Burst),
		breaker:     NewCircuitBreaker(opts.BreakerFailures, opts.BreakerCooldown, clock),
		tokens:      tokens,
		baseURL:     opts.BaseURL,
		userAgent:   opts.UserAgent,
		maxRetries:  opts.MaxRetries,
		backoffBase: opts.BackoffBase,
		clock:       clock,
		metrics:     opts.Metrics,
		listingTTL:  opts.ListingTTL,
		listings:    make(map[int64]cachedListing),
	}
}

// planetListing is one entry of the character planet list
type planetListing struct {
	PlanetID   int64  `json:"planet_id"`
	PlanetType string `json:"planet_type"`
	LastUpdate string `json:"last_update"`
	OwnerID    int64  `json:"owner_id"`
}

// planetLayout is the planet detail document
type planetLayout struct {
	Pins []planetary.PinRecord `json:"pins"`
}

// ListColonies returns the colonies of owner
func (c *ESIClient) ListColonies(ctx context.Context, owner shared.CharacterID) ([]planetary.ColonyRef, error) {
	listing, err := c.listPlanets(ctx, owner)
	if err != nil {
		return nil, err
	}

	refs := make([]planetary.ColonyRef, 0, len(listing))
	for _, p := range listing {
		refs = append(refs, planetary.ColonyRef{Owner: owner, ColonyID: planetary.ColonyID(p.PlanetID)})
	}
	return refs, nil
}

// FetchSnapshot retrieves the layout of one colony. The remote API is always
// asked for the layout; the colony header comes from the owner's planet listing,
// reused while younger than the listing TTL. forceRefresh re-lists the planets.
func (c *ESIClient) FetchSnapshot(ctx context.Context, ref planetary.ColonyRef, forceRefresh bool) (*planetary.Snapshot, error) {
	header, err := c.colonyHeader(ctx, ref, forceRefresh)
	if err != nil {
		return nil, planetary.NewSnapshotFetchError(ref.ColonyID, err)
	}

	var layout planetLayout
	path := fmt.Sprintf("/characters/%d/planets/%d/", ref.Owner.Value(), int64(ref.ColonyID))
	if err := c.get(ctx, ref.Owner, endpointPlanetLayout, path, &layout); err != nil {
		return nil, planetary.NewSnapshotFetchError(ref.ColonyID, err)
	}

	return &planetary.Snapshot{
		Owner:      ref.Owner.Value(),
		ColonyID:   int64(ref.ColonyID),
		PlanetType: header.PlanetType,
		LastUpdate: header.LastUpdate,
		Pins:       layout.Pins,
	}, nil
}

// BreakerState exposes the circuit breaker state for status reporting
func (c *ESIClient) BreakerState() CircuitState {
	return c.breaker.State()
}

// colonyHeader finds the listing entry of a colony. A cached listing that no
// longer names the colony is refreshed once.
func (c *ESIClient) colonyHeader(ctx context.Context, ref planetary.ColonyRef, forceRefresh bool) (*planetListing, error) {
	if !forceRefresh {
		if listing, ok := c.cachedListing(ref.Owner); ok {
			if header := findPlanet(listing, ref.ColonyID); header != nil {
				return header, nil
			}
		}
	}

	listing, err := c.listPlanets(ctx, ref.Owner)
	if err != nil {
		return nil, err
	}
	if header := findPlanet(listing, ref.ColonyID); header != nil {
		return header, nil
	}
	return nil, fmt.Errorf("colony not listed for character %s", ref.Owner)
}

func findPlanet(listing []planetListing, colonyID planetary.ColonyID) *planetListing {
	for i := range listing {
		if planetary.ColonyID(listing[i].PlanetID) == colonyID {
			header := listing[i]
			return &header
		}
	}
	return nil
}

func (c *ESIClient) cachedListing(owner shared.CharacterID) ([]planetListing, bool) {
	c.listingsMu.Lock()
	defer c.listingsMu.Unlock()
	cached, ok := c.listings[owner.Value()]
	if !ok || c.clock.Now().Sub(cached.fetchedAt) >= c.listingTTL {
		return nil, false
	}
	return cached.planets, true
}

func (c *ESIClient) listPlanets(ctx context.Context, owner shared.CharacterID) ([]planetListing, error) {
	var listing []planetListing
	path := fmt.Sprintf("/characters/%d/planets/", owner.Value())
	if err := c.get(ctx, owner, endpointPlanets, path, &listing); err != nil {
		return nil, fmt.Errorf("failed to list planets: %w", err)
	}

	c.listingsMu.Lock()
	c.listings[owner.Value()] = cachedListing{planets: listing, fetchedAt: c.clock.Now()}
	c.listingsMu.Unlock()
	return listing, nil
}

func (c *ESIClient) get(ctx context.Context, owner shared.CharacterID, endpoint, path string, result interface{}) error {
	token, err := c.tokens.Token(ctx, owner)
	if err != nil {
		return err
	}

	return c.breaker.Call(func() error {
		return c.request(ctx, http.MethodGet, endpoint, path, token, result)
	}, countsAsFailure)
}

// countsAsFailure keeps client errors and cancellations from tripping the breaker
func countsAsFailure(err error) bool {
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return false
	}
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr.StatusCode >= 500 || apiErr.StatusCode == http.StatusTooManyRequests
	}
	return true
}

// APIError is a non-retryable error response from the game API
type APIError struct {
	StatusCode int
	Body       string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("API error (status %d): %s", e.StatusCode, e.Body)
}

// retryableError represents an error that should trigger a retry
type retryableError struct {
	message    string
	statusCode int
	retryAfter time.Duration
}

func (e *retryableError) Error() string {
	return e.message
}

func addJitter(d time.Duration) time.Duration {
	if d <= 0 {
		return d
	}
	return d + time.Duration(rand.Int63n(int64(d)/2+1))
}

// request performs one logical call with exponential backoff plus jitter on
// network errors, 429 and 5xx responses
func (c *ESIClient) request(ctx context.Context, method, endpoint, path, token string, result interface{}) error {
	url := c.baseURL + path
	var lastErr *retryableError

	for attempt := 0; attempt <= c.maxRetries; attempt++ {
		waitStart := time.Now()
		if err := c.rateLimiter.Wait(ctx); err != nil {
			return fmt.Errorf("rate limiter error: %w", err)
		}
		c.metrics.RecordRateLimitWait(method, endpoint, time.Since(waitStart))

		lastErr = nil
		start := time.Now()
		body, status, err := c.do(ctx, method, url, token)
		c.metrics.RecordRequest(method, endpoint, status, time.Since(start))
		if err != nil {
			var retryable *retryableError
			if !errors.As(err, &retryable) {
				return err
			}
			lastErr = retryable
		} else {
			if result != nil {
				if err := json.Unmarshal(body, result); err != nil {
					return fmt.Errorf("failed to unmarshal response: %w", err)
				}
			}
			return nil
		}

		if attempt >= c.maxRetries {
			break
		}
		if ctx.Err() != nil {
			return fmt.Errorf("context cancelled: %w", ctx.Err())
		}
		c.metrics.RecordRetry(method, endpoint, retryReason(lastErr))

		delay := addJitter(c.backoffBase * time.Duration(1<<attempt))
		if lastErr.retryAfter > 0 {
			delay = lastErr.retryAfter
		}
		c.clock.Sleep(delay)
	}

	if lastErr != nil && lastErr.statusCode > 0 {
		return fmt.Errorf("max retries exceeded: %w", &APIError{StatusCode: lastErr.statusCode, Body: lastErr.message})
	}
	return fmt.Errorf("max retries exceeded: %w", lastErr)
}

func retryReason(err *retryableError) string {
	switch {
	case err.statusCode == http.StatusTooManyRequests:
		return "rate_limited"
	case err.statusCode >= 500:
		return "server_error"
	default:
		return "network_error"
	}
}

// do performs a single HTTP exchange. The status code is zero when no
// response was received.
func (c *ESIClient) do(ctx context.Context, method, url, token string) ([]byte, int, error) {
	req, err := http.NewRequestWithContext(ctx, method, url, nil)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", c.userAgent)
	req.Header.Set("Authorization", "Bearer "+token)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		if ctx.Err() != nil {
			return nil, 0, fmt.Errorf("context cancelled: %w", ctx.Err())
		}
		return nil, 0, &retryableError{message: fmt.Sprintf("network error: %v", err)}
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, resp.StatusCode, fmt.Errorf("failed to read response: %w", err)
	}

	switch {
	case resp.StatusCode == http.StatusTooManyRequests:
		var retryAfter time.Duration
		if v := resp.Header.Get("Retry-After"); v != "" {
			if seconds, err := strconv.Atoi(v); err == nil {
				retryAfter = time.Duration(seconds) * time.Second
			}
		}
		return nil, resp.StatusCode, &retryableError{message: "rate limited (429)", statusCode: resp.StatusCode, retryAfter: retryAfter}
	case resp.StatusCode >= 500:
		return nil, resp.StatusCode, &retryableError{message: fmt.Sprintf("server error (%d)", resp.StatusCode), statusCode: resp.StatusCode}
	case resp.StatusCode < 200 || resp.StatusCode >= 300:
		return nil, resp.StatusCode, &APIError{StatusCode: resp.StatusCode, Body: string(body)}
	}
	return body, resp.StatusCode, nil
}
