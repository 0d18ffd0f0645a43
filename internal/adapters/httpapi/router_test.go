package httpapi_test

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/andrescamacho/colonysim-go/internal/adapters/httpapi"
	"github.com/andrescamacho/colonysim-go/internal/application/colony/commands"
	"github.com/andrescamacho/colonysim-go/internal/application/colony/queries"
	"github.com/andrescamacho/colonysim-go/internal/application/colony/services"
	"github.com/andrescamacho/colonysim-go/internal/application/mediator"
	refQueries "github.com/andrescamacho/colonysim-go/internal/application/reference/queries"
	"github.com/andrescamacho/colonysim-go/internal/domain/planetary"
	"github.com/andrescamacho/colonysim-go/internal/domain/shared"
	"github.com/andrescamacho/colonysim-go/test/helpers"
)

type handlerFunc func(ctx context.Context, request mediator.Request) (mediator.Response, error)

func (f handlerFunc) Handle(ctx context.Context, request mediator.Request) (mediator.Response, error) {
	return f(ctx, request)
}

type envelope struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data"`
	Error   *struct {
		Code    string `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}

func newServer(t *testing.T, m mediator.Mediator, gatherer prometheus.Gatherer) *httptest.Server {
	t.Helper()
	router := httpapi.NewRouter(httpapi.RouterConfig{
		Colonies:    httpapi.NewColonyHandler(m, helpers.NewMockLogger()),
		Gatherer:    gatherer,
		CORSOrigins: []string{"https://app.example"},
		Logger:      helpers.NewMockLogger(),
	})
	server := httptest.NewServer(router)
	t.Cleanup(server.Close)
	return server
}

func get(t *testing.T, url string) (*http.Response, envelope) {
	t.Helper()
	resp, err := http.Get(url)
	require.NoError(t, err)
	defer resp.Body.Close()
	var body envelope
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	return resp, body
}

func TestGetColony_ReturnsSummary(t *testing.T) {
	// Arrange
	m := mediator.NewMediator()
	var got *queries.GetColonySummaryQuery
	require.NoError(t, mediator.RegisterHandler[*queries.GetColonySummaryQuery](m, handlerFunc(
		func(ctx context.Context, request mediator.Request) (mediator.Response, error) {
			got = request.(*queries.GetColonySummaryQuery)
			return &queries.GetColonySummaryResponse{Summary: &planetary.ColonySummary{
				Owner:      shared.MustNewCharacterID(42),
				ColonyID:   4001,
				PlanetType: "temperate",
			}}, nil
		})))
	server := newServer(t, m, nil)

	// Act
	resp, body := get(t, server.URL+"/api/v1/characters/42/colonies/4001?at=2024-03-01T12:00:00Z&refresh=true")

	// Assert
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.True(t, body.Success)
	assert.Contains(t, string(body.Data), `"planet_type":"temperate"`)
	assert.True(t, got.ForceRefresh)
	assert.True(t, got.Target.Equal(time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)))
}

func TestGetColony_BadParameters(t *testing.T) {
	// Arrange
	server := newServer(t, mediator.NewMediator(), nil)

	for _, path := range []string{
		"/api/v1/characters/abc/colonies/1",
		"/api/v1/characters/0/colonies/1",
		"/api/v1/characters/42/colonies/-5",
		"/api/v1/characters/42/colonies/1?at=yesterday",
	} {
		// Act
		resp, body := get(t, server.URL+path)

		// Assert
		assert.Equal(t, http.StatusBadRequest, resp.StatusCode, path)
		require.NotNil(t, body.Error, path)
		assert.False(t, body.Success)
	}
}

func TestGetColony_MapsDomainErrors(t *testing.T) {
	// Arrange
	m := mediator.NewMediator()
	require.NoError(t, mediator.RegisterHandler[*queries.GetColonySummaryQuery](m, handlerFunc(
		func(ctx context.Context, request mediator.Request) (mediator.Response, error) {
			return nil, planetary.NewSnapshotFetchError(4001, context.DeadlineExceeded)
		})))
	require.NoError(t, mediator.RegisterHandler[*refQueries.GetRecipeQuery](m, handlerFunc(
		func(ctx context.Context, request mediator.Request) (mediator.Response, error) {
			return nil, planetary.NewUnknownRecipeError(request.(*refQueries.GetRecipeQuery).RecipeID)
		})))
	server := newServer(t, m, nil)

	// Act
	colonyResp, _ := get(t, server.URL+"/api/v1/characters/42/colonies/4001")
	recipeResp, recipeBody := get(t, server.URL+"/api/v1/recipes/77")

	// Assert
	assert.Equal(t, http.StatusGatewayTimeout, colonyResp.StatusCode)
	assert.Equal(t, http.StatusNotFound, recipeResp.StatusCode)
	assert.Equal(t, "NOT_FOUND", recipeBody.Error.Code)
}

func TestListColonies_ReturnsResultsInOrder(t *testing.T) {
	// Arrange
	m := mediator.NewMediator()
	owner := shared.MustNewCharacterID(42)
	require.NoError(t, mediator.RegisterHandler[*queries.ListColonySummariesQuery](m, handlerFunc(
		func(ctx context.Context, request mediator.Request) (mediator.Response, error) {
			return &queries.ListColonySummariesResponse{
				RunID:  "colonies-1",
				Failed: 1,
				Results: []services.ColonyResult{
					{Index: 0, Request: services.ColonyRequest{Ref: planetary.ColonyRef{Owner: owner, ColonyID: 1}},
						Summary: &planetary.ColonySummary{Owner: owner, ColonyID: 1}},
					{Index: 1, Request: services.ColonyRequest{Ref: planetary.ColonyRef{Owner: owner, ColonyID: 2}},
						Err: planetary.NewSnapshotFetchError(2, context.Canceled)},
				},
			}, nil
		})))
	server := newServer(t, m, nil)

	// Act
	resp, body := get(t, server.URL+"/api/v1/characters/42/colonies")

	// Assert
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var data struct {
		RunID    string `json:"run_id"`
		Failed   int    `json:"failed"`
		Colonies []struct {
			ColonyID int64  `json:"colony_id"`
			Error    string `json:"error"`
		} `json:"colonies"`
	}
	require.NoError(t, json.Unmarshal(body.Data, &data))
	assert.Equal(t, "colonies-1", data.RunID)
	assert.Equal(t, 1, data.Failed)
	require.Len(t, data.Colonies, 2)
	assert.Empty(t, data.Colonies[0].Error)
	assert.NotEmpty(t, data.Colonies[1].Error)
}

func TestRefreshColony_UsesPost(t *testing.T) {
	// Arrange
	m := mediator.NewMediator()
	require.NoError(t, mediator.RegisterHandler[*commands.RefreshSnapshotCommand](m, handlerFunc(
		func(ctx context.Context, request mediator.Request) (mediator.Response, error) {
			return &commands.RefreshSnapshotResponse{RefreshedAt: time.Now()}, nil
		})))
	server := newServer(t, m, nil)

	// Act
	getResp, err := http.Get(server.URL + "/api/v1/characters/42/colonies/4001/refresh")
	require.NoError(t, err)
	getResp.Body.Close()
	postResp, err := http.Post(server.URL+"/api/v1/characters/42/colonies/4001/refresh", "application/json", strings.NewReader("{}"))
	require.NoError(t, err)
	postResp.Body.Close()

	// Assert
	assert.Equal(t, http.StatusMethodNotAllowed, getResp.StatusCode)
	assert.Equal(t, http.StatusOK, postResp.StatusCode)
}

func TestMetricsAndHealth(t *testing.T) {
	// Arrange
	reg := prometheus.NewRegistry()
	counter := prometheus.NewCounter(prometheus.CounterOpts{Name: "colonysim_test_total", Help: "test"})
	reg.MustRegister(counter)
	counter.Inc()
	server := newServer(t, mediator.NewMediator(), reg)

	// Act
	metricsResp, err := http.Get(server.URL + "/metrics")
	require.NoError(t, err)
	defer metricsResp.Body.Close()
	body, err := io.ReadAll(metricsResp.Body)
	require.NoError(t, err)
	healthResp, _ := get(t, server.URL+"/healthz")

	// Assert
	assert.Equal(t, http.StatusOK, metricsResp.StatusCode)
	assert.Contains(t, string(body), "colonysim_test_total 1")
	assert.Equal(t, http.StatusOK, healthResp.StatusCode)
}

func TestCORS_AllowsConfiguredOrigin(t *testing.T) {
	// Arrange
	server := newServer(t, mediator.NewMediator(), nil)
	req, err := http.NewRequest(http.MethodOptions, server.URL+"/api/v1/characters/42/colonies", nil)
	require.NoError(t, err)
	req.Header.Set("Origin", "https://app.example")
	req.Header.Set("Access-Control-Request-Method", "GET")

	// Act
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	resp.Body.Close()

	// Assert
	assert.Equal(t, "https://app.example", resp.Header.Get("Access-Control-Allow-Origin"))
}
