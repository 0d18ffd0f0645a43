package grpc_test

import (
	"context"
	"errors"
	"net"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/grpc/status"
	"google.golang.org/grpc/test/bufconn"

	daemon "github.com/andrescamacho/colonysim-go/internal/adapters/grpc"
	"github.com/andrescamacho/colonysim-go/internal/application/colony/commands"
	"github.com/andrescamacho/colonysim-go/internal/application/colony/dtos"
	"github.com/andrescamacho/colonysim-go/internal/application/colony/queries"
	"github.com/andrescamacho/colonysim-go/internal/application/colony/services"
	"github.com/andrescamacho/colonysim-go/internal/application/mediator"
	"github.com/andrescamacho/colonysim-go/internal/domain/planetary"
	"github.com/andrescamacho/colonysim-go/internal/domain/shared"
	"github.com/andrescamacho/colonysim-go/test/helpers"
)

var t0 = time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)

type handlerFunc func(ctx context.Context, request mediator.Request) (mediator.Response, error)

func (f handlerFunc) Handle(ctx context.Context, request mediator.Request) (mediator.Response, error) {
	return f(ctx, request)
}

func testSummary(owner int64, colony int64) *planetary.ColonySummary {
	expiry := t0.Add(6 * time.Hour)
	return &planetary.ColonySummary{
		Owner:         shared.MustNewCharacterID(owner),
		ColonyID:      planetary.ColonyID(colony),
		PlanetType:    "barren",
		Version:       "v1",
		TargetTime:    t0,
		NearestExpiry: &expiry,
		Pins: []planetary.PinView{{
			PinID:  1,
			TypeID: 3060,
			Kind:   planetary.PinKindExtractor,
			Status: planetary.PinStatusActive,
		}},
		StorageFill:   map[planetary.PinID]float64{9: 0.5, 3: 0.25},
		FinalProducts: []planetary.FinalProductView{{TypeID: 2393, Name: "Bacteria"}},
	}
}

type fixture struct {
	mediator mediator.Mediator
	client   *daemon.DaemonClientGRPC
	server   *daemon.DaemonServer
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	lis := bufconn.Listen(1 << 20)
	m := mediator.NewMediator()
	server := daemon.NewDaemonServerWithListener(m, helpers.NewMockLogger(), lis)
	server.SetShutdownTimeout(time.Second)

	errCh := make(chan error, 1)
	go func() { errCh <- server.Start() }()

	conn, err := grpc.NewClient("passthrough:///bufnet",
		grpc.WithContextDialer(func(ctx context.Context, _ string) (net.Conn, error) { return lis.DialContext(ctx) }),
		grpc.WithTransportCredentials(insecure.NewCredentials()),
	)
	require.NoError(t, err)
	client := daemon.NewDaemonClientWithConn(conn)

	t.Cleanup(func() {
		client.Close()
		server.Stop()
		<-errCh
	})
	return &fixture{mediator: m, client: client, server: server}
}

func TestGetColonySummary_RoundTrip(t *testing.T) {
	// Arrange
	f := newFixture(t)
	var got *queries.GetColonySummaryQuery
	require.NoError(t, mediator.RegisterHandler[*queries.GetColonySummaryQuery](f.mediator, handlerFunc(
		func(ctx context.Context, request mediator.Request) (mediator.Response, error) {
			got = request.(*queries.GetColonySummaryQuery)
			return &queries.GetColonySummaryResponse{Summary: testSummary(42, 4001), Cached: true}, nil
		})))

	// Act
	target := t0
	summary, err := f.client.GetColonySummary(context.Background(), daemon.SummaryRequest{CharacterID: 42, ColonyID: 4001, Target: &target})

	// Assert
	require.NoError(t, err)
	assert.Equal(t, int64(42), got.CharacterID.Value())
	assert.True(t, got.Target.Equal(t0))
	assert.Equal(t, int64(4001), summary.ColonyID)
	assert.Equal(t, "barren", summary.PlanetType)
	assert.True(t, summary.Cached)
	require.Len(t, summary.Pins, 1)
	assert.Equal(t, "ACTIVE", summary.Pins[0].Status)
	assert.Equal(t, []dtos.StorageFillDTO{{PinID: 3, Fill: 0.25}, {PinID: 9, Fill: 0.5}}, summary.StorageFill)
	require.NotNil(t, summary.NearestExpiry)
	assert.True(t, summary.NearestExpiry.Equal(t0.Add(6*time.Hour)))
}

func TestGetColonySummary_RejectsInvalidArguments(t *testing.T) {
	// Arrange
	f := newFixture(t)

	// Act
	_, err := f.client.GetColonySummary(context.Background(), daemon.SummaryRequest{CharacterID: 0, ColonyID: 1})

	// Assert
	require.Error(t, err)
	assert.Equal(t, codes.InvalidArgument, status.Code(errors.Unwrap(err)))
}

func TestGetColonySummary_MapsDomainErrors(t *testing.T) {
	// Arrange
	f := newFixture(t)
	require.NoError(t, mediator.RegisterHandler[*queries.GetColonySummaryQuery](f.mediator, handlerFunc(
		func(ctx context.Context, request mediator.Request) (mediator.Response, error) {
			return nil, shared.NewMissingTokenError(42)
		})))

	// Act
	_, err := f.client.GetColonySummary(context.Background(), daemon.SummaryRequest{CharacterID: 42, ColonyID: 1})

	// Assert
	assert.Equal(t, codes.Unauthenticated, status.Code(errors.Unwrap(err)))
}

func TestRefreshSnapshot_ReturnsSummary(t *testing.T) {
	// Arrange
	f := newFixture(t)
	require.NoError(t, mediator.RegisterHandler[*commands.RefreshSnapshotCommand](f.mediator, handlerFunc(
		func(ctx context.Context, request mediator.Request) (mediator.Response, error) {
			return &commands.RefreshSnapshotResponse{Summary: testSummary(42, 4001), RefreshedAt: t0}, nil
		})))

	// Act
	resp, err := f.client.RefreshSnapshot(context.Background(), daemon.RefreshRequest{CharacterID: 42, ColonyID: 4001})

	// Assert
	require.NoError(t, err)
	assert.True(t, resp.RefreshedAt.Equal(t0))
	assert.Equal(t, "Bacteria", resp.Summary.FinalProducts[0].Name)
}

func TestStreamColonySummaries_DeliversEachResult(t *testing.T) {
	// Arrange
	f := newFixture(t)
	require.NoError(t, mediator.RegisterHandler[*queries.ListColonySummariesQuery](f.mediator, handlerFunc(
		func(ctx context.Context, request mediator.Request) (mediator.Response, error) {
			query := request.(*queries.ListColonySummariesQuery)
			owner := shared.MustNewCharacterID(42)
			results := []services.ColonyResult{
				{Index: 1, Request: services.ColonyRequest{Ref: planetary.ColonyRef{Owner: owner, ColonyID: 2}}, Summary: testSummary(42, 2)},
				{Index: 0, Request: services.ColonyRequest{Ref: planetary.ColonyRef{Owner: owner, ColonyID: 1}}, Err: errors.New("upstream timeout")},
			}
			for _, r := range results {
				query.OnResult(r)
			}
			return &queries.ListColonySummariesResponse{Results: results, Failed: 1}, nil
		})))

	// Act
	var mu sync.Mutex
	var received []dtos.ColonyResultDTO
	err := f.client.StreamColonySummaries(context.Background(), daemon.ListRequest{CharacterIDs: []int64{42}},
		func(r dtos.ColonyResultDTO) {
			mu.Lock()
			received = append(received, r)
			mu.Unlock()
		})

	// Assert
	require.NoError(t, err)
	require.Len(t, received, 2)
	assert.Equal(t, 1, received[0].Index)
	assert.NotNil(t, received[0].Summary)
	assert.Equal(t, "upstream timeout", received[1].Error)
	assert.Nil(t, received[1].Summary)
}

func TestHealth_ReportsRefreshRunner(t *testing.T) {
	// Arrange
	f := newFixture(t)

	// Act
	health, err := f.client.Health(context.Background())

	// Assert
	require.NoError(t, err)
	assert.Equal(t, "ok", health.Status)
	assert.False(t, health.RefreshRunning)
}

type recordingRunLogs struct {
	mu       sync.Mutex
	messages []string
}

func (r *recordingRunLogs) Log(ctx context.Context, runID, level, message string, metadata map[string]interface{}) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.messages = append(r.messages, message)
	return nil
}

func TestRefreshRunner_RunOnceForcesRefresh(t *testing.T) {
	// Arrange
	m := mediator.NewMediator()
	var forced bool
	require.NoError(t, mediator.RegisterHandler[*queries.ListColonySummariesQuery](m, handlerFunc(
		func(ctx context.Context, request mediator.Request) (mediator.Response, error) {
			forced = request.(*queries.ListColonySummariesQuery).ForceRefresh
			return &queries.ListColonySummariesResponse{Results: make([]services.ColonyResult, 3), Failed: 1}, nil
		})))
	runLogs := &recordingRunLogs{}
	runner := daemon.NewRefreshRunner(m, time.Hour, helpers.NewMockLogger(), runLogs, shared.NewMockClock(t0))

	// Act
	report := runner.RunOnce(context.Background())

	// Assert
	assert.True(t, forced)
	assert.Equal(t, 3, report.Colonies)
	assert.Equal(t, 1, report.Failed)
	assert.NoError(t, report.Err)
	assert.Equal(t, t0, report.StartedAt)
	assert.ElementsMatch(t, []string{"Refresh run started", "Refresh run completed"}, runLogs.messages)
	assert.Equal(t, report.RunID, runner.LastReport().RunID)
}

func TestRefreshRunner_StartAndStop(t *testing.T) {
	// Arrange
	m := mediator.NewMediator()
	calls := make(chan struct{}, 4)
	require.NoError(t, mediator.RegisterHandler[*queries.ListColonySummariesQuery](m, handlerFunc(
		func(ctx context.Context, request mediator.Request) (mediator.Response, error) {
			select {
			case calls <- struct{}{}:
			default:
			}
			return &queries.ListColonySummariesResponse{}, nil
		})))
	runner := daemon.NewRefreshRunner(m, time.Hour, helpers.NewMockLogger(), nil, nil)

	// Act
	runner.Start()
	<-calls
	running := runner.Running()
	runner.Stop(time.Second)

	// Assert
	assert.True(t, running)
	assert.False(t, runner.Running())
}

func TestRefreshRunner_StopWithoutStartReturnsImmediately(t *testing.T) {
	// Arrange
	logger := helpers.NewMockLogger()
	runner := daemon.NewRefreshRunner(mediator.NewMediator(), time.Hour, logger, nil, nil)
	start := time.Now()

	// Act
	runner.Stop(2 * time.Second)

	// Assert
	assert.Less(t, time.Since(start), time.Second)
	assert.Zero(t, logger.CountLevel("WARNING"))
	assert.False(t, runner.Running())
}
