package grpc

import (
	"context"
	"errors"
	"fmt"
	"io"

	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/protobuf/types/known/emptypb"
	"google.golang.org/protobuf/types/known/structpb"

	"github.com/andrescamacho/colonysim-go/internal/application/colony/dtos"
)

// DaemonClientGRPC talks to a running daemon
type DaemonClientGRPC struct {
	conn *grpc.ClientConn
}

// NewDaemonClientGRPC connects to the daemon's Unix socket
// (e.g. "/tmp/colonysim-daemon.sock")
func NewDaemonClientGRPC(socketPath string) (*DaemonClientGRPC, error) {
	conn, err := grpc.NewClient(
		"unix:"+socketPath,
		grpc.WithTransportCredentials(insecure.NewCredentials()),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to daemon socket: %w", err)
	}
	return NewDaemonClientWithConn(conn), nil
}

// NewDaemonClientWithConn wraps an existing connection
func NewDaemonClientWithConn(conn *grpc.ClientConn) *DaemonClientGRPC {
	return &DaemonClientGRPC{conn: conn}
}

// Close closes the gRPC connection
func (c *DaemonClientGRPC) Close() error {
	if c.conn != nil {
		return c.conn.Close()
	}
	return nil
}

func (c *DaemonClientGRPC) invoke(ctx context.Context, method string, in interface{}, out interface{}) error {
	req, err := toStruct(in)
	if err != nil {
		return err
	}
	resp := new(structpb.Struct)
	if err := c.conn.Invoke(ctx, "/"+ColonyServiceName+"/"+method, req, resp); err != nil {
		return err
	}
	return fromStruct(resp, out)
}

// GetColonySummary summarizes one colony
func (c *DaemonClientGRPC) GetColonySummary(ctx context.Context, req SummaryRequest) (*dtos.ColonySummaryDTO, error) {
	var out dtos.ColonySummaryDTO
	if err := c.invoke(ctx, "GetColonySummary", req, &out); err != nil {
		return nil, fmt.Errorf("failed to get colony summary: %w", err)
	}
	return &out, nil
}

// RefreshSnapshot forces a fresh snapshot of one colony
func (c *DaemonClientGRPC) RefreshSnapshot(ctx context.Context, req RefreshRequest) (*RefreshResponse, error) {
	var out RefreshResponse
	if err := c.invoke(ctx, "RefreshSnapshot", req, &out); err != nil {
		return nil, fmt.Errorf("failed to refresh snapshot: %w", err)
	}
	return &out, nil
}

// Health reports daemon status
func (c *DaemonClientGRPC) Health(ctx context.Context) (*HealthResponse, error) {
	resp := new(structpb.Struct)
	if err := c.conn.Invoke(ctx, "/"+ColonyServiceName+"/Health", new(emptypb.Empty), resp); err != nil {
		return nil, fmt.Errorf("failed to query daemon health: %w", err)
	}
	var out HealthResponse
	if err := fromStruct(resp, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// StreamColonySummaries calls onResult for each colony as the daemon
// finishes it. Cancelling ctx aborts the run on the daemon side.
func (c *DaemonClientGRPC) StreamColonySummaries(ctx context.Context, req ListRequest, onResult func(dtos.ColonyResultDTO)) error {
	in, err := toStruct(req)
	if err != nil {
		return err
	}

	stream, err := c.conn.NewStream(ctx, &colonyServiceDesc.Streams[0], "/"+ColonyServiceName+"/StreamColonySummaries")
	if err != nil {
		return fmt.Errorf("failed to open summary stream: %w", err)
	}
	if err := stream.SendMsg(in); err != nil {
		return fmt.Errorf("failed to send stream request: %w", err)
	}
	if err := stream.CloseSend(); err != nil {
		return fmt.Errorf("failed to close stream send side: %w", err)
	}

	for {
		msg := new(structpb.Struct)
		if err := stream.RecvMsg(msg); err != nil {
			if errors.Is(err, io.EOF) {
				return nil
			}
			return err
		}
		var result dtos.ColonyResultDTO
		if err := fromStruct(msg, &result); err != nil {
			return err
		}
		onResult(result)
	}
}
