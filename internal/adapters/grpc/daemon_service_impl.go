package grpc

import (
	"context"
	"fmt"

	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/emptypb"
	"google.golang.org/protobuf/types/known/structpb"

	"github.com/andrescamacho/colonysim-go/internal/application/colony/commands"
	"github.com/andrescamacho/colonysim-go/internal/application/colony/dtos"
	"github.com/andrescamacho/colonysim-go/internal/application/colony/queries"
	"github.com/andrescamacho/colonysim-go/internal/application/colony/services"
	"github.com/andrescamacho/colonysim-go/internal/domain/shared"
)

// colonyServiceImpl translates gRPC calls into mediator requests
type colonyServiceImpl struct {
	daemon *DaemonServer
}

func newColonyServiceImpl(daemon *DaemonServer) *colonyServiceImpl {
	return &colonyServiceImpl{daemon: daemon}
}

func (s *colonyServiceImpl) GetColonySummary(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	var in SummaryRequest
	if err := fromStruct(req, &in); err != nil {
		return nil, status.Error(codes.InvalidArgument, err.Error())
	}
	characterID, err := characterIDArg(in.CharacterID)
	if err != nil {
		return nil, err
	}
	colonyID, err := colonyIDArg(in.ColonyID)
	if err != nil {
		return nil, err
	}

	response, err := s.daemon.mediator.Send(s.daemon.requestContext(ctx), &queries.GetColonySummaryQuery{
		CharacterID:  characterID,
		ColonyID:     colonyID,
		Target:       targetOrZero(in.Target),
		ForceRefresh: in.ForceRefresh,
	})
	if err != nil {
		return nil, toStatusError(err)
	}

	result, ok := response.(*queries.GetColonySummaryResponse)
	if !ok {
		return nil, status.Error(codes.Internal, fmt.Sprintf("unexpected response type %T", response))
	}
	return toStruct(dtos.SummaryToDTO(result.Summary, result.Issues, result.Cached))
}

func (s *colonyServiceImpl) RefreshSnapshot(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	var in RefreshRequest
	if err := fromStruct(req, &in); err != nil {
		return nil, status.Error(codes.InvalidArgument, err.Error())
	}
	characterID, err := characterIDArg(in.CharacterID)
	if err != nil {
		return nil, err
	}
	colonyID, err := colonyIDArg(in.ColonyID)
	if err != nil {
		return nil, err
	}

	response, err := s.daemon.mediator.Send(s.daemon.requestContext(ctx), &commands.RefreshSnapshotCommand{
		CharacterID: characterID,
		ColonyID:    colonyID,
	})
	if err != nil {
		return nil, toStatusError(err)
	}

	result, ok := response.(*commands.RefreshSnapshotResponse)
	if !ok {
		return nil, status.Error(codes.Internal, fmt.Sprintf("unexpected response type %T", response))
	}
	return toStruct(RefreshResponse{
		Summary:     dtos.SummaryToDTO(result.Summary, nil, false),
		RefreshedAt: result.RefreshedAt,
	})
}

// StreamColonySummaries sends each colony result the moment it completes.
// The request context governs the whole run: a client that goes away
// cancels every outstanding fetch.
func (s *colonyServiceImpl) StreamColonySummaries(req *structpb.Struct, stream ColonySummaryStream) error {
	var in ListRequest
	if err := fromStruct(req, &in); err != nil {
		return status.Error(codes.InvalidArgument, err.Error())
	}

	characterIDs := make([]shared.CharacterID, 0, len(in.CharacterIDs))
	for _, id := range in.CharacterIDs {
		characterID, err := characterIDArg(id)
		if err != nil {
			return err
		}
		characterIDs = append(characterIDs, characterID)
	}

	ctx, cancel := context.WithCancel(s.daemon.requestContext(stream.Context()))
	defer cancel()

	// OnResult runs on the consuming goroutine, so Send is never concurrent
	var sendErr error
	_, err := s.daemon.mediator.Send(ctx, &queries.ListColonySummariesQuery{
		CharacterIDs: characterIDs,
		Target:       targetOrZero(in.Target),
		ForceRefresh: in.ForceRefresh,
		OnResult: func(result services.ColonyResult) {
			if sendErr != nil {
				return
			}
			msg, err := toStruct(dtos.ResultToDTO(result))
			if err == nil {
				err = stream.Send(msg)
			}
			if err != nil {
				sendErr = err
				cancel()
			}
		},
	})

	if sendErr != nil {
		return status.Error(codes.Unavailable, sendErr.Error())
	}
	return toStatusError(err)
}

func (s *colonyServiceImpl) Health(ctx context.Context, _ *emptypb.Empty) (*structpb.Struct, error) {
	return toStruct(s.daemon.health())
}
