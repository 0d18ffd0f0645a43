package grpc

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/encoding/protojson"
	"google.golang.org/protobuf/types/known/structpb"

	"github.com/andrescamacho/colonysim-go/internal/adapters/api"
	"github.com/andrescamacho/colonysim-go/internal/application/colony/dtos"
	"github.com/andrescamacho/colonysim-go/internal/domain/planetary"
	"github.com/andrescamacho/colonysim-go/internal/domain/shared"
)

// SummaryRequest asks for one colony
type SummaryRequest struct {
	CharacterID  int64      `json:"character_id"`
	ColonyID     int64      `json:"colony_id"`
	Target       *time.Time `json:"target,omitempty"`
	ForceRefresh bool       `json:"force_refresh,omitempty"`
}

// ListRequest asks for every colony of the given characters. An empty list
// selects every registered character.
type ListRequest struct {
	CharacterIDs []int64    `json:"character_ids,omitempty"`
	Target       *time.Time `json:"target,omitempty"`
	ForceRefresh bool       `json:"force_refresh,omitempty"`
}

// RefreshRequest asks for a forced snapshot refresh
type RefreshRequest struct {
	CharacterID int64 `json:"character_id"`
	ColonyID    int64 `json:"colony_id"`
}

// RefreshResponse carries the recomputed summary
type RefreshResponse struct {
	Summary     *dtos.ColonySummaryDTO `json:"summary"`
	RefreshedAt time.Time              `json:"refreshed_at"`
}

// HealthResponse reports daemon status
type HealthResponse struct {
	Status         string `json:"status"`
	UptimeSeconds  int64  `json:"uptime_seconds"`
	RefreshRunning bool   `json:"refresh_running"`
	LastRefreshRun string `json:"last_refresh_run,omitempty"`
}

// toStruct encodes v through its JSON form
func toStruct(v interface{}) (*structpb.Struct, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("failed to encode message: %w", err)
	}
	out := new(structpb.Struct)
	if err := protojson.Unmarshal(data, out); err != nil {
		return nil, fmt.Errorf("failed to encode message: %w", err)
	}
	return out, nil
}

// fromStruct decodes s into v through its JSON form
func fromStruct(s *structpb.Struct, v interface{}) error {
	data, err := protojson.Marshal(s)
	if err != nil {
		return fmt.Errorf("failed to decode message: %w", err)
	}
	if err := json.Unmarshal(data, v); err != nil {
		return fmt.Errorf("failed to decode message: %w", err)
	}
	return nil
}

func targetOrZero(t *time.Time) time.Time {
	if t == nil {
		return time.Time{}
	}
	return *t
}

func characterIDArg(id int64) (shared.CharacterID, error) {
	characterID, err := shared.NewCharacterID(id)
	if err != nil {
		return shared.CharacterID{}, status.Error(codes.InvalidArgument, err.Error())
	}
	return characterID, nil
}

func colonyIDArg(id int64) (planetary.ColonyID, error) {
	if id <= 0 {
		return 0, status.Error(codes.InvalidArgument, "colony_id must be positive")
	}
	return planetary.ColonyID(id), nil
}

// toStatusError maps application errors onto gRPC status codes
func toStatusError(err error) error {
	if err == nil {
		return nil
	}
	if _, ok := status.FromError(err); ok {
		return err
	}

	var (
		notFound     *shared.CharacterNotFoundError
		missingToken *shared.MissingTokenError
		validation   *shared.ValidationError
		invalid      *planetary.InvalidSnapshotError
		fetch        *planetary.SnapshotFetchError
	)
	switch {
	case errors.Is(err, context.Canceled):
		return status.Error(codes.Canceled, err.Error())
	case errors.Is(err, context.DeadlineExceeded):
		return status.Error(codes.DeadlineExceeded, err.Error())
	case errors.As(err, &notFound):
		return status.Error(codes.NotFound, err.Error())
	case errors.As(err, &missingToken):
		return status.Error(codes.Unauthenticated, err.Error())
	case errors.As(err, &validation), errors.As(err, &invalid):
		return status.Error(codes.InvalidArgument, err.Error())
	case errors.Is(err, api.ErrCircuitOpen), errors.As(err, &fetch):
		return status.Error(codes.Unavailable, err.Error())
	default:
		return status.Error(codes.Internal, err.Error())
	}
}
