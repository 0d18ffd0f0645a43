package httpapi

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/andrescamacho/colonysim-go/internal/application/colony/commands"
	"github.com/andrescamacho/colonysim-go/internal/application/colony/dtos"
	"github.com/andrescamacho/colonysim-go/internal/application/colony/queries"
	"github.com/andrescamacho/colonysim-go/internal/application/common"
	refQueries "github.com/andrescamacho/colonysim-go/internal/application/reference/queries"
	"github.com/andrescamacho/colonysim-go/internal/domain/planetary"
	"github.com/andrescamacho/colonysim-go/internal/domain/shared"
)

// ColonyHandler serves colony summaries over HTTP
type ColonyHandler struct {
	mediator common.Mediator
	logger   common.Logger
}

// NewColonyHandler creates a new colony handler
func NewColonyHandler(mediator common.Mediator, logger common.Logger) *ColonyHandler {
	return &ColonyHandler{mediator: mediator, logger: logger}
}

// ListColonies handles GET /api/v1/characters/{character_id}/colonies
func (h *ColonyHandler) ListColonies(w http.ResponseWriter, r *http.Request) {
	characterID, err := characterParam(r)
	if err != nil {
		writeError(w, err)
		return
	}
	target, err := targetParam(r)
	if err != nil {
		writeError(w, err)
		return
	}

	response, err := h.mediator.Send(h.context(r), &queries.ListColonySummariesQuery{
		CharacterIDs: []shared.CharacterID{characterID},
		Target:       target,
		ForceRefresh: boolParam(r, "refresh"),
	})
	if err != nil {
		writeError(w, err)
		return
	}

	result := response.(*queries.ListColonySummariesResponse)
	out := make([]dtos.ColonyResultDTO, 0, len(result.Results))
	for _, res := range result.Results {
		out = append(out, dtos.ResultToDTO(res))
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"run_id":   result.RunID,
		"failed":   result.Failed,
		"colonies": out,
	})
}

// GetColony handles GET /api/v1/characters/{character_id}/colonies/{colony_id}
func (h *ColonyHandler) GetColony(w http.ResponseWriter, r *http.Request) {
	characterID, colonyID, err := colonyParams(r)
	if err != nil {
		writeError(w, err)
		return
	}
	target, err := targetParam(r)
	if err != nil {
		writeError(w, err)
		return
	}

	response, err := h.mediator.Send(h.context(r), &queries.GetColonySummaryQuery{
		CharacterID:  characterID,
		ColonyID:     colonyID,
		Target:       target,
		ForceRefresh: boolParam(r, "refresh"),
	})
	if err != nil {
		writeError(w, err)
		return
	}

	result := response.(*queries.GetColonySummaryResponse)
	writeJSON(w, http.StatusOK, dtos.SummaryToDTO(result.Summary, result.Issues, result.Cached))
}

// SimulateColony handles GET /api/v1/characters/{character_id}/colonies/{colony_id}/simulation
func (h *ColonyHandler) SimulateColony(w http.ResponseWriter, r *http.Request) {
	characterID, colonyID, err := colonyParams(r)
	if err != nil {
		writeError(w, err)
		return
	}
	target, err := targetParam(r)
	if err != nil {
		writeError(w, err)
		return
	}

	response, err := h.mediator.Send(h.context(r), &queries.SimulateColonyQuery{
		CharacterID: characterID,
		ColonyID:    colonyID,
		Target:      target,
	})
	if err != nil {
		writeError(w, err)
		return
	}

	result := response.(*queries.SimulateColonyResponse)
	writeJSON(w, http.StatusOK, dtos.SimulationToDTO(result.Simulated, result.Summary, result.ProgramOutputs))
}

// RefreshColony handles POST /api/v1/characters/{character_id}/colonies/{colony_id}/refresh
func (h *ColonyHandler) RefreshColony(w http.ResponseWriter, r *http.Request) {
	characterID, colonyID, err := colonyParams(r)
	if err != nil {
		writeError(w, err)
		return
	}

	response, err := h.mediator.Send(h.context(r), &commands.RefreshSnapshotCommand{
		CharacterID: characterID,
		ColonyID:    colonyID,
	})
	if err != nil {
		writeError(w, err)
		return
	}

	result := response.(*commands.RefreshSnapshotResponse)
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"refreshed_at": result.RefreshedAt,
		"summary":      dtos.SummaryToDTO(result.Summary, nil, false),
	})
}

// ListDigests handles GET /api/v1/characters/{character_id}/digests
func (h *ColonyHandler) ListDigests(w http.ResponseWriter, r *http.Request) {
	characterID, err := characterParam(r)
	if err != nil {
		writeError(w, err)
		return
	}

	response, err := h.mediator.Send(h.context(r), &queries.ListColonyDigestsQuery{CharacterID: characterID})
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, response.(*queries.ListColonyDigestsResponse).Digests)
}

// GetRecipe handles GET /api/v1/recipes/{recipe_id}
func (h *ColonyHandler) GetRecipe(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "recipe_id"), 10, 64)
	if err != nil || id <= 0 {
		writeError(w, badRequest("recipe_id must be a positive integer"))
		return
	}

	response, err := h.mediator.Send(h.context(r), &refQueries.GetRecipeQuery{RecipeID: planetary.RecipeID(id)})
	if err != nil {
		writeError(w, err)
		return
	}

	result := response.(*refQueries.GetRecipeResponse)
	writeJSON(w, http.StatusOK, dtos.RecipeToDTO(result.Recipe, result.Types))
}

func (h *ColonyHandler) context(r *http.Request) context.Context {
	return common.WithLogger(r.Context(), h.logger)
}

func characterParam(r *http.Request) (shared.CharacterID, error) {
	id, err := strconv.ParseInt(chi.URLParam(r, "character_id"), 10, 64)
	if err != nil {
		return shared.CharacterID{}, badRequest("character_id must be an integer")
	}
	characterID, err := shared.NewCharacterID(id)
	if err != nil {
		return shared.CharacterID{}, badRequest(err.Error())
	}
	return characterID, nil
}

func colonyParams(r *http.Request) (shared.CharacterID, planetary.ColonyID, error) {
	characterID, err := characterParam(r)
	if err != nil {
		return shared.CharacterID{}, 0, err
	}
	id, err := strconv.ParseInt(chi.URLParam(r, "colony_id"), 10, 64)
	if err != nil || id <= 0 {
		return shared.CharacterID{}, 0, badRequest("colony_id must be a positive integer")
	}
	return characterID, planetary.ColonyID(id), nil
}

// targetParam reads the optional RFC 3339 "at" query parameter
func targetParam(r *http.Request) (time.Time, error) {
	raw := r.URL.Query().Get("at")
	if raw == "" {
		return time.Time{}, nil
	}
	t, err := time.Parse(time.RFC3339, raw)
	if err != nil {
		return time.Time{}, badRequest("at must be an RFC 3339 timestamp")
	}
	return t, nil
}

func boolParam(r *http.Request, name string) bool {
	v, _ := strconv.ParseBool(r.URL.Query().Get(name))
	return v
}
