package backlog

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/grpc-ecosystem/go-grpc-middleware/logging/zap/ctxzap"
	"go.uber.org/zap"

	"github.com/vishkar/storycrafter/internal/entity"
	"github.com/vishkar/storycrafter/internal/pkg/logger"
	"github.com/vishkar/storycrafter/internal/pkg/response"
	"github.com/vishkar/storycrafter/internal/pkg/validator"
)

type Handler struct {
	usecase   BacklogUsecase
	validator *validator.Validator
}

func NewHandler(usecase BacklogUsecase, validator *validator.Validator) *Handler {
	return &Handler{
		usecase:   usecase,
		validator: validator,
	}
}

// GenerateBacklog handles POST /generate-backlog - Full generation workflow
func (h *Handler) GenerateBacklog(w http.ResponseWriter, r *http.Request) {
	ctx := logger.WithAction(r.Context(), "GenerateBacklog")

	var req entity.GenerateBacklogRequest
	if !h.decode(ctx, w, r, &req) {
		return
	}
	if err := h.validator.ValidateGenerateBacklog(&req); err != nil {
		h.respondValidationError(ctx, w, err)
		return
	}

	ctxzap.Info(ctx, "generating backlog", zap.Int("messages", len(req.ConsensusMessages)))

	backlog, err := h.usecase.GenerateBacklog(ctx, req.ConsensusMessages, req.ProjectMetadata)
	if err != nil {
		h.handleUsecaseError(ctx, w, err)
		return
	}

	response.Success(w, toBacklogResponse(backlog))
}

// GenerateEpics handles POST /generate-epics - Epic structure only
func (h *Handler) GenerateEpics(w http.ResponseWriter, r *http.Request) {
	ctx := logger.WithAction(r.Context(), "GenerateEpics")

	var req entity.GenerateEpicsRequest
	if !h.decode(ctx, w, r, &req) {
		return
	}
	if err := h.validator.ValidateGenerateEpics(&req); err != nil {
		h.respondValidationError(ctx, w, err)
		return
	}

	epics, err := h.usecase.GenerateEpics(ctx, req.ConsensusMessages, req.ProjectMetadata)
	if err != nil {
		h.handleUsecaseError(ctx, w, err)
		return
	}

	response.Success(w, toEpicsResponse(epics))
}

// GenerateStories handles POST /generate-stories - Expand one epic
func (h *Handler) GenerateStories(w http.ResponseWriter, r *http.Request) {
	ctx := logger.WithAction(r.Context(), "GenerateStories")

	var req entity.GenerateStoriesRequest
	if !h.decode(ctx, w, r, &req) {
		return
	}
	if err := h.validator.ValidateGenerateStories(&req); err != nil {
		h.respondValidationError(ctx, w, err)
		return
	}

	ctx = logger.AddFields(ctx, zap.String("epic_id", req.Epic.ID))

	stories, err := h.usecase.GenerateStories(ctx, req.Epic, req.ConsensusMessages, req.ProjectMetadata)
	if err != nil {
		h.handleUsecaseError(ctx, w, err)
		return
	}

	response.Success(w, toStoriesResponse(req.Epic.ID, stories))
}

// RegenerateEpic handles POST /regenerate-epic - Feedback-driven revision
func (h *Handler) RegenerateEpic(w http.ResponseWriter, r *http.Request) {
	ctx := logger.WithAction(r.Context(), "RegenerateEpic")

	var req entity.RegenerateEpicRequest
	if !h.decode(ctx, w, r, &req) {
		return
	}
	if err := h.validator.ValidateRegenerateEpic(&req); err != nil {
		h.respondValidationError(ctx, w, err)
		return
	}

	ctx = logger.AddFields(ctx, zap.String("epic_id", req.Epic.ID))

	epic, err := h.usecase.RegenerateEpic(ctx, req.Epic, req.UserFeedback, req.ConsensusMessages, req.ProjectMetadata)
	if err != nil {
		h.handleUsecaseError(ctx, w, err)
		return
	}

	response.Success(w, toEpicResponse(epic))
}

// RegenerateStory handles POST /regenerate-story - Feedback-driven revision
func (h *Handler) RegenerateStory(w http.ResponseWriter, r *http.Request) {
	ctx := logger.WithAction(r.Context(), "RegenerateStory")

	var req entity.RegenerateStoryRequest
	if !h.decode(ctx, w, r, &req) {
		return
	}
	if err := h.validator.ValidateRegenerateStory(&req); err != nil {
		h.respondValidationError(ctx, w, err)
		return
	}

	ctx = logger.AddFields(ctx, zap.String("story_id", req.Story.ID))

	story, err := h.usecase.RegenerateStory(ctx, req.Epic, req.Story, req.UserFeedback, req.ConsensusMessages, req.ProjectMetadata)
	if err != nil {
		h.handleUsecaseError(ctx, w, err)
		return
	}

	response.Success(w, toStoryResponse(story))
}

func (h *Handler) decode(ctx context.Context, w http.ResponseWriter, r *http.Request, dst any) bool {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		ctxzap.Error(ctx, "failed to decode request body", zap.Error(err))
		response.Error(w, http.StatusBadRequest, "invalid request body: "+err.Error())
		return false
	}
	return true
}

func (h *Handler) respondValidationError(ctx context.Context, w http.ResponseWriter, err error) {
	ctxzap.Error(ctx, "failed to validate request", zap.Error(err))
	response.Error(w, http.StatusBadRequest, err.Error())
}

// handleUsecaseError maps the pipeline error taxonomy onto HTTP statuses.
// errors.As sees through GenerationFailedError wrapping.
func (h *Handler) handleUsecaseError(ctx context.Context, w http.ResponseWriter, err error) {
	ctxzap.Error(ctx, "generation failed", zap.Error(err))

	var (
		rejected    *entity.BackendRejectedError
		unavailable *entity.BackendUnavailableError
		unparsable  *entity.UnparsableResponseError
		emptyBatch  *entity.EmptyBatchError
	)

	switch {
	case errors.Is(err, entity.ErrEmptyTranscript),
		errors.Is(err, entity.ErrMissingField),
		errors.Is(err, entity.ErrInvalidParameter),
		errors.Is(err, entity.ErrInvalidRole):
		response.Error(w, http.StatusBadRequest, err.Error())
	case errors.As(err, &rejected):
		response.Error(w, http.StatusTooManyRequests, err.Error())
	case errors.As(err, &unavailable):
		response.Error(w, http.StatusServiceUnavailable, err.Error())
	case errors.As(err, &unparsable), errors.As(err, &emptyBatch):
		response.Error(w, http.StatusBadGateway, err.Error())
	default:
		response.Error(w, http.StatusInternalServerError, "internal server error")
	}
}
