package backlog

import (
	"github.com/go-chi/chi/v5"
)

// RegisterRoutes registers the generation endpoints
func RegisterRoutes(r chi.Router, h *Handler) {
	r.Post("/generate-backlog", h.GenerateBacklog)
	r.Post("/generate-epics", h.GenerateEpics)
	r.Post("/generate-stories", h.GenerateStories)
	r.Post("/regenerate-epic", h.RegenerateEpic)
	r.Post("/regenerate-story", h.RegenerateStory)
}
