package admin

import (
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/brightsum/backend/internal/adaptive"
	"github.com/brightsum/backend/internal/generator"
	"github.com/brightsum/backend/internal/models"
)

type Handler struct {
	store     *Store
	generator *generator.Generator
	models    *adaptive.Provider
}

func NewHandler(store *Store, gen *generator.Generator, provider *adaptive.Provider) *Handler {
	return &Handler{store: store, generator: gen, models: provider}
}

// GenerateItems authors new questions for a topic via the LLM generator and
// saves the ones passing quality checks.
func (h *Handler) GenerateItems(w http.ResponseWriter, r *http.Request) {
	slug := mux.Vars(r)["slug"]

	var req models.GenerateItemsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, models.ErrorResponse{Error: "Invalid request body"})
		return
	}
	if !models.ValidDifficulties[req.Difficulty] {
		writeJSON(w, http.StatusBadRequest, models.ErrorResponse{Error: "difficulty must be 'easy', 'medium', or 'hard'"})
		return
	}
	if req.Count <= 0 {
		req.Count = 6
	}

	topic, err := h.store.GetTopicBySlug(slug)
	if err != nil {
		if errors.Is(err, adaptive.ErrNotFound) {
			writeJSON(w, http.StatusNotFound, models.ErrorResponse{Error: err.Error()})
			return
		}
		writeJSON(w, http.StatusInternalServerError, models.ErrorResponse{Error: "Internal server error"})
		return
	}

	batch, _, err := h.generator.GenerateItems(r.Context(), topic.Name, req.Difficulty, req.Count)
	if err != nil {
		log.Printf("WARN: [admin] generation failed for topic %s: %v", slug, err)
		writeJSON(w, http.StatusInternalServerError, models.ErrorResponse{Error: "Generation failed: " + err.Error()})
		return
	}

	kept, rejected := generator.FilterBatch(batch)
	saved, err := h.store.SaveGeneratedItems(r.Context(), topic.ID, kept, req.Difficulty, req.QuizOnly)
	if err != nil {
		log.Printf("WARN: [admin] saving generated items failed for topic %s: %v", slug, err)
		writeJSON(w, http.StatusInternalServerError, models.ErrorResponse{Error: "Failed to save generated items"})
		return
	}

	log.Printf("[admin] generated %d items for topic %s (%d rejected)", saved, slug, rejected)
	writeJSON(w, http.StatusCreated, models.GenerateItemsResponse{
		TopicID:       topic.ID,
		ItemsSaved:    saved,
		ItemsRejected: rejected,
		ModelUsed:     h.generator.ModelName(),
		Message:       fmt.Sprintf("Saved %d questions (%d rejected by quality checks)", saved, rejected),
	})
}

// ReloadModels drops the cached learned-model handles so freshly deployed
// coefficient files are picked up without a restart.
func (h *Handler) ReloadModels(w http.ResponseWriter, r *http.Request) {
	h.models.Reload()
	log.Println("[admin] learned models reloaded")
	writeJSON(w, http.StatusOK, map[string]string{"status": "reloaded"})
}

func writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}
