package review

import (
	"encoding/json"
	"log"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/brightsum/backend/internal/models"
)

type Handler struct {
	service *Service
}

func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

func getUserID(r *http.Request) (int64, bool) {
	uid, ok := r.Context().Value("user_id").(int64)
	return uid, ok
}

func (h *Handler) GetSummary(w http.ResponseWriter, r *http.Request) {
	userID, ok := getUserID(r)
	if !ok {
		writeJSON(w, http.StatusUnauthorized, models.ErrorResponse{Error: "Unauthorized"})
		return
	}

	query := r.URL.Query()
	filter := SummaryFilter{
		TopicSlug:  query.Get("topic"),
		Difficulty: query.Get("difficulty"),
	}
	var parseErr error
	if filter.From, parseErr = timeQueryParam(query, "from"); parseErr != nil {
		writeJSON(w, http.StatusBadRequest, models.ErrorResponse{Error: "Invalid 'from' date, want YYYY-MM-DD"})
		return
	}
	if filter.To, parseErr = timeQueryParam(query, "to"); parseErr != nil {
		writeJSON(w, http.StatusBadRequest, models.ErrorResponse{Error: "Invalid 'to' date, want YYYY-MM-DD"})
		return
	}

	summary, err := h.service.Summary(userID, filter)
	if err != nil {
		log.Printf("WARN: [review] summary failed: %v", err)
		writeJSON(w, http.StatusInternalServerError, models.ErrorResponse{Error: "Failed to build summary"})
		return
	}
	writeJSON(w, http.StatusOK, summary)
}

func (h *Handler) ListMistakes(w http.ResponseWriter, r *http.Request) {
	userID, ok := getUserID(r)
	if !ok {
		writeJSON(w, http.StatusUnauthorized, models.ErrorResponse{Error: "Unauthorized"})
		return
	}

	query := r.URL.Query()
	filter := MistakeFilter{
		TopicSlug:  query.Get("topic"),
		Difficulty: query.Get("difficulty"),
		Page:       intQueryParam(query, "page", 1),
		PageSize:   intQueryParam(query, "page_size", 20),
	}

	resp, err := h.service.Mistakes(userID, filter)
	if err != nil {
		log.Printf("WARN: [review] mistakes failed: %v", err)
		writeJSON(w, http.StatusInternalServerError, models.ErrorResponse{Error: "Failed to list mistakes"})
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

// timeQueryParam parses an optional YYYY-MM-DD query parameter.
func timeQueryParam(query url.Values, name string) (*time.Time, error) {
	v := query.Get(name)
	if v == "" {
		return nil, nil
	}
	t, err := time.Parse("2006-01-02", v)
	if err != nil {
		return nil, err
	}
	return &t, nil
}

func intQueryParam(query url.Values, name string, fallback int) int {
	if v := query.Get(name); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return fallback
}

func writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}
