package appointments

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/sashasmiles/clinic-backend/pkg/logging"
)

// Handler exposes the appointment endpoints.
type Handler struct {
	service *Service
	logger  *logging.Logger
}

// NewHandler creates an appointments handler.
func NewHandler(service *Service, logger *logging.Logger) *Handler {
	if logger == nil {
		logger = logging.Default()
	}
	return &Handler{service: service, logger: logger}
}

type apiResponse struct {
	Success bool     `json:"success"`
	Message string   `json:"message,omitempty"`
	Errors  []string `json:"errors,omitempty"`
	Data    any      `json:"data,omitempty"`
}

// Create handles POST /api/appointments.
func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	var req BookingRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.logger.Error("failed to decode booking request", "error", err)
		writeJSON(w, http.StatusBadRequest, apiResponse{
			Success: false,
			Message: "invalid request body",
		})
		return
	}

	appt, err := h.service.Create(r.Context(), &req)
	if err != nil {
		if verr, ok := AsValidationError(err); ok {
			writeJSON(w, http.StatusBadRequest, apiResponse{
				Success: false,
				Message: "validation error",
				Errors:  verr.Violations,
			})
			return
		}
		h.logger.Error("failed to create appointment", "error", err)
		writeJSON(w, http.StatusInternalServerError, apiResponse{
			Success: false,
			Message: "failed to create appointment, please try again",
		})
		return
	}

	writeJSON(w, http.StatusCreated, apiResponse{
		Success: true,
		Message: "appointment created successfully",
		Data:    map[string]any{"appointment": appt},
	})
}

// List handles GET /api/appointments.
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	page := queryInt(r, "page", 1)
	limit := queryInt(r, "limit", 10)
	if page < 1 {
		page = 1
	}
	if limit < 1 || limit > 100 {
		limit = 10
	}

	appts, total, err := h.service.List(r.Context(), ListFilter{
		Offset: (page - 1) * limit,
		Limit:  limit,
	})
	if err != nil {
		h.logger.Error("failed to list appointments", "error", err)
		writeJSON(w, http.StatusInternalServerError, apiResponse{
			Success: false,
			Message: "failed to fetch appointments",
		})
		return
	}

	pages := total / int64(limit)
	if total%int64(limit) != 0 {
		pages++
	}
	writeJSON(w, http.StatusOK, apiResponse{
		Success: true,
		Data: map[string]any{
			"appointments": appts,
			"count":        len(appts),
			"total":        total,
			"page":         page,
			"pages":        pages,
		},
	})
}

// Get handles GET /api/appointments/{id}.
func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	appt, err := h.service.Get(r.Context(), id)
	if err != nil {
		if errors.Is(err, ErrAppointmentNotFound) {
			writeJSON(w, http.StatusNotFound, apiResponse{
				Success: false,
				Message: "appointment not found",
			})
			return
		}
		h.logger.Error("failed to fetch appointment", "error", err, "id", id)
		writeJSON(w, http.StatusInternalServerError, apiResponse{
			Success: false,
			Message: "failed to fetch appointment",
		})
		return
	}
	writeJSON(w, http.StatusOK, apiResponse{
		Success: true,
		Data:    map[string]any{"appointment": appt},
	})
}

// Delete handles DELETE /api/appointments/{id}.
func (h *Handler) Delete(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if err := h.service.Delete(r.Context(), id); err != nil {
		if errors.Is(err, ErrAppointmentNotFound) {
			writeJSON(w, http.StatusNotFound, apiResponse{
				Success: false,
				Message: "appointment not found",
			})
			return
		}
		h.logger.Error("failed to delete appointment", "error", err, "id", id)
		writeJSON(w, http.StatusInternalServerError, apiResponse{
			Success: false,
			Message: "failed to delete appointment",
		})
		return
	}
	writeJSON(w, http.StatusOK, apiResponse{
		Success: true,
		Message: "appointment deleted successfully",
	})
}

func queryInt(r *http.Request, key string, def int) int {
	raw := r.URL.Query().Get(key)
	if raw == "" {
		return def
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return def
	}
	return v
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}
