package visits

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"clinic-referrals/internal/middleware"

	"github.com/go-chi/chi/v5"
)

func RegisterRoutes(r chi.Router, svc *Service) {
	r.Route("/clients/{clientID}/visits", func(vr chi.Router) {
		vr.Post("/", createVisitHandler(svc))
		vr.Get("/", listVisitsHandler(svc))
	})
}

// createVisitRequest es el cuerpo para registrar una visita de una mascota del cliente.
type createVisitRequest struct {
	PetID     string `json:"pet_id"`
	VisitDate string `json:"visit_date"` // RFC3339 o YYYY-MM-DD
	Reason    string `json:"reason"`
	Notes     string `json:"notes"`
}

type visitResponse struct {
	ID         string    `json:"id"`
	ClientID   string    `json:"client_id"`
	PetID      string    `json:"pet_id"`
	VisitDate  time.Time `json:"visit_date"`
	Reason     string    `json:"reason"`
	Notes      string    `json:"notes,omitempty"`
	RecordedBy string    `json:"recorded_by,omitempty"`
	CreatedAt  time.Time `json:"created_at"`
}

// createVisitHandler godoc
// @Summary Registrar visita
// @Description Registra una visita para una mascota del cliente. La mascota debe pertenecer al cliente.
// @Tags visits
// @Accept json
// @Produce json
// @Param X-Debug-User-ID header string false "Solo en modo dev, ID de usuario para depuración"
// @Param Authorization header string false "Bearer token en producción"
// @Param clientID path string true "ID del cliente"
// @Param payload body createVisitRequest true "Datos de la visita; visit_date en RFC3339 o YYYY-MM-DD"
// @Success 201 {object} visitResponse
// @Failure 400 {string} string "invalid json / visit_date inválido / reason requerido"
// @Failure 404 {string} string "client not found"
// @Failure 422 {string} string "pet does not belong to client"
// @Router /clients/{clientID}/visits [post]
func createVisitHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req createVisitRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "invalid json", http.StatusBadRequest)
			return
		}

		t, err := parseTime(req.VisitDate)
		if err != nil {
			http.Error(w, "visit_date must be RFC3339 or YYYY-MM-DD", http.StatusBadRequest)
			return
		}

		recordedBy := ""
		if claims, ok := middleware.GetClaims(r.Context()); ok {
			recordedBy = claims.UserID
		}

		v, err := svc.Create(r.Context(), chi.URLParam(r, "clientID"), CreateInput{
			PetID:      req.PetID,
			VisitDate:  t,
			Reason:     req.Reason,
			Notes:      req.Notes,
			RecordedBy: recordedBy,
		})
		if err != nil {
			writeError(w, err)
			return
		}

		writeJSON(w, http.StatusCreated, toVisitResponse(v))
	}
}

// listVisitsHandler godoc
// @Summary Listar visitas de un cliente
// @Description Visitas del cliente, más recientes primero. Permite filtrar por mascota y rango de fechas.
// @Tags visits
// @Produce json
// @Param X-Debug-User-ID header string false "Solo en modo dev, ID de usuario para depuración"
// @Param Authorization header string false "Bearer token en producción"
// @Param clientID path string true "ID del cliente"
// @Param pet_id query string false "Solo visitas de esta mascota"
// @Param from query string false "Fecha mínima (RFC3339)"
// @Param to query string false "Fecha máxima (RFC3339)"
// @Param limit query int false "Máximo a devolver (1-200). Por defecto 50"
// @Success 200 {array} visitResponse
// @Failure 400 {string} string "Parámetros de filtro inválidos"
// @Failure 404 {string} string "client not found"
// @Router /clients/{clientID}/visits [get]
func listVisitsHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		filter, err := parseListFilter(r)
		if err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}

		items, err := svc.ListByClient(r.Context(), chi.URLParam(r, "clientID"), filter)
		if err != nil {
			writeError(w, err)
			return
		}

		out := make([]visitResponse, 0, len(items))
		for _, v := range items {
			out = append(out, toVisitResponse(v))
		}
		writeJSON(w, http.StatusOK, out)
	}
}

func parseListFilter(r *http.Request) (ListFilter, error) {
	limit := 50
	if v := r.URL.Query().Get("limit"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 && n <= 200 {
			limit = n
		}
	}

	filter := ListFilter{Limit: limit}
	filter.PetID = strings.TrimSpace(r.URL.Query().Get("pet_id"))

	// from/to RFC3339
	if v := strings.TrimSpace(r.URL.Query().Get("from")); v != "" {
		t, err := time.Parse(time.RFC3339, v)
		if err != nil {
			return ListFilter{}, errors.New("from must be RFC3339")
		}
		filter.From = &t
	}
	if v := strings.TrimSpace(r.URL.Query().Get("to")); v != "" {
		t, err := time.Parse(time.RFC3339, v)
		if err != nil {
			return ListFilter{}, errors.New("to must be RFC3339")
		}
		filter.To = &t
	}

	return filter, nil
}

func parseTime(v string) (time.Time, error) {
	v = strings.TrimSpace(v)
	if t, err := time.Parse(time.RFC3339, v); err == nil {
		return t, nil
	}
	return time.Parse("2006-01-02", v)
}

func toVisitResponse(v Visit) visitResponse {
	return visitResponse{
		ID:         v.ID,
		ClientID:   v.ClientID,
		PetID:      v.PetID,
		VisitDate:  v.VisitDate,
		Reason:     v.Reason,
		Notes:      v.Notes,
		RecordedBy: v.RecordedBy,
		CreatedAt:  v.CreatedAt,
	}
}

func writeError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, ErrInvalidInput):
		http.Error(w, "pet_id, visit_date and reason are required", http.StatusBadRequest)
	case errors.Is(err, ErrClientNotFound):
		http.Error(w, "client not found", http.StatusNotFound)
	case errors.Is(err, ErrPetNotOwned):
		http.Error(w, err.Error(), http.StatusUnprocessableEntity)
	default:
		http.Error(w, "internal error", http.StatusInternalServerError)
	}
}

// writeJSON duplicado a propósito (ver clients/handler.go).
func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
