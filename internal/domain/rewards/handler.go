package rewards

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
)

func RegisterRoutes(r chi.Router, svc *Service) {
	r.Route("/clients/{clientID}/rewards", func(rr chi.Router) {
		rr.Get("/", listClientRewardsHandler(svc))
		rr.Post("/evaluate", evaluateRewardsHandler(svc))
	})

	r.Route("/rewards", func(rr chi.Router) {
		rr.Get("/", listRewardsHandler(svc))
		rr.Post("/{rewardID}/claim", claimRewardHandler(svc))
	})
}

// claimRewardRequest: description es obligatoria (qué se entregó y a quién).
type claimRewardRequest struct {
	Description string `json:"description"`
}

type rewardResponse struct {
	ID                 string     `json:"id"`
	ClientID           string     `json:"client_id"`
	Type               Type       `json:"type" enums:"DIRECT,SECOND_LEVEL"`
	Status             Status     `json:"status" enums:"PENDING,CLAIMED"`
	Description        string     `json:"description"`
	DateEarned         time.Time  `json:"date_earned"`
	DateClaimed        *time.Time `json:"date_claimed,omitempty"`
	ClaimedDescription string     `json:"claimed_description,omitempty"`
}

// listClientRewardsHandler godoc
// @Summary Recompensas de un cliente
// @Tags rewards
// @Produce json
// @Param X-Debug-User-ID header string false "Solo en modo dev, ID de usuario para depuración"
// @Param Authorization header string false "Bearer token en producción"
// @Param clientID path string true "ID del cliente"
// @Success 200 {array} rewardResponse
// @Failure 404 {string} string "client not found"
// @Router /clients/{clientID}/rewards [get]
func listClientRewardsHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		items, err := svc.ListByClient(r.Context(), chi.URLParam(r, "clientID"))
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, toRewardResponses(items))
	}
}

// evaluateRewardsHandler godoc
// @Summary Re-evaluar recompensas
// @Description Corre el motor de elegibilidad para el cliente y devuelve solo las recompensas nuevas (vacío si no hay umbral nuevo).
// @Tags rewards
// @Produce json
// @Param X-Debug-User-ID header string false "Solo en modo dev, ID de usuario para depuración"
// @Param Authorization header string false "Bearer token en producción"
// @Param clientID path string true "ID del cliente"
// @Success 200 {array} rewardResponse
// @Failure 404 {string} string "client not found"
// @Failure 500 {string} string "internal error"
// @Router /clients/{clientID}/rewards/evaluate [post]
func evaluateRewardsHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		items, err := svc.Evaluate(r.Context(), chi.URLParam(r, "clientID"))
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, toRewardResponses(items))
	}
}

// listRewardsHandler godoc
// @Summary Listar recompensas
// @Description Lista recompensas de todos los clientes, más recientes primero. Filtro opcional por estado.
// @Tags rewards
// @Produce json
// @Param X-Debug-User-ID header string false "Solo en modo dev, ID de usuario para depuración"
// @Param Authorization header string false "Bearer token en producción"
// @Param status query string false "PENDING o CLAIMED"
// @Param limit query int false "Máximo a devolver (1-500). Por defecto 100"
// @Success 200 {array} rewardResponse
// @Failure 400 {string} string "invalid status"
// @Router /rewards [get]
func listRewardsHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		filter := ListFilter{Limit: 100}
		if v := r.URL.Query().Get("limit"); v != "" {
			if n, err := strconv.Atoi(v); err == nil && n > 0 && n <= 500 {
				filter.Limit = n
			}
		}
		if v := strings.ToUpper(strings.TrimSpace(r.URL.Query().Get("status"))); v != "" {
			switch Status(v) {
			case StatusPending, StatusClaimed:
				filter.Status = Status(v)
			default:
				http.Error(w, "status must be PENDING or CLAIMED", http.StatusBadRequest)
				return
			}
		}

		items, err := svc.List(r.Context(), filter)
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, toRewardResponses(items))
	}
}

// claimRewardHandler godoc
// @Summary Reclamar recompensa
// @Description Marca una recompensa PENDING como CLAIMED. La descripción es obligatoria. Reclamar una ya reclamada devuelve 409.
// @Tags rewards
// @Accept json
// @Produce json
// @Param X-Debug-User-ID header string false "Solo en modo dev, ID de usuario para depuración"
// @Param Authorization header string false "Bearer token en producción"
// @Param rewardID path string true "ID de la recompensa"
// @Param payload body claimRewardRequest true "Nota de entrega"
// @Success 200 {object} rewardResponse
// @Failure 400 {string} string "description required"
// @Failure 404 {string} string "reward not found"
// @Failure 409 {string} string "reward is not pending"
// @Router /rewards/{rewardID}/claim [post]
func claimRewardHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req claimRewardRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "invalid json", http.StatusBadRequest)
			return
		}

		rw, err := svc.Claim(r.Context(), chi.URLParam(r, "rewardID"), req.Description)
		if err != nil {
			if errors.Is(err, ErrNotFound) {
				http.Error(w, "reward not found", http.StatusNotFound)
				return
			}
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, toRewardResponse(rw))
	}
}

func toRewardResponse(r Reward) rewardResponse {
	return rewardResponse{
		ID:                 r.ID,
		ClientID:           r.ClientID,
		Type:               r.Type,
		Status:             r.Status,
		Description:        r.Description,
		DateEarned:         r.DateEarned,
		DateClaimed:        r.DateClaimed,
		ClaimedDescription: r.ClaimedDescription,
	}
}

func toRewardResponses(items []Reward) []rewardResponse {
	out := make([]rewardResponse, 0, len(items))
	for _, r := range items {
		out = append(out, toRewardResponse(r))
	}
	return out
}

func writeError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, ErrInvalidInput):
		http.Error(w, "description required", http.StatusBadRequest)
	case errors.Is(err, ErrNotFound):
		http.Error(w, "client not found", http.StatusNotFound)
	case errors.Is(err, ErrClaimConflict):
		http.Error(w, "reward is not pending", http.StatusConflict)
	default:
		http.Error(w, "internal error", http.StatusInternalServerError)
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
