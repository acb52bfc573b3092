package clients

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
)

// RegisterRoutes monta /clients. La exigencia de staff la pone el router.
func RegisterRoutes(r chi.Router, svc *Service) {
	r.Route("/clients", func(cr chi.Router) {
		cr.Post("/", registerClientHandler(svc))
		cr.Get("/", listClientsHandler(svc))

		cr.Get("/{clientID}", getClientHandler(svc))
		cr.Patch("/{clientID}", updateClientHandler(svc))
		cr.Delete("/{clientID}", deleteClientHandler(svc))

		// Árbol de referidos (directos + segunda línea)
		cr.Get("/{clientID}/referrals", referralsHandler(svc))
	})
}

type petRequest struct {
	Name    string `json:"name"`
	Species string `json:"species"`
	Breed   string `json:"breed"`
}

// registerClientRequest es el cuerpo para registrar un cliente con al menos una mascota.
type registerClientRequest struct {
	Name             string       `json:"name"`
	Phone            string       `json:"phone"`
	Email            string       `json:"email"`
	Cedula           string       `json:"cedula"`
	ReferrerID       string       `json:"referrer_id"`
	RegistrationDate string       `json:"registration_date"` // YYYY-MM-DD o RFC3339, opcional
	Pets             []petRequest `json:"pets"`
}

type updateClientRequest struct {
	Name   *string `json:"name"`
	Phone  *string `json:"phone"`
	Email  *string `json:"email"`
	Cedula *string `json:"cedula"`
}

type petResponse struct {
	ID        string    `json:"id"`
	ClientID  string    `json:"client_id"`
	Name      string    `json:"name"`
	Species   string    `json:"species"`
	Breed     string    `json:"breed,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

type clientResponse struct {
	ID               string        `json:"id"`
	Name             string        `json:"name"`
	Phone            string        `json:"phone"`
	Email            string        `json:"email,omitempty"`
	Cedula           string        `json:"cedula,omitempty"`
	RegistrationDate time.Time     `json:"registration_date"`
	ReferrerID       string        `json:"referrer_id,omitempty"`
	Pets             []petResponse `json:"pets"`
	CreatedAt        time.Time     `json:"created_at"`
	UpdatedAt        time.Time     `json:"updated_at"`
}

type clientDetailResponse struct {
	clientResponse
	DirectReferrals      int `json:"direct_referrals"`
	SecondLevelReferrals int `json:"second_level_referrals"`
}

type registerClientResponse struct {
	clientResponse
	RewardsGranted int    `json:"rewards_granted"`
	Warning        string `json:"warning,omitempty"`
}

type referralSummaryResponse struct {
	ClientID             string           `json:"client_id"`
	DirectCount          int              `json:"direct_count"`
	SecondLevelCount     int              `json:"second_level_count"`
	DirectReferrals      []clientResponse `json:"direct_referrals"`
	SecondLevelReferrals []clientResponse `json:"second_level_referrals"`
}

// registerClientHandler godoc
// @Summary Registrar cliente
// @Description Registra un cliente con sus mascotas (mínimo una). Si viene `referrer_id`, se evalúan en el acto las recompensas del referidor.
// @Tags clients
// @Accept json
// @Produce json
// @Param X-Debug-User-ID header string false "Solo en modo dev, ID de usuario para depuración"
// @Param Authorization header string false "Bearer token en producción"
// @Param payload body registerClientRequest true "Datos del cliente y sus mascotas"
// @Success 201 {object} registerClientResponse
// @Failure 400 {string} string "invalid json / datos obligatorios faltantes"
// @Failure 401 {string} string "unauthorized"
// @Failure 403 {string} string "forbidden"
// @Failure 404 {string} string "referrer not found"
// @Failure 500 {string} string "internal error"
// @Router /clients [post]
func registerClientHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req registerClientRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "invalid json", http.StatusBadRequest)
			return
		}

		var regDate *time.Time
		if v := strings.TrimSpace(req.RegistrationDate); v != "" {
			t, err := parseDate(v)
			if err != nil {
				http.Error(w, "registration_date must be YYYY-MM-DD or RFC3339", http.StatusBadRequest)
				return
			}
			regDate = &t
		}

		pets := make([]PetInput, 0, len(req.Pets))
		for _, p := range req.Pets {
			pets = append(pets, PetInput{Name: p.Name, Species: p.Species, Breed: p.Breed})
		}

		res, err := svc.Register(r.Context(), RegisterInput{
			Name:             req.Name,
			Phone:            req.Phone,
			Email:            req.Email,
			Cedula:           req.Cedula,
			ReferrerID:       req.ReferrerID,
			RegistrationDate: regDate,
			Pets:             pets,
		})

		out := registerClientResponse{}
		switch {
		case err == nil:
		case errors.Is(err, ErrRewardEvaluation):
			// El cliente quedó creado; la reconciliación completará las recompensas.
			out.Warning = "client registered but referrer rewards could not be evaluated"
		default:
			writeError(w, err)
			return
		}

		out.clientResponse = toClientResponse(res.Client)
		out.RewardsGranted = res.RewardsGranted
		writeJSON(w, http.StatusCreated, out)
	}
}

// listClientsHandler godoc
// @Summary Listar clientes
// @Description Lista todos los clientes (con mascotas) ordenados por nombre. `q` filtra por nombre, teléfono o cédula.
// @Tags clients
// @Produce json
// @Param X-Debug-User-ID header string false "Solo en modo dev, ID de usuario para depuración"
// @Param Authorization header string false "Bearer token en producción"
// @Param q query string false "Texto de búsqueda"
// @Success 200 {array} clientResponse
// @Failure 401 {string} string "unauthorized"
// @Failure 500 {string} string "internal error"
// @Router /clients [get]
func listClientsHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		items, err := svc.List(r.Context(), ListFilter{Query: r.URL.Query().Get("q")})
		if err != nil {
			writeError(w, err)
			return
		}

		out := make([]clientResponse, 0, len(items))
		for _, c := range items {
			out = append(out, toClientResponse(c))
		}
		writeJSON(w, http.StatusOK, out)
	}
}

// getClientHandler godoc
// @Summary Ver cliente
// @Description Perfil del cliente con mascotas y conteo de referidos directos / de segunda línea.
// @Tags clients
// @Produce json
// @Param X-Debug-User-ID header string false "Solo en modo dev, ID de usuario para depuración"
// @Param Authorization header string false "Bearer token en producción"
// @Param clientID path string true "ID del cliente"
// @Success 200 {object} clientDetailResponse
// @Failure 404 {string} string "client not found"
// @Router /clients/{clientID} [get]
func getClientHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		clientID := chi.URLParam(r, "clientID")

		c, err := svc.GetByID(r.Context(), clientID)
		if err != nil {
			writeError(w, err)
			return
		}
		sum, err := svc.Referrals(r.Context(), clientID)
		if err != nil {
			writeError(w, err)
			return
		}

		writeJSON(w, http.StatusOK, clientDetailResponse{
			clientResponse:       toClientResponse(c),
			DirectReferrals:      sum.DirectCount,
			SecondLevelReferrals: sum.SecondLevelCount,
		})
	}
}

// updateClientHandler godoc
// @Summary Actualizar datos de contacto
// @Description Actualiza nombre, teléfono, email o cédula. El referidor no se puede cambiar (campos desconocidos => 400).
// @Tags clients
// @Accept json
// @Produce json
// @Param X-Debug-User-ID header string false "Solo en modo dev, ID de usuario para depuración"
// @Param Authorization header string false "Bearer token en producción"
// @Param clientID path string true "ID del cliente"
// @Param payload body updateClientRequest true "Campos a modificar"
// @Success 200 {object} clientResponse
// @Failure 400 {string} string "invalid json / invalid input"
// @Failure 404 {string} string "client not found"
// @Router /clients/{clientID} [patch]
func updateClientHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		dec := json.NewDecoder(r.Body)
		dec.DisallowUnknownFields()

		var req updateClientRequest
		if err := dec.Decode(&req); err != nil {
			http.Error(w, "invalid json", http.StatusBadRequest)
			return
		}

		c, err := svc.UpdateContact(r.Context(), chi.URLParam(r, "clientID"), UpdateContactInput{
			Name:   req.Name,
			Phone:  req.Phone,
			Email:  req.Email,
			Cedula: req.Cedula,
		})
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, toClientResponse(c))
	}
}

// deleteClientHandler godoc
// @Summary Eliminar cliente
// @Description Elimina el cliente (y sus mascotas, recompensas y visitas) solo si no tiene referidos directos.
// @Tags clients
// @Param X-Debug-User-ID header string false "Solo en modo dev, ID de usuario para depuración"
// @Param Authorization header string false "Bearer token en producción"
// @Param clientID path string true "ID del cliente"
// @Success 204
// @Failure 404 {string} string "client not found"
// @Failure 409 {string} string "client has direct referrals"
// @Router /clients/{clientID} [delete]
func deleteClientHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := svc.Delete(r.Context(), chi.URLParam(r, "clientID")); err != nil {
			writeError(w, err)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}

// referralsHandler godoc
// @Summary Árbol de referidos
// @Description Referidos directos y de segunda línea. El conteo de segunda línea es la suma de los referidos de cada directo; el listado no repite clientes.
// @Tags clients
// @Produce json
// @Param X-Debug-User-ID header string false "Solo en modo dev, ID de usuario para depuración"
// @Param Authorization header string false "Bearer token en producción"
// @Param clientID path string true "ID del cliente"
// @Success 200 {object} referralSummaryResponse
// @Failure 404 {string} string "client not found"
// @Router /clients/{clientID}/referrals [get]
func referralsHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		clientID := chi.URLParam(r, "clientID")
		sum, err := svc.Referrals(r.Context(), clientID)
		if err != nil {
			writeError(w, err)
			return
		}

		out := referralSummaryResponse{
			ClientID:             clientID,
			DirectCount:          sum.DirectCount,
			SecondLevelCount:     sum.SecondLevelCount,
			DirectReferrals:      make([]clientResponse, 0, len(sum.Direct)),
			SecondLevelReferrals: make([]clientResponse, 0, len(sum.SecondLevel)),
		}
		for _, c := range sum.Direct {
			out.DirectReferrals = append(out.DirectReferrals, toClientResponse(c))
		}
		for _, c := range sum.SecondLevel {
			out.SecondLevelReferrals = append(out.SecondLevelReferrals, toClientResponse(c))
		}
		writeJSON(w, http.StatusOK, out)
	}
}

func toClientResponse(c Client) clientResponse {
	pets := make([]petResponse, 0, len(c.Pets))
	for _, p := range c.Pets {
		pets = append(pets, petResponse{
			ID:        p.ID,
			ClientID:  p.ClientID,
			Name:      p.Name,
			Species:   p.Species,
			Breed:     p.Breed,
			CreatedAt: p.CreatedAt,
		})
	}
	return clientResponse{
		ID:               c.ID,
		Name:             c.Name,
		Phone:            c.Phone,
		Email:            c.Email,
		Cedula:           c.Cedula,
		RegistrationDate: c.RegistrationDate,
		ReferrerID:       c.ReferrerID,
		Pets:             pets,
		CreatedAt:        c.CreatedAt,
		UpdatedAt:        c.UpdatedAt,
	}
}

func parseDate(v string) (time.Time, error) {
	if t, err := time.Parse("2006-01-02", v); err == nil {
		return t, nil
	}
	return time.Parse(time.RFC3339, v)
}

func writeError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, ErrInvalidInput):
		http.Error(w, err.Error(), http.StatusBadRequest)
	case errors.Is(err, ErrReferrerNotFound):
		http.Error(w, "referrer not found", http.StatusNotFound)
	case errors.Is(err, ErrNotFound):
		http.Error(w, "client not found", http.StatusNotFound)
	case errors.Is(err, ErrHasReferrals):
		http.Error(w, "client has direct referrals", http.StatusConflict)
	default:
		http.Error(w, "internal error", http.StatusInternalServerError)
	}
}

// writeJSON está duplicado intencionalmente en handlers de distintos módulos
// para evitar crear paquetes/helpers compartidos demasiado pronto.
func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
