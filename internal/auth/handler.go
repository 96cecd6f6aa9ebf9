// AngelaMos | 2026
// handler.go

package auth

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/qhub-dev/qhub/internal/core"
	"github.com/qhub-dev/qhub/internal/middleware"
	"github.com/qhub-dev/qhub/internal/user"
)

type Handler struct {
	service *Service
}

func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

func (h *Handler) RegisterRoutes(
	r chi.Router,
	authenticator func(http.Handler) http.Handler,
) {
	r.Route("/auth", func(r chi.Router) {
		r.Post("/login", h.Login)
		r.Post("/register", h.Register)

		r.Group(func(r chi.Router) {
			r.Use(authenticator)
			r.Get("/verify", h.Verify)
			r.Post("/logout", h.Logout)
			r.Post("/logout-all", h.LogoutAll)
			r.Get("/sessions", h.GetSessions)
		})
	})
}

// Authenticator returns middleware backed by this handler's service.
func (h *Handler) Authenticator() func(http.Handler) http.Handler {
	return middleware.Authenticator(h.service, HTTPError)
}

func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	var req LoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		core.BadRequest(w, "invalid request body")
		return
	}

	resp, err := h.service.Login(r.Context(), req, clientInfo(r))
	if err != nil {
		core.JSONError(w, HTTPError(err))
		return
	}

	core.OK(w, resp.body(h.service.now()))
}

func (h *Handler) Register(w http.ResponseWriter, r *http.Request) {
	var req RegisterRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		core.BadRequest(w, "invalid request body")
		return
	}

	resp, err := h.service.Register(r.Context(), req, clientInfo(r))
	if err != nil {
		core.JSONError(w, HTTPError(err))
		return
	}

	core.Created(w, resp.body(h.service.now()))
}

func (h *Handler) Verify(w http.ResponseWriter, r *http.Request) {
	u := middleware.GetUser(r.Context())
	core.OK(w, user.ToResponse(u))
}

func (h *Handler) Logout(w http.ResponseWriter, r *http.Request) {
	if err := h.service.Logout(r.Context(), middleware.GetToken(r.Context())); err != nil {
		core.JSONError(w, HTTPError(err))
		return
	}

	core.NoContent(w)
}

func (h *Handler) LogoutAll(w http.ResponseWriter, r *http.Request) {
	u := middleware.GetUser(r.Context())

	n, err := h.service.LogoutAll(r.Context(), u.ID)
	if err != nil {
		core.JSONError(w, HTTPError(err))
		return
	}

	core.OK(w, map[string]int64{"revoked": n})
}

func (h *Handler) GetSessions(w http.ResponseWriter, r *http.Request) {
	u := middleware.GetUser(r.Context())
	current := middleware.GetToken(r.Context())

	sessions, err := h.service.ListSessions(r.Context(), u.ID)
	if err != nil {
		core.JSONError(w, HTTPError(err))
		return
	}

	resp := SessionsResponse{Sessions: make([]SessionInfo, 0, len(sessions))}
	for _, s := range sessions {
		resp.Sessions = append(resp.Sessions, toSessionInfo(s, current))
	}

	core.OK(w, resp)
}

func clientInfo(r *http.Request) ClientInfo {
	return ClientInfo{
		DeviceInfo: r.UserAgent(),
		IPAddress:  middleware.ClientIP(r),
	}
}
