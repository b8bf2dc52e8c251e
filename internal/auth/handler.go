package auth

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/frahmantamala/civic-complaints/internal"
	"github.com/frahmantamala/civic-complaints/internal/transport"
	"github.com/frahmantamala/civic-complaints/pkg/logger"
)

type ServiceAPI interface {
	Signup(dto SignupDTO) (*AuthResponse, error)
	Login(dto LoginDTO) (*AuthResponse, error)
	AdminLogin(dto AdminLoginDTO) (*AuthResponse, error)
	DepartmentLogin(dto DepartmentLoginDTO) (*AuthResponse, error)
	ValidateAccessToken(tokenString string) (*Claims, error)
	ActorForToken(claims *Claims) (Actor, error)
}

type Handler struct {
	*transport.BaseHandler
	Service ServiceAPI
}

func NewHandler(svc ServiceAPI) *Handler {
	lg := logger.LoggerWrapper()
	if lg == nil {
		lg = slog.Default()
	}
	return &Handler{
		BaseHandler: transport.NewBaseHandler(lg),
		Service:     svc,
	}
}

func (h *Handler) Signup(w http.ResponseWriter, r *http.Request) {
	var dto SignupDTO
	if err := json.NewDecoder(r.Body).Decode(&dto); err != nil {
		h.WriteError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	resp, err := h.Service.Signup(dto)
	if err != nil {
		h.Logger.Error("Signup: service error", "error", err, "email", dto.Email)
		h.HandleServiceError(w, err)
		return
	}

	h.WriteJSON(w, http.StatusCreated, resp)
}

func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	var dto LoginDTO
	if err := json.NewDecoder(r.Body).Decode(&dto); err != nil {
		h.WriteError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	resp, err := h.Service.Login(dto)
	if err != nil {
		h.Logger.Error("Login: authentication failed", "error", err, "email", dto.Email)
		h.HandleServiceError(w, err)
		return
	}

	h.WriteJSON(w, http.StatusOK, resp)
}

func (h *Handler) AdminLogin(w http.ResponseWriter, r *http.Request) {
	var dto AdminLoginDTO
	if err := json.NewDecoder(r.Body).Decode(&dto); err != nil {
		h.WriteError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	resp, err := h.Service.AdminLogin(dto)
	if err != nil {
		h.Logger.Error("AdminLogin: authentication failed", "error", err, "email", dto.Email)
		h.HandleServiceError(w, err)
		return
	}

	h.WriteJSON(w, http.StatusOK, resp)
}

func (h *Handler) DepartmentLogin(w http.ResponseWriter, r *http.Request) {
	var dto DepartmentLoginDTO
	if err := json.NewDecoder(r.Body).Decode(&dto); err != nil {
		h.WriteError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	resp, err := h.Service.DepartmentLogin(dto)
	if err != nil {
		h.Logger.Error("DepartmentLogin: authentication failed", "error", err, "email", dto.Email, "department", dto.Department)
		h.HandleServiceError(w, err)
		return
	}

	h.WriteJSON(w, http.StatusOK, resp)
}

// AuthMiddleware validates the bearer token and attaches the resolved actor
// to the request context.
func (h *Handler) AuthMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token := h.ExtractTokenFromHeader(r)
		if token == "" {
			h.WriteError(w, http.StatusUnauthorized, "missing authorization token")
			return
		}

		claims, err := h.Service.ValidateAccessToken(token)
		if err != nil {
			h.Logger.Warn("auth middleware: token validation failed", "error", err)
			h.WriteError(w, http.StatusUnauthorized, "invalid token")
			return
		}

		actor, err := h.Service.ActorForToken(claims)
		if err != nil {
			h.Logger.Warn("auth middleware: actor resolution failed", "error", err, "user_id", claims.UserID)
			h.WriteError(w, http.StatusUnauthorized, "invalid token")
			return
		}

		ctx := logger.With(r.Context(), "user_id", actor.UserID, "role", string(actor.Role))
		ctx = internal.ContextWithUserID(ctx, actor.UserID)
		next.ServeHTTP(w, r.WithContext(ContextWithActor(ctx, actor)))
	})
}

// RequireRole gates a route group to one role. The switch over the actor's
// role is exhaustive on purpose.
func (h *Handler) RequireRole(required Role) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			actor, ok := ActorFromContext(r.Context())
			if !ok {
				h.WriteError(w, http.StatusUnauthorized, "unauthorized")
				return
			}

			switch actor.Role {
			case RoleCitizen, RoleDepartment, RoleAdmin:
				if actor.Role != required {
					h.Logger.Warn("access denied: role mismatch",
						"user_id", actor.UserID,
						"role", string(actor.Role),
						"required", string(required))
					h.WriteError(w, http.StatusForbidden, "Access denied.")
					return
				}
			default:
				h.WriteError(w, http.StatusUnauthorized, "unauthorized")
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}
