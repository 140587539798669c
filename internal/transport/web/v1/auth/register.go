package auth

import (
	"encoding/json"
	"log"
	"net/http"

	"github.com/GiridharSalana/ShreeAdvaya/internal/domain"
	"github.com/GiridharSalana/ShreeAdvaya/internal/transport/web/logx"
	"github.com/GiridharSalana/ShreeAdvaya/internal/transport/web/mw"
	v1 "github.com/GiridharSalana/ShreeAdvaya/internal/transport/web/v1"
)

// HandlerRegister обрабатывает POST /api/v1/auth/register.
// Роут идёт через OptionalAuth: без токена доступна только регистрация
// самой первой учётки (bootstrap), дальше — только admin.
type HandlerRegister struct {
	Log      *log.Logger
	Accounts domain.AccountStore
}

type registerRequest struct {
	Username string      `json:"username"`
	Password string      `json:"password"`
	Role     domain.Role `json:"role,omitempty"`
	Email    string      `json:"email,omitempty"`
}

type registerResponse struct {
	User domain.AccountView `json:"user"`
}

// Register godoc
// @Summary     Register new operator
// @Description Создаёт учётку. Требует роль admin; без токена допустима только самая первая регистрация.
// @Tags        auth
// @Accept      json
// @Produce     json
// @Param       request body registerRequest true "username, password, role?, email?"
// @Success     201 {object} domain.APIEnvelope{response=registerResponse}
// @Failure     400 {object} domain.APIEnvelope
// @Failure     401 {object} domain.APIEnvelope
// @Failure     403 {object} domain.APIEnvelope
// @Failure     409 {object} domain.APIEnvelope
// @Router      /api/v1/auth/register [post]
func (h *HandlerRegister) Register(w http.ResponseWriter, r *http.Request) {
	const op = "auth.register"
	reqID := mw.RequestIDFromCtx(r.Context())
	logx.Info(h.Log, reqID, op, "start", "method", r.Method, "path", r.URL.Path)

	if r.Method != http.MethodPost {
		v1.WriteDomainError(w, r, domain.ErrMethodNotAllowed)
		return
	}

	var req registerRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		logx.Error(h.Log, reqID, op, "bad json", err)
		v1.WriteDomainError(w, r, domain.ErrBadParams)
		return
	}

	var actor *domain.AuthUser
	if u, ok := domain.UserFromCtx(r.Context()); ok {
		actor = &u
	}

	user, err := h.Accounts.Register(r.Context(), actor, req.Username, req.Password, req.Role, req.Email)
	if err != nil {
		logx.Error(h.Log, reqID, op, "register failed", err, "username", req.Username)
		v1.WriteDomainError(w, r, err)
		return
	}

	logx.Info(h.Log, reqID, op, "ok", "username", user.Username, "role", user.Role)
	v1.WriteCreated(w, r, registerResponse{User: user})
}
