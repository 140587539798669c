package auth

import (
	"log"
	"net/http"

	"github.com/GiridharSalana/ShreeAdvaya/internal/domain"
	"github.com/GiridharSalana/ShreeAdvaya/internal/transport/web/logx"
	"github.com/GiridharSalana/ShreeAdvaya/internal/transport/web/mw"
	v1 "github.com/GiridharSalana/ShreeAdvaya/internal/transport/web/v1"
)

type HandlerVerify struct {
	Log    *log.Logger
	Tokens domain.TokenManager
}

type verifyResponse struct {
	Valid  bool             `json:"valid"`
	User   *domain.AuthUser `json:"user,omitempty"`
	Reason string           `json:"reason,omitempty"`
}

// Verify godoc
// @Summary     Verify session token
// @Description Проверяет токен; невалидному сообщает причину (expired/malformed/signature-invalid).
// @Tags        auth
// @Produce     json
// @Success     200 {object} domain.APIEnvelope{response=verifyResponse}
// @Failure     400 {object} domain.APIEnvelope
// @Router      /api/v1/auth/verify [get]
func (h *HandlerVerify) Verify(w http.ResponseWriter, r *http.Request) {
	const op = "auth.verify"
	reqID := mw.RequestIDFromCtx(r.Context())

	if r.Method != http.MethodGet {
		v1.WriteDomainError(w, r, domain.ErrMethodNotAllowed)
		return
	}

	raw := v1.TokenFromRequest(r)
	if raw == "" {
		logx.Error(h.Log, reqID, op, "missing token", domain.ErrBadParams)
		v1.WriteDomainError(w, r, domain.ErrBadParams)
		return
	}

	claims, reason, err := h.Tokens.Verify(r.Context(), raw)
	if err != nil {
		logx.Info(h.Log, reqID, op, "invalid", "reason", reason)
		v1.WriteOKResponse(w, r, verifyResponse{Valid: false, Reason: string(reason)})
		return
	}

	u := claims.User()
	logx.Info(h.Log, reqID, op, "ok", "username", u.Username)
	v1.WriteOKResponse(w, r, verifyResponse{Valid: true, User: &u})
}
