package accounts

import (
	"encoding/json"
	"log"
	"net/http"
	"strings"

	"github.com/GiridharSalana/ShreeAdvaya/internal/domain"
	"github.com/GiridharSalana/ShreeAdvaya/internal/transport/web/logx"
	"github.com/GiridharSalana/ShreeAdvaya/internal/transport/web/mw"
	v1 "github.com/GiridharSalana/ShreeAdvaya/internal/transport/web/v1"
)

// Handler — управление учётками операторов. Все ручки за RequireRole:
// List/Delete — admin; Update дополнительно разрешает любому оператору
// смену собственного пароля (политика в accounts.Store).
type Handler struct {
	Log      *log.Logger
	Accounts domain.AccountStore
}

// List godoc
// @Summary     List operator accounts
// @Description Список учёток без учётных данных.
// @Tags        accounts
// @Produce     json
// @Success     200 {object} domain.APIEnvelope{data=[]domain.AccountView}
// @Failure     401 {object} domain.APIEnvelope
// @Failure     403 {object} domain.APIEnvelope
// @Router      /api/v1/accounts [get]
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	const op = "accounts.list"
	reqID := mw.RequestIDFromCtx(r.Context())

	if r.Method != http.MethodGet {
		v1.WriteDomainError(w, r, domain.ErrMethodNotAllowed)
		return
	}

	list, err := h.Accounts.List(r.Context())
	if err != nil {
		logx.Error(h.Log, reqID, op, "list failed", err)
		v1.WriteDomainError(w, r, err)
		return
	}
	logx.Info(h.Log, reqID, op, "ok", "count", len(list))
	v1.WriteOKData(w, r, list)
}

// Update godoc
// @Summary     Patch operator account
// @Tags        accounts
// @Accept      json
// @Produce     json
// @Param       username path string true "username"
// @Param       request body domain.AccountPatch true "password?, role?, email?"
// @Success     200 {object} domain.APIEnvelope{response=domain.AccountView}
// @Failure     400 {object} domain.APIEnvelope
// @Failure     403 {object} domain.APIEnvelope
// @Failure     404 {object} domain.APIEnvelope
// @Router      /api/v1/accounts/{username} [patch]
func (h *Handler) Update(w http.ResponseWriter, r *http.Request) {
	const op = "accounts.update"
	reqID := mw.RequestIDFromCtx(r.Context())

	if r.Method != http.MethodPatch {
		v1.WriteDomainError(w, r, domain.ErrMethodNotAllowed)
		return
	}
	actor, ok := domain.UserFromCtx(r.Context())
	if !ok {
		v1.WriteDomainError(w, r, domain.ErrUnauth)
		return
	}
	username := usernameFromPath(r)
	if username == "" {
		v1.WriteDomainError(w, r, domain.ErrBadParams)
		return
	}

	var patch domain.AccountPatch
	if err := json.NewDecoder(r.Body).Decode(&patch); err != nil {
		logx.Error(h.Log, reqID, op, "bad json", err)
		v1.WriteDomainError(w, r, domain.ErrBadParams)
		return
	}

	user, err := h.Accounts.Update(r.Context(), actor, username, patch)
	if err != nil {
		logx.Error(h.Log, reqID, op, "update failed", err, "username", username)
		v1.WriteDomainError(w, r, err)
		return
	}
	logx.Info(h.Log, reqID, op, "ok", "username", username)
	v1.WriteOKResponse(w, r, user)
}

// Delete godoc
// @Summary     Delete operator account
// @Description Дефолтную учётку и самого себя удалить нельзя.
// @Tags        accounts
// @Produce     json
// @Param       username path string true "username"
// @Success     200 {object} domain.APIEnvelope{response=object}
// @Failure     400 {object} domain.APIEnvelope
// @Failure     403 {object} domain.APIEnvelope
// @Failure     404 {object} domain.APIEnvelope
// @Router      /api/v1/accounts/{username} [delete]
func (h *Handler) Delete(w http.ResponseWriter, r *http.Request) {
	const op = "accounts.delete"
	reqID := mw.RequestIDFromCtx(r.Context())

	if r.Method != http.MethodDelete {
		v1.WriteDomainError(w, r, domain.ErrMethodNotAllowed)
		return
	}
	actor, ok := domain.UserFromCtx(r.Context())
	if !ok {
		v1.WriteDomainError(w, r, domain.ErrUnauth)
		return
	}
	username := usernameFromPath(r)
	if username == "" {
		v1.WriteDomainError(w, r, domain.ErrBadParams)
		return
	}

	if err := h.Accounts.Delete(r.Context(), actor, username); err != nil {
		logx.Error(h.Log, reqID, op, "delete failed", err, "username", username)
		v1.WriteDomainError(w, r, err)
		return
	}
	logx.Info(h.Log, reqID, op, "ok", "username", username)
	v1.WriteOKResponse(w, r, map[string]any{"deleted": username})
}

func usernameFromPath(r *http.Request) string {
	return strings.ToLower(strings.TrimSpace(r.PathValue("username")))
}
