package batch

import (
	"context"
	"encoding/json"
	"log"
	"net/http"

	"github.com/GiridharSalana/ShreeAdvaya/internal/domain"
	"github.com/GiridharSalana/ShreeAdvaya/internal/transport/web/logx"
	"github.com/GiridharSalana/ShreeAdvaya/internal/transport/web/mw"
	v1 "github.com/GiridharSalana/ShreeAdvaya/internal/transport/web/v1"
)

// Committer — батч-оркестратор (internal/batch)
type Committer interface {
	Commit(ctx context.Context, batch map[string]domain.ChangeSet, actor domain.AuthUser) (domain.BatchResult, error)
}

type Handler struct {
	Log       *log.Logger
	Committer Committer
	Cache     domain.Cache // nil — без инвалидации
}

// Submit godoc
// @Summary     Submit batch change-sets
// @Description Применяет накопленные правки нескольких коллекций одним атомарным коммитом. Батч без чистых изменений — успех без коммита.
// @Tags        batch
// @Accept      json
// @Produce     json
// @Param       request body map[string]domain.ChangeSet true "collection -> change-set"
// @Success     200 {object} domain.APIEnvelope{response=domain.BatchResult}
// @Failure     400 {object} domain.APIEnvelope
// @Failure     401 {object} domain.APIEnvelope
// @Failure     403 {object} domain.APIEnvelope
// @Failure     500 {object} domain.APIEnvelope
// @Router      /api/v1/batch [post]
func (h *Handler) Submit(w http.ResponseWriter, r *http.Request) {
	const op = "batch.submit"
	reqID := mw.RequestIDFromCtx(r.Context())
	logx.Info(h.Log, reqID, op, "start", "method", r.Method)

	if r.Method != http.MethodPost {
		v1.WriteDomainError(w, r, domain.ErrMethodNotAllowed)
		return
	}
	actor, ok := domain.UserFromCtx(r.Context())
	if !ok {
		v1.WriteDomainError(w, r, domain.ErrUnauth)
		return
	}

	var payload map[string]domain.ChangeSet
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		logx.Error(h.Log, reqID, op, "bad json", err)
		v1.WriteDomainError(w, r, domain.ErrBadParams)
		return
	}
	if len(payload) == 0 {
		v1.WriteDomainError(w, r, domain.ErrBadParams)
		return
	}

	res, err := h.Committer.Commit(r.Context(), payload, actor)
	if err != nil {
		logx.Error(h.Log, reqID, op, "commit failed", err, "by", actor.Username)
		v1.WriteDomainError(w, r, err)
		return
	}

	if res.Committed && h.Cache != nil {
		keys := make([]string, 0, len(res.Results))
		for name := range res.Results {
			keys = append(keys, domain.CacheKeyCollection(name))
		}
		_ = h.Cache.Del(r.Context(), keys...)
	}

	logx.Info(h.Log, reqID, op, "ok", "committed", res.Committed, "commit_id", res.CommitID, "by", actor.Username)
	v1.WriteOKResponse(w, r, res)
}
