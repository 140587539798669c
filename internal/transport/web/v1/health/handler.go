package health

import (
	"context"
	"log"
	"net/http"
	"time"

	"github.com/GiridharSalana/ShreeAdvaya/internal/domain"
	"github.com/GiridharSalana/ShreeAdvaya/internal/transport/web/logx"
	"github.com/GiridharSalana/ShreeAdvaya/internal/transport/web/mw"
	v1 "github.com/GiridharSalana/ShreeAdvaya/internal/transport/web/v1"
)

type Handler struct {
	Log      *log.Logger
	Provider domain.Provider
	Cache    domain.Cache        // nil — проверка пропускается
	Storage  domain.MediaStorage // nil — проверка пропускается
}

// Liveness godoc
// @Summary     Liveness probe
// @Description Процесс жив и принимает запросы.
// @Tags        health
// @Produce     json
// @Success     200 {object} domain.APIEnvelope
// @Router      /api/v1/healthz [get]
func (h *Handler) Liveness(w http.ResponseWriter, r *http.Request) {
	v1.WriteOKResponse(w, r, "alive")
}

// Readiness godoc
// @Summary     Readiness probe
// @Description Пингует git-провайдера и опциональные зависимости (кеш, хранилище медиа).
// @Tags        health
// @Produce     json
// @Success     200 {object} domain.APIEnvelope
// @Failure     500 {object} domain.APIEnvelope
// @Router      /api/v1/readyz [get]
func (h *Handler) Readiness(w http.ResponseWriter, r *http.Request) {
	const op = "health.readiness"
	reqID := mw.RequestIDFromCtx(r.Context())

	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	if err := h.Provider.Ping(ctx); err != nil {
		logx.Error(h.Log, reqID, op, "provider ping failed", err)
		v1.WriteDomainError(w, r, domain.ErrUpstream)
		return
	}
	if h.Cache != nil {
		if err := h.Cache.Ping(ctx); err != nil {
			logx.Error(h.Log, reqID, op, "cache ping failed", err)
			v1.WriteDomainError(w, r, domain.ErrUpstream)
			return
		}
	}
	if h.Storage != nil {
		if err := h.Storage.Ping(ctx); err != nil {
			logx.Error(h.Log, reqID, op, "storage ping failed", err)
			v1.WriteDomainError(w, r, domain.ErrUpstream)
			return
		}
	}
	v1.WriteOKResponse(w, r, "ready")
}
