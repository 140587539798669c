package collections

import (
	"errors"
	"log"
	"net/http"

	"github.com/GiridharSalana/ShreeAdvaya/internal/domain"
	"github.com/GiridharSalana/ShreeAdvaya/internal/transport/web/logx"
	"github.com/GiridharSalana/ShreeAdvaya/internal/transport/web/mw"
	v1 "github.com/GiridharSalana/ShreeAdvaya/internal/transport/web/v1"
)

// Handler — публичные чтения коллекций (products/gallery/hero).
// Запись только через батч: тонких однофайловых мутаций у коллекций нет.
type Handler struct {
	Log      *log.Logger
	Provider domain.Provider
	Cache    domain.Cache // nil — без кеша
	CacheTTL int          // секунд
}

// List godoc
// @Summary     Read a public collection
// @Tags        collections
// @Produce     json
// @Param       name path string true "products|gallery|hero"
// @Success     200 {object} domain.APIEnvelope{data=[]object}
// @Failure     404 {object} domain.APIEnvelope
// @Router      /api/v1/{name} [get]
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	const op = "collections.list"
	reqID := mw.RequestIDFromCtx(r.Context())

	if r.Method != http.MethodGet && r.Method != http.MethodHead {
		v1.WriteDomainError(w, r, domain.ErrMethodNotAllowed)
		return
	}

	name := r.PathValue("name")
	switch name {
	case domain.ColProducts, domain.ColGallery, domain.ColHero:
	default:
		// users и content публично не читаются этим роутом
		v1.WriteDomainError(w, r, domain.ErrNotFound)
		return
	}

	key := domain.CacheKeyCollection(name)
	if h.Cache != nil {
		if b, err := h.Cache.Get(r.Context(), key); err == nil && len(b) > 0 {
			writeRawJSON(w, r, b)
			return
		}
	}

	raw, err := h.Provider.ReadFile(r.Context(), domain.CollectionPaths[name])
	if errors.Is(err, domain.ErrNotFound) {
		raw = []byte("[]") // коллекции ещё нет — пусто, не ошибка
	} else if err != nil {
		logx.Error(h.Log, reqID, op, "read failed", err, "collection", name)
		v1.WriteDomainError(w, r, err)
		return
	}

	if h.Cache != nil {
		_ = h.Cache.Set(r.Context(), key, raw, h.CacheTTL)
	}
	logx.Info(h.Log, reqID, op, "ok", "collection", name, "bytes", len(raw))
	writeRawJSON(w, r, raw)
}

// writeRawJSON отдаёт снапшот как есть, без переупаковки в конверт:
// это те же байты, что читает статический сайт
func writeRawJSON(w http.ResponseWriter, r *http.Request, b []byte) {
	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("X-Request-ID", mw.RequestIDFromCtx(r.Context()))
	w.WriteHeader(http.StatusOK)
	if r.Method == http.MethodHead {
		return
	}
	_, _ = w.Write(b)
}
