package content

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"

	"github.com/GiridharSalana/ShreeAdvaya/internal/domain"
	"github.com/GiridharSalana/ShreeAdvaya/internal/transport/web/logx"
	"github.com/GiridharSalana/ShreeAdvaya/internal/transport/web/mw"
	v1 "github.com/GiridharSalana/ShreeAdvaya/internal/transport/web/v1"
)

// Handler — свободный контент-документ сайта (data/content.json).
// Однофайловый путь записи, вне батч-оркестратора: PUT накладывает патч
// (shallow overlay) и коммитит файл одним вызовом contents API.
type Handler struct {
	Log      *log.Logger
	Provider domain.Provider
	Cache    domain.Cache // nil — без кеша
	CacheTTL int          // секунд
}

// Get godoc
// @Summary     Read content document
// @Tags        content
// @Produce     json
// @Success     200 {object} domain.APIEnvelope{data=object}
// @Failure     500 {object} domain.APIEnvelope
// @Router      /api/v1/content [get]
func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
	const op = "content.get"
	reqID := mw.RequestIDFromCtx(r.Context())

	if r.Method != http.MethodGet && r.Method != http.MethodHead {
		v1.WriteDomainError(w, r, domain.ErrMethodNotAllowed)
		return
	}

	doc, err := h.load(r)
	if err != nil {
		logx.Error(h.Log, reqID, op, "load failed", err)
		v1.WriteDomainError(w, r, err)
		return
	}
	v1.WriteOKData(w, r, doc)
}

// Put godoc
// @Summary     Patch content document
// @Description Неглубокое наложение полей патча; вложенные объекты заменяются целиком (last-write-wins).
// @Tags        content
// @Accept      json
// @Produce     json
// @Param       request body object true "patch"
// @Success     200 {object} domain.APIEnvelope{response=object}
// @Failure     400 {object} domain.APIEnvelope
// @Failure     401 {object} domain.APIEnvelope
// @Failure     403 {object} domain.APIEnvelope
// @Router      /api/v1/content [put]
func (h *Handler) Put(w http.ResponseWriter, r *http.Request) {
	const op = "content.put"
	reqID := mw.RequestIDFromCtx(r.Context())

	if r.Method != http.MethodPut {
		v1.WriteDomainError(w, r, domain.ErrMethodNotAllowed)
		return
	}
	actor, ok := domain.UserFromCtx(r.Context())
	if !ok {
		v1.WriteDomainError(w, r, domain.ErrUnauth)
		return
	}

	var patch map[string]any
	if err := json.NewDecoder(r.Body).Decode(&patch); err != nil {
		logx.Error(h.Log, reqID, op, "bad json", err)
		v1.WriteDomainError(w, r, domain.ErrBadParams)
		return
	}
	if len(patch) == 0 {
		v1.WriteDomainError(w, r, domain.ErrBadParams)
		return
	}

	doc, err := h.load(r)
	if err != nil {
		logx.Error(h.Log, reqID, op, "load failed", err)
		v1.WriteDomainError(w, r, err)
		return
	}
	merged := doc.Overlay(patch)

	b, err := domain.MarshalCanonical(merged)
	if err != nil {
		v1.WriteDomainError(w, r, domain.ErrUnexpected)
		return
	}
	path := domain.CollectionPaths[domain.ColContent]
	if err := h.Provider.WriteFile(r.Context(), path, b, "admin: update content (by "+actor.Username+")"); err != nil {
		logx.Error(h.Log, reqID, op, "write failed", err)
		v1.WriteDomainError(w, r, err)
		return
	}
	if h.Cache != nil {
		_ = h.Cache.Del(r.Context(), domain.CacheKeyCollection(domain.ColContent))
	}

	logx.Info(h.Log, reqID, op, "ok", "fields", len(patch), "by", actor.Username)
	v1.WriteOKResponse(w, r, merged)
}

func (h *Handler) load(r *http.Request) (domain.ContentDoc, error) {
	key := domain.CacheKeyCollection(domain.ColContent)
	if h.Cache != nil && r.Method == http.MethodGet {
		if b, err := h.Cache.Get(r.Context(), key); err == nil && len(b) > 0 {
			var doc domain.ContentDoc
			if json.Unmarshal(b, &doc) == nil {
				return doc, nil
			}
		}
	}

	raw, err := h.Provider.ReadFile(r.Context(), domain.CollectionPaths[domain.ColContent])
	if errors.Is(err, domain.ErrNotFound) {
		return domain.ContentDoc{}, nil // документа ещё нет — пустой
	}
	if err != nil {
		return nil, err
	}
	var doc domain.ContentDoc
	if err := json.Unmarshal(raw, &doc); err != nil {
		return nil, domain.ErrUnexpected
	}
	if h.Cache != nil {
		_ = h.Cache.Set(r.Context(), key, raw, h.CacheTTL)
	}
	return doc, nil
}
