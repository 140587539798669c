package media

import (
	"log"
	"net/http"

	"github.com/GiridharSalana/ShreeAdvaya/internal/domain"
	"github.com/GiridharSalana/ShreeAdvaya/internal/transport/web/logx"
	"github.com/GiridharSalana/ShreeAdvaya/internal/transport/web/mw"
	v1 "github.com/GiridharSalana/ShreeAdvaya/internal/transport/web/v1"
)

// Лимит на один файл: 15 МиБ хватает для фото сарафанов/саре в веб-качестве.
const maxUploadBytes = 15 << 20

type Handler struct {
	Log     *log.Logger
	Storage domain.MediaStorage
}

type uploadResponse struct {
	URL  string `json:"url"`
	Key  string `json:"key"`
	Size int64  `json:"size"`
}

// Upload godoc
// @Summary     Upload a media file
// @Description Загружает файл (multipart, поле "file") в объектное хранилище и возвращает публичный URL для вставки в коллекции.
// @Tags        media
// @Accept      multipart/form-data
// @Produce     json
// @Param       file formData file true "uploaded file"
// @Success     201 {object} domain.APIEnvelope{data=uploadResponse}
// @Failure     400 {object} domain.APIEnvelope
// @Failure     401 {object} domain.APIEnvelope
// @Failure     500 {object} domain.APIEnvelope
// @Router      /api/v1/media [post]
func (h *Handler) Upload(w http.ResponseWriter, r *http.Request) {
	const op = "media.upload"
	reqID := mw.RequestIDFromCtx(r.Context())
	logx.Info(h.Log, reqID, op, "start")

	if h.Storage == nil {
		logx.Error(h.Log, reqID, op, "storage is not configured", domain.ErrConfig)
		v1.WriteDomainError(w, r, domain.ErrConfig)
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, maxUploadBytes)
	if err := r.ParseMultipartForm(maxUploadBytes); err != nil {
		logx.Error(h.Log, reqID, op, "bad multipart", err)
		v1.WriteDomainError(w, r, domain.ErrBadParams)
		return
	}
	file, hdr, err := r.FormFile("file")
	if err != nil {
		logx.Error(h.Log, reqID, op, "missing file field", err)
		v1.WriteDomainError(w, r, domain.ErrBadParams)
		return
	}
	defer file.Close()

	mime := hdr.Header.Get("Content-Type")
	res, err := h.Storage.Put(r.Context(), file, hdr.Filename, mime)
	if err != nil {
		logx.Error(h.Log, reqID, op, "put failed", err, "name", hdr.Filename)
		v1.WriteDomainError(w, r, domain.ErrUpstream)
		return
	}

	logx.Info(h.Log, reqID, op, "ok", "key", res.StorageKey, "size", res.Size)
	v1.WriteCreated(w, r, uploadResponse{URL: res.URL, Key: res.StorageKey, Size: res.Size})
}

// Remove godoc
// @Summary     Delete a media file
// @Description Удаляет объект из хранилища по ключу (?key=...).
// @Tags        media
// @Produce     json
// @Param       key query string true "storage key"
// @Success     200 {object} domain.APIEnvelope
// @Failure     400 {object} domain.APIEnvelope
// @Failure     401 {object} domain.APIEnvelope
// @Failure     500 {object} domain.APIEnvelope
// @Router      /api/v1/media [delete]
func (h *Handler) Remove(w http.ResponseWriter, r *http.Request) {
	const op = "media.remove"
	reqID := mw.RequestIDFromCtx(r.Context())

	if h.Storage == nil {
		v1.WriteDomainError(w, r, domain.ErrConfig)
		return
	}
	key := r.URL.Query().Get("key")
	if key == "" {
		v1.WriteDomainError(w, r, domain.ErrBadParams)
		return
	}
	if err := h.Storage.Delete(r.Context(), key); err != nil {
		logx.Error(h.Log, reqID, op, "delete failed", err, "key", key)
		v1.WriteDomainError(w, r, domain.ErrUpstream)
		return
	}
	logx.Info(h.Log, reqID, op, "ok", "key", key)
	v1.WriteOKResponse(w, r, "deleted")
}
