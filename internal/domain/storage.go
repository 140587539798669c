package domain

import (
	"context"
	"io"
)

// Хранилище медиа (картинки галереи/hero). Сайт статический, бинарники
// в git-репозиторий не кладём — они уходят в S3/MinIO, в коллекциях
// остаются только URL.
type MediaPutResult struct {
	StorageKey string
	URL        string
	Size       int64
}

type MediaStorage interface {
	Put(ctx context.Context, r io.Reader, hintName string, mime string) (MediaPutResult, error)
	Delete(ctx context.Context, storageKey string) error
	Ping(context.Context) error
}
