package s3

import (
	"context"
	"crypto/sha256"
	"fmt"
	"io"
	"log"
	"net/url"
	"path"
	"strings"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"

	"github.com/GiridharSalana/ShreeAdvaya/internal/domain"
)

type Config struct {
	Endpoint  string
	Region    string
	Bucket    string
	AccessKey string
	SecretKey string
	UseSSL    bool
	PathStyle bool
	// PublicBaseURL — под каким адресом объекты видны сайту (CDN/прокси);
	// пусто — строим из endpoint+bucket
	PublicBaseURL string
}

// Storage хранит медиа галереи/hero в S3/MinIO. В git-репозиторий сайта
// бинарники не коммитятся — в коллекциях остаются только URL отсюда.
type Storage struct {
	cl      *minio.Client
	bucket  string
	baseURL string
	logger  *log.Logger
}

func New(ctx context.Context, cfg Config, logger *log.Logger) (*Storage, error) {
	opts := &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.AccessKey, cfg.SecretKey, ""),
		Secure: cfg.UseSSL,
		Region: cfg.Region,
	}
	if cfg.PathStyle {
		opts.BucketLookup = minio.BucketLookupPath
	}
	cl, err := minio.New(cfg.Endpoint, opts)
	if err != nil {
		return nil, err
	}

	baseURL := cfg.PublicBaseURL
	if baseURL == "" {
		scheme := "http"
		if cfg.UseSSL {
			scheme = "https"
		}
		baseURL = fmt.Sprintf("%s://%s/%s", scheme, cfg.Endpoint, cfg.Bucket)
	}
	return &Storage{cl: cl, bucket: cfg.Bucket, baseURL: strings.TrimRight(baseURL, "/"), logger: logger}, nil
}

var _ domain.MediaStorage = (*Storage)(nil)

// Put заливает поток под ключом media/sha256-префикс_имя: одинаковый
// контент получает одинаковый ключ, повторная загрузка безвредна.
func (s *Storage) Put(ctx context.Context, r io.Reader, hintName string, mime string) (domain.MediaPutResult, error) {
	h := sha256.New()
	pr, pw := io.Pipe()
	mw := io.MultiWriter(h, pw)

	// копируем в пайп и считаем sha параллельно
	go func() {
		_, copyErr := io.Copy(mw, r)
		pw.CloseWithError(copyErr)
	}()

	tmpKey := "tmp/" + sanitize(hintName)
	info, err := s.cl.PutObject(ctx, s.bucket, tmpKey, pr, -1, minio.PutObjectOptions{
		ContentType: mime,
	})
	if err != nil {
		return domain.MediaPutResult{}, err
	}

	finalKey := fmt.Sprintf("media/%x_%s", h.Sum(nil)[:8], sanitize(path.Base(hintName)))
	if finalKey != tmpKey {
		src := minio.CopySrcOptions{Bucket: s.bucket, Object: tmpKey}
		dst := minio.CopyDestOptions{Bucket: s.bucket, Object: finalKey}
		if _, err := s.cl.CopyObject(ctx, dst, src); err != nil {
			_ = s.cl.RemoveObject(ctx, s.bucket, tmpKey, minio.RemoveObjectOptions{})
			return domain.MediaPutResult{}, err
		}
		_ = s.cl.RemoveObject(ctx, s.bucket, tmpKey, minio.RemoveObjectOptions{})
	}

	s.logger.Printf("put %s (%d bytes)", finalKey, info.Size)
	return domain.MediaPutResult{
		StorageKey: finalKey,
		URL:        s.baseURL + "/" + finalKey,
		Size:       info.Size,
	}, nil
}

func (s *Storage) Delete(ctx context.Context, storageKey string) error {
	return s.cl.RemoveObject(ctx, s.bucket, storageKey, minio.RemoveObjectOptions{})
}

func (s *Storage) Ping(ctx context.Context) error {
	_, err := s.cl.BucketExists(ctx, s.bucket)
	return err
}

func sanitize(name string) string {
	u := url.PathEscape(name)
	return strings.ReplaceAll(u, "%2F", "_")
}
