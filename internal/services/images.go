package services

import (
	"context"
	"net/url"
	"strings"
	"time"

	"github.com/minio/minio-go/v7"
	"go.uber.org/zap"
)

// ObjectPresigner est la partie du client MinIO utilisée ici
type ObjectPresigner interface {
	PresignedGetObject(ctx context.Context, bucket, object string, expiry time.Duration, reqParams url.Values) (*url.URL, error)
}

var _ ObjectPresigner = (*minio.Client)(nil)

// ImageURLs signe les références d'images produit stockées dans MinIO
type ImageURLs struct {
	client ObjectPresigner
	bucket string
	expiry time.Duration
	log    *zap.Logger
}

func NewImageURLs(client ObjectPresigner, bucket string, expiry time.Duration, log *zap.Logger) *ImageURLs {
	if log == nil {
		log = zap.NewNop()
	}
	if expiry <= 0 {
		expiry = time.Hour
	}
	return &ImageURLs{client: client, bucket: bucket, expiry: expiry, log: log}
}

// Resolve retourne une URL signée ; une URL absolue d'un autre hôte est
// renvoyée telle quelle, et la référence brute en cas d'échec.
func (r *ImageURLs) Resolve(ctx context.Context, ref string) string {
	key, ok := r.objectKey(ref)
	if !ok {
		return ref
	}
	u, err := r.client.PresignedGetObject(ctx, r.bucket, key, r.expiry, make(url.Values))
	if err != nil {
		r.log.Warn("⚠️ URL signée impossible", zap.String("object", key), zap.Error(err))
		return ref
	}
	return u.String()
}

// objectKey nettoie la référence pour ne garder que le chemin dans le bucket
func (r *ImageURLs) objectKey(ref string) (string, bool) {
	ref = strings.TrimSpace(ref)
	if ref == "" {
		return "", false
	}
	if u, err := url.Parse(ref); err == nil && u.Scheme != "" {
		prefix := "/" + r.bucket + "/"
		if !strings.HasPrefix(u.Path, prefix) {
			return "", false
		}
		ref = strings.TrimPrefix(u.Path, prefix)
	}
	key := strings.TrimPrefix(ref, r.bucket+"/")
	key = strings.TrimLeft(key, "/")
	return key, key != ""
}
