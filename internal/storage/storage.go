// Package storage persists uploaded images and returns their public URLs.
package storage

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"path"
	"strings"

	"github.com/google/uuid"
)

var ErrInvalidImage = errors.New("image must be a base64 data URI of an image")

// Image is a decoded upload.
type Image struct {
	Data        []byte
	ContentType string
	Ext         string
}

// Store saves images under a directory ("recipes", "avatars") and removes them
// by the URL it returned.
type Store interface {
	Save(ctx context.Context, dir string, img *Image) (string, error)
	Delete(ctx context.Context, url string) error
}

var extensions = map[string]string{
	"image/png":     "png",
	"image/jpeg":    "jpg",
	"image/jpg":     "jpg",
	"image/gif":     "gif",
	"image/webp":    "webp",
	"image/svg+xml": "svg",
}

// DecodeDataURI parses "data:image/<type>;base64,<payload>".
func DecodeDataURI(s string) (*Image, error) {
	header, payload, ok := strings.Cut(s, ",")
	if !ok || !strings.HasPrefix(header, "data:") {
		return nil, ErrInvalidImage
	}

	meta := strings.TrimPrefix(header, "data:")
	contentType, encoding, ok := strings.Cut(meta, ";")
	if !ok || encoding != "base64" {
		return nil, ErrInvalidImage
	}
	contentType = strings.ToLower(contentType)
	if !strings.HasPrefix(contentType, "image/") {
		return nil, ErrInvalidImage
	}

	ext, known := extensions[contentType]
	if !known {
		ext = sanitizeExt(strings.TrimPrefix(contentType, "image/"))
		if ext == "" {
			return nil, ErrInvalidImage
		}
	}

	data, err := base64.StdEncoding.DecodeString(strings.TrimSpace(payload))
	if err != nil || len(data) == 0 {
		return nil, ErrInvalidImage
	}
	return &Image{Data: data, ContentType: contentType, Ext: ext}, nil
}

func sanitizeExt(s string) string {
	var b strings.Builder
	for _, r := range s {
		if (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') {
			b.WriteRune(r)
		}
	}
	return b.String()
}

func objectKey(dir string, img *Image) string {
	return path.Join(dir, fmt.Sprintf("%s.%s", uuid.NewString(), img.Ext))
}
