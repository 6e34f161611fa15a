// Package storage keeps recipe images behind a small key/value interface with
// filesystem, GridFS and S3 backends.
package storage

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"io"
	"path"
	"strings"

	"github.com/gabriel-vasile/mimetype"
	"github.com/google/uuid"
)

// MaxImageSize caps a decoded image.
const MaxImageSize = 10 << 20

var (
	// ErrNotFound is returned by Open when no object is stored under the key.
	ErrNotFound = errors.New("image not found")
	// ErrInvalidImage covers malformed data URIs and non-image payloads.
	ErrInvalidImage = errors.New("invalid image")
	ErrInvalidKey   = errors.New("invalid image key")
)

// ImageStore persists image bytes under opaque slash-separated keys.
type ImageStore interface {
	Save(ctx context.Context, key, contentType string, data []byte) error
	Open(ctx context.Context, key string) (io.ReadCloser, error)
	// Delete removes the object; a missing key is not an error.
	Delete(ctx context.Context, key string) error
}

// Image is a decoded upload ready to be stored.
type Image struct {
	Data        []byte
	ContentType string
	Extension   string
}

// DecodeDataURI parses a `data:image/<type>;base64,<payload>` string. A bare
// base64 payload is accepted too. The declared media type is ignored; the
// content is sniffed and must be an image.
func DecodeDataURI(s string) (*Image, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil, fmt.Errorf("%w: empty", ErrInvalidImage)
	}
	payload := s
	if strings.HasPrefix(s, "data:") {
		header, body, ok := strings.Cut(s, ",")
		if !ok || !strings.HasSuffix(header, ";base64") {
			return nil, fmt.Errorf("%w: expected a base64 data URI", ErrInvalidImage)
		}
		payload = body
	}
	if base64.StdEncoding.DecodedLen(len(payload)) > MaxImageSize+3 {
		return nil, fmt.Errorf("%w: larger than %d bytes", ErrInvalidImage, MaxImageSize)
	}
	data, err := base64.StdEncoding.DecodeString(payload)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidImage, err)
	}
	if len(data) == 0 {
		return nil, fmt.Errorf("%w: empty", ErrInvalidImage)
	}

	mtype := mimetype.Detect(data)
	if !strings.HasPrefix(mtype.String(), "image/") {
		return nil, fmt.Errorf("%w: unsupported content type %s", ErrInvalidImage, mtype.String())
	}
	return &Image{
		Data:        data,
		ContentType: mtype.String(),
		Extension:   mtype.Extension(),
	}, nil
}

// NewImageKey returns a fresh key for a recipe image with the given
// extension (including the dot).
func NewImageKey(ext string) string {
	return "recipes/images/" + uuid.NewString() + ext
}

// ContentTypeOf sniffs the media type of stored bytes.
func ContentTypeOf(data []byte) string {
	return mimetype.Detect(data).String()
}

// CleanKey normalises key and rejects anything that could escape the store
// root.
func CleanKey(key string) (string, error) {
	if key == "" || strings.HasPrefix(key, "/") || strings.Contains(key, "\\") {
		return "", ErrInvalidKey
	}
	cleaned := path.Clean(key)
	if cleaned == "." || cleaned == ".." || strings.HasPrefix(cleaned, "../") {
		return "", ErrInvalidKey
	}
	return cleaned, nil
}
