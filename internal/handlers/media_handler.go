package handlers

import (
	"errors"
	"io"
	"net/http"

	"github.com/anonto42/foodgram/backend/internal/storage"
	"github.com/labstack/echo/v4"
)

// MediaHandler streams stored recipe images
type MediaHandler struct {
	images storage.ImageStore
}

func NewMediaHandler(images storage.ImageStore) *MediaHandler {
	return &MediaHandler{images: images}
}

// ServeImage answers GET <media prefix>/* with the stored bytes
func (h *MediaHandler) ServeImage(c echo.Context) error {
	key, err := storage.CleanKey(c.Param("*"))
	if err != nil {
		return echo.NewHTTPError(http.StatusNotFound, "Not found")
	}
	rc, err := h.images.Open(c.Request().Context(), key)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return echo.NewHTTPError(http.StatusNotFound, "Not found")
		}
		return respondError(c, err)
	}
	defer rc.Close()

	data, err := io.ReadAll(io.LimitReader(rc, storage.MaxImageSize+1))
	if err != nil {
		return respondError(c, err)
	}
	c.Response().Header().Set("Cache-Control", "public, max-age=86400")
	return c.Blob(http.StatusOK, storage.ContentTypeOf(data), data)
}
