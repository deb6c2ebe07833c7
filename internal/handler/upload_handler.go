package handler

import (
	"errors"
	"strings"

	"go-asso-stock/pkg/storage"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

type UploadHandler struct {
	store    *storage.Local
	maxBytes int64
	log      *zap.Logger
}

func NewUploadHandler(store *storage.Local, maxBytes int, log *zap.Logger) *UploadHandler {
	return &UploadHandler{store: store, maxBytes: int64(maxBytes), log: log}
}

type DeleteUploadRequest struct {
	Path string `json:"path"`
}

// Upload stores one product image and returns its public path
// POST /api/v1/uploads (multipart field "file")
func (h *UploadHandler) Upload(c *fiber.Ctx) error {
	file, err := c.FormFile("file")
	if err != nil {
		return badRequest(c, "No file uploaded")
	}
	if file.Size > h.maxBytes {
		return badRequest(c, "File too large")
	}
	if ct := file.Header.Get(fiber.HeaderContentType); ct != "" && !strings.HasPrefix(ct, "image/") {
		return badRequest(c, "Only image uploads are accepted")
	}

	src, err := file.Open()
	if err != nil {
		return badRequest(c, "Unreadable file")
	}
	defer src.Close()

	publicPath, err := h.store.Save(file.Filename, src)
	if err != nil {
		h.log.Error("failed to store upload", zap.String("filename", file.Filename), zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"success": false,
			"kind":    "store",
			"reason":  "failed to store file",
		})
	}
	return respond(c, fiber.StatusCreated, fiber.Map{"path": publicPath})
}

// Delete removes a stored image by its public path
// DELETE /api/v1/uploads
func (h *UploadHandler) Delete(c *fiber.Ctx) error {
	var req DeleteUploadRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "Invalid JSON")
	}

	err := h.store.Delete(req.Path)
	switch {
	case err == nil:
		return respond(c, fiber.StatusOK, nil)
	case errors.Is(err, storage.ErrInvalidPath):
		return badRequest(c, "Invalid path")
	case errors.Is(err, storage.ErrNotFound):
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"success": false,
			"kind":    "not_found",
			"reason":  "File not found",
		})
	default:
		h.log.Error("failed to delete upload", zap.String("path", req.Path), zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"success": false,
			"kind":    "store",
			"reason":  "failed to delete file",
		})
	}
}
