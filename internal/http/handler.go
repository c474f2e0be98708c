package http

import (
	"encoding/base64"
	"errors"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"camlytics/internal/http/middleware"
	"camlytics/internal/model"
	"camlytics/internal/service"
)

// Uploads above this are rejected before any processing.
const maxImageBytes = 10 << 20

type Handler struct {
	detectionService *service.DetectionService
	hub              *Hub
	log              zerolog.Logger
}

func NewHandler(detectionService *service.DetectionService, hub *Hub, log zerolog.Logger) *Handler {
	return &Handler{
		detectionService: detectionService,
		hub:              hub,
		log:              log,
	}
}

func (h *Handler) Register(r *gin.Engine, authMiddleware gin.HandlerFunc) {
	api := r.Group("/api")
	api.Use(authMiddleware)
	{
		api.POST("/detections", h.createDetection)
		api.GET("/detections", h.listDetections)
		api.GET("/detections/live", h.liveDetections)
		api.GET("/detections/:id", h.getDetection)
		api.DELETE("/detections/:id", h.deleteDetection)
	}
}

type detectionResponse struct {
	Detected  bool             `json:"detected"`
	Duplicate bool             `json:"duplicate,omitempty"`
	Detection *model.Detection `json:"detection,omitempty"`
	ImageURL  string           `json:"image_url,omitempty"`
}

func (h *Handler) createDetection(c *gin.Context) {
	principal, ok := middleware.MustPrincipal(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, errorResponse("missing principal"))
		return
	}

	imageBytes, contentType, err := readImage(c)
	if err != nil {
		c.JSON(http.StatusBadRequest, errorResponse(err.Error()))
		return
	}

	result, err := h.detectionService.Detect(c.Request.Context(), principal, service.DetectInput{
		ImageBytes:  imageBytes,
		ContentType: contentType,
	})
	if err != nil {
		switch {
		case errors.Is(err, service.ErrPlateNotDetected):
			// Defined outcome, not a failure.
			c.JSON(http.StatusOK, detectionResponse{Detected: false})
		case errors.Is(err, service.ErrInvalidInput):
			c.JSON(http.StatusBadRequest, errorResponse("invalid image payload"))
		default:
			h.log.Error().Err(err).Msg("detection failed")
			c.JSON(http.StatusInternalServerError, errorResponse("failed to process image"))
		}
		return
	}

	c.JSON(http.StatusCreated, detectionResponse{
		Detected:  true,
		Duplicate: result.Duplicate,
		Detection: result.Detection,
		ImageURL:  result.ImageURL,
	})
}

// readImage accepts either a multipart "image" file or a JSON body with a
// base64 payload, whichever the client sent.
func readImage(c *gin.Context) ([]byte, string, error) {
	if file, err := c.FormFile("image"); err == nil {
		if file.Size > maxImageBytes {
			return nil, "", errors.New("image too large")
		}
		opened, err := file.Open()
		if err != nil {
			return nil, "", errors.New("failed to read image")
		}
		defer opened.Close()

		data, err := io.ReadAll(io.LimitReader(opened, maxImageBytes+1))
		if err != nil {
			return nil, "", errors.New("failed to read image")
		}
		if len(data) > maxImageBytes {
			return nil, "", errors.New("image too large")
		}
		return data, file.Header.Get("Content-Type"), nil
	}

	var req struct {
		ImageBase64 string `json:"image_base64" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		return nil, "", errors.New("image file or image_base64 is required")
	}

	data, err := base64.StdEncoding.DecodeString(req.ImageBase64)
	if err != nil {
		return nil, "", errors.New("invalid base64 image data")
	}
	if len(data) > maxImageBytes {
		return nil, "", errors.New("image too large")
	}
	return data, "image/jpeg", nil
}

type detectionItem struct {
	model.Detection
	ImageURL string `json:"image_url,omitempty"`
}

func (h *Handler) listDetections(c *gin.Context) {
	principal, ok := middleware.MustPrincipal(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, errorResponse("missing principal"))
		return
	}

	detections, err := h.detectionService.List(c.Request.Context(), principal, service.ListInput{
		Plate: c.Query("plate"),
	})
	if err != nil {
		h.log.Error().Err(err).Msg("failed to list detections")
		c.JSON(http.StatusInternalServerError, errorResponse("failed to list detections"))
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": detections})
}

func (h *Handler) getDetection(c *gin.Context) {
	principal, ok := middleware.MustPrincipal(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, errorResponse("missing principal"))
		return
	}

	detection, imageURL, err := h.detectionService.Get(c.Request.Context(), principal, c.Param("id"))
	if err != nil {
		respondServiceError(c, h.log, err, "failed to get detection")
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": detectionItem{Detection: *detection, ImageURL: imageURL}})
}

func (h *Handler) deleteDetection(c *gin.Context) {
	principal, ok := middleware.MustPrincipal(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, errorResponse("missing principal"))
		return
	}

	if err := h.detectionService.Delete(c.Request.Context(), principal, c.Param("id")); err != nil {
		respondServiceError(c, h.log, err, "failed to delete detection")
		return
	}

	c.Status(http.StatusNoContent)
}

func (h *Handler) liveDetections(c *gin.Context) {
	principal, ok := middleware.MustPrincipal(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, errorResponse("missing principal"))
		return
	}

	h.hub.Serve(c, principal.UserID)
}

func respondServiceError(c *gin.Context, log zerolog.Logger, err error, msg string) {
	switch {
	case errors.Is(err, service.ErrNotFound):
		c.JSON(http.StatusNotFound, errorResponse("not found"))
	case errors.Is(err, service.ErrPermissionDenied):
		c.JSON(http.StatusForbidden, errorResponse("permission denied"))
	case errors.Is(err, service.ErrInvalidInput):
		c.JSON(http.StatusBadRequest, errorResponse("invalid input"))
	default:
		log.Error().Err(err).Msg(msg)
		c.JSON(http.StatusInternalServerError, errorResponse(msg))
	}
}

func errorResponse(message string) gin.H {
	return gin.H{"error": message}
}
