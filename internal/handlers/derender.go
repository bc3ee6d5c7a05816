package handlers

import (
	"context"
	"encoding/base64"
	"fmt"
	"log"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"derender-backend/internal/gemini"
	"derender-backend/internal/models"
	"derender-backend/internal/supabase"
)

const defaultMimeType = "image/jpeg"

// Derenderer produces a makeup-free version of a portrait.
type Derenderer interface {
	Derender(ctx context.Context, image []byte, mimeType string) (*gemini.Result, error)
	Model() string
}

// ImageStore uploads an object and returns its public URL.
type ImageStore interface {
	UploadImage(path string, data []byte, contentType string) (string, error)
}

// GenerationStore records generation metadata.
type GenerationStore interface {
	CreateGeneration(record *models.GenerationRecord) error
}

type DerenderHandler struct {
	gemini         Derenderer
	storage        ImageStore
	db             GenerationStore
	realtimeClient *supabase.RealtimeClient
}

func NewDerenderHandler(geminiClient Derenderer, storage ImageStore, db GenerationStore, realtimeClient *supabase.RealtimeClient) *DerenderHandler {
	return &DerenderHandler{
		gemini:         geminiClient,
		storage:        storage,
		db:             db,
		realtimeClient: realtimeClient,
	}
}

// Derender godoc
// @Summary     Remove makeup from a portrait
// @Description Sends the uploaded image to the Gemini image model with a fixed
// @Description makeup-removal instruction and returns the edited image. The
// @Description before/after pair and a generation record are persisted on a
// @Description best-effort basis; persistence failure never fails the request.
// @Tags        derender
// @Accept      json
// @Produce     json
// @Param       request body models.DerenderRequest true "Base64 image and MIME type"
// @Success     200 {object} models.DerenderResponse
// @Failure     400 {object} models.ErrorResponse
// @Failure     500 {object} models.ErrorResponse
// @Router      /derender [post]
func (h *DerenderHandler) Derender(c *gin.Context) {
	var req models.DerenderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, models.ErrorResponse{
			Error:   "invalid request body",
			Details: err.Error(),
		})
		return
	}

	if req.Image == "" {
		c.JSON(http.StatusBadRequest, models.ErrorResponse{Error: "No image provided"})
		return
	}

	if h.gemini == nil {
		c.JSON(http.StatusInternalServerError, models.ErrorResponse{Error: "GEMINI_API_KEY is not configured"})
		return
	}

	mimeType := req.MimeType
	if mimeType == "" {
		mimeType = defaultMimeType
	}

	imageData, err := base64.StdEncoding.DecodeString(req.Image)
	if err != nil {
		c.JSON(http.StatusBadRequest, models.ErrorResponse{
			Error:   "invalid image encoding",
			Details: err.Error(),
		})
		return
	}

	result, err := h.gemini.Derender(c.Request.Context(), imageData, mimeType)
	if err != nil {
		c.JSON(http.StatusInternalServerError, models.ErrorResponse{
			Error:   "Internal server error",
			Details: err.Error(),
		})
		return
	}

	if len(result.Image) == 0 {
		// Diagnostic only: a text answer is never turned into an image.
		c.JSON(http.StatusOK, models.NoImageResponse{
			Error:   "No image generated by model",
			RawText: result.Text,
		})
		return
	}

	h.persistGeneration(imageData, mimeType, result)

	outMime := result.MimeType
	if outMime == "" {
		outMime = defaultMimeType
	}
	c.JSON(http.StatusOK, models.DerenderResponse{
		Image:    base64.StdEncoding.EncodeToString(result.Image),
		MimeType: outMime,
	})
}

// persistGeneration stores the before/after pair and the generation record.
// Everything here is best effort: failures are logged and swallowed so the
// caller still receives the processed image when persistence is down.
func (h *DerenderHandler) persistGeneration(original []byte, originalMime string, result *gemini.Result) {
	if h.storage == nil || h.db == nil {
		log.Println("Warning: persistence not configured, skipping generation record")
		return
	}

	timestamp := time.Now().UnixMilli()

	originalURL, err := h.storage.UploadImage(
		fmt.Sprintf("generations/%d/original.jpg", timestamp), original, originalMime)
	if err != nil {
		log.Printf("Warning: failed to store original image: %v", err)
		return
	}

	processedMime := result.MimeType
	if processedMime == "" {
		processedMime = defaultMimeType
	}
	processedURL, err := h.storage.UploadImage(
		fmt.Sprintf("generations/%d/processed.jpg", timestamp), result.Image, processedMime)
	if err != nil {
		log.Printf("Warning: failed to store processed image: %v", err)
		return
	}

	record := &models.GenerationRecord{
		ID:                uuid.NewString(),
		Timestamp:         timestamp,
		OriginalImageURL:  originalURL,
		OriginalMimeType:  originalMime,
		ProcessedImageURL: processedURL,
		ProcessedMimeType: processedMime,
		Model:             h.gemini.Model(),
		Prompt:            gemini.DerenderInstruction,
	}
	if err := h.db.CreateGeneration(record); err != nil {
		log.Printf("Warning: failed to record generation: %v", err)
		return
	}

	if h.realtimeClient != nil {
		h.realtimeClient.PublishGenerationEvent(record.ID, "derender_completed",
			supabase.DerenderCompletedPayload(processedURL, timestamp))
	}
}
