package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"derender-backend/internal/models"
	"derender-backend/internal/supabase"
)

// SessionSyncer reconciles storage contents with session records.
type SessionSyncer interface {
	Sweep() (*models.SyncResponse, error)
	DryRun() (*models.SyncStatusResponse, error)
}

type SyncHandler struct {
	syncer         SessionSyncer
	secret         string
	realtimeClient *supabase.RealtimeClient
}

func NewSyncHandler(syncer SessionSyncer, secret string, realtimeClient *supabase.RealtimeClient) *SyncHandler {
	return &SyncHandler{
		syncer:         syncer,
		secret:         secret,
		realtimeClient: realtimeClient,
	}
}

// Sync godoc
// @Summary     Backfill session records from storage
// @Description Lists every object under sessions/ and creates a session record
// @Description for each folder missing one. Existing records are never
// @Description overwritten. A per-session failure is reported in its detail
// @Description entry and does not stop the sweep.
// @Tags        sync
// @Accept      json
// @Produce     json
// @Param       request body models.SyncRequest false "Shared secret, required when SYNC_SECRET is set"
// @Success     200 {object} models.SyncResponse
// @Failure     401 {object} models.ErrorResponse
// @Failure     500 {object} models.ErrorResponse
// @Router      /sessions/sync [post]
func (h *SyncHandler) Sync(c *gin.Context) {
	var req models.SyncRequest
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, models.ErrorResponse{
				Error:   "invalid request body",
				Details: err.Error(),
			})
			return
		}
	}

	// No configured secret means the endpoint is open. That is an
	// operational choice for trusted deployments, not a default to rely on.
	if h.secret != "" && req.Secret != h.secret {
		c.JSON(http.StatusUnauthorized, models.ErrorResponse{Error: "unauthorized"})
		return
	}

	if h.syncer == nil {
		c.JSON(http.StatusInternalServerError, models.ErrorResponse{Error: "database not available"})
		return
	}

	resp, err := h.syncer.Sweep()
	if err != nil {
		c.JSON(http.StatusInternalServerError, models.ErrorResponse{
			Error:   "Internal server error",
			Details: err.Error(),
		})
		return
	}

	if h.realtimeClient != nil {
		h.realtimeClient.PublishSyncEvent("sessions_synced",
			supabase.SyncCompletedPayload(resp.NewlyCreated, resp.Failed))
	}

	c.JSON(http.StatusOK, resp)
}

// SyncStatus godoc
// @Summary     Report storage/database drift
// @Description Dry run of the sync: lists session folders and reports which
// @Description ones lack a database record, without writing anything.
// @Tags        sync
// @Produce     json
// @Success     200 {object} models.SyncStatusResponse
// @Failure     500 {object} models.ErrorResponse
// @Router      /sessions/sync/status [get]
func (h *SyncHandler) SyncStatus(c *gin.Context) {
	if h.syncer == nil {
		c.JSON(http.StatusInternalServerError, models.ErrorResponse{Error: "database not available"})
		return
	}

	resp, err := h.syncer.DryRun()
	if err != nil {
		c.JSON(http.StatusInternalServerError, models.ErrorResponse{
			Error:   "Internal server error",
			Details: err.Error(),
		})
		return
	}

	c.JSON(http.StatusOK, resp)
}
