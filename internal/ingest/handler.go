package ingest

import (
	"context"
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
)

type Handler struct {
	Service *Service
}

func NewHandler(svc *Service) *Handler {
	return &Handler{Service: svc}
}

func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.POST("/sync/rss", h.syncFeed)
	rg.POST("/sync/all", h.syncAll)
}

func (h *Handler) syncFeed(c *gin.Context) {
	h.respond(c, h.Service.SyncFeed)
}

func (h *Handler) syncAll(c *gin.Context) {
	h.respond(c, h.Service.SyncAll)
}

// respond runs a sync and reports the ingested titles. The run blocks until
// completion; a full crawl can take a while, callers must tolerate that.
func (h *Handler) respond(c *gin.Context, run func(ctx context.Context) ([]string, error)) {
	added, err := run(c.Request.Context())

	c.Header("X-Total-Count", strconv.Itoa(len(added)))

	if err != nil {
		if errors.Is(err, ErrSyncRunning) {
			c.JSON(http.StatusConflict, gin.H{"error": "sync already running"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error(), "added": added})
		return
	}

	c.JSON(http.StatusOK, gin.H{"added": added, "count": len(added)})
}
