package api

import (
	"errors"
	"net/http"

	"MatchSync/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

// IntelHandler 模型快照接口（原始客户端的 get_latest_intelligence）
type IntelHandler struct {
	trainer *service.TrainerService
	logger  *logrus.Logger
}

// NewIntelHandler 创建 IntelHandler
func NewIntelHandler(trainer *service.TrainerService, logger *logrus.Logger) *IntelHandler {
	return &IntelHandler{trainer: trainer, logger: logger}
}

// GetLatest 最新模型快照 GET /api/intelligence
func (h *IntelHandler) GetLatest(c *gin.Context) {
	snap, err := h.trainer.Latest(c.Request.Context())
	if err != nil {
		c.JSON(statusFromErr(err), gin.H{"status": "fail", "error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"status":     "ok",
		"samples":    snap.Samples,
		"trained_at": snap.TrainedAt,
		"state":      snap.State,
	})
}

// Train 显式触发重训 POST /api/intelligence/train
func (h *IntelHandler) Train(c *gin.Context) {
	snap, err := h.trainer.Train(c.Request.Context())
	if err != nil {
		if errors.Is(err, service.ErrInsufficientSamples) {
			c.JSON(http.StatusConflict, gin.H{"status": "fail", "error": err.Error()})
			return
		}
		h.logger.WithError(err).Error("Train failed")
		c.JSON(statusFromErr(err), gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "ok", "samples": snap.Samples, "trained_at": snap.TrainedAt})
}
