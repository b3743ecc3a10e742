package api

import (
	"context"
	"errors"
	"net/http"

	"MatchSync/internal/model"
	"MatchSync/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

// SyncHandler 比赛/赛果入库接口
type SyncHandler struct {
	ingestService *service.IngestService
	trainer       *service.TrainerService
	autoTrain     bool
	logger        *logrus.Logger
}

// NewSyncHandler 创建 SyncHandler。trainer 可为 nil（禁用自动重训）
func NewSyncHandler(ingestService *service.IngestService, trainer *service.TrainerService, autoTrain bool, logger *logrus.Logger) *SyncHandler {
	return &SyncHandler{
		ingestService: ingestService,
		trainer:       trainer,
		autoTrain:     autoTrain,
		logger:        logger,
	}
}

// statusFromErr 业务错误族到HTTP状态码的映射
func statusFromErr(err error) int {
	switch {
	case errors.Is(err, model.ErrInvalidOdds):
		return http.StatusBadRequest
	case errors.Is(err, model.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, model.ErrStorageUnavailable):
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

// SyncMatch 单场比赛入库 POST /api/matches
func (h *SyncHandler) SyncMatch(c *gin.Context) {
	var rec model.MatchRecord
	if err := c.ShouldBindJSON(&rec); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request: " + err.Error()})
		return
	}
	out, err := h.ingestService.IngestMatch(c.Request.Context(), &rec)
	if err != nil {
		h.logger.WithError(err).Error("SyncMatch failed")
		c.JSON(statusFromErr(err), gin.H{"error": err.Error()})
		return
	}
	h.maybeRetrain()
	c.JSON(http.StatusOK, out)
}

// SyncBatch 批量比赛入库 POST /api/matches/batch
// 单条失败不中断，报告按提交顺序逐条返回
func (h *SyncHandler) SyncBatch(c *gin.Context) {
	var recs []*model.MatchRecord
	if err := c.ShouldBindJSON(&recs); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request: " + err.Error()})
		return
	}
	report := h.ingestService.IngestBatch(c.Request.Context(), recs)
	if report.Accepted > 0 {
		h.maybeRetrain()
	}
	c.JSON(http.StatusOK, report)
}

// SyncResult 赛果入库 POST /api/results
func (h *SyncHandler) SyncResult(c *gin.Context) {
	var rec model.ResultRecord
	if err := c.ShouldBindJSON(&rec); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request: " + err.Error()})
		return
	}
	out, err := h.ingestService.IngestResult(c.Request.Context(), &rec)
	if err != nil {
		h.logger.WithError(err).Error("SyncResult failed")
		c.JSON(statusFromErr(err), gin.H{"error": err.Error()})
		return
	}
	h.maybeRetrain()
	c.JSON(http.StatusOK, out)
}

// maybeRetrain 写入被接受后异步重训（原始客户端每次同步都会触发训练）。
// 训练只读历史且失败无副作用，样本不足属常态，降级为 Debug
func (h *SyncHandler) maybeRetrain() {
	if !h.autoTrain || h.trainer == nil {
		return
	}
	go func() {
		if _, err := h.trainer.Train(context.Background()); err != nil {
			if errors.Is(err, service.ErrInsufficientSamples) {
				h.logger.WithError(err).Debug("自动重训跳过")
				return
			}
			h.logger.WithError(err).Warn("自动重训失败")
		}
	}()
}
