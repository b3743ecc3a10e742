package api

import (
	"net/http"
	"strconv"

	"MatchSync/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

// MatchHandler 比赛查询与预测接口（只读，不经写锁）
type MatchHandler struct {
	queryService *service.QueryService
	auditPath    string
	logger       *logrus.Logger
}

// NewMatchHandler 创建 MatchHandler。auditPath 为审计CSV文件路径，导出接口按附件下发
func NewMatchHandler(queryService *service.QueryService, auditPath string, logger *logrus.Logger) *MatchHandler {
	return &MatchHandler{
		queryService: queryService,
		auditPath:    auditPath,
		logger:       logger,
	}
}

// ListMatches 比赛列表（按最近写入倒序）GET /api/matches
func (h *MatchHandler) ListMatches(c *gin.Context) {
	matches, err := h.queryService.ListMatches(c.Request.Context())
	if err != nil {
		h.logger.WithError(err).Error("ListMatches failed")
		c.JSON(statusFromErr(err), gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"total": len(matches), "items": matches})
}

// GetMatch 比赛详情 GET /api/matches/:match_id
func (h *MatchHandler) GetMatch(c *gin.Context) {
	matchID, err := strconv.ParseInt(c.Param("match_id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "match_id must be an integer"})
		return
	}
	m, err := h.queryService.GetMatch(c.Request.Context(), matchID)
	if err != nil {
		h.logger.WithError(err).Warn("GetMatch failed")
		c.JSON(statusFromErr(err), gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, m)
}

// GetPrediction 赔率启发式预测 GET /api/matches/:match_id/prediction
func (h *MatchHandler) GetPrediction(c *gin.Context) {
	matchID, err := strconv.ParseInt(c.Param("match_id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "match_id must be an integer"})
		return
	}
	p, err := h.queryService.Predict(c.Request.Context(), matchID)
	if err != nil {
		h.logger.WithError(err).Warn("GetPrediction failed")
		c.JSON(statusFromErr(err), gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, p)
}

// ExportAudit 下载审计日志原始CSV GET /api/audit/export
func (h *MatchHandler) ExportAudit(c *gin.Context) {
	c.FileAttachment(h.auditPath, "master_matches.csv")
}
