package service

import (
	"context"
	"math"

	"MatchSync/internal/model"
	"MatchSync/internal/repository"

	"github.com/sirupsen/logrus"
)

// Pick 预测指向的结果方向
type Pick string

const (
	PickHome Pick = "HOME"
	PickDraw Pick = "DRAW"
	PickAway Pick = "AWAY"
)

// 置信度截断区间：1/odds 超出 [0.50, 0.95] 时取边界
const (
	confidenceFloor = 0.50
	confidenceCeil  = 0.95
)

// Prediction 赔率启发式预测：最低赔率即隐含热门
type Prediction struct {
	MatchID    int64   `json:"match_id"`
	Home       string  `json:"home"`
	Away       string  `json:"away"`
	Pick       Pick    `json:"pick"`
	Confidence float64 `json:"confidence"`
	OddsUsed   float64 `json:"odds_used"`
}

// QueryService 只读查询服务，直接走存储，不经写协调器的锁
type QueryService struct {
	repo   repository.MatchRepository
	logger *logrus.Logger
}

// NewQueryService 创建 QueryService
func NewQueryService(repo repository.MatchRepository, logger *logrus.Logger) *QueryService {
	return &QueryService{repo: repo, logger: logger}
}

// GetMatch 按 match_id 查询单场比赛
func (s *QueryService) GetMatch(ctx context.Context, matchID int64) (*model.Match, error) {
	return s.repo.GetMatch(ctx, matchID)
}

// ListMatches 全量列表，按 updated_at 倒序
func (s *QueryService) ListMatches(ctx context.Context) ([]*model.Match, error) {
	return s.repo.ListMatches(ctx)
}

// Predict 取三档赔率的最小值作为预测方向，并列时按 HOME→DRAW→AWAY 定序；
// confidence = round(clamp(1/odds, 0.50, 0.95), 2)。这是刻意保留的粗启发式，
// 输出格式与历史客户端兼容，不要改动截断边界和保留位数
func (s *QueryService) Predict(ctx context.Context, matchID int64) (*Prediction, error) {
	m, err := s.repo.GetMatch(ctx, matchID)
	if err != nil {
		return nil, err
	}

	pick, odds := PickHome, m.OddsH
	if m.OddsX < odds {
		pick, odds = PickDraw, m.OddsX
	}
	if m.OddsA < odds {
		pick, odds = PickAway, m.OddsA
	}

	confidence := 1.0 / odds
	if confidence < confidenceFloor {
		confidence = confidenceFloor
	}
	if confidence > confidenceCeil {
		confidence = confidenceCeil
	}
	confidence = math.Round(confidence*100) / 100

	return &Prediction{
		MatchID:    m.MatchID,
		Home:       m.Home,
		Away:       m.Away,
		Pick:       pick,
		Confidence: confidence,
		OddsUsed:   odds,
	}, nil
}
