package service

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"

	"MatchSync/internal/model"
	"MatchSync/internal/repository"

	"github.com/sirupsen/logrus"
)

// ErrInsufficientSamples 可用样本不足，未生成快照
var ErrInsufficientSamples = fmt.Errorf("训练样本不足")

// ModelState 快照内容：各方向的先验占比 + 隐含热门启发式的命中率。
// 朴素频率模型，仅作为历史数据的下游消费示例，不参与核心读写路径
type ModelState struct {
	Priors          map[Pick]float64 `json:"priors"`
	FavoriteHitRate float64          `json:"favorite_hit_rate"`
	Samples         int              `json:"samples"`
	TrainedAt       time.Time        `json:"trained_at"`
}

// TrainerService 模型训练服务：只读比赛/赛果历史，产出快照
type TrainerService struct {
	matchRepo  repository.MatchRepository
	snapRepo   repository.SnapshotRepository
	minSamples int
	logger     *logrus.Logger
}

// NewTrainerService 创建 TrainerService，minSamples 不足时训练直接拒绝
func NewTrainerService(matchRepo repository.MatchRepository, snapRepo repository.SnapshotRepository, minSamples int, logger *logrus.Logger) *TrainerService {
	if minSamples <= 0 {
		minSamples = 10
	}
	return &TrainerService{
		matchRepo:  matchRepo,
		snapRepo:   snapRepo,
		minSamples: minSamples,
		logger:     logger,
	}
}

// outcomeFromScore 从全场比分（"2-1" 或 "2:1"）推导结果方向
func outcomeFromScore(ftScore string) (Pick, bool) {
	sep := "-"
	if strings.Contains(ftScore, ":") {
		sep = ":"
	}
	parts := strings.SplitN(strings.TrimSpace(ftScore), sep, 2)
	if len(parts) != 2 {
		return "", false
	}
	h, err1 := strconv.Atoi(strings.TrimSpace(parts[0]))
	a, err2 := strconv.Atoi(strings.TrimSpace(parts[1]))
	if err1 != nil || err2 != nil {
		return "", false
	}
	switch {
	case h > a:
		return PickHome, true
	case h < a:
		return PickAway, true
	default:
		return PickDraw, true
	}
}

// favorite 与 QueryService.Predict 相同的定序：最低赔率，并列取 HOME→DRAW→AWAY
func favorite(m *model.Match) Pick {
	pick, odds := PickHome, m.OddsH
	if m.OddsX < odds {
		pick, odds = PickDraw, m.OddsX
	}
	if m.OddsA < odds {
		pick = PickAway
	}
	return pick
}

// Train 把赛果按 match_id 关联到比赛行，统计方向先验与热门命中率并落快照。
// 可解析的（比赛, 赛果）对少于 minSamples 时返回 ErrInsufficientSamples
func (s *TrainerService) Train(ctx context.Context) (*model.ModelSnapshot, error) {
	matches, err := s.matchRepo.ListMatches(ctx)
	if err != nil {
		return nil, err
	}
	results, err := s.matchRepo.ListResults(ctx, 0)
	if err != nil {
		return nil, err
	}

	byID := make(map[int64]*model.Match, len(matches))
	for _, m := range matches {
		byID[m.MatchID] = m
	}

	counts := map[Pick]int{}
	favoriteHits := 0
	samples := 0
	for _, r := range results {
		m, ok := byID[r.MatchID]
		if !ok {
			continue // 赛果先于比赛行到达，等比赛补齐后纳入下次训练
		}
		outcome, ok := outcomeFromScore(r.FTScore)
		if !ok {
			continue
		}
		counts[outcome]++
		if favorite(m) == outcome {
			favoriteHits++
		}
		samples++
	}

	if samples < s.minSamples {
		return nil, fmt.Errorf("%w: 可用样本 %d < %d", ErrInsufficientSamples, samples, s.minSamples)
	}

	state := ModelState{
		Priors:    map[Pick]float64{},
		Samples:   samples,
		TrainedAt: time.Now().UTC(),
	}
	for _, p := range []Pick{PickHome, PickDraw, PickAway} {
		state.Priors[p] = float64(counts[p]) / float64(samples)
	}
	state.FavoriteHitRate = float64(favoriteHits) / float64(samples)

	raw, err := json.Marshal(state)
	if err != nil {
		return nil, fmt.Errorf("序列化模型状态失败: %w", err)
	}
	snap := &model.ModelSnapshot{
		State:     raw,
		Samples:   samples,
		TrainedAt: state.TrainedAt,
	}
	if err := s.snapRepo.SaveSnapshot(ctx, snap); err != nil {
		return nil, err
	}
	s.logger.WithFields(logrus.Fields{
		"samples":  samples,
		"hit_rate": state.FavoriteHitRate,
	}).Info("模型快照已更新")
	return snap, nil
}

// Latest 最近一次训练快照，尚无快照时返回 ErrNotFound
func (s *TrainerService) Latest(ctx context.Context) (*model.ModelSnapshot, error) {
	return s.snapRepo.LatestSnapshot(ctx)
}
