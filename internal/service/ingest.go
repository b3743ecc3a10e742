package service

import (
	"context"
	"fmt"

	"MatchSync/internal/model"

	"github.com/sirupsen/logrus"
)

// 单条入库结果的状态字符串（对外协议的一部分，保持稳定）
const (
	StatusInserted       = "inserted"
	StatusUpdated        = "updated"
	StatusInsertedResult = "inserted_result"
	StatusRejected       = "rejected"
)

// IngestService 入库服务：校验入站记录，经写协调器落库
type IngestService struct {
	coord  *WriteCoordinator
	logger *logrus.Logger
}

// NewIngestService 创建 IngestService
func NewIngestService(coord *WriteCoordinator, logger *logrus.Logger) *IngestService {
	return &IngestService{coord: coord, logger: logger}
}

// IngestOutcome 单条比赛入库的结果
type IngestOutcome struct {
	MatchID int64  `json:"match_id"`
	Status  string `json:"status"`          // inserted / updated / rejected
	Error   string `json:"error,omitempty"` // rejected 时的原因
}

// ResultOutcome 单条赛果入库的结果
type ResultOutcome struct {
	MatchID    int64  `json:"match_id"`
	ResultUUID string `json:"result_uuid"`
	Status     string `json:"status"` // inserted_result
}

// BatchReport 批量入库报告：逐条结果按提交顺序返回，外加计数
type BatchReport struct {
	Total    int             `json:"total"`
	Accepted int             `json:"accepted"`
	Rejected int             `json:"rejected"`
	Outcomes []IngestOutcome `json:"outcomes"`
}

// validateMatch 入站比赛记录校验。三档赔率必须严格大于1.0，
// source 为空则回填默认标记
func validateMatch(rec *model.MatchRecord) error {
	if rec.MatchID <= 0 {
		return fmt.Errorf("%w: match_id 必填且为正整数", model.ErrConstraintViolation)
	}
	for _, o := range []struct {
		name  string
		value float64
	}{
		{"odds_h", rec.OddsH},
		{"odds_x", rec.OddsX},
		{"odds_a", rec.OddsA},
	} {
		if o.value <= 1.0 {
			return fmt.Errorf("%w: %s=%.4f 必须严格大于1.0", model.ErrInvalidOdds, o.name, o.value)
		}
	}
	if rec.Source == "" {
		rec.Source = model.SourceUnknown
	}
	return nil
}

// IngestMatch 校验后经写协调器 upsert 单场比赛
func (s *IngestService) IngestMatch(ctx context.Context, rec *model.MatchRecord) (*IngestOutcome, error) {
	if err := validateMatch(rec); err != nil {
		return nil, err
	}
	outcome, err := s.coord.ApplyMatch(ctx, rec)
	if err != nil {
		return nil, err
	}
	s.logger.WithFields(logrus.Fields{
		"match_id": rec.MatchID,
		"status":   string(outcome),
		"source":   rec.Source,
	}).Info("比赛入库成功")
	return &IngestOutcome{MatchID: rec.MatchID, Status: string(outcome)}, nil
}

// IngestResult 赛果入库，除 match_id 必填外不做数值校验
func (s *IngestService) IngestResult(ctx context.Context, rec *model.ResultRecord) (*ResultOutcome, error) {
	if rec.MatchID <= 0 {
		return nil, fmt.Errorf("%w: match_id 必填且为正整数", model.ErrConstraintViolation)
	}
	if rec.Source == "" {
		rec.Source = model.SourceUnknown
	}
	resultUUID, err := s.coord.ApplyResult(ctx, rec)
	if err != nil {
		return nil, err
	}
	s.logger.WithFields(logrus.Fields{
		"match_id":    rec.MatchID,
		"result_uuid": resultUUID,
	}).Info("赛果入库成功")
	return &ResultOutcome{MatchID: rec.MatchID, ResultUUID: resultUUID, Status: StatusInsertedResult}, nil
}

// IngestBatch 按提交顺序逐条入库，单条失败不中断后续
// （best-effort，逐条上报），报告里保留原始顺序
func (s *IngestService) IngestBatch(ctx context.Context, recs []*model.MatchRecord) *BatchReport {
	report := &BatchReport{
		Total:    len(recs),
		Outcomes: make([]IngestOutcome, 0, len(recs)),
	}
	for _, rec := range recs {
		out, err := s.IngestMatch(ctx, rec)
		if err != nil {
			s.logger.WithError(err).WithField("match_id", rec.MatchID).Warn("批量入库：单条被拒，继续处理后续记录")
			report.Rejected++
			report.Outcomes = append(report.Outcomes, IngestOutcome{
				MatchID: rec.MatchID,
				Status:  StatusRejected,
				Error:   err.Error(),
			})
			continue
		}
		report.Accepted++
		report.Outcomes = append(report.Outcomes, *out)
	}
	return report
}
