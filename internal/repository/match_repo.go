package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"MatchSync/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Outcome upsert 走了哪个分支，调用方据此上报 inserted/updated
type Outcome string

const (
	OutcomeInserted Outcome = "inserted"
	OutcomeUpdated  Outcome = "updated"
)

// MatchRepository 比赛/赛果的持久化接口
// 变更方法只允许写协调器调用（它是两份持久化目标的唯一写入网关）
type MatchRepository interface {
	// UpsertMatch 按 match_id 插入或整行覆盖（last-write-wins），updated_at 取 ts
	UpsertMatch(ctx context.Context, rec *model.MatchRecord, ts time.Time) (Outcome, error)
	// InsertResult 追加一条赛果，永不改写已有行，返回全局唯一赛果ID
	InsertResult(ctx context.Context, rec *model.ResultRecord, ts time.Time) (string, error)
	// GetMatch 按 match_id 查询单场比赛
	GetMatch(ctx context.Context, matchID int64) (*model.Match, error)
	// ListMatches 全量列表，按 updated_at 倒序
	ListMatches(ctx context.Context) ([]*model.Match, error)
	// ListResults 按入库时间倒序拉取赛果历史（供下游训练消费，带 limit）
	ListResults(ctx context.Context, limit int) ([]*model.MatchResult, error)
}

type matchRepository struct {
	db *gorm.DB
}

// NewMatchRepository 创建 MatchRepository 实例
func NewMatchRepository(db *gorm.DB) MatchRepository {
	return &matchRepository{db: db}
}

// UpsertMatch 按 match_id 插入或覆盖。写协调器已对所有变更串行化，
// 这里的事务只负责读写不被并发读者看到半截状态
func (r *matchRepository) UpsertMatch(ctx context.Context, rec *model.MatchRecord, ts time.Time) (Outcome, error) {
	if rec == nil || rec.MatchID <= 0 {
		return "", fmt.Errorf("%w: match_id 缺失", model.ErrConstraintViolation)
	}

	tx := r.db.WithContext(ctx).Begin()
	if tx.Error != nil {
		return "", fmt.Errorf("%w: 开启事务失败: %v", model.ErrStorageUnavailable, tx.Error)
	}
	defer func() {
		if p := recover(); p != nil {
			tx.Rollback()
			panic(p)
		}
	}()

	var existing model.Match
	err := tx.Where("match_id = ?", rec.MatchID).First(&existing).Error
	switch {
	case errors.Is(err, gorm.ErrRecordNotFound):
		row := model.Match{
			MatchID:   rec.MatchID,
			Home:      rec.Home,
			Away:      rec.Away,
			OddsH:     rec.OddsH,
			OddsX:     rec.OddsX,
			OddsA:     rec.OddsA,
			Source:    rec.Source,
			CreatedAt: ts,
			UpdatedAt: ts,
		}
		if err := tx.Create(&row).Error; err != nil {
			tx.Rollback()
			return "", wrapStoreErr("保存Match失败", err)
		}
		if err := tx.Commit().Error; err != nil {
			return "", fmt.Errorf("%w: 提交事务失败: %v", model.ErrStorageUnavailable, err)
		}
		return OutcomeInserted, nil

	case err != nil:
		tx.Rollback()
		return "", wrapStoreErr("查询Match失败", err)

	default:
		// 覆盖全部可变字段并刷新 updated_at（历史由审计日志保留）
		updates := map[string]interface{}{
			"home":       rec.Home,
			"away":       rec.Away,
			"odds_h":     rec.OddsH,
			"odds_x":     rec.OddsX,
			"odds_a":     rec.OddsA,
			"source":     rec.Source,
			"updated_at": ts,
		}
		if err := tx.Model(&model.Match{}).
			Where("match_id = ?", rec.MatchID).
			Updates(updates).Error; err != nil {
			tx.Rollback()
			return "", wrapStoreErr("更新Match失败", err)
		}
		if err := tx.Commit().Error; err != nil {
			return "", fmt.Errorf("%w: 提交事务失败: %v", model.ErrStorageUnavailable, err)
		}
		return OutcomeUpdated, nil
	}
}

// InsertResult 追加赛果行，result_at 取 ts
func (r *matchRepository) InsertResult(ctx context.Context, rec *model.ResultRecord, ts time.Time) (string, error) {
	if rec == nil || rec.MatchID <= 0 {
		return "", fmt.Errorf("%w: match_id 缺失", model.ErrConstraintViolation)
	}
	row := model.MatchResult{
		ResultUUID: uuid.NewString(),
		MatchID:    rec.MatchID,
		HTScore:    rec.HTScore,
		FTScore:    rec.FTScore,
		Source:     rec.Source,
		ResultAt:   ts,
	}
	if err := r.db.WithContext(ctx).Create(&row).Error; err != nil {
		return "", wrapStoreErr("保存Result失败", err)
	}
	return row.ResultUUID, nil
}

// GetMatch 按 match_id 查询单场比赛
func (r *matchRepository) GetMatch(ctx context.Context, matchID int64) (*model.Match, error) {
	var m model.Match
	if err := r.db.WithContext(ctx).Where("match_id = ?", matchID).First(&m).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: match_id=%d", model.ErrNotFound, matchID)
		}
		return nil, wrapStoreErr("查询Match失败", err)
	}
	return &m, nil
}

// ListMatches 全量列表，最近写入的在前
func (r *matchRepository) ListMatches(ctx context.Context) ([]*model.Match, error) {
	var matches []*model.Match
	if err := r.db.WithContext(ctx).
		Order("updated_at DESC").
		Find(&matches).Error; err != nil {
		return nil, wrapStoreErr("查询Match列表失败", err)
	}
	return matches, nil
}

// ListResults 按入库时间倒序拉取赛果
func (r *matchRepository) ListResults(ctx context.Context, limit int) ([]*model.MatchResult, error) {
	if limit <= 0 {
		limit = 2000
	}
	var results []*model.MatchResult
	if err := r.db.WithContext(ctx).
		Order("result_at DESC").
		Limit(limit).
		Find(&results).Error; err != nil {
		return nil, wrapStoreErr("查询Result列表失败", err)
	}
	return results, nil
}

// wrapStoreErr 数据库错误归入既定错误族：唯一约束冲突算一致性缺陷，其余算介质不可用
func wrapStoreErr(msg string, err error) error {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return fmt.Errorf("%w: %s: %v", model.ErrConstraintViolation, msg, err)
	}
	return fmt.Errorf("%w: %s: %v", model.ErrStorageUnavailable, msg, err)
}
