package repository

import (
	"context"
	"errors"
	"fmt"

	"MatchSync/internal/model"

	"gorm.io/gorm"
)

// SnapshotRepository 模型快照的持久化接口。快照表独立于比赛/赛果存储，
// 训练器直接写，不经写协调器
type SnapshotRepository interface {
	SaveSnapshot(ctx context.Context, snap *model.ModelSnapshot) error
	LatestSnapshot(ctx context.Context) (*model.ModelSnapshot, error)
}

type snapshotRepository struct {
	db *gorm.DB
}

// NewSnapshotRepository 创建 SnapshotRepository 实例
func NewSnapshotRepository(db *gorm.DB) SnapshotRepository {
	return &snapshotRepository{db: db}
}

// SaveSnapshot 追加一条训练快照
func (r *snapshotRepository) SaveSnapshot(ctx context.Context, snap *model.ModelSnapshot) error {
	if err := r.db.WithContext(ctx).Create(snap).Error; err != nil {
		return fmt.Errorf("%w: 保存模型快照失败: %v", model.ErrStorageUnavailable, err)
	}
	return nil
}

// LatestSnapshot 取最近一次训练快照
func (r *snapshotRepository) LatestSnapshot(ctx context.Context) (*model.ModelSnapshot, error) {
	var snap model.ModelSnapshot
	if err := r.db.WithContext(ctx).
		Order("trained_at DESC").
		First(&snap).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: 尚无模型快照", model.ErrNotFound)
		}
		return nil, fmt.Errorf("%w: 查询模型快照失败: %v", model.ErrStorageUnavailable, err)
	}
	return &snap, nil
}
