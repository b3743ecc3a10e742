package service

import (
	"context"
	"fmt"
	"sync"
	"time"

	"MatchSync/internal/audit"
	"MatchSync/internal/model"
	"MatchSync/internal/repository"

	"github.com/sirupsen/logrus"
)

// WriteCoordinator 所有变更的唯一入口：一把进程级互斥锁把
// （存储写入, 审计追加）这对操作做成对外原子且全序的整体。
// 全局一把锁而非按 match_id 分段是刻意取舍——写入节奏是人工/赛事驱动的，
// 串行化的争用成本可以忽略。读路径不经过这把锁。
type WriteCoordinator struct {
	mu     sync.Mutex
	repo   repository.MatchRepository
	audit  *audit.Log
	logger *logrus.Logger
}

// NewWriteCoordinator 创建写协调器。repo 与 auditLog 在进程启动时构造、
// 随进程关闭，协调器是两者此后的唯一写入方
func NewWriteCoordinator(repo repository.MatchRepository, auditLog *audit.Log, logger *logrus.Logger) *WriteCoordinator {
	return &WriteCoordinator{
		repo:   repo,
		audit:  auditLog,
		logger: logger,
	}
}

// ApplyMatch 在临界区内执行 upsert，成功后以同一时间戳、同一操作结果追加审计行。
// 存储写入失败则审计一定不追加，错误原样上抛
func (c *WriteCoordinator) ApplyMatch(ctx context.Context, rec *model.MatchRecord) (repository.Outcome, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	ts := time.Now().UTC()
	outcome, err := c.repo.UpsertMatch(ctx, rec, ts)
	if err != nil {
		return "", err
	}

	op := audit.OpInsert
	if outcome == repository.OutcomeUpdated {
		op = audit.OpUpdate
	}
	if err := c.audit.Append(rec, op, ts); err != nil {
		// 存储已提交但审计缺一行，这是必须暴露的不一致
		c.logger.WithError(err).WithFields(logrus.Fields{
			"match_id": rec.MatchID,
			"op":       op,
		}).Error("审计追加失败，存储写入已提交")
		return outcome, fmt.Errorf("审计追加失败（存储写入已提交）: %w", err)
	}
	return outcome, nil
}

// ApplyResult 赛果追加同样走临界区（保持所有变更全序），
// 但不落审计行：审计格式只承载比赛字段快照，赛果表本身即 append-only 历史
func (c *WriteCoordinator) ApplyResult(ctx context.Context, rec *model.ResultRecord) (string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	ts := time.Now().UTC()
	return c.repo.InsertResult(ctx, rec, ts)
}
