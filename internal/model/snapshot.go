package model

import (
	"time"

	"gorm.io/datatypes"
)

// ModelSnapshot 对应 model_snapshots 表，训练产物快照
// 训练器只读比赛/赛果历史，快照独立落本表，不经写协调器
type ModelSnapshot struct {
	ID        uint64         `gorm:"column:id;primaryKey;autoIncrement;comment:自增主键ID" json:"-"`
	State     datatypes.JSON `gorm:"column:state;type:jsonb;not null;comment:模型状态（先验分布/命中率等）" json:"state"`
	Samples   int            `gorm:"column:samples;type:int;not null;comment:训练样本数" json:"samples"`
	TrainedAt time.Time      `gorm:"column:trained_at;type:timestamp;not null;comment:训练时间" json:"trained_at"`
}

func (ModelSnapshot) TableName() string { return "model_snapshots" }
