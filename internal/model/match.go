package model

import (
	"time"
)

// SourceUnknown 客户端未携带 source 时的默认来源标记
const SourceUnknown = "unknown"

// Match 对应 matches 表，按 match_id 唯一的比赛活动行（last-write-wins）
// updated_at 由存储层写入（UTC），调用方传入的时间戳一律忽略
type Match struct {
	ID        uint64    `gorm:"column:id;primaryKey;autoIncrement;comment:自增主键ID" json:"-"`
	MatchID   int64     `gorm:"column:match_id;uniqueIndex;not null;comment:全局唯一比赛ID（调用方提供）" json:"match_id"`
	Home      string    `gorm:"column:home;type:varchar(128);not null;comment:主队名称" json:"home"`
	Away      string    `gorm:"column:away;type:varchar(128);not null;comment:客队名称" json:"away"`
	OddsH     float64   `gorm:"column:odds_h;type:numeric(10,4);not null;comment:主胜赔率" json:"odds_h"`
	OddsX     float64   `gorm:"column:odds_x;type:numeric(10,4);not null;comment:平局赔率" json:"odds_x"`
	OddsA     float64   `gorm:"column:odds_a;type:numeric(10,4);not null;comment:客胜赔率" json:"odds_a"`
	Source    string    `gorm:"column:source;type:varchar(64);not null;comment:提交客户端标识" json:"source"`
	CreatedAt time.Time `gorm:"column:created_at;type:timestamp;not null;comment:首次入库时间" json:"created_at"`
	UpdatedAt time.Time `gorm:"column:updated_at;type:timestamp;not null;index;comment:最近一次接受写入的时间" json:"updated_at"`
}

// MatchResult 对应 match_results 表，append-only 的赛果记录
// 与 matches 仅按 match_id 值关联（不建外键），赛果可先于比赛行到达
type MatchResult struct {
	ID         uint64    `gorm:"column:id;primaryKey;autoIncrement;comment:自增主键ID" json:"-"`
	ResultUUID string    `gorm:"column:result_uuid;type:varchar(64);uniqueIndex;not null;comment:全局唯一赛果ID" json:"result_uuid"`
	MatchID    int64     `gorm:"column:match_id;index;not null;comment:关联比赛ID" json:"match_id"`
	HTScore    string    `gorm:"column:ht_score;type:varchar(16);comment:半场比分" json:"ht_score,omitempty"`
	FTScore    string    `gorm:"column:ft_score;type:varchar(16);comment:全场比分" json:"ft_score,omitempty"`
	Source     string    `gorm:"column:source;type:varchar(64);not null;comment:提交客户端标识" json:"source"`
	ResultAt   time.Time `gorm:"column:result_at;type:timestamp;not null;comment:入库时间（存储层写入）" json:"result_at"`
}

func (Match) TableName() string       { return "matches" }
func (MatchResult) TableName() string { return "match_results" }

// MatchRecord 入站比赛记录（请求层解析后的边界模型）
type MatchRecord struct {
	MatchID int64   `json:"match_id" binding:"required"`
	Home    string  `json:"home" binding:"required"`
	Away    string  `json:"away" binding:"required"`
	OddsH   float64 `json:"odds_h" binding:"required"`
	OddsX   float64 `json:"odds_x" binding:"required"`
	OddsA   float64 `json:"odds_a" binding:"required"`
	Source  string  `json:"source"`
}

// ResultRecord 入站赛果记录
type ResultRecord struct {
	MatchID int64  `json:"match_id" binding:"required"`
	HTScore string `json:"ht_score"`
	FTScore string `json:"ft_score"`
	Source  string `json:"source"`
}
