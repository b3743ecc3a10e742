package audit

import (
	"encoding/csv"
	"fmt"
	"os"
	"strconv"
	"time"

	"MatchSync/internal/model"
)

// Op 审计条目的操作类型。条目格式里显式记录 insert/update，
// 而不是靠时间戳邻近程度去猜这次写入是新增还是覆盖
type Op string

const (
	OpInsert Op = "insert"
	OpUpdate Op = "update"
)

// header 文件创建时写入一次，之后只追加数据行
var header = []string{"match_id", "home", "away", "odds_h", "odds_x", "odds_a", "source", "created_at", "op"}

// Log append-only 的 CSV 审计日志。每条被接受的比赛写入（insert/update）
// 落一行完整字段快照；Append 返回前落盘，保证存储写入被确认后日志不丢。
// 写入顺序由写协调器的全局临界区保证，Log 自身不加锁。
type Log struct {
	path string
	file *os.File
	w    *csv.Writer
}

// Open 打开（不存在则创建）审计文件。新文件先写表头并落盘
func Open(path string) (*Log, error) {
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return nil, fmt.Errorf("%w: 打开审计文件失败: %v", model.ErrStorageUnavailable, err)
	}
	l := &Log{path: path, file: f, w: csv.NewWriter(f)}

	info, err := f.Stat()
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("%w: 读取审计文件状态失败: %v", model.ErrStorageUnavailable, err)
	}
	if info.Size() == 0 {
		if err := l.writeRow(header); err != nil {
			f.Close()
			return nil, err
		}
	}
	return l, nil
}

// Append 追加一条写入快照，返回前 flush + fsync
func (l *Log) Append(rec *model.MatchRecord, op Op, ts time.Time) error {
	row := []string{
		strconv.FormatInt(rec.MatchID, 10),
		rec.Home,
		rec.Away,
		strconv.FormatFloat(rec.OddsH, 'f', -1, 64),
		strconv.FormatFloat(rec.OddsX, 'f', -1, 64),
		strconv.FormatFloat(rec.OddsA, 'f', -1, 64),
		rec.Source,
		ts.UTC().Format(time.RFC3339),
		string(op),
	}
	return l.writeRow(row)
}

func (l *Log) writeRow(row []string) error {
	if err := l.w.Write(row); err != nil {
		return fmt.Errorf("写审计行失败: %w", err)
	}
	l.w.Flush()
	if err := l.w.Error(); err != nil {
		return fmt.Errorf("刷新审计行失败: %w", err)
	}
	if err := l.file.Sync(); err != nil {
		return fmt.Errorf("审计文件落盘失败: %w", err)
	}
	return nil
}

// Path 审计文件路径，导出接口直接按附件下发原始文件
func (l *Log) Path() string { return l.path }

// Close 关闭底层文件句柄（进程退出时调用）
func (l *Log) Close() error {
	l.w.Flush()
	return l.file.Close()
}
