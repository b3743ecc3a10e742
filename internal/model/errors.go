package model

import "errors"

// 四类可区分的业务错误，调用方用 errors.Is 判断
var (
	// ErrInvalidOdds 客户端提交的赔率 ≤ 1.0（低于1的返还倍数无经济意义），写入前拒绝
	ErrInvalidOdds = errors.New("invalid odds")
	// ErrNotFound 查询的 match_id 不存在
	ErrNotFound = errors.New("match not found")
	// ErrStorageUnavailable 存储介质无法打开/连接，本次调用直接失败，不重试
	ErrStorageUnavailable = errors.New("storage unavailable")
	// ErrConstraintViolation 缺关键字段的记录到达存储层（校验层漏网），按内部一致性缺陷上抛
	ErrConstraintViolation = errors.New("constraint violation")
)
