package xsemaphore

import (
	"log/slog"
	"time"
)

// =============================================================================
// 日志属性键常量
// =============================================================================

const (
	attrKeyPermitID = "permit_id"
	attrKeyDBID     = "db_id"
	attrKeyCapacity = "capacity"
	attrKeyError    = "error"
	attrKeyDuration = "duration"
)

// =============================================================================
// 日志属性构造函数
// =============================================================================

// AttrPermitID 返回许可 ID 属性
func AttrPermitID(id uint64) slog.Attr {
	return slog.Uint64(attrKeyPermitID, id)
}

// AttrDBID 返回数据库 ID 属性
func AttrDBID(dbID int64) slog.Attr {
	return slog.Int64(attrKeyDBID, dbID)
}

// AttrCapacity 返回容量属性
func AttrCapacity(capacity int) slog.Attr {
	return slog.Int(attrKeyCapacity, capacity)
}

// AttrError 返回错误属性
func AttrError(err error) slog.Attr {
	if err == nil {
		return slog.String(attrKeyError, "")
	}
	return slog.String(attrKeyError, err.Error())
}

// AttrDuration 返回持续时间属性
func AttrDuration(d time.Duration) slog.Attr {
	return slog.Duration(attrKeyDuration, d)
}
