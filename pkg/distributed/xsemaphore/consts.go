package xsemaphore

import "time"

// =============================================================================
// 默认配置常量
// =============================================================================

const (
	// DefaultCapacity 默认容量（每数据库允许的最大并发许可数）
	DefaultCapacity = 15
)

// =============================================================================
// 内部常量
// =============================================================================

const (
	// instrumentationVersion 仪表化版本号
	instrumentationVersion = "1.0.0"
)
