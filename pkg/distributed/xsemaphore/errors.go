package xsemaphore

import (
	"context"
	"errors"
)

// =============================================================================
// 预定义错误
// =============================================================================

// 预定义错误，使用 errors.Is 进行比较
var (
	// ErrBrokerClosed 信号量已关闭。
	// Close 之后再 Acquire 返回此错误；已经发放的许可仍可正常 Release。
	ErrBrokerClosed = errors.New("xsemaphore: broker is closed")

	// ErrInvalidCapacity 无效的容量配置。
	// 容量必须 >= 0（0 合法，表示永不可获取，见 doc.go）。
	ErrInvalidCapacity = errors.New("xsemaphore: invalid capacity")

	// ErrIDGenerationFailed 许可 ID 生成失败。
	// 当 xid 生成器因时钟严重回拨等原因无法生成 ID 时返回此错误。
	ErrIDGenerationFailed = errors.New("xsemaphore: failed to generate permit ID")

	// ErrNilContext context 参数为空。
	ErrNilContext = errors.New("xsemaphore: context must not be nil")

	// ErrAbandonedPermit 标记一个被清扫回收的许可。
	// 从不作为函数返回值出现，只用于日志记录（sweep 发现并回收了一个
	// 持有者已不可达但从未 Release 的许可）。
	ErrAbandonedPermit = errors.New("xsemaphore: permit abandoned by holder")
)

// IsBrokerClosed 检查是否是 broker 已关闭错误。
func IsBrokerClosed(err error) bool {
	return errors.Is(err, ErrBrokerClosed)
}

// IsCanceled 检查错误是否源自调用方放弃等待（context 取消或超时）。
func IsCanceled(err error) bool {
	return errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded)
}

// =============================================================================
// 错误分类（用于低基数指标）
// =============================================================================

const (
	// ErrClassBrokerClosed broker 已关闭
	ErrClassBrokerClosed = "broker_closed"
	// ErrClassTimeout 超时
	ErrClassTimeout = "timeout"
	// ErrClassCanceled 取消
	ErrClassCanceled = "canceled"
	// ErrClassInternal 内部错误
	ErrClassInternal = "internal_error"
)

// ClassifyError 将错误分类为低基数字符串，用于指标属性。
func ClassifyError(err error) string {
	if err == nil {
		return ""
	}
	if IsBrokerClosed(err) {
		return ErrClassBrokerClosed
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return ErrClassTimeout
	}
	if errors.Is(err, context.Canceled) {
		return ErrClassCanceled
	}
	return ErrClassInternal
}
