// Package util 提供通用工具相关的子包。
//
// 子包列表：
//   - xid: 分布式 ID 生成，封装 sonyflake
//   - xjson: JSON 序列化工具，紧凑/格式化输出
//   - xpool: 泛型 Worker Pool，可配置 worker/队列大小、优雅关闭
package util
