// Package observability 提供可观测性相关的子包。
//
// 子包列表：
//   - xlinelog: 行式追加日志，带时间戳前缀与按行数的保留上限
//
// 设计原则：
//   - 每次写入后同步落盘，崩溃后不丢已确认的记录
//   - 指标通过 OpenTelemetry 暴露，不强制依赖具体导出器
package observability
