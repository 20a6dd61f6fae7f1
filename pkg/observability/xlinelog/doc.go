// Package xlinelog 提供单文件、同步落盘、按行数保留的行式日志。
//
// LineLog 向一个日志文件追加带时间戳的文本记录，每次写入后立即 fsync，
// 并在行数超过配置上限时裁掉最旧的记录。设计目标是崩溃可恢复性优先于
// 吞吐量：Writef 返回即表示该记录已持久化到物理存储。
//
// # 记录格式
//
// 每条记录一行，固定布局：
//
//	[YYYY-MM-DD HH:MM:SS] <消息>\n
//
// 时间戳为本地时间、秒级精度。消息中嵌入的换行符不做转义——包含换行的
// 消息会使行数统计和裁剪边界失准，这是已知限制，调用方应避免。
//
// # 行数裁剪
//
// 通过 [WithTruncateAt] 配置保留上限后，写入使行数超限时会触发一次
// 裁剪：将最新的 truncateAt 行经由同目录临时文件 tmp.log 换写回原路径
// （写临时文件 → 关闭两者 → 删除原文件 → 重命名 → 重新打开）。
// 打开时若已有文件超限，也会执行一次同样的裁剪。默认 [Unbounded] 不裁剪。
//
// # 并发
//
// 同一 LineLog 上的 Writef、CountLines、Lines、Close 都由单个互斥锁
// 串行化，裁剪对并发写入方原子。Close 与其他操作的并发调用需由调用方
// 保证先后顺序（Close happens-after 所有其他操作）。
//
// # 自观测
//
// 本组件自身不打日志（它没有降级日志器可用），内部事件通过 [Observer]
// 钩子上报，默认为 noop。[NewOTelObserver] 提供基于 OpenTelemetry
// metric 的实现。
//
// # 错误处理
//
// 预定义错误变量支持 [errors.Is] 判断；所有文件系统错误用 %w 包装原样
// 透出，组件内部不重试、不吞错。
package xlinelog
