package xlinelog

import "errors"

var (
	// ErrPathTooLong 日志文件路径超过长度上限（必须短于 MaxPathLength 字节）。
	ErrPathTooLong = errors.New("xlinelog: path too long")

	// ErrInvalidTruncateAt TruncateAt 值无效（必须为正数或 Unbounded）。
	ErrInvalidTruncateAt = errors.New("xlinelog: invalid TruncateAt")

	// ErrInvalidMaxMessageSize MaxMessageSize 值无效（必须 >= 0，0 表示不限制）。
	ErrInvalidMaxMessageSize = errors.New("xlinelog: invalid MaxMessageSize")

	// ErrInvalidFileMode FileMode 包含非权限位（仅允许低 9 位 0000~0777）。
	ErrInvalidFileMode = errors.New("xlinelog: invalid FileMode")

	// ErrNotInitialized 在 nil 或已关闭的 LineLog 上调用了操作。
	ErrNotInitialized = errors.New("xlinelog: log not initialized")

	// ErrTruncate 裁剪过程失败。出现该错误后内存中的行数缓存不再可信，
	// 调用方应将该 LineLog 视为降级状态（后续写入仍然可用，但保留上限
	// 可能暂时失准，直到下一次成功的裁剪）。
	ErrTruncate = errors.New("xlinelog: truncation pass failed")
)
