package xlinelog

import (
	"fmt"
	"os"

	"github.com/omeyang/linekit/pkg/util/xfile"
)

// 默认配置值
const (
	// Unbounded 不限制行数的哨兵值，永不触发裁剪。
	Unbounded = -1

	// MaxPathLength 日志文件路径长度上限（字节）。
	// 路径长度必须严格小于该值，超长路径被拒绝而非截断。
	MaxPathLength = 256

	// DefaultMaxMessageSize 默认单条消息渲染上限（字节）。
	// 超限的渲染结果被截断（见 WithMaxMessageSize）。
	DefaultMaxMessageSize = 1024

	// DefaultFileMode 默认日志文件权限。
	DefaultFileMode os.FileMode = 0600

	// TempFileName 裁剪时使用的固定临时文件名，位于日志文件同目录。
	// 操作完成后该文件不应残留；其存在说明上一次裁剪中途崩溃。
	TempFileName = "tmp.log"
)

// config LineLog 配置
type config struct {
	truncateAt     int
	maxMessageSize int
	fileMode       os.FileMode
	dirPerm        os.FileMode
	observer       Observer
}

// Option LineLog 配置选项函数
type Option func(*config)

func defaultConfig() config {
	return config{
		truncateAt:     Unbounded,
		maxMessageSize: DefaultMaxMessageSize,
		fileMode:       DefaultFileMode,
		dirPerm:        xfile.DefaultDirPerm,
		observer:       noopObserver{},
	}
}

// WithTruncateAt 设置保留的最大行数
//
// 写入使行数超过 n 时触发裁剪，只保留最新的 n 行。
// 传入 [Unbounded]（默认值）表示不限制行数。
func WithTruncateAt(n int) Option {
	return func(c *config) {
		c.truncateAt = n
	}
}

// WithMaxMessageSize 设置单条消息的渲染上限（字节）
//
// 超限的渲染结果会被静默截断并通过 Observer 上报，0 表示不限制。
// 默认值 [DefaultMaxMessageSize]。
//
// 设计决策: 截断而非报错——让日志调用在每个调用点都多出一条错误分支
// 得不偿失，超限事件通过 Observer 可观测。需要硬边界的调用方可自行
// 预检消息长度。
func WithMaxMessageSize(n int) Option {
	return func(c *config) {
		c.maxMessageSize = n
	}
}

// WithFileMode 设置日志文件权限
//
// 仅允许权限位（0000~0777）。默认值 [DefaultFileMode]。
func WithFileMode(mode os.FileMode) Option {
	return func(c *config) {
		c.fileMode = mode
	}
}

// WithDirPerm 设置自动创建父目录时的目录权限
//
// 默认值 [xfile.DefaultDirPerm]。
func WithDirPerm(perm os.FileMode) Option {
	return func(c *config) {
		c.dirPerm = perm
	}
}

// WithObserver 设置内部事件的观测钩子
//
// 安全约束：回调不得写回同一 LineLog。Observer 在持锁期间被调用，
// 回写会直接死锁。
func WithObserver(obs Observer) Option {
	return func(c *config) {
		if obs != nil {
			c.observer = obs
		}
	}
}

// validateConfig 验证配置
func validateConfig(c *config) error {
	if c.truncateAt != Unbounded && c.truncateAt <= 0 {
		return fmt.Errorf("%w: got %d, want positive or Unbounded", ErrInvalidTruncateAt, c.truncateAt)
	}
	if c.maxMessageSize < 0 {
		return fmt.Errorf("%w: got %d, want >= 0", ErrInvalidMaxMessageSize, c.maxMessageSize)
	}
	if c.fileMode&^os.FileMode(0o777) != 0 {
		return fmt.Errorf("%w: got %04o, only permission bits (0000~0777) allowed",
			ErrInvalidFileMode, c.fileMode)
	}
	return nil
}
