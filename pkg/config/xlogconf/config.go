package xlogconf

import (
	"fmt"
	"os"
	"strconv"

	"github.com/omeyang/linekit/pkg/observability/xlinelog"
)

// Format 定义配置文件格式。
type Format string

// 支持的配置格式。
const (
	// FormatYAML YAML 格式（推荐用于 K8s ConfigMap）。
	FormatYAML Format = "yaml"

	// FormatJSON JSON 格式。
	FormatJSON Format = "json"
)

// Config 行式日志的声明式配置
//
// 零值不可直接使用：Path 必填。数值字段的零值表示"使用默认/不限制"，
// 见各字段说明。
type Config struct {
	// Path 日志文件路径（必填）。
	Path string `koanf:"path"`

	// TruncateAt 保留的最大行数。
	// 0（字段缺省）和 -1 都表示不限制，等价于 xlinelog.Unbounded。
	TruncateAt int `koanf:"truncate_at"`

	// MaxMessageSize 单条消息渲染上限（字节）。
	// 0（字段缺省）使用 xlinelog.DefaultMaxMessageSize，-1 表示不限制。
	//
	// 设计决策: 配置层无法区分"缺省"和"显式 0"，因此用 -1 表示
	// 显式不限制，0/缺省走默认值。
	MaxMessageSize int `koanf:"max_message_size"`

	// FileMode 日志文件权限，八进制字符串（如 "0600"），可省略。
	FileMode string `koanf:"file_mode"`

	// DirPerm 自动创建父目录的权限，八进制字符串（如 "0750"），可省略。
	DirPerm string `koanf:"dir_perm"`
}

// Options 将配置转换为 xlinelog 选项列表
//
// 转换失败（缺少路径、权限字符串非法）返回错误；
// xlinelog 侧的数值校验在 Open 时进行。
func (c *Config) Options() ([]xlinelog.Option, error) {
	if c.Path == "" {
		return nil, ErrMissingPath
	}

	var opts []xlinelog.Option

	switch {
	case c.TruncateAt == 0 || c.TruncateAt == xlinelog.Unbounded:
		// 不限制，保持 xlinelog 默认
	default:
		opts = append(opts, xlinelog.WithTruncateAt(c.TruncateAt))
	}

	switch {
	case c.MaxMessageSize == 0:
		// 缺省，保持 xlinelog 默认
	case c.MaxMessageSize == -1:
		opts = append(opts, xlinelog.WithMaxMessageSize(0))
	default:
		opts = append(opts, xlinelog.WithMaxMessageSize(c.MaxMessageSize))
	}

	if c.FileMode != "" {
		mode, err := parseOctalMode(c.FileMode)
		if err != nil {
			return nil, fmt.Errorf("%w: file_mode %q", ErrInvalidMode, c.FileMode)
		}
		opts = append(opts, xlinelog.WithFileMode(mode))
	}

	if c.DirPerm != "" {
		perm, err := parseOctalMode(c.DirPerm)
		if err != nil {
			return nil, fmt.Errorf("%w: dir_perm %q", ErrInvalidMode, c.DirPerm)
		}
		opts = append(opts, xlinelog.WithDirPerm(perm))
	}

	return opts, nil
}

// Open 按配置打开行式日志
//
// extra 中的选项追加在配置转换结果之后，可用于注入 Observer 等
// 无法声明式表达的选项。
func (c *Config) Open(extra ...xlinelog.Option) (*xlinelog.LineLog, error) {
	opts, err := c.Options()
	if err != nil {
		return nil, err
	}
	return xlinelog.Open(c.Path, append(opts, extra...)...)
}

// parseOctalMode 解析八进制权限字符串（允许 "0600"、"600"、"0o600"）。
func parseOctalMode(s string) (os.FileMode, error) {
	if len(s) > 2 && (s[:2] == "0o" || s[:2] == "0O") {
		s = s[2:]
	}
	n, err := strconv.ParseUint(s, 8, 32)
	if err != nil {
		return 0, err
	}
	if n > 0o777 {
		return 0, fmt.Errorf("permission %04o out of range", n)
	}
	return os.FileMode(n), nil
}
