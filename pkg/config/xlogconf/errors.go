package xlogconf

import "errors"

// 配置加载和解析相关错误。
var (
	// ErrEmptyPath 表示配置文件路径为空。
	ErrEmptyPath = errors.New("xlogconf: empty config path")

	// ErrUnsupportedFormat 表示不支持的配置格式。
	ErrUnsupportedFormat = errors.New("xlogconf: unsupported config format")

	// ErrLoadFailed 表示配置加载失败。
	ErrLoadFailed = errors.New("xlogconf: failed to load config")

	// ErrParseFailed 表示配置解析失败。
	ErrParseFailed = errors.New("xlogconf: failed to parse config")

	// ErrUnmarshalFailed 表示配置反序列化失败。
	ErrUnmarshalFailed = errors.New("xlogconf: failed to unmarshal config")

	// ErrMissingPath 表示配置中缺少日志文件路径。
	ErrMissingPath = errors.New("xlogconf: log path is required")

	// ErrInvalidMode 表示权限字段不是合法的八进制权限字符串。
	ErrInvalidMode = errors.New("xlogconf: invalid permission string")
)
