package xfile

import (
	"fmt"
	"path/filepath"
	"strings"
)

// containsNullByte 检测路径是否包含空字节。
func containsNullByte(path string) bool {
	return strings.ContainsRune(path, 0)
}

// hasDotDotSegment 检测路径中是否包含 ".." 作为独立路径段。
// 逐字符扫描，零内存分配。同时将 '/' 和 '\' 视为分隔符，
// 以检测 Windows 风格的路径穿越（即使在 Linux 上）。
func hasDotDotSegment(path string) bool {
	i := 0
	for i < len(path) {
		if path[i] == '/' || path[i] == '\\' {
			i++
			continue
		}
		j := i
		for j < len(path) && path[j] != '/' && path[j] != '\\' {
			j++
		}
		if j-i == 2 && path[i] == '.' && path[i+1] == '.' {
			return true
		}
		i = j
	}
	return false
}

// SanitizePath 对日志文件路径进行格式净化和规范化。
//
// 检查项：
//   - 空路径、包含空字节的路径
//   - 显式目录路径（尾随 "/" 或 "\"）
//   - 相对路径穿越（".." 作为独立路径段）
//
// 返回 filepath.Clean 后的路径，或错误。
//
// 安全边界：本函数仅做格式净化，不防护绝对路径访问。日志文件路径来自
// 可信配置，目录隔离不在本包职责内。
//
// 设计决策: 检查 ".." 必须按路径段精确匹配而非 strings.Contains，
// 否则会误伤合法文件名（如 "app..2024.log"）。
func SanitizePath(filename string) (string, error) {
	if filename == "" {
		return "", fmt.Errorf("filename is required: %w", ErrEmptyPath)
	}

	if containsNullByte(filename) {
		return "", fmt.Errorf("filename contains null byte: %w", ErrNullByte)
	}

	// 尾部分隔符检查必须在 filepath.Clean 之前，Clean 会移除尾部斜杠。
	// 同时拦截 "\"：Linux 上反斜杠结尾的文件名理论上合法，但几乎总是
	// 跨平台拼接错误，为安全起见统一拒绝。
	if strings.HasSuffix(filename, "/") || strings.HasSuffix(filename, "\\") {
		return "", fmt.Errorf("path is a directory: %w", ErrInvalidPath)
	}

	cleaned := filepath.Clean(filename)

	if hasDotDotSegment(cleaned) {
		return "", fmt.Errorf("path traversal in filename: %w", ErrPathTraversal)
	}

	base := filepath.Base(cleaned)
	if base == "." || base == string(filepath.Separator) {
		return "", fmt.Errorf("no file name specified: %w", ErrInvalidPath)
	}

	return cleaned, nil
}
