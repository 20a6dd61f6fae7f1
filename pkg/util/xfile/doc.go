// Package xfile 提供日志文件路径相关的文件系统工具。
//
// 本包服务于 linekit 的单文件日志场景：在打开日志文件之前对路径做格式净化，
// 并确保父目录存在。
//
// # 路径净化
//
// SanitizePath 只做格式净化（空路径、空字节、相对路径穿越、显式目录路径），
// 不做目录隔离。路径穿越检测按路径段精确匹配，只有 ".." 作为独立路径段时
// 才被拒绝，以 ".." 开头的合法文件名（如 "..config"）不会被误判。
//
// # 空字节防护
//
// Linux 内核在 VFS 层会在空字节处截断路径，导致 Go 代码与操作系统看到的
// 路径不一致，因此包含空字节（\x00）的路径一律拒绝。
//
// # 错误处理
//
// 预定义错误变量支持 [errors.Is] 判断：
//
//	_, err := xfile.SanitizePath("../etc/passwd")
//	if errors.Is(err, xfile.ErrPathTraversal) {
//	    // 处理路径穿越
//	}
package xfile
