package xfile

import (
	"path/filepath"
	"testing"
)

// =============================================================================
// 性能测试（Benchmark）
// =============================================================================

// BenchmarkSanitizePath 测试路径净化性能
func BenchmarkSanitizePath(b *testing.B) {
	b.ReportAllocs()
	for i := 0; i < b.N; i++ {
		_, _ = SanitizePath("/var/log/app.log")
	}
}

// BenchmarkSanitizePathWithDots 测试带点路径净化性能
func BenchmarkSanitizePathWithDots(b *testing.B) {
	b.ReportAllocs()
	for i := 0; i < b.N; i++ {
		_, _ = SanitizePath("/var/./log/./app..2024.log")
	}
}

// BenchmarkEnsureDir 测试目录已存在时的性能
func BenchmarkEnsureDir(b *testing.B) {
	tmpDir := b.TempDir()
	filename := filepath.Join(tmpDir, "app.log")
	_ = EnsureDir(filename)

	b.ResetTimer()
	b.ReportAllocs()
	for i := 0; i < b.N; i++ {
		_ = EnsureDir(filename)
	}
}
