package xlinelog

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/omeyang/linekit/pkg/util/xfile"
)

// recordPattern 记录的固定布局：[YYYY-MM-DD HH:MM:SS] <消息>
var recordPattern = regexp.MustCompile(`^\[\d{4}-\d{2}-\d{2} \d{2}:\d{2}:\d{2}\] (.*)$`)

// readLines 读取日志文件的全部行（不含行终止符）。
func readLines(t *testing.T, path string) []string {
	t.Helper()
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	if len(data) == 0 {
		return nil
	}
	text := strings.TrimSuffix(string(data), "\n")
	return strings.Split(text, "\n")
}

// messageOf 提取一行记录的消息部分并校验时间戳前缀格式。
func messageOf(t *testing.T, line string) string {
	t.Helper()
	m := recordPattern.FindStringSubmatch(line)
	require.NotNil(t, m, "记录格式错误: %q", line)
	return m[1]
}

// =============================================================================
// Open / Close 测试
// =============================================================================

// TestOpenCreatesFile 测试打开即创建文件，关闭后文件仍可读
func TestOpenCreatesFile(t *testing.T) {
	tmpDir := t.TempDir()
	path := filepath.Join(tmpDir, "app.log")

	l, err := Open(path)
	require.NoError(t, err)
	require.NoError(t, l.Close())

	_, err = os.ReadFile(path)
	assert.NoError(t, err)
}

// TestOpenPathLengthBoundary 测试路径长度边界：等于或超过上限被拒绝，不创建文件
func TestOpenPathLengthBoundary(t *testing.T) {
	tmpDir := t.TempDir()

	// 拼到恰好 MaxPathLength 字节
	pad := MaxPathLength - len(tmpDir) - 1 - len(".log")
	require.Positive(t, pad, "临时目录路径过长，无法构造边界用例")
	exact := filepath.Join(tmpDir, strings.Repeat("a", pad)+".log")
	require.Len(t, exact, MaxPathLength)

	_, err := Open(exact)
	require.ErrorIs(t, err, ErrPathTooLong)
	_, statErr := os.Stat(exact)
	assert.True(t, os.IsNotExist(statErr), "校验失败时不应创建文件")

	over := filepath.Join(tmpDir, strings.Repeat("a", pad+100)+".log")
	_, err = Open(over)
	require.ErrorIs(t, err, ErrPathTooLong)

	// 短一个字节则合法
	under := filepath.Join(tmpDir, strings.Repeat("a", pad-1)+".log")
	l, err := Open(under)
	require.NoError(t, err)
	require.NoError(t, l.Close())
}

// TestOpenInvalidConfig 测试非法配置被拒绝
func TestOpenInvalidConfig(t *testing.T) {
	tmpDir := t.TempDir()
	path := filepath.Join(tmpDir, "app.log")

	tests := []struct {
		name    string
		opts    []Option
		wantErr error
	}{
		{
			name:    "TruncateAt 为零",
			opts:    []Option{WithTruncateAt(0)},
			wantErr: ErrInvalidTruncateAt,
		},
		{
			name:    "TruncateAt 为 -2",
			opts:    []Option{WithTruncateAt(-2)},
			wantErr: ErrInvalidTruncateAt,
		},
		{
			name:    "MaxMessageSize 为负",
			opts:    []Option{WithMaxMessageSize(-1)},
			wantErr: ErrInvalidMaxMessageSize,
		},
		{
			name:    "FileMode 含非权限位",
			opts:    []Option{WithFileMode(os.ModeSetuid | 0600)},
			wantErr: ErrInvalidFileMode,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Open(path, tt.opts...)
			require.Error(t, err)
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}
}

// TestOpenSanitizesPath 测试路径净化失败直接拒绝
func TestOpenSanitizesPath(t *testing.T) {
	_, err := Open("../escape.log")
	require.Error(t, err)
	assert.ErrorIs(t, err, xfile.ErrPathTraversal)

	_, err = Open("")
	assert.ErrorIs(t, err, xfile.ErrEmptyPath)
}

// TestOpenNilOption 测试 nil option 被静默忽略
func TestOpenNilOption(t *testing.T) {
	tmpDir := t.TempDir()

	l, err := Open(filepath.Join(tmpDir, "app.log"), nil, WithTruncateAt(3), nil)
	require.NoError(t, err)
	require.NoError(t, l.Close())
}

// TestCloseIdempotence 测试重复关闭返回 ErrNotInitialized
func TestCloseIdempotence(t *testing.T) {
	tmpDir := t.TempDir()

	l, err := Open(filepath.Join(tmpDir, "app.log"))
	require.NoError(t, err)
	require.NoError(t, l.Close())
	assert.ErrorIs(t, l.Close(), ErrNotInitialized)
}

// TestNilReceiver 测试 nil 接收者上的所有操作
func TestNilReceiver(t *testing.T) {
	var l *LineLog

	assert.ErrorIs(t, l.Writef("msg"), ErrNotInitialized)
	_, err := l.CountLines()
	assert.ErrorIs(t, err, ErrNotInitialized)
	assert.ErrorIs(t, l.Close(), ErrNotInitialized)
	assert.Zero(t, l.Lines())
	assert.Empty(t, l.Path())
}

// TestOperationsAfterClose 测试关闭后的操作返回 ErrNotInitialized
func TestOperationsAfterClose(t *testing.T) {
	tmpDir := t.TempDir()

	l, err := Open(filepath.Join(tmpDir, "app.log"))
	require.NoError(t, err)
	require.NoError(t, l.Close())

	assert.ErrorIs(t, l.Writef("after close"), ErrNotInitialized)
	_, err = l.CountLines()
	assert.ErrorIs(t, err, ErrNotInitialized)
}

// =============================================================================
// Writef / CountLines 测试
// =============================================================================

// TestWritefUnbounded 测试无上限时 N 次写入得到 N 行
func TestWritefUnbounded(t *testing.T) {
	tmpDir := t.TempDir()
	path := filepath.Join(tmpDir, "app.log")

	l, err := Open(path)
	require.NoError(t, err)
	defer l.Close()

	const n = 20
	for i := 0; i < n; i++ {
		require.NoError(t, l.Writef("message %d", i))
	}

	count, err := l.CountLines()
	require.NoError(t, err)
	assert.Equal(t, n, count)
	assert.Equal(t, n, l.Lines())
}

// TestWritefRecordLayout 测试消息原样出现且时间戳前缀符合固定格式
func TestWritefRecordLayout(t *testing.T) {
	tmpDir := t.TempDir()
	path := filepath.Join(tmpDir, "app.log")

	l, err := Open(path)
	require.NoError(t, err)

	require.NoError(t, l.Writef("plain message"))
	require.NoError(t, l.Writef("formatted %s %d", "values", 42))
	require.NoError(t, l.Writef("trailing newline stripped\n"))
	require.NoError(t, l.Close())

	lines := readLines(t, path)
	require.Len(t, lines, 3)
	assert.Equal(t, "plain message", messageOf(t, lines[0]))
	assert.Equal(t, "formatted values 42", messageOf(t, lines[1]))
	assert.Equal(t, "trailing newline stripped", messageOf(t, lines[2]))
}

// TestWritefMessageTruncation 测试超限消息被截断且可观测
func TestWritefMessageTruncation(t *testing.T) {
	tmpDir := t.TempDir()
	path := filepath.Join(tmpDir, "app.log")

	obs := &recordingObserver{}
	l, err := Open(path, WithMaxMessageSize(10), WithObserver(obs))
	require.NoError(t, err)

	require.NoError(t, l.Writef("0123456789ABCDEF"))
	require.NoError(t, l.Close())

	lines := readLines(t, path)
	require.Len(t, lines, 1)
	assert.Equal(t, "0123456789", messageOf(t, lines[0]))
	assert.Equal(t, 1, obs.truncatedRenders())
}

// TestWritefUnlimitedMessageSize 测试 MaxMessageSize 为 0 时不截断
func TestWritefUnlimitedMessageSize(t *testing.T) {
	tmpDir := t.TempDir()
	path := filepath.Join(tmpDir, "app.log")

	l, err := Open(path, WithMaxMessageSize(0))
	require.NoError(t, err)

	long := strings.Repeat("x", DefaultMaxMessageSize*4)
	require.NoError(t, l.Writef("%s", long))
	require.NoError(t, l.Close())

	lines := readLines(t, path)
	require.Len(t, lines, 1)
	assert.Equal(t, long, messageOf(t, lines[0]))
}

// TestCountLinesUnterminatedTail 测试末尾残行计为一行
func TestCountLinesUnterminatedTail(t *testing.T) {
	tmpDir := t.TempDir()
	path := filepath.Join(tmpDir, "app.log")
	require.NoError(t, os.WriteFile(path, []byte("one\ntwo\npartial"), 0600))

	l, err := Open(path)
	require.NoError(t, err)
	defer l.Close()

	count, err := l.CountLines()
	require.NoError(t, err)
	assert.Equal(t, 3, count)
	assert.Equal(t, 3, l.Lines())
}

// =============================================================================
// 裁剪测试
// =============================================================================

// TestTruncateRealtime 测试写入触发的实时裁剪
//
// 与原始行为保持一致：上限 5 写满后再写一条，行数回到恰好 5，
// 最旧的一行被裁掉，幸存首行是第 2 条记录。
func TestTruncateRealtime(t *testing.T) {
	tmpDir := t.TempDir()
	path := filepath.Join(tmpDir, "truncate.log")
	const maxLines = 5

	l, err := Open(path, WithTruncateAt(maxLines))
	require.NoError(t, err)
	assert.Equal(t, 0, l.Lines())

	for i := 0; i < maxLines; i++ {
		require.NoError(t, l.Writef("Line %d", i+1))
	}
	assert.Equal(t, maxLines, l.Lines())

	require.NoError(t, l.Writef("Line %d - should trigger truncation", maxLines+1))
	assert.Equal(t, maxLines, l.Lines())

	count, err := l.CountLines()
	require.NoError(t, err)
	assert.Equal(t, maxLines, count)

	lines := readLines(t, path)
	require.Len(t, lines, maxLines)
	assert.Contains(t, messageOf(t, lines[0]), "Line 2")

	// 连续触发多次裁剪
	for i := 0; i < maxLines; i++ {
		require.NoError(t, l.Writef("Extra line %d", i+1))
	}
	count, err = l.CountLines()
	require.NoError(t, err)
	assert.Equal(t, maxLines, count)

	lines = readLines(t, path)
	assert.Contains(t, messageOf(t, lines[0]), "Extra line")

	require.NoError(t, l.Close())
}

// TestTruncateKeepsNewestInOrder 测试裁剪保留最新 K 行且顺序不变
func TestTruncateKeepsNewestInOrder(t *testing.T) {
	tmpDir := t.TempDir()
	path := filepath.Join(tmpDir, "a.log")

	l, err := Open(path, WithTruncateAt(3))
	require.NoError(t, err)

	for _, msg := range []string{"one", "two", "three", "four"} {
		require.NoError(t, l.Writef("%s", msg))
	}
	require.NoError(t, l.Close())

	lines := readLines(t, path)
	require.Len(t, lines, 3)
	assert.Equal(t, "two", messageOf(t, lines[0]))
	assert.Equal(t, "three", messageOf(t, lines[1]))
	assert.Equal(t, "four", messageOf(t, lines[2]))
	for _, line := range lines {
		assert.NotContains(t, line, "one")
	}
}

// TestTruncateThresholdIdempotence 测试每次超限写入恰好回到上限
func TestTruncateThresholdIdempotence(t *testing.T) {
	tmpDir := t.TempDir()
	path := filepath.Join(tmpDir, "app.log")
	const bound = 4

	l, err := Open(path, WithTruncateAt(bound))
	require.NoError(t, err)
	defer l.Close()

	for i := 0; i < bound*3; i++ {
		require.NoError(t, l.Writef("line %d", i))
		want := i + 1
		if want > bound {
			want = bound
		}
		assert.Equal(t, want, l.Lines(), "第 %d 次写入后", i+1)
	}

	count, err := l.CountLines()
	require.NoError(t, err)
	assert.Equal(t, bound, count)
}

// TestOpenEagerTruncation 测试打开时对超限的既有文件执行一次裁剪
func TestOpenEagerTruncation(t *testing.T) {
	tmpDir := t.TempDir()
	path := filepath.Join(tmpDir, "app.log")

	var sb strings.Builder
	for i := 1; i <= 10; i++ {
		fmt.Fprintf(&sb, "[2024-01-01 00:00:00] old line %d\n", i)
	}
	require.NoError(t, os.WriteFile(path, []byte(sb.String()), 0600))

	l, err := Open(path, WithTruncateAt(3))
	require.NoError(t, err)
	defer l.Close()

	assert.Equal(t, 3, l.Lines())
	lines := readLines(t, path)
	require.Len(t, lines, 3)
	assert.Equal(t, "old line 8", messageOf(t, lines[0]))
	assert.Equal(t, "old line 10", messageOf(t, lines[2]))

	_, statErr := os.Stat(filepath.Join(tmpDir, TempFileName))
	assert.True(t, os.IsNotExist(statErr), "裁剪完成后不应残留临时文件")
}

// TestOpenUnboundedExisting 测试无上限打开既有文件：只统计，不裁剪
func TestOpenUnboundedExisting(t *testing.T) {
	tmpDir := t.TempDir()
	path := filepath.Join(tmpDir, "b.log")

	var sb strings.Builder
	for i := 1; i <= 100; i++ {
		fmt.Fprintf(&sb, "[2024-01-01 00:00:00] line %d\n", i)
	}
	require.NoError(t, os.WriteFile(path, []byte(sb.String()), 0600))

	l, err := Open(path)
	require.NoError(t, err)
	defer l.Close()

	assert.Equal(t, 100, l.Lines())

	lines := readLines(t, path)
	assert.Len(t, lines, 100)

	_, statErr := os.Stat(filepath.Join(tmpDir, TempFileName))
	assert.True(t, os.IsNotExist(statErr), "无上限模式不应创建临时文件")
}

// TestOpenExistingUnderBound 测试未超限的既有文件不触发裁剪
func TestOpenExistingUnderBound(t *testing.T) {
	tmpDir := t.TempDir()
	path := filepath.Join(tmpDir, "app.log")
	require.NoError(t, os.WriteFile(path, []byte("a\nb\n"), 0600))

	l, err := Open(path, WithTruncateAt(5))
	require.NoError(t, err)
	defer l.Close()

	assert.Equal(t, 2, l.Lines())
	_, statErr := os.Stat(filepath.Join(tmpDir, TempFileName))
	assert.True(t, os.IsNotExist(statErr))
}

// =============================================================================
// 并发测试
// =============================================================================

// TestConcurrentWrites 测试 M 个 goroutine 各写一条，得到 M 条完整记录
func TestConcurrentWrites(t *testing.T) {
	tmpDir := t.TempDir()
	path := filepath.Join(tmpDir, "app.log")
	const writers = 32

	l, err := Open(path)
	require.NoError(t, err)

	var wg sync.WaitGroup
	for i := 0; i < writers; i++ {
		wg.Add(1)
		go func(id int) {
			defer wg.Done()
			assert.NoError(t, l.Writef("writer %d", id))
		}(i)
	}
	wg.Wait()

	count, err := l.CountLines()
	require.NoError(t, err)
	assert.Equal(t, writers, count)
	assert.Equal(t, writers, l.Lines())
	require.NoError(t, l.Close())

	seen := make(map[string]bool, writers)
	for _, line := range readLines(t, path) {
		msg := messageOf(t, line)
		assert.False(t, seen[msg], "记录重复: %q", msg)
		seen[msg] = true
	}
	assert.Len(t, seen, writers)
}

// TestConcurrentWritesWithTruncation 测试并发写入叠加裁剪后行数恰为上限
func TestConcurrentWritesWithTruncation(t *testing.T) {
	tmpDir := t.TempDir()
	path := filepath.Join(tmpDir, "app.log")
	const writers = 24
	const bound = 5

	l, err := Open(path, WithTruncateAt(bound))
	require.NoError(t, err)

	var wg sync.WaitGroup
	for i := 0; i < writers; i++ {
		wg.Add(1)
		go func(id int) {
			defer wg.Done()
			assert.NoError(t, l.Writef("writer %d", id))
		}(i)
	}
	wg.Wait()

	count, err := l.CountLines()
	require.NoError(t, err)
	assert.Equal(t, bound, count)
	require.NoError(t, l.Close())

	for _, line := range readLines(t, path) {
		messageOf(t, line) // 每行都必须是完整记录
	}
}
