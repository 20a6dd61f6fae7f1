package xlinelog

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/omeyang/linekit/pkg/util/xfile"
)

// timeLayout 记录前缀的时间戳格式（本地时间、秒级精度）。
const timeLayout = "2006-01-02 15:04:05"

// LineLog 单文件行式日志
//
// 独占一个以追加+读取模式打开的文件句柄，维护一份与文件内容保持一致的
// 行数缓存。所有操作由单个互斥锁串行化；写入（含可能触发的裁剪）相对
// 其他操作是原子的。零值不可用，必须通过 [Open] 创建。
type LineLog struct {
	mu sync.Mutex

	path           string
	file           *os.File
	truncateAt     int
	maxMessageSize int
	fileMode       os.FileMode
	cachedLines    int
	closed         bool
	observer       Observer

	// 可注入的文件系统调用（nil 时使用 os 标准库），仅用于测试
	// 覆盖裁剪过程的失败分支（临时文件创建失败、重命名后重开失败）。
	createTempFn func(name string, perm os.FileMode) (*os.File, error)
	renameFn     func(oldpath, newpath string) error
	openFileFn   func(name string, flag int, perm os.FileMode) (*os.File, error)
}

// Open 打开（不存在则创建）一个行式日志
//
// path 先经 [xfile.SanitizePath] 净化，长度必须严格小于 [MaxPathLength]
// 字节，否则返回 [ErrPathTooLong]；任何校验失败都不会在磁盘上创建文件。
// 父目录不存在时自动创建。
//
// 打开时统计现有文件的行数作为初始缓存；若配置了 [WithTruncateAt] 且
// 现有行数已超限，立即执行一次裁剪，只保留最新的 truncateAt 行。
func Open(path string, opts ...Option) (*LineLog, error) {
	cfg := defaultConfig()
	for _, opt := range opts {
		if opt != nil {
			opt(&cfg)
		}
	}
	if err := validateConfig(&cfg); err != nil {
		return nil, err
	}

	// 长度检查在净化之前，超长路径不进入任何文件系统调用
	if len(path) >= MaxPathLength {
		return nil, fmt.Errorf("%w: %d bytes, limit %d", ErrPathTooLong, len(path), MaxPathLength)
	}

	clean, err := xfile.SanitizePath(path)
	if err != nil {
		return nil, err
	}

	if err := xfile.EnsureDirWithPerm(clean, cfg.dirPerm); err != nil {
		return nil, err
	}

	//#nosec G304 -- 路径已经过 SanitizePath 净化，且来自调用方自己的配置
	f, err := os.OpenFile(clean, os.O_APPEND|os.O_CREATE|os.O_RDWR, cfg.fileMode)
	if err != nil {
		return nil, fmt.Errorf("xlinelog: open %s: %w", clean, err)
	}

	l := &LineLog{
		path:           clean,
		file:           f,
		truncateAt:     cfg.truncateAt,
		maxMessageSize: cfg.maxMessageSize,
		fileMode:       cfg.fileMode,
		observer:       cfg.observer,
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	lines, err := l.scanLines()
	if err != nil {
		_ = f.Close()
		return nil, err
	}

	if l.truncateAt != Unbounded && lines > l.truncateAt {
		if err := l.truncatePass(lines); err != nil {
			if l.file != nil {
				_ = l.file.Close()
			}
			return nil, err
		}
		l.cachedLines = l.truncateAt
	} else {
		l.cachedLines = lines
	}

	return l, nil
}

// Writef 渲染并追加一条带时间戳的记录，落盘后返回
//
// format 末尾如有一个换行符会先被剥除（记录的行终止符由本组件统一提供，
// 不会出现双换行或缺换行）。渲染结果超过 MaxMessageSize 时被截断
// 并通过 Observer 上报。
//
// 记录先追加再 Sync 强制持久化到物理存储，返回 nil 即表示该记录已
// 崩溃可恢复。写入使行数超过 truncateAt 时，在同一次持锁期间完成裁剪。
//
// 裁剪失败返回包装了 [ErrTruncate] 的错误，此时锁已释放、日志仍可
// 继续写入，但行数缓存可能失准（见 ErrTruncate 的说明）。
func (l *LineLog) Writef(format string, args ...any) error {
	if l == nil {
		return ErrNotInitialized
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	if l.closed || l.file == nil {
		return ErrNotInitialized
	}

	start := time.Now()

	// 只剥除一个尾部换行，与记录终止符约定配套
	format = strings.TrimSuffix(format, "\n")

	msg := fmt.Sprintf(format, args...)
	truncatedRender := false
	if l.maxMessageSize > 0 && len(msg) > l.maxMessageSize {
		msg = msg[:l.maxMessageSize]
		truncatedRender = true
	}

	line := "[" + time.Now().Format(timeLayout) + "] " + msg + "\n"
	if _, err := l.file.WriteString(line); err != nil {
		return fmt.Errorf("xlinelog: append record: %w", err)
	}
	if err := l.file.Sync(); err != nil {
		return fmt.Errorf("xlinelog: sync: %w", err)
	}

	l.cachedLines++
	l.observer.ObserveWrite(len(line), truncatedRender, time.Since(start))

	if l.truncateAt != Unbounded && l.cachedLines > l.truncateAt {
		if err := l.truncatePass(l.cachedLines); err != nil {
			return err
		}
		l.cachedLines = l.truncateAt
	}

	return nil
}

// CountLines 全量扫描文件并返回行数
//
// 以换行符结尾的记录计一行，文件末尾未终止的残行同样计一行。
// 不更新行数缓存。这是 O(文件大小) 的操作，只应用于启动统计或
// 校验恢复，不要放在热路径上。
func (l *LineLog) CountLines() (int, error) {
	if l == nil {
		return 0, ErrNotInitialized
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	if l.closed || l.file == nil {
		return 0, ErrNotInitialized
	}

	return l.scanLines()
}

// scanLines 在持锁状态下从头扫描文件统计行数。
// 扫描结束后文件偏移停在末尾；句柄以 O_APPEND 打开，不影响后续写入位置。
func (l *LineLog) scanLines() (int, error) {
	if _, err := l.file.Seek(0, io.SeekStart); err != nil {
		return 0, fmt.Errorf("xlinelog: rewind: %w", err)
	}

	r := bufio.NewReader(l.file)
	lines := 0
	for {
		chunk, err := r.ReadString('\n')
		if len(chunk) > 0 {
			lines++
		}
		if err == io.EOF {
			return lines, nil
		}
		if err != nil {
			return 0, fmt.Errorf("xlinelog: scan lines: %w", err)
		}
	}
}

// Lines 返回当前的行数缓存
//
// 缓存由每个变更操作维护，任一操作返回后它都等于文件中实际的行数
// （上一次裁剪失败的降级状态除外）。
func (l *LineLog) Lines() int {
	if l == nil {
		return 0
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.cachedLines
}

// Path 返回净化后的日志文件路径。
func (l *LineLog) Path() string {
	if l == nil {
		return ""
	}
	return l.path
}

// Close 关闭日志文件并释放句柄
//
// 重复调用或在 nil 接收者上调用返回 [ErrNotInitialized]。
// Close 之后该 LineLog 不再可用，后续操作返回 [ErrNotInitialized]。
func (l *LineLog) Close() error {
	if l == nil {
		return ErrNotInitialized
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	if l.closed || l.file == nil {
		return ErrNotInitialized
	}

	l.closed = true
	if err := l.file.Close(); err != nil {
		return fmt.Errorf("xlinelog: close %s: %w", l.path, err)
	}
	return nil
}
