package xlinelog

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"
)

// truncatePass 执行一次裁剪：只保留最新的 truncateAt 行。
//
// 必须在持锁状态下调用。total 是裁剪前文件中的总行数。
// 无论成败都会通过 Observer 上报一次裁剪事件。
func (l *LineLog) truncatePass(total int) error {
	start := time.Now()
	dropped := total - l.truncateAt
	err := l.rewriteTail(dropped)
	l.observer.ObserveTruncation(dropped, time.Since(start), err)
	return err
}

// rewriteTail 经由同目录临时文件换写日志，跳过最旧的 skip 行。
//
// 步骤顺序与崩溃恢复特性绑定，不可调整：
// 写临时文件 → 关闭两者 → 删除原文件 → 重命名临时文件 → 重新打开。
// 中途崩溃最坏残留一个 tmp.log（可被检测），原文件要么完整要么已被
// 换写后的完整文件取代，不会出现半截文件。
func (l *LineLog) rewriteTail(skip int) error {
	tmpPath := filepath.Join(filepath.Dir(l.path), TempFileName)

	tmp, err := l.createTemp(tmpPath)
	if err != nil {
		return fmt.Errorf("%w: create %s: %w", ErrTruncate, TempFileName, err)
	}

	if err := l.copyTail(tmp, skip); err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmpPath)
		return err
	}

	// 换写前把尾部窗口落盘：重命名之后这些记录就是日志本体，
	// 不能让已对调用方承诺过持久化的记录只存在于页缓存里。
	if err := tmp.Sync(); err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmpPath)
		return fmt.Errorf("%w: sync temp: %w", ErrTruncate, err)
	}

	if err := l.file.Close(); err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmpPath)
		return fmt.Errorf("%w: close log: %w", ErrTruncate, err)
	}
	l.file = nil

	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmpPath)
		return fmt.Errorf("%w: close temp: %w", ErrTruncate, err)
	}

	if err := os.Remove(l.path); err != nil {
		return fmt.Errorf("%w: remove %s: %w", ErrTruncate, l.path, err)
	}

	if err := l.rename(tmpPath, l.path); err != nil {
		return fmt.Errorf("%w: rename %s: %w", ErrTruncate, TempFileName, err)
	}

	f, err := l.openFile(l.path, os.O_APPEND|os.O_CREATE|os.O_RDWR, l.fileMode)
	if err != nil {
		// 句柄缺失，后续 Writef 返回 ErrNotInitialized，日志进入降级状态
		return fmt.Errorf("%w: reopen %s: %w", ErrTruncate, l.path, err)
	}
	l.file = f
	return nil
}

// copyTail 从头逐行读原文件，把第 skip 行之后的记录按原顺序写入 w。
// 文件末尾未终止的残行与 fgets 语义一致，按一行处理、原样拷贝。
func (l *LineLog) copyTail(w io.Writer, skip int) error {
	if _, err := l.file.Seek(0, io.SeekStart); err != nil {
		return fmt.Errorf("%w: rewind: %w", ErrTruncate, err)
	}

	bw := bufio.NewWriter(w)
	r := bufio.NewReader(l.file)
	i := 0
	for {
		line, err := r.ReadString('\n')
		if len(line) > 0 {
			if i >= skip {
				if _, werr := bw.WriteString(line); werr != nil {
					return fmt.Errorf("%w: copy record: %w", ErrTruncate, werr)
				}
			}
			i++
		}
		if err == io.EOF {
			break
		}
		if err != nil {
			return fmt.Errorf("%w: read record: %w", ErrTruncate, err)
		}
	}

	if err := bw.Flush(); err != nil {
		return fmt.Errorf("%w: flush temp: %w", ErrTruncate, err)
	}
	return nil
}

// createTemp 创建裁剪用的临时文件，测试可通过 createTempFn 注入失败。
func (l *LineLog) createTemp(path string) (*os.File, error) {
	create := l.createTempFn
	if create == nil {
		create = func(name string, perm os.FileMode) (*os.File, error) {
			//#nosec G304 -- 路径由日志目录和固定文件名拼接而来
			return os.OpenFile(name, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, perm)
		}
	}
	return create(path, l.fileMode)
}

// rename 重命名临时文件，测试可通过 renameFn 注入失败。
func (l *LineLog) rename(oldpath, newpath string) error {
	rename := l.renameFn
	if rename == nil {
		rename = os.Rename
	}
	return rename(oldpath, newpath)
}

// openFile 重新打开换写后的日志文件，测试可通过 openFileFn 注入失败。
func (l *LineLog) openFile(name string, flag int, perm os.FileMode) (*os.File, error) {
	open := l.openFileFn
	if open == nil {
		open = os.OpenFile
	}
	//#nosec G304 -- 路径在 Open 时已净化
	return open(name, flag, perm)
}
