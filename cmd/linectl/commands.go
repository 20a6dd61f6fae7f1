package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/urfave/cli/v3"

	"github.com/omeyang/linekit/pkg/config/xlogconf"
	"github.com/omeyang/linekit/pkg/observability/xlinelog"
)

// defaultTailLines tail 命令默认打印的记录条数。
const defaultTailLines = 10

// exitError 表示需要非零退出码但已完成输出的场景。
// 命令内部已完成所有输出，main 只需设置退出码。
type exitError struct {
	code int
}

func (e *exitError) Error() string { return "" }

// usageError 表示参数错误，映射到退出码 2。
type usageError struct {
	msg string
}

func (e *usageError) Error() string { return e.msg }

// target 一次命令调用解析出的操作目标。
type target struct {
	path       string
	truncateAt int
	baseOpts   []xlinelog.Option
}

// resolveTarget 从全局选项解析日志路径与保留上限
//
// --config 优先：给定时从配置文件取路径与全部选项；--truncate-at 被
// 显式设置时覆盖配置文件中的值。两者都缺失是参数错误。
func resolveTarget(cmd *cli.Command) (*target, error) {
	confPath := cmd.String("config")
	filePath := cmd.String("file")

	tgt := &target{truncateAt: xlinelog.Unbounded}

	switch {
	case confPath != "":
		cfg, err := xlogconf.Load(confPath)
		if err != nil {
			return nil, err
		}
		if cfg.Path == "" {
			return nil, &usageError{msg: fmt.Sprintf("配置文件 %s 缺少 path 字段", confPath)}
		}
		opts, err := cfg.Options()
		if err != nil {
			return nil, err
		}
		tgt.path = cfg.Path
		tgt.baseOpts = opts
		if cfg.TruncateAt > 0 {
			tgt.truncateAt = cfg.TruncateAt
		}
	case filePath != "":
		tgt.path = filePath
	default:
		return nil, &usageError{msg: "必须指定 --file 或 --config"}
	}

	// 命令行上限追加在配置选项之后生效，可用 -t -1 解除配置中的上限
	if cmd.IsSet("truncate-at") {
		tgt.truncateAt = cmd.Int("truncate-at")
		tgt.baseOpts = append(tgt.baseOpts, xlinelog.WithTruncateAt(tgt.truncateAt))
	}

	return tgt, nil
}

// openLog 按解析出的目标打开行式日志。
func (t *target) openLog() (*xlinelog.LineLog, error) {
	return xlinelog.Open(t.path, t.baseOpts...)
}

// 创建所有子命令。
func createCommands() []*cli.Command {
	return []*cli.Command{
		createWriteCommand(),
		createCountCommand(),
		createTailCommand(),
		createTrimCommand(),
		createCheckCommand(),
	}
}

// createWriteCommand 创建 write 子命令。
func createWriteCommand() *cli.Command {
	return &cli.Command{
		Name:      "write",
		Aliases:   []string{"w"},
		Usage:     "追加一条记录",
		ArgsUsage: "<消息...>",
		Action: func(_ context.Context, cmd *cli.Command) error {
			args := cmd.Args().Slice()
			if len(args) == 0 {
				return &usageError{msg: "write 需要消息参数"}
			}
			tgt, err := resolveTarget(cmd)
			if err != nil {
				return err
			}

			l, err := tgt.openLog()
			if err != nil {
				return err
			}
			defer l.Close()

			return l.Writef("%s", strings.Join(args, " "))
		},
	}
}

// createCountCommand 创建 count 子命令。
func createCountCommand() *cli.Command {
	return &cli.Command{
		Name:  "count",
		Usage: "全量扫描并打印行数",
		Action: func(_ context.Context, cmd *cli.Command) error {
			tgt, err := resolveTarget(cmd)
			if err != nil {
				return err
			}

			l, err := tgt.openLog()
			if err != nil {
				return err
			}
			defer l.Close()

			count, err := l.CountLines()
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.Root().Writer, count)
			return nil
		},
	}
}

// createTailCommand 创建 tail 子命令。
func createTailCommand() *cli.Command {
	return &cli.Command{
		Name:  "tail",
		Usage: "打印最新的 N 条记录",
		Flags: []cli.Flag{
			&cli.IntFlag{
				Name:    "lines",
				Aliases: []string{"n"},
				Usage:   "打印的记录条数",
				Value:   defaultTailLines,
			},
		},
		Action: func(_ context.Context, cmd *cli.Command) error {
			n := cmd.Int("lines")
			if n <= 0 {
				return &usageError{msg: fmt.Sprintf("记录条数必须为正数，得到 %d", n)}
			}
			tgt, err := resolveTarget(cmd)
			if err != nil {
				return err
			}

			lines, err := tailLines(tgt.path, n)
			if err != nil {
				return err
			}
			for _, line := range lines {
				fmt.Fprintln(cmd.Root().Writer, line)
			}
			return nil
		},
	}
}

// createTrimCommand 创建 trim 子命令。
func createTrimCommand() *cli.Command {
	return &cli.Command{
		Name:  "trim",
		Usage: "按上限执行一次裁剪",
		Action: func(_ context.Context, cmd *cli.Command) error {
			tgt, err := resolveTarget(cmd)
			if err != nil {
				return err
			}
			if tgt.truncateAt == xlinelog.Unbounded {
				return &usageError{msg: "trim 需要有限的 --truncate-at 或配置中的 truncate_at"}
			}

			// 带上限打开即触发一次超限裁剪
			l, err := tgt.openLog()
			if err != nil {
				return err
			}
			defer l.Close()

			fmt.Fprintf(cmd.Root().Writer, "已裁剪到最多 %d 行（当前 %d 行）\n", tgt.truncateAt, l.Lines())
			return nil
		},
	}
}

// createCheckCommand 创建 check 子命令。
func createCheckCommand() *cli.Command {
	return &cli.Command{
		Name:  "check",
		Usage: "检查是否残留裁剪临时文件",
		Action: func(_ context.Context, cmd *cli.Command) error {
			tgt, err := resolveTarget(cmd)
			if err != nil {
				return err
			}

			tmpPath := filepath.Join(filepath.Dir(tgt.path), xlinelog.TempFileName)
			if _, err := os.Stat(tmpPath); err == nil {
				// 设计决策: 残留临时文件说明上次裁剪中途崩溃，
				// 通过 exitError 返回非零退出码以便脚本判断。
				fmt.Fprintf(cmd.Root().Writer, "发现残留临时文件: %s\n", tmpPath)
				return &exitError{code: 1}
			}
			fmt.Fprintln(cmd.Root().Writer, "无残留临时文件")
			return nil
		},
	}
}

// tailLines 读取文件并返回最新的 n 行（不含行终止符）。
func tailLines(path string, n int) ([]string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	if len(data) == 0 {
		return nil, nil
	}

	text := strings.TrimSuffix(string(data), "\n")
	lines := strings.Split(text, "\n")
	if len(lines) > n {
		lines = lines[len(lines)-n:]
	}
	return lines, nil
}
