// linectl 是 linekit 行式日志的维护命令行工具。
//
// 用法:
//
//	linectl [全局选项] <命令> [命令参数]
//
// 全局选项:
//
//	-f, --file         日志文件路径
//	-c, --config       xlogconf 配置文件路径（YAML/JSON），与 --file 二选一
//	-t, --truncate-at  保留行数上限（默认 -1，不限制；优先于配置文件）
//
// 命令:
//
//	write <消息...>    追加一条记录（多个参数以空格连接）
//	count              全量扫描并打印行数
//	tail [-n N]        打印最新的 N 条记录（默认 10）
//	trim               按上限执行一次裁剪（需要有限的 --truncate-at 或配置）
//	check              检查是否残留裁剪临时文件（残留说明上次裁剪中途崩溃）
//	help               显示帮助信息
//
// 退出码:
//
//	0: 命令执行成功（check 命令: 无残留）
//	1: 命令执行失败（check 命令: 发现残留临时文件）
//	2: 参数错误（缺少路径、非法上限、未知命令等）
//
// 示例:
//
//	linectl -f /var/log/app.log write "service started"
//	linectl -f /var/log/app.log count
//	linectl -f /var/log/app.log tail -n 20
//	linectl -f /var/log/app.log -t 1000 trim
//	linectl -c /etc/app/linelog.yaml check
package main

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/urfave/cli/v3"
)

// 版本信息（可通过 -ldflags 注入，例如:
//
//	go build -ldflags "-X main.Version=1.0.0 -X main.GitCommit=$(git rev-parse --short HEAD)"
//
// ）。
var (
	Version   = "0.1.0-dev"
	GitCommit = "unknown"
)

func main() {
	os.Exit(run())
}

// createApp 创建 CLI 应用。
func createApp() *cli.Command {
	return &cli.Command{
		Name:    "linectl",
		Usage:   "linekit 行式日志维护工具",
		Version: fmt.Sprintf("%s (commit: %s)", Version, GitCommit),
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "file",
				Aliases: []string{"f"},
				Usage:   "日志文件路径",
			},
			&cli.StringFlag{
				Name:    "config",
				Aliases: []string{"c"},
				Usage:   "xlogconf 配置文件路径（YAML/JSON）",
			},
			&cli.IntFlag{
				Name:    "truncate-at",
				Aliases: []string{"t"},
				Usage:   "保留行数上限，-1 表示不限制",
				Value:   -1,
			},
		},
		Commands:       createCommands(),
		DefaultCommand: "help",
		Authors: []any{
			"linekit Team",
		},
		// 设计决策: 禁止 urfave/cli 直接调用 os.Exit，
		// 由 run() 统一处理退出码映射，确保与文档退出码契约一致。
		ExitErrHandler: func(_ context.Context, _ *cli.Command, err error) {
			if _, ok := err.(cli.ExitCoder); ok {
				fmt.Fprintln(os.Stderr, err)
			}
		},
	}
}

func run() int {
	app := createApp()

	if err := app.Run(context.Background(), os.Args); err != nil {
		var exitErr *exitError
		if errors.As(err, &exitErr) {
			return exitErr.code
		}
		var usageErr *usageError
		if errors.As(err, &usageErr) {
			fmt.Fprintf(os.Stderr, "参数错误: %v\n", usageErr)
			return 2
		}
		fmt.Fprintf(os.Stderr, "错误: %v\n", err)
		return 1
	}

	return 0
}
