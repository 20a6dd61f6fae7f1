package xlinelog_test

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/omeyang/linekit/pkg/observability/xlinelog"
)

func ExampleOpen() {
	tmpDir, err := os.MkdirTemp("", "xlinelog-example-*")
	if err != nil {
		fmt.Println("创建临时目录失败:", err)
		return
	}
	defer func() { _ = os.RemoveAll(tmpDir) }()

	l, err := xlinelog.Open(filepath.Join(tmpDir, "app.log"),
		xlinelog.WithTruncateAt(1000), // 只保留最新 1000 行
	)
	if err != nil {
		fmt.Println("打开失败:", err)
		return
	}
	defer l.Close()

	if err := l.Writef("service started on port %d", 8080); err != nil {
		fmt.Println("写入失败:", err)
		return
	}
	fmt.Println("写入成功，当前行数:", l.Lines())
	// Output: 写入成功，当前行数: 1
}

func ExampleLineLog_Writef_truncation() {
	tmpDir, err := os.MkdirTemp("", "xlinelog-example-*")
	if err != nil {
		fmt.Println("创建临时目录失败:", err)
		return
	}
	defer func() { _ = os.RemoveAll(tmpDir) }()

	l, err := xlinelog.Open(filepath.Join(tmpDir, "bounded.log"),
		xlinelog.WithTruncateAt(3),
	)
	if err != nil {
		fmt.Println("打开失败:", err)
		return
	}
	defer l.Close()

	for _, msg := range []string{"one", "two", "three", "four"} {
		if err := l.Writef("%s", msg); err != nil {
			fmt.Println("写入失败:", err)
			return
		}
	}

	count, err := l.CountLines()
	if err != nil {
		fmt.Println("统计失败:", err)
		return
	}
	fmt.Println("文件中的行数:", count)
	// Output: 文件中的行数: 3
}
