// mcpkitctl 是 mcpkit 治理配置的命令行工具。
//
// 用法:
//
//	mcpkitctl [全局选项] <命令>
//
// 全局选项:
//
//	-c, --config   配置文件路径 (默认: /etc/mcpkit/config.yaml)
//
// 命令:
//
//	validate       校验配置文件并输出归一化摘要
//	show           输出归一化后的完整生效配置（JSON）
//	export-test    向配置的 OTLP 端点发送一份测试快照
//	help           显示帮助信息
//
// 退出码:
//
//	0: 命令执行成功
//	1: 命令执行失败（配置解析失败、导出端点不可达等）
//	2: 参数错误（路径为空、格式不支持、未知命令等）
//
// 示例:
//
//	mcpkitctl validate                          # 校验默认路径配置
//	mcpkitctl -c ./config.yaml validate         # 校验指定配置
//	mcpkitctl -c ./config.yaml show             # 查看生效配置
//	mcpkitctl -c ./config.yaml export-test      # 验证采集端连通性
package main

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/urfave/cli/v3"
)

// defaultConfigPath 默认配置文件路径
const defaultConfigPath = "/etc/mcpkit/config.yaml"

// 版本信息（可通过 -ldflags 注入）
var (
	Version   = "0.1.0-dev"
	GitCommit = "unknown"
)

func main() {
	os.Exit(run())
}

// createApp 创建 CLI 应用
func createApp() *cli.Command {
	return &cli.Command{
		Name:    "mcpkitctl",
		Usage:   "mcpkit 治理配置命令行工具",
		Version: fmt.Sprintf("%s (commit: %s)", Version, GitCommit),
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "config",
				Aliases: []string{"c"},
				Usage:   "配置文件路径",
				Value:   defaultConfigPath,
			},
		},
		Commands:       createCommands(),
		DefaultCommand: "help",
		// 设计决策: 禁止 urfave/cli 直接调用 os.Exit，
		// 由 run() 统一处理退出码映射。
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
		var usageErr *usageError
		if errors.As(err, &usageErr) {
			fmt.Fprintf(os.Stderr, "参数错误: %v\n", usageErr)
			return 2
		}
		if _, ok := err.(cli.ExitCoder); ok {
			// ExitErrHandler 已输出错误详情
			return 2
		}
		fmt.Fprintf(os.Stderr, "错误: %v\n", err)
		return 1
	}

	return 0
}
