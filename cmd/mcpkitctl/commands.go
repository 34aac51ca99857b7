package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"

	"github.com/urfave/cli/v3"

	"github.com/omeyang/mcpkit/pkg/config/xconf"
	"github.com/omeyang/mcpkit/pkg/observability/xexport"
	"github.com/omeyang/mcpkit/pkg/observability/xmetrics"
)

// usageError 参数错误，退出码 2
type usageError struct {
	msg string
}

func (e *usageError) Error() string { return e.msg }

// createCommands 创建所有子命令
func createCommands() []*cli.Command {
	return []*cli.Command{
		createValidateCommand(),
		createShowCommand(),
		createExportTestCommand(),
	}
}

// loadConfig 加载全局 --config 指定的配置
func loadConfig(cmd *cli.Command) (xconf.Config, error) {
	path := cmd.String("config")
	cfg, err := xconf.New(path)
	if err != nil {
		// 路径与格式问题属于参数错误
		if errors.Is(err, xconf.ErrEmptyPath) || errors.Is(err, xconf.ErrUnsupportedFormat) {
			return nil, &usageError{msg: err.Error()}
		}
		return nil, err
	}
	return cfg, nil
}

// createValidateCommand 创建 validate 子命令
func createValidateCommand() *cli.Command {
	return &cli.Command{
		Name:    "validate",
		Aliases: []string{"v"},
		Usage:   "校验配置文件并输出归一化摘要",
		Action: func(_ context.Context, cmd *cli.Command) error {
			cfg, err := loadConfig(cmd)
			if err != nil {
				return err
			}

			s := cfg.Settings()
			w := cmd.Root().Writer
			fmt.Fprintf(w, "config OK: %s\n", cfg.Path())
			fmt.Fprintf(w, "  service_name: %s\n", s.ServiceName)
			fmt.Fprintf(w, "  targets: %d overridden\n", len(s.Targets))
			fmt.Fprintf(w, "  export: enabled=%t endpoint=%s\n", s.Export.Enabled, s.Export.Endpoint)
			return nil
		},
	}
}

// createShowCommand 创建 show 子命令
func createShowCommand() *cli.Command {
	return &cli.Command{
		Name:  "show",
		Usage: "输出归一化后的完整生效配置（JSON）",
		Action: func(_ context.Context, cmd *cli.Command) error {
			cfg, err := loadConfig(cmd)
			if err != nil {
				return err
			}
			return printSettings(cmd.Root().Writer, cfg.Settings())
		},
	}
}

// printSettings 以缩进 JSON 输出配置
func printSettings(w io.Writer, s xconf.Settings) error {
	data, err := json.MarshalIndent(s, "", "  ")
	if err != nil {
		return fmt.Errorf("encode settings failed: %w", err)
	}
	_, err = fmt.Fprintln(w, string(data))
	return err
}

// createExportTestCommand 创建 export-test 子命令
func createExportTestCommand() *cli.Command {
	return &cli.Command{
		Name:  "export-test",
		Usage: "向配置的 OTLP 端点发送一份测试快照",
		Action: func(ctx context.Context, cmd *cli.Command) error {
			cfg, err := loadConfig(cmd)
			if err != nil {
				return err
			}

			s := cfg.Settings()
			if !s.Export.Enabled {
				return &usageError{msg: "otlp export is disabled in config"}
			}
			if s.Export.Endpoint == "" {
				return &usageError{msg: "otlp_endpoint is empty"}
			}

			sender, err := xexport.NewOTLPSender(s.Export.Endpoint,
				xexport.WithServiceName(s.ServiceName),
				xexport.WithHeaders(s.Export.Headers),
			)
			if err != nil {
				return err
			}

			if err := sender.Send(ctx, xmetrics.NewRegistry().Snapshot()); err != nil {
				return fmt.Errorf("export test failed: %w", err)
			}

			fmt.Fprintf(cmd.Root().Writer, "export OK: %s\n", s.Export.Endpoint)
			return nil
		},
	}
}
