package main

import (
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"
	"strings"

	"circadian/internal/config"
	"circadian/internal/logger"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// cli 保存命令行解析后的共享状态。
type cli struct {
	flags   *viper.Viper
	cfg     *config.Config
	logFile *os.File
}

func newRootCmd() *cobra.Command {
	c := &cli{flags: viper.New()}
	root := &cobra.Command{
		Use:           "circadian",
		Short:         "Render mouse temperature and activity cohorts as line charts.",
		SilenceErrors: true,
		SilenceUsage:  true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return c.setup()
		},
		PersistentPostRun: func(*cobra.Command, []string) {
			if c.logFile != nil {
				_ = c.logFile.Close()
			}
		},
		Run: func(cmd *cobra.Command, _ []string) {
			_ = cmd.Help()
		},
	}
	root.PersistentFlags().String("config", "", "config file (default $"+config.PathEnv+" or "+config.DefaultPath+")")
	root.PersistentFlags().String("log-level", "", "override app.log_level")
	_ = c.flags.BindPFlag("config", root.PersistentFlags().Lookup("config"))
	_ = c.flags.BindPFlag("log-level", root.PersistentFlags().Lookup("log-level"))

	root.AddCommand(newServeCmd(c), newRenderCmd(c), newSummaryCmd(c))
	return root
}

func (c *cli) setup() error {
	cfg, path, err := config.LoadFrom(c.flags.GetString("config"))
	if err != nil {
		return fmt.Errorf("读取配置失败: %w", err)
	}
	if lvl := strings.TrimSpace(c.flags.GetString("log-level")); lvl != "" {
		cfg.App.LogLevel = lvl
	}
	// stdout 留给 render/summary 的输出
	logger.SetOutput(os.Stderr)
	logger.SetFormat(cfg.App.LogFormat)
	logFile, err := setupLogOutput(cfg.App.LogPath)
	if err != nil {
		return fmt.Errorf("初始化日志文件失败: %w", err)
	}
	logger.SetLevel(cfg.App.LogLevel)
	logger.Debugf("config resolved from %s", path)
	c.cfg = cfg
	c.logFile = logFile
	return nil
}

func setupLogOutput(path string) (*os.File, error) {
	trimmed := strings.TrimSpace(path)
	if trimmed == "" {
		return nil, nil
	}
	dir := filepath.Dir(trimmed)
	if dir != "." && dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, err
		}
	}
	file, err := os.OpenFile(trimmed, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		return nil, err
	}
	mw := io.MultiWriter(os.Stderr, file)
	log.SetOutput(mw)
	logger.SetOutput(mw)
	return file, nil
}
