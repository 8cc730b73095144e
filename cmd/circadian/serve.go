package main

import (
	"fmt"

	"circadian/internal/app"
	"circadian/internal/logger"

	"github.com/spf13/cobra"
)

func newServeCmd(c *cli) *cobra.Command {
	var addr string
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Load the datasets and serve the toggleable chart page.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if addr != "" {
				c.cfg.App.HTTPAddr = addr
			}
			logger.Infof("✓ 配置加载成功（环境=%s，来源=%s）", c.cfg.App.Env, c.cfg.Data.Source)
			a, err := app.NewApp(c.cfg)
			if err != nil {
				return fmt.Errorf("初始化应用失败: %w", err)
			}
			if err := a.Run(cmd.Context()); err != nil {
				return fmt.Errorf("运行失败: %w", err)
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&addr, "addr", "", "override app.http_addr")
	return cmd
}
