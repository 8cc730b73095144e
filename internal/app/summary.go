package app

import (
	"fmt"
	"io"
	"os"
	"strings"

	"circadian/internal/config"
	"circadian/internal/dataset"
)

type StartupSummary struct {
	Env       string
	HTTPAddr  string
	Source    string
	Policy    string
	Manifest  string
	Resources []string
	Watch     bool
	PNG       bool
}

func newStartupSummary(cfg *config.Config, src dataset.Source, opts dataset.LoadOptions, png bool) *StartupSummary {
	res := opts.Manifest.Resources()
	names := make([]string, 0, len(res))
	for _, r := range res {
		names = append(names, fmt.Sprintf("%s/%s=%s", r.Metric, r.Cohort.Key(), r.Name))
	}
	manifest := strings.TrimSpace(cfg.Data.Manifest)
	if manifest == "" {
		manifest = "(内置默认)"
	}
	return &StartupSummary{
		Env:       cfg.App.Env,
		HTTPAddr:  cfg.App.HTTPAddr,
		Source:    src.Describe(),
		Policy:    string(opts.Policy),
		Manifest:  manifest,
		Resources: names,
		Watch:     cfg.Data.WatchManifest,
		PNG:       png,
	}
}

func (s *StartupSummary) Print() {
	s.Fprint(os.Stdout)
}

func (s *StartupSummary) Fprint(w io.Writer) {
	title := "启动配置摘要 (STARTUP SUMMARY)"
	fmt.Fprintln(w, strings.Repeat("=", 80))
	fmt.Fprintf(w, "%*s\n", 40+len(title)/2, title)
	fmt.Fprintln(w, strings.Repeat("=", 80))

	fmt.Fprintln(w, "[服务 (SERVICE)]")
	fmt.Fprintf(w, "  环境: %s\n", orDash(s.Env))
	fmt.Fprintf(w, "  监听地址: %s\n", orDash(s.HTTPAddr))
	fmt.Fprintf(w, "  PNG 导出: %s\n", onOff(s.PNG))
	fmt.Fprintln(w)

	fmt.Fprintln(w, "[数据集 (DATASETS)]")
	fmt.Fprintf(w, "  来源: %s\n", orDash(s.Source))
	fmt.Fprintf(w, "  异常行策略: %s\n", orDash(s.Policy))
	fmt.Fprintf(w, "  清单: %s (监听: %s)\n", s.Manifest, onOff(s.Watch))
	if len(s.Resources) == 0 {
		fmt.Fprintln(w, "  (无)")
	}
	for _, r := range s.Resources {
		fmt.Fprintf(w, "    - %s\n", r)
	}
	fmt.Fprintln(w, strings.Repeat("=", 80))
}

func orDash(s string) string {
	if strings.TrimSpace(s) == "" {
		return "-"
	}
	return s
}

func onOff(v bool) string {
	if v {
		return "on"
	}
	return "off"
}
