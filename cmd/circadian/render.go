package main

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"strings"

	"circadian/internal/app"
	"circadian/internal/chart"
	"circadian/internal/config"
	"circadian/internal/dataset"
	"circadian/internal/logger"
	"circadian/internal/visual"

	"github.com/spf13/cobra"
)

type renderOptions struct {
	kind   string
	format string
	out    string
}

func newRenderCmd(c *cli) *cobra.Command {
	opts := renderOptions{}
	cmd := &cobra.Command{
		Use:   "render",
		Short: "Render one chart view to a file (svg, json, echarts or png).",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			kind, err := chart.ParseKind(opts.kind)
			if err != nil {
				return err
			}
			data, err := app.LoadFromConfig(cmd.Context(), c.cfg)
			if err != nil {
				return err
			}
			payload, err := renderPayload(cmd, c.cfg.Export, kind, data, opts.format)
			if err != nil {
				return err
			}
			return writeOutput(cmd.OutOrStdout(), opts.out, payload)
		},
	}
	cmd.Flags().StringVar(&opts.kind, "kind", "temperature", "chart view: temperature | activity")
	cmd.Flags().StringVar(&opts.format, "format", "svg", "output format: svg | json | echarts | png")
	cmd.Flags().StringVarP(&opts.out, "out", "o", "-", "output file, - for stdout")
	return cmd
}

func renderPayload(cmd *cobra.Command, exp config.ExportConfig, kind chart.Kind, data dataset.Datasets, format string) ([]byte, error) {
	format = strings.ToLower(strings.TrimSpace(format))
	if format == "echarts" {
		return visual.BuildEChartsPage(kind, data)
	}
	scene, err := chart.Render(kind, data)
	if err != nil {
		return nil, err
	}
	switch format {
	case "json":
		return chart.EncodeJSON(scene)
	case "svg", "png":
		var buf bytes.Buffer
		if err := chart.EncodeSVG(&buf, scene); err != nil {
			return nil, err
		}
		if format == "svg" {
			return buf.Bytes(), nil
		}
		return app.PNGExporter(exp)(cmd.Context(), buf.Bytes())
	default:
		return nil, fmt.Errorf("unknown render format %q", format)
	}
}

func writeOutput(stdout io.Writer, out string, payload []byte) error {
	if out == "" || out == "-" {
		_, err := stdout.Write(payload)
		return err
	}
	if err := os.WriteFile(out, payload, 0o644); err != nil {
		return err
	}
	logger.Infof("wrote %d bytes to %s", len(payload), out)
	return nil
}
