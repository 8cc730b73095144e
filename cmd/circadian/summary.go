package main

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"circadian/internal/app"
	"circadian/internal/chart"
	"circadian/internal/dataset"

	"github.com/fatih/color"
	"github.com/olekukonko/tablewriter"
	"github.com/olekukonko/tablewriter/tw"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

func newSummaryCmd(c *cli) *cobra.Command {
	var (
		format  string
		noColor bool
	)
	cmd := &cobra.Command{
		Use:   "summary",
		Short: "Load the six cohort files and print sample counts and extents.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			data, err := app.LoadFromConfig(cmd.Context(), c.cfg)
			if err != nil {
				return err
			}
			sums := dataset.Summarize(data)
			switch strings.ToLower(strings.TrimSpace(format)) {
			case "yaml":
				return writeSummaryYAML(cmd.OutOrStdout(), sums)
			case "table", "":
				return writeSummaryTable(cmd.OutOrStdout(), sums, !noColor)
			default:
				return fmt.Errorf("unknown summary format %q", format)
			}
		},
	}
	cmd.Flags().StringVar(&format, "format", "table", "output format: table | yaml")
	cmd.Flags().BoolVar(&noColor, "no-color", false, "disable colored cells")
	return cmd
}

func writeSummaryYAML(w io.Writer, sums []dataset.CohortSummary) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	defer func() { _ = enc.Close() }()
	return enc.Encode(map[string][]dataset.CohortSummary{"datasets": sums})
}

func writeSummaryTable(w io.Writer, sums []dataset.CohortSummary, useColors bool) error {
	table := tablewriter.NewWriter(w)
	defer func() { _ = table.Close() }()

	table.Header([]string{"Metric", "Cohort", "Samples", "Malformed", "Min", "Max", "Hours"})
	table.Configure(func(cfg *tablewriter.Config) {
		cfg.Row.Alignment.Global = tw.AlignRight
	})

	red := fmt.Sprint
	if useColors {
		red = color.New(color.FgRed, color.Bold).SprintFunc()
	}
	data := make([][]string, 0, len(sums))
	for _, s := range sums {
		malformed := strconv.Itoa(s.Malformed)
		if s.Malformed > 0 {
			malformed = red(malformed)
		}
		cohort, err := dataset.ParseCohort(s.Cohort)
		if err != nil {
			return err
		}
		data = append(data, []string{
			s.Metric,
			chart.CohortName(cohort),
			strconv.Itoa(s.Samples),
			malformed,
			fmtOpt(s.MinValue),
			fmtOpt(s.MaxValue),
			fmtOpt(s.FirstHour) + ".." + fmtOpt(s.LastHour),
		})
	}
	if err := table.Bulk(data); err != nil {
		return err
	}
	return table.Render()
}

func fmtOpt(v *float64) string {
	if v == nil {
		return "-"
	}
	return strconv.FormatFloat(*v, 'f', 2, 64)
}
