// cmd/attendscrape/bunk.go
package main

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/valpere/AttendScrapexter/internal/attendance"
)

func newBunkCmd() *cobra.Command {
	var (
		in     attendance.BunkInput
		asJSON bool
	)

	cmd := &cobra.Command{
		Use:     "bunk",
		Short:   "How many classes next week can be skipped",
		Example: "  attendscrape bunk --total 100 --attended 90 --desired 75 --per-week 10",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			res, err := attendance.CalculateBunk(in)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			if asJSON {
				enc := json.NewEncoder(out)
				enc.SetIndent("", "  ")
				return enc.Encode(res)
			}
			fmt.Fprintf(out, "Current attendance: %.2f%%\n", res.CurrentPercentage)
			fmt.Fprintln(out, res.Message)
			return nil
		},
	}

	f := cmd.Flags()
	f.IntVar(&in.TotalClasses, "total", 0, "classes held so far")
	f.IntVar(&in.AttendedClasses, "attended", 0, "classes attended so far")
	f.Float64Var(&in.DesiredPercent, "desired", 75, "target attendance percentage")
	f.IntVar(&in.ClassesPerWeek, "per-week", 0, "classes scheduled next week")
	f.BoolVar(&asJSON, "json", false, "print JSON")
	for _, name := range []string{"total", "attended", "per-week"} {
		_ = cmd.MarkFlagRequired(name)
	}
	return cmd
}
