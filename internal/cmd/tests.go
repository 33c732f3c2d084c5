package cmd

import (
	"fmt"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/sitehawk/sitehawk/internal/schedule"
	"github.com/sitehawk/sitehawk/internal/ux"
)

var testsCmd = &cobra.Command{
	Use:   "tests",
	Short: "List the registered audit tests and their scheduling metadata",
	Long: `List every registered test id with its phase, scope, execution order,
dependencies, and conflicts. These are the ids accepted by the 'tests'
configuration key and the --tests flag.`,
	Args: cobra.NoArgs,
	RunE: runTests,
}

var testsFormat string

func init() {
	testsCmd.Flags().StringVar(&testsFormat, "format", "text", "output format (text, json, yaml)")

	rootCmd.AddCommand(testsCmd)
}

func runTests(cmd *cobra.Command, args []string) error {
	registry := schedule.DefaultRegistry()

	if testsFormat == "json" || testsFormat == "yaml" {
		var classifications []schedule.TestClassification
		for _, id := range registry.IDs() {
			tc, _ := registry.Lookup(id)
			classifications = append(classifications, tc)
		}

		formatter, err := ux.NewFormatter(testsFormat, &ux.FormatterOptions{Writer: cmd.OutOrStdout()})
		if err != nil {
			return err
		}
		return formatter.Format(classifications)
	}

	sched := schedule.NewDefaultScheduler()
	ordered := sched.ExecutionOrder(registry.IDs())

	w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "TEST\tPHASE\tSCOPE\tORDER\tDEPENDS ON\tCONFLICTS WITH")
	for _, id := range ordered {
		tc, _ := registry.Lookup(id)
		fmt.Fprintf(w, "%s\t%d\t%s\t%d\t%s\t%s\n",
			tc.TestID,
			tc.Phase,
			tc.Scope,
			tc.ExecutionOrder,
			dashIfEmpty(strings.Join(tc.Dependencies, ", ")),
			dashIfEmpty(strings.Join(tc.ConflictsWith, ", ")),
		)
	}
	return w.Flush()
}

func dashIfEmpty(s string) string {
	if s == "" {
		return "-"
	}
	return s
}
