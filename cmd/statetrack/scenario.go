package main

import (
	"encoding/json"
	"os"

	"github.com/spf13/cobra"

	"github.com/vango-dev/statetrack/internal/demo"
	"github.com/vango-dev/statetrack/pkg/reactive"
)

func scenarioCmd(load loader) *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "scenario [a|b|c|all]",
		Short: "Run the built-in scenarios",
		Long: `Run one or all of the built-in scenarios and print, after every
step, the observed selector value and how many times it has computed.

  a  equal writes are skipped
  b  one update, one recompute
  c  dependencies follow the branch taken

Examples:
  statetrack scenario
  statetrack scenario c
  statetrack scenario all --json`,
		Args:      cobra.MaximumNArgs(1),
		ValidArgs: []string{"a", "b", "c", "all"},
		RunE: func(cmd *cobra.Command, args []string) error {
			name := "all"
			if len(args) == 1 {
				name = args[0]
			}

			scenarios := demo.Scenarios()
			if name != "all" {
				s, err := demo.Lookup(name)
				if err != nil {
					return err
				}
				scenarios = []demo.Scenario{s}
			}

			cfg, err := load()
			if err != nil {
				return err
			}
			logger := cfg.Logger(os.Stderr)

			w := cmd.OutOrStdout()
			results := make(map[string][]demo.Step, len(scenarios))
			for _, s := range scenarios {
				tr := reactive.New(cfg.TrackerOptions(logger)...)
				steps := s.Run(tr)
				results[s.Name] = steps

				if asJSON {
					continue
				}
				success(w, "Scenario %s: %s", s.Name, s.Title)
				for _, step := range steps {
					info(w, "%-30s value=%v runs=%d", step.Action, step.Value, step.Runs)
				}
			}

			if asJSON {
				enc := json.NewEncoder(w)
				enc.SetIndent("", "  ")
				return enc.Encode(results)
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&asJSON, "json", false, "Print results as JSON")

	return cmd
}
