package cmd

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"
)

func newRunCmd(e *env) *cobra.Command {
	return &cobra.Command{
		Use:   "run [scenario]",
		Short: "Run a scenario and print the per-step report",
		Example: `ammsim run scenarios/basic.yaml
ammsim run scenarios/basic.yaml -o json --block-time 5s`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			chain, report, runErr := e.runScenario(args[0])
			if report != nil {
				if err := e.print(cmd, report); err != nil {
					return err
				}
			}
			if runErr != nil {
				return runErr
			}
			if err := chain.CheckInvariants(); err != nil {
				return err
			}
			e.logger.Info("scenario completed", "scenario", report.Scenario, "steps", len(report.Steps), "height", chain.Height())
			return nil
		},
	}
}

func newExportCmd(e *env) *cobra.Command {
	return &cobra.Command{
		Use:   "export [scenario]",
		Short: "Run a scenario and print the resulting amm genesis state as JSON",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			chain, _, err := e.runScenario(args[0])
			if err != nil {
				return err
			}
			gs, err := chain.ExportGenesis()
			if err != nil {
				return fmt.Errorf("failed to export genesis: %w", err)
			}
			bz, err := json.MarshalIndent(gs, "", "  ")
			if err != nil {
				return err
			}
			_, err = fmt.Fprintln(cmd.OutOrStdout(), string(bz))
			return err
		},
	}
}
