package cmd

import (
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/vuln-sim/vuln-sim/sim/scenario"
)

// defaultConfigCmd prints the built-in scenario with every default spelled
// out, as a starting point for custom scenario files.
var defaultConfigCmd = &cobra.Command{
	Use:   "default-config",
	Short: "Print the built-in scenario as YAML",
	RunE: func(cmd *cobra.Command, args []string) error {
		enc := yaml.NewEncoder(cmd.OutOrStdout())
		enc.SetIndent(2)
		if err := enc.Encode(scenario.DefaultConfig()); err != nil {
			return err
		}
		return enc.Close()
	},
}
