package cmd

import (
	"fmt"

	"github.com/nikogura/cost-counsel/pkg/config"
	"github.com/spf13/cobra"
)

//nolint:gochecknoglobals // Cobra boilerplate
var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Create a default configuration file",
	Long: `Creates a default configuration file at $HOME/.cost-counsel/config.json
(or the path given by --config). Edit it to point at your rule bundle and
set your API key, or export ANTHROPIC_API_KEY.`,
	RunE: runInit,
}

//nolint:gochecknoinits // Cobra boilerplate
func init() {
	rootCmd.AddCommand(initCmd)
}

func runInit(cmd *cobra.Command, args []string) (err error) {
	err = config.InitConfig(getConfigFile())
	if err != nil {
		return err
	}

	fmt.Println("Configuration created. Edit it to point at your rule bundle, then run 'cost-counsel match' or 'cost-counsel advise'.")
	return err
}
