package root

import (
	"github.com/spf13/cobra"

	"github.com/quickex-network/xraynode/cmd/start"
	"github.com/quickex-network/xraynode/cmd/version"
)

func GetRootCmd() *cobra.Command {

	var rootCmd = &cobra.Command{}
	rootCmd.AddCommand(start.GetCommand())
	rootCmd.AddCommand(version.GetCommand())
	return rootCmd
}
