package commands

import (
	"fmt"
	"runtime"

	"github.com/MEKXH/toolgate/internal/version"
	"github.com/spf13/cobra"
)

// NewVersionCmd creates the version command
func NewVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the version of Toolgate",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintln(cmd.OutOrStdout(), version.String(runtime.GOOS, runtime.GOARCH))
		},
	}
}
