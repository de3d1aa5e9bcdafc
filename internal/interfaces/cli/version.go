package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

// NewVersionCmd prints the build information.
func NewVersionCmd(deps Deps) *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		RunE: func(cmd *cobra.Command, args []string) error {
			_, err := fmt.Fprintf(deps.Out, "medreg %s\ncommit: %s\nbuilt:  %s\n", Version, GitCommit, BuildDate)
			return err
		},
	}
}
