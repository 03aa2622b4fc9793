package cli

import (
	"github.com/spf13/cobra"

	"kinky/internal/worker"
)

const workerCommandName = "worker"

func newWorkerCommand() *cobra.Command {
	return &cobra.Command{
		Use:    workerCommandName,
		Short:  "Serve transform requests over stdin/stdout",
		Hidden: true,
		Args:   cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return worker.Serve(cmd.InOrStdin(), cmd.OutOrStdout())
		},
	}
}
