// Command paymentsctl is the operator tool for the payment engine.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var Version = "dev"

func main() {
	if err := rootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func rootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "paymentsctl",
		Short:         "Operate the Rent Fair payment reconciliation engine",
		Version:       Version,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	root.AddCommand(referenceCmd())
	root.AddCommand(signCmd())
	root.AddCommand(replayCmd())
	root.AddCommand(hashPasswordCmd())
	return root
}
