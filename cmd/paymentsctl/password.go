package main

import (
	"bufio"
	"fmt"
	"strings"

	"github.com/nkwame271-ops/rnt-fair-now-sub001/internal/utils"
	"github.com/spf13/cobra"
)

func hashPasswordCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "hash-password",
		Short: "Print a bcrypt hash for a password read from stdin",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			line, err := bufio.NewReader(cmd.InOrStdin()).ReadString('\n')
			if err != nil && line == "" {
				return fmt.Errorf("read password: %w", err)
			}
			password := strings.TrimRight(line, "\r\n")

			if skip, _ := cmd.Flags().GetBool("no-policy"); !skip {
				if err := utils.ValidatePassword(password); err != nil {
					return err
				}
			}
			hash, err := utils.HashPassword(password)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), hash)
			return nil
		},
	}
	cmd.Flags().Bool("no-policy", false, "skip the password strength policy")
	return cmd
}
