package main

import (
	"fmt"
	"time"

	"github.com/nkwame271-ops/rnt-fair-now-sub001/internal/payments"
	"github.com/spf13/cobra"
)

func referenceCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "reference",
		Short: "Encode or decode payment references",
	}
	cmd.AddCommand(&cobra.Command{
		Use:   "encode [kind] [id]",
		Short: "Build the reference a checkout would send",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			kind, err := payments.ParseKind(args[0])
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), payments.EncodeReference(kind, args[1], time.Now()))
			return nil
		},
	})
	cmd.AddCommand(&cobra.Command{
		Use:   "decode [reference]",
		Short: "Show what a webhook reference resolves to",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return printReference(cmd, args[0])
		},
	})
	return cmd
}

func printReference(cmd *cobra.Command, raw string) error {
	ref, ok := payments.DecodeReference(raw)
	if !ok {
		return fmt.Errorf("unrecognized reference %q", raw)
	}
	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "kind:        %s\n", ref.Kind)
	fmt.Fprintf(out, "business_id: %s\n", ref.BusinessID)
	if t, ok := ref.NonceTime(); ok {
		fmt.Fprintf(out, "checkout_at: %s\n", t.UTC().Format(time.RFC3339Nano))
	}
	if ref.Legacy {
		fmt.Fprintln(out, "legacy:      true")
	}
	return nil
}
