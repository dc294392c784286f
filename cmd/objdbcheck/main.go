// Copyright 2024 The Authors
// This file is part of objectdb.

// Command objdbcheck walks an on-disk instance (or, with the selftest
// subcommand, just the key codec) and reports any invariant violation
// found. Every check runs inside a read transaction; opening the
// instance goes through instance.Open, which writes the persisted
// schema record back in its own write transaction first.
package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/erigontech/objectdb/instance"
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "objdbcheck",
		Short: "Verify the on-disk invariants of an objectdb instance",
	}

	rootCmd.AddCommand(verifyCmd())
	rootCmd.AddCommand(selftestCmd())

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func verifyCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "verify <path>",
		Short: "Open an existing instance and check every collection's rows and indexes",
		Args:  cobra.ExactArgs(1),
		RunE: func(_ *cobra.Command, args []string) error {
			return runVerify(args[0])
		},
	}
	return cmd
}

func runVerify(path string) error {
	ctx := context.Background()
	inst, err := instance.OpenExisting(ctx, path)
	if err != nil {
		return fmt.Errorf("open %s: %w", path, err)
	}
	defer inst.Close()

	report, err := verifyInstance(ctx, inst)
	if err != nil {
		return fmt.Errorf("verify %s: %w", path, err)
	}
	printReport(report)
	if !report.OK() {
		return fmt.Errorf("%d violation(s) found", len(report.Violations))
	}
	return nil
}

func selftestCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "selftest",
		Short: "Check key-codec boundary behaviors without opening any instance",
		RunE: func(_ *cobra.Command, _ []string) error {
			report := selftest()
			printReport(report)
			if !report.OK() {
				return fmt.Errorf("%d violation(s) found", len(report.Violations))
			}
			return nil
		},
	}
}

func printReport(r *Report) {
	fmt.Printf("checked %d row(s), %d index entr(y/ies)\n", r.RowsChecked, r.IndexEntriesChecked)
	if r.OK() {
		fmt.Println("no violations found")
		return
	}
	fmt.Printf("%d violation(s):\n", len(r.Violations))
	for _, v := range r.Violations {
		fmt.Println("  " + v.String())
	}
}
