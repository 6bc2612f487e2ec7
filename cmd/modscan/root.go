// Package main provides the entry point for the modscan CLI.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

// NewRootCmd creates the root command for modscan.
func NewRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "modscan",
		Short: "Ansible module usage scanner",
		Long: `modscan scans Ansible playbook repositories and reports which modules
are used, in which files and roles, and with which parameters.

Module names are resolved to their fully qualified collection names
through ansible-doc when it is available. Scans are saved to a local
history database so repeated scans of the same repository can be
compared over time.`,
		Version:       getVersion(),
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	// Global flags that apply to all commands
	cmd.PersistentFlags().BoolP("verbose", "v", false, "Enable verbose logging")

	// Add subcommands
	cmd.AddCommand(NewScanCmd())
	cmd.AddCommand(NewCompareCmd())
	cmd.AddCommand(NewInitCmd())
	cmd.AddCommand(NewVersionCmd())

	return cmd
}

// Execute runs the root command.
func Execute() {
	if err := NewRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
