package main

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/mwhite7112/woodpantry-pickle/internal/config"
)

func newCheckCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "check <item>",
		Short: "Check a single item and print the JSON result",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			item := strings.TrimSpace(args[0])
			if item == "" {
				return &exitError{code: 2, msg: "Item cannot be empty or null"}
			}

			cfg, err := config.Load()
			if err != nil {
				return fmt.Errorf("load config: %w", err)
			}
			logger := newLogger(cmd.ErrOrStderr(), cfg.Log.Level)

			checker, cleanup, err := buildChecker(cmd.Context(), cfg, logger, nil)
			if err != nil {
				return err
			}
			defer cleanup()

			result := checker.Check(cmd.Context(), item)
			enc := json.NewEncoder(cmd.OutOrStdout())
			return enc.Encode(result)
		},
	}
}
