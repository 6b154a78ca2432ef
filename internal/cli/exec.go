package cli

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	graphql "github.com/gqlkit/graphql"
)

var (
	execOperation string
	execVariables string
)

var execCmd = &cobra.Command{
	Use:   "exec <query-file>",
	Short: "Execute a query or mutation and print the response",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig(cmd)
		if err != nil {
			return err
		}
		query, err := readDocument(cmd.InOrStdin(), args[0])
		if err != nil {
			return err
		}
		var vars map[string]interface{}
		if execVariables != "" {
			if err := json.Unmarshal([]byte(execVariables), &vars); err != nil {
				return fmt.Errorf("variables: %w", err)
			}
		}

		logger, err := newLogger(cfg.Log)
		if err != nil {
			return err
		}
		defer logger.Sync() //nolint:errcheck

		s, closeTracer, err := buildSchema(cfg, logger)
		if err != nil {
			return err
		}
		defer closeTracer()

		resp := s.Execute(cmd.Context(), &graphql.Request{
			Query:         query,
			OperationName: execOperation,
			Variables:     vars,
		})
		logger.Debug("executed", zap.Int("errors", len(resp.Errors)), zap.Stringer("cache_control", resp.CacheControl))

		enc := json.NewEncoder(cmd.OutOrStdout())
		enc.SetIndent("", "  ")
		if err := enc.Encode(resp); err != nil {
			return err
		}
		if len(resp.Errors) != 0 {
			return fmt.Errorf("exec: %d error(s)", len(resp.Errors))
		}
		return nil
	},
}

func init() {
	execCmd.Flags().StringVarP(&execOperation, "operation", "o", "", "Name of the operation to run")
	execCmd.Flags().StringVarP(&execVariables, "variables", "v", "", "Variables as a JSON object")
	rootCmd.AddCommand(execCmd)
}
