package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var validateCmd = &cobra.Command{
	Use:   "validate <query-file>",
	Short: "Validate a document against the schema",
	Long: `Validate parses and validates a document without executing it. The
operations of a valid document are printed as JSON. Use - to read from stdin.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig(cmd)
		if err != nil {
			return err
		}
		query, err := readDocument(cmd.InOrStdin(), args[0])
		if err != nil {
			return err
		}

		s, closeTracer, err := buildSchema(cfg, zap.NewNop())
		if err != nil {
			return err
		}
		defer closeTracer()

		errs, ops := s.ValidateAndLog(query)
		out := cmd.OutOrStdout()
		if len(errs) != 0 {
			for _, err := range errs {
				fmt.Fprintln(out, err)
			}
			return fmt.Errorf("validate: %d error(s)", len(errs))
		}
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		return enc.Encode(ops)
	},
}

func init() {
	rootCmd.AddCommand(validateCmd)
}

func readDocument(stdin io.Reader, path string) (string, error) {
	if path == "-" {
		b, err := io.ReadAll(stdin)
		return string(b), err
	}
	b, err := os.ReadFile(path)
	return string(b), err
}
