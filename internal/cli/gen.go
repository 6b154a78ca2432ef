package cli

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/gqlkit/graphql/autogen"
	"github.com/gqlkit/graphql/example/starwars"
)

var (
	genPackage string
	genOutput  string
)

var genCmd = &cobra.Command{
	Use:   "gen",
	Short: "Generate Go model types from the schema",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig(cmd)
		if err != nil {
			return err
		}
		sdl := starwars.Schema
		if cfg.Schema != "" {
			b, err := os.ReadFile(cfg.Schema)
			if err != nil {
				return err
			}
			sdl = string(b)
		}

		src, err := autogen.GenString(sdl, genPackage)
		if err != nil {
			return err
		}
		if genOutput == "" || genOutput == "-" {
			_, err = cmd.OutOrStdout().Write(src)
			return err
		}
		return os.WriteFile(genOutput, src, 0o644)
	},
}

func init() {
	genCmd.Flags().StringVarP(&genPackage, "package", "p", "models", "Package name of the generated file")
	genCmd.Flags().StringVarP(&genOutput, "output", "o", "", "Output file, stdout when empty")
	rootCmd.AddCommand(genCmd)
}
