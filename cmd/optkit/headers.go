package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/onnwee/optimize-kit/backend/internal/cacheheaders"
)

func newHeadersCmd() *cobra.Command {
	var (
		format string
		source string
	)

	cmd := &cobra.Command{
		Use:   "headers [preset...]",
		Short: "Print header presets as routing rules",
		Long: "Print header presets as {source, headers} routing rules in YAML or JSON.\n" +
			"With no arguments every preset is printed. Presets: " + strings.Join(cacheheaders.Names(), ", "),
		RunE: func(cmd *cobra.Command, args []string) error {
			names := args
			if len(names) == 0 {
				names = cacheheaders.Names()
			}

			rules := make([]cacheheaders.Rule, 0, len(names))
			for _, name := range names {
				headers, ok := cacheheaders.Lookup(name)
				if !ok {
					return fmt.Errorf("unknown preset %q (have %s)", name, strings.Join(cacheheaders.Names(), ", "))
				}
				rules = append(rules, cacheheaders.Apply(source, headers))
			}

			out, err := cacheheaders.Export(format, rules...)
			if err != nil {
				return err
			}
			_, err = cmd.OutOrStdout().Write(out)
			return err
		},
	}

	cmd.Flags().StringVarP(&format, "format", "f", "yaml", "output format: yaml or json")
	cmd.Flags().StringVarP(&source, "source", "s", "/(.*)", "source pattern the headers apply to")
	return cmd
}
