package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/onnwee/optimize-kit/backend/internal/config"
)

func newRoutesCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "routes",
		Short: "Work with route policy files",
	}

	validateCmd := &cobra.Command{
		Use:   "validate <file>",
		Short: "Check a route policy file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			policies, err := config.LoadRoutes(args[0])
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "%s: %d route(s) OK\n", args[0], len(policies.Routes))
			for _, prefix := range policies.Prefixes() {
				p, _ := policies.Match(prefix)
				fmt.Fprintf(out, "  %-32s %s\n", prefix, describe(p))
			}
			return nil
		},
	}

	cmd.AddCommand(validateCmd)
	return cmd
}

func describe(p config.RoutePolicy) string {
	s := ""
	switch {
	case p.NoCache:
		s += "cache=off"
	case p.CacheTTL > 0:
		s += "cache=" + p.CacheTTL.String()
	default:
		s += "cache=default"
	}
	if p.RateLimit != nil {
		s += fmt.Sprintf(" rate=%d/%s", p.RateLimit.Max, p.RateLimit.Window)
	}
	if len(p.Methods) > 0 {
		s += fmt.Sprintf(" methods=%v", p.Methods)
	}
	if p.Headers != "" {
		s += " headers=" + p.Headers
	}
	return s
}
