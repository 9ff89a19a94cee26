package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/sells-group/newswatch-cli/internal/sites"
)

var sitesCmd = &cobra.Command{
	Use:   "sites",
	Short: "List the known site strategies",
	RunE: func(cmd *cobra.Command, _ []string) error {
		reg := sites.Default()

		fmt.Printf("%-18s %-9s %s\n", "STRATEGY", "MODE", "DOMAINS")
		for _, s := range reg.All() {
			fmt.Printf("%-18s %-9s %s\n", s.Name(), s.Mode(), strings.Join(s.Domains(), ", "))
		}
		fb := reg.Fallback()
		fmt.Printf("%-18s %-9s %s\n", fb.Name(), fb.Mode(), "(any other host)")
		return nil
	},
}

func init() {
	rootCmd.AddCommand(sitesCmd)
}
