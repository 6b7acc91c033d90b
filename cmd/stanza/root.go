package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var rootCmd = &cobra.Command{
	Use:   "stanza",
	Short: "stanza - a blog-aware static site generator",
	Long: `Stanza turns a directory of front-mattered markdown into a static site.
Posts named YYYY-MM-DD-slug.md become a date-ordered index, tag listings,
an RSS feed, and a sitemap. The serve command adds live reload and an
optional in-browser editor on top.`,
	SilenceUsage: true,
}

// Execute runs the root command and exits non-zero on failure.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.Version = version

	rootCmd.PersistentFlags().String("root", ".", "site root directory")

	// Every flag is also reachable as STANZA_<NAME>, so deploy scripts can
	// configure the CLI without touching argv.
	viper.SetEnvPrefix("STANZA")
	viper.AutomaticEnv()
	viper.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
}

// bindFlags connects a command's flags to viper at run time. Binding here
// instead of init keeps commands that share flag names (build and serve both
// take --drafts) from clobbering each other.
func bindFlags(cmd *cobra.Command, _ []string) error {
	if err := viper.BindPFlags(cmd.Flags()); err != nil {
		return err
	}
	return viper.BindPFlags(cmd.Root().PersistentFlags())
}

func siteRoot() string {
	return viper.GetString("root")
}
