package main

import (
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/tripraptomo/stanza"
)

var buildCmd = &cobra.Command{
	Use:   "build",
	Short: "Build the site into the output directory",
	Long: `Build reads content/, renders every post and page through layouts/,
copies static/ verbatim, and writes the finished site plus feed.xml,
sitemap.xml, and robots.txt into the output directory.`,
	PreRunE: bindFlags,
	RunE: func(cmd *cobra.Command, args []string) error {
		engine, err := stanza.New(siteRoot(), buildOptions()...)
		if err != nil {
			return err
		}
		defer engine.Close()
		_, err = engine.Build()
		return err
	},
}

// buildOptions translates the shared build/serve flags into engine options.
func buildOptions() []stanza.Option {
	var opts []stanza.Option
	if viper.GetBool("drafts") {
		opts = append(opts, stanza.WithDrafts())
	}
	if viper.GetBool("no-cache") {
		opts = append(opts, stanza.WithNoCache())
	}
	return opts
}

func init() {
	buildCmd.Flags().Bool("drafts", false, "include unpublished posts")
	buildCmd.Flags().Bool("no-cache", false, "render without the fragment cache")
	rootCmd.AddCommand(buildCmd)
}
