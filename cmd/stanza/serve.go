package main

import (
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/tripraptomo/stanza"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the site locally with live reload",
	Long: `Serve builds the site, then serves the output directory while watching
content/, layouts/, and static/ for changes. Edits rebuild the site and
reload every open browser tab.

With --edit and STANZA_EDIT_PASSWORD set, an in-browser editor for posts
and images mounts at /_stanza/admin/.`,
	PreRunE: bindFlags,
	RunE: func(cmd *cobra.Command, args []string) error {
		opts := buildOptions()
		if viper.GetBool("edit") {
			opts = append(opts, stanza.WithEditor())
		}
		if addr := viper.GetString("addr"); addr != "" {
			opts = append(opts, stanza.WithConfig(func(c *stanza.SiteConfig) {
				c.Addr = addr
			}))
		}
		engine, err := stanza.New(siteRoot(), opts...)
		if err != nil {
			return err
		}
		defer engine.Close()
		return engine.Serve()
	},
}

func init() {
	serveCmd.Flags().String("addr", "", "listen address (overrides site.yaml)")
	serveCmd.Flags().Bool("drafts", false, "include unpublished posts")
	serveCmd.Flags().Bool("edit", false, "enable the in-browser editor")
	serveCmd.Flags().Bool("no-cache", false, "render without the fragment cache")
	rootCmd.AddCommand(serveCmd)
}
