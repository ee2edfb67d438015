package main

import (
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/gang-games/ganggames"
	"github.com/gang-games/ganggames/internal/views"
)

func newRoutesCmd(stdout io.Writer) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "routes",
		Short: "List the route table",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runRoutes(cmd, stdout)
		},
	}
	cmd.Flags().String("sitemap", "", "Print an XML sitemap for the given public URL instead")
	return cmd
}

func runRoutes(cmd *cobra.Command, stdout io.Writer) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}

	set, err := views.Load()
	if err != nil {
		return fmt.Errorf("load views: %w", err)
	}

	routes, err := ganggames.NewTable(ganggames.DefaultRoutes(set.Hub, set.Wordle)...)
	if err != nil {
		return fmt.Errorf("route table: %w", err)
	}

	if publicURL, _ := cmd.Flags().GetString("sitemap"); publicURL != "" {
		return ganggames.WriteSitemap(stdout, routes, publicURL)
	}

	history := ganggames.NewWebHistory(cfg.Server.Base)

	tw := tabwriter.NewWriter(stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "NAME\tPATH\tTITLE") //nolint:errcheck // flushed below
	for _, r := range routes.Routes() {
		fmt.Fprintf(tw, "%s\t%s\t%s\n", r.Name, history.Href(r.Path), r.DisplayTitle()) //nolint:errcheck // flushed below
	}
	return tw.Flush()
}
