package main

import (
	"fmt"
	"valorant-match-scraper/internal/domain"

	"github.com/spf13/cobra"
)

type catalogOutput struct {
	Version string          `json:"version"`
	Options []domain.Option `json:"options"`
}

func newModesCommand(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "modes [query]",
		Short: "List the game modes the extractor recognizes",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return printCatalog(cmd, opts, domain.SearchGameModes(firstArg(args)))
		},
	}
}

func newMapsCommand(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "maps [query]",
		Short: "List the maps the extractor recognizes",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return printCatalog(cmd, opts, domain.SearchMaps(firstArg(args)))
		},
	}
}

func printCatalog(cmd *cobra.Command, opts *options, options []domain.Option) error {
	if options == nil {
		options = []domain.Option{}
	}
	if opts.wantJSON(cmd.OutOrStdout()) {
		return writeJSON(cmd, catalogOutput{Version: domain.LookupTableVersion, Options: options})
	}

	rows := make([][]string, 0, len(options))
	for _, o := range options {
		rows = append(rows, []string{o.Value, o.Name})
	}
	fmt.Fprintln(cmd.OutOrStdout(), renderTable([]string{"Value", "Name"}, rows, nil))
	fmt.Fprintf(cmd.OutOrStdout(), "lookup tables %s\n", domain.LookupTableVersion)
	return nil
}

func firstArg(args []string) string {
	if len(args) == 0 {
		return ""
	}
	return args[0]
}
