package main

import (
	"io"
	"os"

	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"
)

type options struct {
	json    bool
	verbose bool
}

func newRootCommand() *cobra.Command {
	opts := &options{}

	rootCmd := &cobra.Command{
		Use:           "scrape",
		Short:         "Resolve Valorant match pages into structured results",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmd.Help()
		},
	}

	rootCmd.PersistentFlags().BoolVar(&opts.json, "json", false, "Print JSON even on a terminal")
	rootCmd.PersistentFlags().BoolVarP(&opts.verbose, "verbose", "v", false, "Log pipeline activity to stderr")

	rootCmd.AddCommand(newMatchCommand(opts))
	rootCmd.AddCommand(newModesCommand(opts))
	rootCmd.AddCommand(newMapsCommand(opts))

	return rootCmd
}

// wantJSON is true when asked for, or when stdout is not a terminal.
func (o *options) wantJSON(w io.Writer) bool {
	if o.json {
		return true
	}
	file, ok := w.(*os.File)
	if !ok {
		return true
	}
	fd := file.Fd()
	return !isatty.IsTerminal(fd) && !isatty.IsCygwinTerminal(fd)
}
