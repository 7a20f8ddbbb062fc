package main

import (
	"strings"

	"github.com/spf13/cobra"
	"github.com/usace/flo2d-mutator/actions"
)

var schematizeCmd = &cobra.Command{
	Use:   "schematize <routine>...",
	Short: "Rebuild schematic layers from the user layers",
	Long: "Routines run in the order given. Available: " + strings.Join(actions.Routines(), ", ") + `.
Run channels before xsections so the bank lines exist.`,
	Args:      cobra.MatchAll(cobra.MinimumNArgs(1), cobra.OnlyValidArgs),
	ValidArgs: actions.Routines(),
	Run:       runSchematize,
}

func init() {
	rootCmd.AddCommand(schematizeCmd)
}

func runSchematize(cmd *cobra.Command, args []string) {
	o := orchestrator(false, cfg.Srs)
	defer o.Container().Close()
	for _, name := range args {
		rep, err := o.Schematize(name)
		logReport(rep)
		if err != nil {
			exitWithError(name+" failed", err)
		}
	}
}
