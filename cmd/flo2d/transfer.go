package main

import (
	"bufio"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"github.com/usace/flo2d-mutator/actions"
)

var assumeYes bool

var importCmd = &cobra.Command{
	Use:   "import <dat dir>",
	Short: "Import the .DAT files of a project directory into the container",
	Args:  cobra.ExactArgs(1),
	Run:   runImport,
}

var exportCmd = &cobra.Command{
	Use:   "export <dat dir>",
	Short: "Write the container back out as .DAT files",
	Args:  cobra.ExactArgs(1),
	Run:   runExport,
}

func init() {
	rootCmd.AddCommand(importCmd, exportCmd)
	importCmd.Flags().BoolVarP(&assumeYes, "yes", "y", false, "overwrite a container that already holds a model")
}

// confirm asks on the terminal before an import replaces a model.
func confirm(path string) bool {
	if assumeYes {
		return true
	}
	fmt.Fprintf(os.Stderr, "%v already holds a model, overwrite it? [y/N] ", path)
	answer, _ := bufio.NewReader(os.Stdin).ReadString('\n')
	return strings.EqualFold(strings.TrimSpace(answer), "y")
}

func runImport(cmd *cobra.Command, args []string) {
	p, err := plan()
	if err != nil {
		exitWithError("could not read options", err)
	}
	o := orchestrator(true, p.Srs)
	defer o.Container().Close()
	rep, err := o.ImportDat(args[0], actions.ImportOptions{Strict: p.Strict, Confirm: confirm, Families: p.DatFamilies()})
	if err != nil {
		exitWithError("import failed", err)
	}
	logReport(rep)
}

func runExport(cmd *cobra.Command, args []string) {
	p, err := plan()
	if err != nil {
		exitWithError("could not read options", err)
	}
	o := orchestrator(false, p.Srs)
	defer o.Container().Close()
	rep, err := o.ExportDat(args[0], actions.ExportOptions{Strict: p.Strict, Families: p.DatFamilies()})
	if err != nil {
		exitWithError("export failed", err)
	}
	logReport(rep)
}
