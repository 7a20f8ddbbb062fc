package main

import (
	"context"
	"os"
	"os/signal"

	"github.com/spf13/cobra"
	"github.com/usace/flo2d-mutator/actions"
)

var gridOpts actions.GridOptions

var sampleOpts actions.SampleOptions

var gridCmd = &cobra.Command{
	Use:   "grid",
	Short: "Tessellate the model boundary into square cells",
	Long: `Build the grid from the user_model_boundary polygon. Without --size the
boundary's cell_size attribute is used. Ctrl-C rolls the grid back.`,
	Args: cobra.NoArgs,
	Run:  runGrid,
}

var sampleCmd = &cobra.Command{
	Use:       "sample elevation|manning",
	Short:     "Assign cell elevations or roughness",
	Args:      cobra.MatchAll(cobra.ExactArgs(1), cobra.OnlyValidArgs),
	ValidArgs: []string{"elevation", "manning"},
	Run:       runSample,
}

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Execute the grid, sample and schematize steps of the --options plan",
	Args:  cobra.NoArgs,
	Run:   runPlan,
}

func init() {
	rootCmd.AddCommand(gridCmd, sampleCmd, runCmd)
	gridCmd.Flags().Float64Var(&gridOpts.Size, "size", 0, "cell size in container units")
	gridCmd.Flags().StringVar(&gridOpts.AnchorRaster, "anchor", "", "raster whose pixels the cells align to")
	gridCmd.Flags().BoolVar(&gridOpts.Prune, "prune", false, "remove dangling cells")

	sampleCmd.Flags().StringVar(&sampleOpts.Source, "source", "", "raster, points or polygons")
	sampleCmd.Flags().StringVar(&sampleOpts.Path, "path", "", "raster, xyz file or shapefile")
	sampleCmd.Flags().StringVar(&sampleOpts.Layer, "layer", "", "container layer holding the features")
	sampleCmd.Flags().StringVar(&sampleOpts.Field, "field", "", "attribute holding the value")
	sampleCmd.Flags().StringVar(&sampleOpts.Method, "method", "", "aggregator, or centroid/area for polygons")
	sampleCmd.Flags().BoolVar(&sampleOpts.Fill, "fill", false, "fill unsampled cells from their neighbours")
}

func interruptible() (context.Context, context.CancelFunc) {
	return signal.NotifyContext(context.Background(), os.Interrupt)
}

func runGrid(cmd *cobra.Command, args []string) {
	p, err := plan()
	if err != nil {
		exitWithError("could not read options", err)
	}
	o := orchestrator(true, p.Srs)
	defer o.Container().Close()
	ctx, cancel := interruptible()
	defer cancel()
	rep, err := o.CreateGrid(ctx, gridOpts)
	if err != nil {
		exitWithError("grid failed", err)
	}
	logReport(rep)
}

func runSample(cmd *cobra.Command, args []string) {
	o := orchestrator(false, cfg.Srs)
	defer o.Container().Close()
	ctx, cancel := interruptible()
	defer cancel()
	sample := o.SampleElevation
	if args[0] == "manning" {
		sample = o.SampleManning
	}
	rep, err := sample(ctx, sampleOpts)
	if err != nil {
		exitWithError("sampling failed", err)
	}
	logReport(rep)
}

func runPlan(cmd *cobra.Command, args []string) {
	p, err := plan()
	if err != nil {
		exitWithError("could not read options", err)
	}
	o := orchestrator(true, p.Srs)
	defer o.Container().Close()
	ctx, cancel := interruptible()
	defer cancel()
	reports, err := o.Execute(ctx, p)
	for _, rep := range reports {
		logReport(rep)
	}
	if err != nil {
		exitWithError("plan failed", err)
	}
}
