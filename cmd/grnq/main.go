// Command grnq queries collections of gene regulatory networks from the
// command line. Edge output is TSV on stdout so results pipe cleanly into
// the usual text tools; logs go to stderr.
package main

import (
	"fmt"
	"io"
	"os"
	"strconv"

	networks "github.com/ekernf01/pereggrn-networks"
	"github.com/ekernf01/pereggrn-networks/internal/config"
	"github.com/ekernf01/pereggrn-networks/internal/logger"
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "grnq",
	Short: "Query partitioned gene regulatory network collections",
	Long: `grnq reads collections of gene regulatory networks stored as parquet
partitions and answers filtered and aggregate queries against them without
loading the union into memory.

The collection root comes from --root, PEREGGRN_NETWORKS_PATH, or the
historical GRN_PATH variable, in that order.`,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		initLogging()
	},
	SilenceUsage: true,
}

// Persistent and per-command flag values.
var (
	flagRoot string

	flagSource    string
	flagSubnets   []string
	flagFiles     []string
	flagTarget    string
	flagRegulator string

	flagAllSources bool
	flagOut        string
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// logConfig mirrors the PEREGGRN_LOG_* environment variables.
type logConfig struct {
	Log struct {
		Level  string
		Format string
	}
}

func initLogging() {
	var cfg logConfig
	if err := config.Load(config.EnvPrefix, &cfg); err == nil {
		logger.Init(logger.Config{Level: cfg.Log.Level, Format: cfg.Log.Format})
	}
}

// resolveLocation builds the collection location from --root or the
// environment.
func resolveLocation() (*networks.Location, error) {
	if flagRoot != "" {
		return networks.NewLocation(flagRoot)
	}
	return networks.LocationFromEnv()
}

// openSelection opens the network selected by --source/--subnet/--file. The
// location is only resolved when a source needs it, so file-only queries work
// without a configured collection.
func openSelection() (*networks.LightNetwork, error) {
	opts := networks.Options{
		Source:      flagSource,
		Subnetworks: flagSubnets,
		Files:       flagFiles,
	}
	if flagSource != "" {
		l, err := resolveLocation()
		if err != nil {
			return nil, err
		}
		opts.Location = l
	}
	return networks.Open(opts)
}

// addSelectionFlags registers the constituent-selection flags shared by the
// query commands.
func addSelectionFlags(cmd *cobra.Command) {
	cmd.Flags().StringVar(&flagSource, "source", "", "named source from the collection catalog")
	cmd.Flags().StringArrayVar(&flagSubnets, "subnet", nil, "subnetwork of --source (repeatable; default: all)")
	cmd.Flags().StringArrayVar(&flagFiles, "file", nil, "explicit parquet partition (repeatable)")
}

func formatWeight(w float64) string {
	return strconv.FormatFloat(w, 'g', -1, 64)
}

// printEdges writes edges as TSV with a header row.
func printEdges(w io.Writer, n *networks.LightNetwork, edges []networks.Edge) {
	if n.HasCellType() {
		fmt.Fprintln(w, "regulator\ttarget\tweight\tcell_type")
		for _, e := range edges {
			fmt.Fprintf(w, "%s\t%s\t%s\t%s\n", e.Regulator, e.Target, formatWeight(e.Weight), e.CellType)
		}
		return
	}
	fmt.Fprintln(w, "regulator\ttarget\tweight")
	for _, e := range edges {
		fmt.Fprintf(w, "%s\t%s\t%s\n", e.Regulator, e.Target, formatWeight(e.Weight))
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&flagRoot, "root", "", "collection root directory (default: environment)")

	sourcesCmd := &cobra.Command{
		Use:   "sources",
		Short: "List sources from the collection catalog",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			l, err := resolveLocation()
			if err != nil {
				return err
			}
			metas, err := networks.LoadMetadata(l, !flagAllSources)
			if err != nil {
				return err
			}
			for _, m := range metas {
				ready := m.IsReady
				if ready == "" {
					ready = "?"
				}
				fmt.Printf("%s\t%s\n", m.Name, ready)
			}
			return nil
		},
	}
	sourcesCmd.Flags().BoolVar(&flagAllSources, "all", false, "include sources not flagged ready")

	subnetsCmd := &cobra.Command{
		Use:   "subnets <source>",
		Short: "List subnetworks of a source",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			l, err := resolveLocation()
			if err != nil {
				return err
			}
			subnets, err := networks.ListSubnetworks(l, args[0])
			if err != nil {
				return err
			}
			for _, s := range subnets {
				fmt.Println(s)
			}
			return nil
		},
	}

	edgesCmd := &cobra.Command{
		Use:   "edges",
		Short: "Print edges as TSV, optionally filtered by target or regulator",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if flagTarget != "" && flagRegulator != "" {
				return fmt.Errorf("--target and --regulator are mutually exclusive")
			}
			n, err := openSelection()
			if err != nil {
				return err
			}
			var edges []networks.Edge
			switch {
			case flagTarget != "":
				edges, err = n.GetRegulators(flagTarget)
			case flagRegulator != "":
				edges, err = n.GetTargets(flagRegulator)
			default:
				edges, err = n.GetAll()
			}
			if err != nil {
				return err
			}
			printEdges(os.Stdout, n, edges)
			return nil
		},
	}
	addSelectionFlags(edgesCmd)
	edgesCmd.Flags().StringVar(&flagTarget, "target", "", "keep only edges with this target gene")
	edgesCmd.Flags().StringVar(&flagRegulator, "regulator", "", "keep only edges with this regulator")

	valuesCmd := &cobra.Command{
		Use:   "values <field>",
		Short: "Print the distinct values of regulator, target, or cell_type",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			n, err := openSelection()
			if err != nil {
				return err
			}
			values, err := n.GetAllOneField(args[0])
			if err != nil {
				return err
			}
			for _, v := range values {
				fmt.Println(v)
			}
			return nil
		},
	}
	addSelectionFlags(valuesCmd)

	countCmd := &cobra.Command{
		Use:   "count",
		Short: "Print the total number of edges",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			n, err := openSelection()
			if err != nil {
				return err
			}
			count, err := n.GetNumEdges()
			if err != nil {
				return err
			}
			fmt.Println(count)
			return nil
		},
	}
	addSelectionFlags(countCmd)

	exportCmd := &cobra.Command{
		Use:   "export",
		Short: "Write the selected union to one parquet file",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			n, err := openSelection()
			if err != nil {
				return err
			}
			if err := n.Save(flagOut); err != nil {
				return err
			}
			logger.Info("union exported", "path", flagOut)
			return nil
		},
	}
	addSelectionFlags(exportCmd)
	exportCmd.Flags().StringVar(&flagOut, "out", "", "output parquet path (required)")
	exportCmd.MarkFlagRequired("out")

	validateCmd := &cobra.Command{
		Use:   "validate <source> [subnetwork]",
		Short: "Check subnetworks against the integrity heuristic",
		Args:  cobra.RangeArgs(1, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			l, err := resolveLocation()
			if err != nil {
				return err
			}
			source := args[0]
			subnets := args[1:]
			if len(subnets) == 0 {
				subnets, err = networks.ListSubnetworks(l, source)
				if err != nil {
					return err
				}
			}
			failed := 0
			for _, s := range subnets {
				if err := networks.ValidateSubnetwork(l, source, s); err != nil {
					failed++
					fmt.Printf("%s\tFAIL\t%v\n", s, err)
					continue
				}
				fmt.Printf("%s\tok\n", s)
			}
			if failed > 0 {
				return fmt.Errorf("%d of %d subnetworks failed validation", failed, len(subnets))
			}
			return nil
		},
	}

	rootCmd.AddCommand(sourcesCmd, subnetsCmd, edgesCmd, valuesCmd, countCmd, exportCmd, validateCmd, convertCmd)
}
