package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/ekernf01/pereggrn-networks/internal/duck"
	"github.com/ekernf01/pereggrn-networks/internal/errors"
	"github.com/ekernf01/pereggrn-networks/internal/logger"
	"github.com/ekernf01/pereggrn-networks/internal/schema"
	"github.com/panjf2000/ants/v2"
	"github.com/spf13/cobra"
)

var (
	flagOutDir  string
	flagWorkers int
)

// convertCmd turns delimited edge lists into the parquet partitions the
// query engine scans. This is the data-preparation half of the pipeline:
// it never runs at query time.
var convertCmd = &cobra.Command{
	Use:   "convert --out-dir <dir> <file.csv|file.tsv>...",
	Short: "Convert delimited edge lists into parquet partitions",
	Args:  cobra.MinimumNArgs(1),
	RunE:  runConvert,
}

func init() {
	convertCmd.Flags().StringVar(&flagOutDir, "out-dir", "", "directory for the produced partitions (required)")
	convertCmd.Flags().IntVar(&flagWorkers, "workers", 4, "number of concurrent conversions")
	convertCmd.MarkFlagRequired("out-dir")
}

func runConvert(cmd *cobra.Command, args []string) error {
	if err := os.MkdirAll(flagOutDir, 0o755); err != nil {
		return fmt.Errorf("create output dir: %w", err)
	}

	pool, err := ants.NewPool(flagWorkers, ants.WithPanicHandler(func(v any) {
		logger.Error("convert worker panic", "panic", v)
	}))
	if err != nil {
		return fmt.Errorf("create worker pool: %w", err)
	}
	defer pool.Release()

	var (
		wg       sync.WaitGroup
		mu       sync.Mutex
		firstErr error
	)
	fail := func(err error) {
		mu.Lock()
		if firstErr == nil {
			firstErr = err
		}
		mu.Unlock()
	}

	for _, in := range args {
		in := in
		wg.Add(1)
		if err := pool.Submit(func() {
			defer wg.Done()
			out, err := convertOne(in, flagOutDir)
			if err != nil {
				fail(fmt.Errorf("%s: %w", in, err))
				logger.Error("conversion failed", "file", in, "error", err)
				return
			}
			logger.Info("converted", "file", in, "out", out)
		}); err != nil {
			wg.Done()
			fail(fmt.Errorf("submit %s: %w", in, err))
		}
	}
	wg.Wait()
	return firstErr
}

// convertOne converts one delimited file into a partition satisfying the
// column contract. Columns are taken positionally: the first two become
// regulator and target, the third becomes the weight (-1 for every row when
// absent), and a fourth is carried iff it is already named cell_type.
func convertOne(in, outDir string) (string, error) {
	db, err := duck.Open()
	if err != nil {
		return "", err
	}
	defer db.Close()

	rel := duck.CSVScan(in)
	cols, err := duck.Columns(db, rel)
	if err != nil {
		return "", err
	}
	if len(cols) < 2 {
		return "", fmt.Errorf("%w: %d columns, want at least regulator and target",
			errors.ErrSchema, len(cols))
	}

	sel := duck.QuoteIdent(cols[0]) + " AS regulator, " + duck.QuoteIdent(cols[1]) + " AS target, "
	if len(cols) == 2 {
		sel += "CAST(-1 AS DOUBLE) AS weight"
	} else {
		sel += "CAST(" + duck.QuoteIdent(cols[2]) + " AS DOUBLE) AS weight"
	}
	if len(cols) > 3 && cols[3] == schema.CellTypeColumn {
		sel += ", " + duck.QuoteIdent(schema.CellTypeColumn)
	}

	base := strings.TrimSuffix(filepath.Base(in), filepath.Ext(in))
	out := filepath.Join(outDir, base+".parquet")
	if err := duck.CopyToParquet(db, "SELECT "+sel+" FROM "+rel, out); err != nil {
		return "", err
	}
	return out, nil
}
