package main

import (
	"bytes"
	"io"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/xerrors"

	"github.com/streamcsv/streamcsv"
	"github.com/streamcsv/streamcsv/internal/fileio"
	"github.com/streamcsv/streamcsv/internal/gen"
	"github.com/streamcsv/streamcsv/internal/logging"
)

func newBenchCommand() *cobra.Command {
	var (
		input    string
		rows     int
		cols     int
		seed     int64
		dirty    bool
		reencode bool
	)

	cmd := &cobra.Command{
		Use:   "bench",
		Short: "Measure decode and re-encode throughput",
		Long: `Time a full decode pass over a CSV corpus, reporting records and bytes per
second. Without --input, a synthetic corpus is generated in memory first so
the measurement excludes disk I/O. With --reencode, every decoded record is
also written back out (to a discarding sink) to time the writer as well.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runBench(input, rows, cols, seed, dirty, reencode)
		},
	}

	cmd.Flags().StringVarP(&input, "input", "i", "", "CSV file to benchmark (.gz decompresses); omit to generate a corpus")
	cmd.Flags().IntVar(&rows, "rows", 100000, "Rows of the generated corpus when --input is omitted")
	cmd.Flags().IntVar(&cols, "cols", 6, "Columns of the generated corpus when --input is omitted")
	cmd.Flags().Int64Var(&seed, "seed", 1, "Seed of the generated corpus when --input is omitted")
	cmd.Flags().BoolVar(&dirty, "dirty", true, "Include quoted fields in the generated corpus")
	cmd.Flags().BoolVar(&reencode, "reencode", false, "Also re-encode every decoded record")

	return cmd
}

func runBench(input string, rows, cols int, seed int64, dirty, reencode bool) error {
	log := logging.Get().With(zap.String("command", "bench"))

	corpus, err := benchCorpus(input, rows, cols, seed, dirty)
	if err != nil {
		return err
	}
	log.Debug("corpus ready", zap.Int("bytes", len(corpus)))

	r := streamcsv.NewReader(bytes.NewReader(corpus))
	r.ReuseRecord = true

	var w *streamcsv.Writer
	if reencode {
		w = streamcsv.NewWriter(io.Discard)
	}

	start := time.Now()
	var records int64
	for {
		rec, err := r.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return xerrors.Errorf("decode: %w", err)
		}
		records++
		if w != nil {
			if err := w.Write(rec); err != nil {
				return xerrors.Errorf("encode: %w", err)
			}
		}
	}
	if w != nil {
		if err := w.Flush(); err != nil {
			return xerrors.Errorf("encode flush: %w", err)
		}
	}
	elapsed := time.Since(start)

	log.Info("benchmark complete",
		zap.Int64("records", records),
		zap.Int("bytes", len(corpus)),
		zap.Bool("reencode", reencode),
		zap.Duration("duration", elapsed),
		zap.Float64("records_per_second", float64(records)/elapsed.Seconds()),
		zap.Float64("mib_per_second", float64(len(corpus))/elapsed.Seconds()/(1<<20)))
	return nil
}

func benchCorpus(input string, rows, cols int, seed int64, dirty bool) ([]byte, error) {
	if input != "" {
		src, err := fileio.OpenReader(input)
		if err != nil {
			return nil, xerrors.Errorf("open input: %w", err)
		}
		defer src.Close()

		corpus, err := io.ReadAll(src)
		if err != nil {
			return nil, xerrors.Errorf("read input: %w", err)
		}
		return corpus, nil
	}

	var buf bytes.Buffer
	g := gen.New(gen.Config{Cols: cols, Seed: seed, Dirty: dirty})
	w := streamcsv.NewWriter(&buf)
	for i := 0; i < rows; i++ {
		if err := w.Write(g.Next()); err != nil {
			return nil, xerrors.Errorf("generate corpus: %w", err)
		}
	}
	if err := w.Flush(); err != nil {
		return nil, xerrors.Errorf("generate corpus: %w", err)
	}
	return buf.Bytes(), nil
}
