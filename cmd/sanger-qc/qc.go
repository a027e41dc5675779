package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/inodb/sanger-qc/internal/basecall"
	"github.com/inodb/sanger-qc/internal/duckdb"
	"github.com/inodb/sanger-qc/internal/output"
	"github.com/inodb/sanger-qc/internal/pipeline"
	"github.com/inodb/sanger-qc/internal/qc"
	"github.com/inodb/sanger-qc/internal/seqio"
	"github.com/inodb/sanger-qc/internal/trim"
)

func newQCCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "qc <input>...",
		Short: "Compute per-read QC metrics and a run summary",
		Long: `Compute quality metrics for AB1 and PHD reads: quality statistics,
expected errors, trim coordinates, and a pass/fail length gate. Inputs
are files or directories; directories are scanned for .ab1 and .phd.1
files. Results are written as CSV and JSON under the output directory.`,
		Example: `  sanger-qc qc runs/plate1/
  sanger-qc qc --ambiguous-calling --mixed-context sample.ab1
  sanger-qc qc -o results --qthreshold 25 --recursive runs/`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runQC(cmd, args)
		},
	}

	addProcessingFlags(cmd)
	cmd.Flags().StringP("output", "o", "qc_results", "Output directory")
	cmd.Flags().Bool("ambiguous-calling", false, "Reclassify bases from peak intensities (AB1 inputs only)")
	cmd.Flags().Bool("clonal-context", true, "Treat samples as clonal (minor secondary peaks are noise)")
	cmd.Flags().Bool("mixed-context", false, "Treat samples as possible mixtures (overrides --clonal-context)")
	cmd.Flags().Float64("spr-noise", basecall.DefaultConfig().SPRNoiseMax, "SPR at or below which the secondary peak is noise")
	cmd.Flags().Float64("spr-het-low", basecall.DefaultConfig().SPRHetLow, "Lower bound of the balanced heterozygous SPR range")
	cmd.Flags().Float64("spr-het-high", basecall.DefaultConfig().SPRHetHigh, "Upper bound of the balanced heterozygous SPR range")
	cmd.Flags().String("duckdb", "", "Also write results to a DuckDB database at this path")

	return cmd
}

// addProcessingFlags registers the flags shared by the qc and trim commands.
func addProcessingFlags(cmd *cobra.Command) {
	cmd.Flags().Int("qthreshold", 20, "Quality threshold for trimming and the HQ stretch")
	cmd.Flags().String("method", string(trim.MethodMaxWindow), "Trimming method: max-window, mott, ends")
	cmd.Flags().Int("min-length", 50, "Minimum trimmed length to pass QC")
	cmd.Flags().BoolP("recursive", "r", false, "Recurse into subdirectories")
	cmd.Flags().IntP("workers", "w", 0, "Worker count (0 = number of CPUs)")
}

// processingOptions resolves pipeline options from flags, falling back to
// config-file values for thresholds the user did not set on the command line.
func processingOptions(cmd *cobra.Command) pipeline.Options {
	opts := pipeline.Options{
		QThreshold: intSetting(cmd, "qthreshold", "trim.qthreshold"),
		MinLength:  intSetting(cmd, "min-length", "trim.min_length"),
		Calling:    basecall.DefaultConfig(),
	}

	method, _ := cmd.Flags().GetString("method")
	if !cmd.Flags().Changed("method") && viper.IsSet("trim.method") {
		method = viper.GetString("trim.method")
	}
	opts.Method = trim.Method(method)

	return opts
}

// callingConfig resolves classifier thresholds: defaults, then config file,
// then command-line flags.
func callingConfig(cmd *cobra.Command) basecall.Config {
	cfg := basecall.DefaultConfig()

	if viper.IsSet("calling.q_min_noise") {
		cfg.QMinNoise = viper.GetInt("calling.q_min_noise")
	}
	if viper.IsSet("calling.snr_min") {
		cfg.SNRMin = viper.GetFloat64("calling.snr_min")
	}
	if viper.IsSet("calling.q_confident") {
		cfg.QConfident = viper.GetInt("calling.q_confident")
	}
	if viper.IsSet("calling.q_ambig") {
		cfg.QAmbig = viper.GetInt("calling.q_ambig")
	}
	if viper.IsSet("calling.clonal_context") {
		cfg.ClonalContext = viper.GetBool("calling.clonal_context")
	}

	cfg.SPRNoiseMax = floatSetting(cmd, "spr-noise", "calling.spr_noise_max", cfg.SPRNoiseMax)
	cfg.SPRHetLow = floatSetting(cmd, "spr-het-low", "calling.spr_het_low", cfg.SPRHetLow)
	cfg.SPRHetHigh = floatSetting(cmd, "spr-het-high", "calling.spr_het_high", cfg.SPRHetHigh)

	if cmd.Flags().Changed("clonal-context") {
		cfg.ClonalContext, _ = cmd.Flags().GetBool("clonal-context")
	}
	if mixed, _ := cmd.Flags().GetBool("mixed-context"); mixed {
		cfg.ClonalContext = false
	}

	return cfg
}

func intSetting(cmd *cobra.Command, flag, key string) int {
	if !cmd.Flags().Changed(flag) && viper.IsSet(key) {
		return viper.GetInt(key)
	}
	v, _ := cmd.Flags().GetInt(flag)
	return v
}

func floatSetting(cmd *cobra.Command, flag, key string, def float64) float64 {
	if cmd.Flags().Changed(flag) {
		v, _ := cmd.Flags().GetFloat64(flag)
		return v
	}
	if viper.IsSet(key) {
		return viper.GetFloat64(key)
	}
	return def
}

func runQC(cmd *cobra.Command, args []string) error {
	logger := newLogger(cmd)
	defer logger.Sync()

	opts := processingOptions(cmd)
	opts.AmbiguousCalling, _ = cmd.Flags().GetBool("ambiguous-calling")
	opts.Calling = callingConfig(cmd)

	recursive, _ := cmd.Flags().GetBool("recursive")
	workers, _ := cmd.Flags().GetInt("workers")
	outDir, _ := cmd.Flags().GetString("output")
	duckdbPath, _ := cmd.Flags().GetString("duckdb")

	inputs, err := seqio.Discover(args, recursive, logger)
	if err != nil {
		return err
	}
	if len(inputs) == 0 {
		return fmt.Errorf("no .ab1 or .phd.1 files found in inputs")
	}
	logger.Info("starting qc run",
		zap.Int("files", len(inputs)),
		zap.String("method", string(opts.Method)),
		zap.Bool("ambiguous_calling", opts.AmbiguousCalling))

	results, err := processAll(inputs, opts, workers, logger)
	if err != nil {
		return err
	}
	if len(results) == 0 {
		return fmt.Errorf("no reads could be processed")
	}

	if err := writeQCOutputs(outDir, results, opts.AmbiguousCalling); err != nil {
		return err
	}

	if duckdbPath != "" {
		if err := writeStore(duckdbPath, results); err != nil {
			return err
		}
		logger.Info("wrote results store", zap.String("path", duckdbPath))
	}

	metrics := make([]qc.Metrics, len(results))
	for i, r := range results {
		metrics[i] = r.Metrics
	}
	summary := qc.ComputeSummary(metrics)
	logger.Info("qc run complete",
		zap.Int("reads", summary.TotalReads),
		zap.Int("passed", summary.ReadsPassedMinLen),
		zap.Float64("mean_q", summary.MeanMeanQ),
		zap.String("output", outDir))

	return nil
}

// processAll parses and processes discovered inputs through the worker
// pool. Reads that fail to parse or process are logged and skipped.
func processAll(inputs []seqio.Input, opts pipeline.Options, workers int, logger *zap.Logger) ([]*pipeline.Result, error) {
	proc := pipeline.NewProcessor(opts)
	proc.SetLogger(logger)

	reader := seqio.NewReader(inputs)
	items := make(chan pipeline.WorkItem)
	go func() {
		defer close(items)
		defer reader.Close()
		for seq := 0; ; {
			read, err := reader.Next()
			if err != nil {
				logger.Warn("skipping unreadable file", zap.Error(err))
				continue
			}
			if read == nil {
				return
			}
			items <- pipeline.WorkItem{Seq: seq, Read: read}
			seq++
		}
	}()

	var results []*pipeline.Result
	err := pipeline.OrderedCollect(proc.ParallelProcess(items, workers), func(r pipeline.WorkResult) error {
		if r.Err != nil {
			logger.Warn("skipping read",
				zap.String("sample", r.Read.SampleID), zap.Error(r.Err))
			return nil
		}
		results = append(results, r.Result)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return results, nil
}

// writeQCOutputs writes per-read metrics, the run summary, and (when
// calling ran) the combined base-call annotations.
func writeQCOutputs(outDir string, results []*pipeline.Result, withCalls bool) error {
	qcDir := filepath.Join(outDir, "qc")
	if err := os.MkdirAll(qcDir, 0755); err != nil {
		return fmt.Errorf("create output directory: %w", err)
	}

	metricsFile, err := os.Create(filepath.Join(qcDir, "per_read_metrics.csv"))
	if err != nil {
		return fmt.Errorf("create metrics file: %w", err)
	}
	defer metricsFile.Close()

	mw := output.NewMetricsWriter(metricsFile)
	if err := mw.WriteHeader(); err != nil {
		return err
	}
	metrics := make([]qc.Metrics, 0, len(results))
	for _, r := range results {
		if err := mw.Write(r.Metrics); err != nil {
			return err
		}
		metrics = append(metrics, r.Metrics)
	}
	if err := mw.Flush(); err != nil {
		return err
	}

	summaryFile, err := os.Create(filepath.Join(qcDir, "summary.json"))
	if err != nil {
		return fmt.Errorf("create summary file: %w", err)
	}
	defer summaryFile.Close()
	if err := output.WriteSummary(summaryFile, qc.ComputeSummary(metrics)); err != nil {
		return err
	}

	if !withCalls {
		return nil
	}

	callsDir := filepath.Join(outDir, "base_calls")
	if err := os.MkdirAll(callsDir, 0755); err != nil {
		return fmt.Errorf("create base calls directory: %w", err)
	}
	callsFile, err := os.Create(filepath.Join(callsDir, "all_base_calls.csv"))
	if err != nil {
		return fmt.Errorf("create base calls file: %w", err)
	}
	defer callsFile.Close()

	bw := output.NewBaseCallWriter(callsFile)
	if err := bw.WriteHeader(); err != nil {
		return err
	}
	for _, r := range results {
		if len(r.Calls) == 0 {
			continue
		}
		if err := bw.WriteSample(r.Read.SampleID, r.Calls); err != nil {
			return err
		}
	}
	return bw.Flush()
}

// writeStore persists metrics and base calls to a DuckDB database.
func writeStore(path string, results []*pipeline.Result) error {
	store, err := duckdb.Open(path)
	if err != nil {
		return err
	}
	defer store.Close()

	metrics := make([]qc.Metrics, len(results))
	for i, r := range results {
		metrics[i] = r.Metrics
	}
	if err := store.WriteMetrics(metrics); err != nil {
		return err
	}

	for _, r := range results {
		if len(r.Calls) == 0 {
			continue
		}
		if err := store.WriteBaseCalls(r.Read.SampleID, r.Calls); err != nil {
			return err
		}
	}
	return nil
}
