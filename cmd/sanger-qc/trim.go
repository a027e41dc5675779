package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/inodb/sanger-qc/internal/output"
	"github.com/inodb/sanger-qc/internal/pipeline"
	"github.com/inodb/sanger-qc/internal/seqio"
)

func newTrimCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "trim <input>...",
		Short: "Trim low-quality read ends and write gzipped FASTQ/FASTA",
		Long: `Trim low-quality ends from AB1 and PHD reads and write the surviving
region. Read IDs carry the trim coordinates (sample/trim:start-end).
Reads that trim to nothing are dropped.`,
		Example: `  sanger-qc trim runs/plate1/ --out-fastq trimmed.fastq.gz
  sanger-qc trim --method ends --qthreshold 25 sample.ab1`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runTrim(cmd, args)
		},
	}

	addProcessingFlags(cmd)
	cmd.Flags().String("out-fastq", "", "Gzipped FASTQ output path (default trimmed.fastq.gz)")
	cmd.Flags().String("out-fasta", "", "Gzipped FASTA output path")

	return cmd
}

func runTrim(cmd *cobra.Command, args []string) error {
	logger := newLogger(cmd)
	defer logger.Sync()

	opts := processingOptions(cmd)
	recursive, _ := cmd.Flags().GetBool("recursive")
	workers, _ := cmd.Flags().GetInt("workers")
	fastqPath, _ := cmd.Flags().GetString("out-fastq")
	fastaPath, _ := cmd.Flags().GetString("out-fasta")
	if fastqPath == "" && fastaPath == "" {
		fastqPath = "trimmed.fastq.gz"
	}

	inputs, err := seqio.Discover(args, recursive, logger)
	if err != nil {
		return err
	}
	if len(inputs) == 0 {
		return fmt.Errorf("no .ab1 or .phd.1 files found in inputs")
	}

	results, err := processAll(inputs, opts, workers, logger)
	if err != nil {
		return err
	}

	var fastq *output.FastqWriter
	if fastqPath != "" {
		f, err := os.Create(fastqPath)
		if err != nil {
			return fmt.Errorf("create fastq output: %w", err)
		}
		defer f.Close()
		fastq = output.NewFastqWriter(f)
		defer fastq.Close()
	}

	var fasta *output.FastaWriter
	if fastaPath != "" {
		f, err := os.Create(fastaPath)
		if err != nil {
			return fmt.Errorf("create fasta output: %w", err)
		}
		defer f.Close()
		fasta = output.NewFastaWriter(f)
		defer fasta.Close()
	}

	written := 0
	for _, r := range results {
		if len(r.TrimmedSeq) == 0 {
			logger.Debug("read trimmed to nothing",
				zap.String("sample", r.Read.SampleID))
			continue
		}
		tr := trimmedRead(r)
		if fastq != nil {
			if err := fastq.Write(tr); err != nil {
				return err
			}
		}
		if fasta != nil {
			if err := fasta.Write(tr); err != nil {
				return err
			}
		}
		written++
	}

	logger.Info("trim complete",
		zap.Int("reads", len(results)),
		zap.Int("written", written))
	return nil
}

func trimmedRead(r *pipeline.Result) output.TrimmedRead {
	return output.TrimmedRead{
		ReadID: r.ReadID,
		Seq:    r.TrimmedSeq,
		Quals:  r.TrimmedQuals,
	}
}
