package duckdb

import (
	"context"
	"database/sql"
	"database/sql/driver"
	"errors"
	"fmt"

	goduckdb "github.com/marcboeker/go-duckdb"

	"github.com/inodb/sanger-qc/internal/basecall"
	"github.com/inodb/sanger-qc/internal/qc"
)

// WriteMetrics batch-inserts per-read metrics into DuckDB using the Appender
// API. Duplicate sample IDs are deduplicated before writing, last one wins.
func (s *Store) WriteMetrics(metrics []qc.Metrics) error {
	if len(metrics) == 0 {
		return nil
	}

	seen := make(map[string]int, len(metrics))
	deduped := make([]qc.Metrics, 0, len(metrics))
	for _, m := range metrics {
		if i, ok := seen[m.SampleID]; ok {
			deduped[i] = m
			continue
		}
		seen[m.SampleID] = len(deduped)
		deduped = append(deduped, m)
	}

	appender, cleanup, err := s.newAppender("read_metrics")
	if err != nil {
		return err
	}
	defer cleanup()

	for _, m := range deduped {
		if err := appender.AppendRow(
			m.SampleID, m.SourceFile, m.Format,
			int64(m.RawLength), m.MeanQ, m.MedianQ, m.PctQ20, m.PctQ30,
			m.GCPercent, int64(m.NCount), m.ExpectedErrors,
			int64(m.HQLongestStretch),
			int64(m.TrimStart), int64(m.TrimEnd), int64(m.TrimmedLength),
			m.PassedMinLength,
		); err != nil {
			return fmt.Errorf("append read metrics: %w", err)
		}
	}

	return appender.Flush()
}

// WriteBaseCalls batch-inserts per-position base-call annotations for a
// sample into DuckDB using the Appender API.
func (s *Store) WriteBaseCalls(sampleID string, calls []basecall.BaseCall) error {
	if len(calls) == 0 {
		return nil
	}

	appender, cleanup, err := s.newAppender("base_calls")
	if err != nil {
		return err
	}
	defer cleanup()

	for _, a := range basecall.Flatten(calls) {
		if err := appender.AppendRow(
			sampleID, int64(a.Position),
			a.CalledBase, a.PrimaryBase, a.SecondaryBase,
			a.PrimaryIntensity, a.SecondaryIntensity, a.SPR, a.SNR,
			int64(a.Quality), a.Mode, a.AlleleFraction, a.Flags,
		); err != nil {
			return fmt.Errorf("append base call: %w", err)
		}
	}

	return appender.Flush()
}

// newAppender opens a dedicated connection and wraps it in a DuckDB appender
// for the given table. The returned cleanup closes both.
func (s *Store) newAppender(table string) (*goduckdb.Appender, func(), error) {
	conn, err := s.db.Conn(context.Background())
	if err != nil {
		return nil, nil, fmt.Errorf("get connection: %w", err)
	}

	var appender *goduckdb.Appender
	if err := conn.Raw(func(driverConn any) error {
		var err error
		appender, err = goduckdb.NewAppenderFromConn(driverConn.(driver.Conn), "", table)
		return err
	}); err != nil {
		conn.Close()
		return nil, nil, fmt.Errorf("create appender: %w", err)
	}

	cleanup := func() {
		appender.Close()
		conn.Close()
	}
	return appender, cleanup, nil
}

// LookupMetrics queries the store for a sample's metrics. Returns nil when
// the sample is not present.
func (s *Store) LookupMetrics(sampleID string) (*qc.Metrics, error) {
	row := s.db.QueryRow(`SELECT
		sample_id, source_file, format, raw_length,
		mean_q, median_q, pct_q20, pct_q30, gc_percent,
		n_count, expected_errors, hq_longest_stretch_len,
		trim_start, trim_end, trimmed_length, passed_minlen
		FROM read_metrics WHERE sample_id=?`, sampleID)

	var m qc.Metrics
	var rawLen, nCount, hqLen, trimStart, trimEnd, trimmedLen int64
	err := row.Scan(
		&m.SampleID, &m.SourceFile, &m.Format, &rawLen,
		&m.MeanQ, &m.MedianQ, &m.PctQ20, &m.PctQ30, &m.GCPercent,
		&nCount, &m.ExpectedErrors, &hqLen,
		&trimStart, &trimEnd, &trimmedLen, &m.PassedMinLength,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("query read metrics: %w", err)
	}

	m.RawLength = int(rawLen)
	m.NCount = int(nCount)
	m.HQLongestStretch = int(hqLen)
	m.TrimStart = int(trimStart)
	m.TrimEnd = int(trimEnd)
	m.TrimmedLength = int(trimmedLen)
	return &m, nil
}

// LookupBaseCalls returns the stored annotations for a sample ordered by
// position.
func (s *Store) LookupBaseCalls(sampleID string) ([]basecall.Annotation, error) {
	rows, err := s.db.Query(`SELECT
		position, called_base, primary_base, secondary_base,
		primary_intensity, secondary_intensity, spr, snr,
		quality, call_mode, allele_fraction, flags
		FROM base_calls WHERE sample_id=? ORDER BY position`, sampleID)
	if err != nil {
		return nil, fmt.Errorf("query base calls: %w", err)
	}
	defer rows.Close()

	var anns []basecall.Annotation
	for rows.Next() {
		var a basecall.Annotation
		var pos, quality int64
		if err := rows.Scan(
			&pos, &a.CalledBase, &a.PrimaryBase, &a.SecondaryBase,
			&a.PrimaryIntensity, &a.SecondaryIntensity, &a.SPR, &a.SNR,
			&quality, &a.Mode, &a.AlleleFraction, &a.Flags,
		); err != nil {
			return nil, fmt.Errorf("scan base call: %w", err)
		}
		a.Position = int(pos)
		a.Quality = int(quality)
		anns = append(anns, a)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate base calls: %w", err)
	}
	return anns, nil
}
