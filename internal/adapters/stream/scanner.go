// Package stream adapts the extractor to incremental input. Reports are
// read line by line, so arbitrarily large inputs are handled without
// holding the whole text in memory.
package stream

import (
	"bufio"
	"context"
	"io"
	"strings"
	"time"

	"github.com/muhammadawaislaal/go_lab_analysis/internal/core/domain"
	"github.com/muhammadawaislaal/go_lab_analysis/internal/ports"
)

const (
	// DefaultReaderSize is the initial buffer of the underlying reader.
	DefaultReaderSize = 64 * 1024

	// DefaultMaxLineSize caps a single line. Oversized lines are skipped
	// rather than failing the whole stream.
	DefaultMaxLineSize = 1024 * 1024
)

// Scanner extracts lab records from a stream. Each line is scanned
// independently, offsets are rebased to the whole stream, and the first
// parseable mention of a test across all lines wins, matching what a
// whole-text extraction would return for line-oriented reports. A mention
// whose value sits on the next line is not paired; the whole-text path
// covers such layouts.
type Scanner struct {
	logger      ports.Logger
	extractor   ports.RecordExtractor
	maxLineSize int
}

// NewScanner creates a streaming scanner around an extractor.
func NewScanner(extractor ports.RecordExtractor, logger ports.Logger) *Scanner {
	return &Scanner{
		logger:      logger,
		extractor:   extractor,
		maxLineSize: DefaultMaxLineSize,
	}
}

// WithMaxLineSize sets a custom per-line cap for the scanner.
func (s *Scanner) WithMaxLineSize(size int) *Scanner {
	if size > 0 {
		s.maxLineSize = size
	}
	return s
}

// ExtractStream reads the stream to the end and returns the extracted
// records. On context cancellation the records gathered so far are returned
// with the context's error.
func (s *Scanner) ExtractStream(ctx context.Context, r io.Reader) ([]domain.LabRecord, error) {
	startTime := time.Now()

	if r == nil {
		s.logger.Error("Nil reader provided")
		return nil, io.ErrUnexpectedEOF
	}

	reader := bufio.NewReaderSize(r, DefaultReaderSize)

	var records []domain.LabRecord
	seen := make(map[string]bool)
	offset := 0
	lines := 0
	skipped := 0

	for {
		// Check context for cancellation between lines.
		select {
		case <-ctx.Done():
			s.logger.Warn("Stream extraction cancelled by context", "error", ctx.Err())
			return records, ctx.Err()
		default:
		}

		line, consumed, truncated, err := s.readLine(reader)
		if consumed > 0 {
			lines++
			if truncated {
				skipped++
				s.logger.Warn("Skipping oversized line",
					"line", lines,
					"bytes", consumed,
					"max", s.maxLineSize,
				)
			} else {
				s.scanLine(ctx, line, offset, seen, &records)
			}
			offset += consumed
		}

		if err != nil {
			if err == io.EOF {
				break
			}
			s.logger.Error("Error reading from input", "error", err)
			return records, err
		}
	}

	if offset == 0 {
		s.logger.Debug("Empty stream processed")
		return records, nil
	}

	s.logger.Debug("Stream extraction completed",
		"lines", lines,
		"skipped_lines", skipped,
		"bytes_processed", offset,
		"records", len(records),
		"duration", time.Since(startTime),
	)
	return records, nil
}

// readLine returns the next line, how many stream bytes it spanned, and
// whether it blew the per-line cap. Reading continues to the newline even
// when the cap is hit, so the stream position stays consistent without
// buffering the oversized remainder.
func (s *Scanner) readLine(reader *bufio.Reader) (line string, consumed int, truncated bool, err error) {
	var b strings.Builder
	for {
		var chunk []byte
		chunk, err = reader.ReadSlice('\n')
		consumed += len(chunk)

		if b.Len() < s.maxLineSize {
			if room := s.maxLineSize - b.Len(); len(chunk) > room {
				chunk = chunk[:room]
				truncated = true
			}
			b.Write(chunk)
		} else {
			truncated = true
		}

		if err == bufio.ErrBufferFull {
			continue
		}
		return b.String(), consumed, truncated, err
	}
}

// scanLine extracts one line and folds the results into the stream-wide
// record list. Line-local offsets are rebased onto the stream.
func (s *Scanner) scanLine(ctx context.Context, line string, offset int, seen map[string]bool, records *[]domain.LabRecord) {
	trimmed := strings.TrimRight(line, "\r\n")
	if trimmed == "" {
		return
	}

	for _, rec := range s.extractor.Extract(ctx, trimmed) {
		if seen[rec.TestName] {
			continue
		}
		rec.Offset += offset
		*records = append(*records, rec)
		seen[rec.TestName] = true
	}
}
