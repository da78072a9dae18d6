package ingest

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"go.uber.org/zap"

	"github.com/paystream/merchant-analytics/internal/domain"
	"github.com/paystream/merchant-analytics/internal/repository"
)

// Seeder loads merchant event CSV files into the event store. It is designed
// to run once, synchronously, before the service starts accepting requests.
type Seeder struct {
	repository repository.EventRepository
	log        *zap.Logger
}

// NewSeeder creates a new CSV seeder
func NewSeeder(repo repository.EventRepository, log *zap.Logger) *Seeder {
	return &Seeder{
		repository: repo,
		log:        log,
	}
}

// SeedFromDir scans a directory for CSV files and seeds them into the store.
// If the store already holds data the entire directory is skipped, which
// keeps repeated startups idempotent. Files are processed in lexicographic
// order; a failure in one file does not block the remaining files.
//
// Two near-simultaneous processes can both pass the skip check and
// double-seed. Single-process startup-only usage is the supported mode, so
// no cross-process lock is taken.
func (s *Seeder) SeedFromDir(ctx context.Context, dir string) error {
	hasEvents, err := s.repository.HasEvents(ctx)
	if err != nil {
		return fmt.Errorf("failed to check for existing events: %w", err)
	}
	if hasEvents {
		s.log.Info("Event store already contains data, skipping bulk seed")
		return nil
	}

	files, err := filepath.Glob(filepath.Join(dir, "*.csv"))
	if err != nil {
		return fmt.Errorf("failed to scan directory %s: %w", dir, err)
	}
	sort.Strings(files)

	if len(files) == 0 {
		s.log.Warn("No CSV files found", zap.String("dir", dir))
		return nil
	}

	s.log.Info("Starting bulk seed",
		zap.Int("file_count", len(files)),
		zap.String("dir", dir))

	for _, path := range files {
		if err := s.seedFile(ctx, path); err != nil {
			s.log.Error("Failed to seed file",
				zap.String("file", filepath.Base(path)),
				zap.Error(err))
			continue
		}
	}

	return nil
}

// seedFile parses a single CSV file and bulk-inserts its valid rows in one
// batch. Row-level problems (missing event_id, duplicate, bad amount) skip
// the row and keep going.
func (s *Seeder) seedFile(ctx context.Context, path string) error {
	name := filepath.Base(path)
	s.log.Info("Processing file", zap.String("file", name))

	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("failed to open %s: %w", name, err)
	}
	defer func() {
		if err := f.Close(); err != nil {
			s.log.Error("Failed to close file", zap.String("file", name), zap.Error(err))
		}
	}()

	reader := csv.NewReader(f)
	reader.FieldsPerRecord = -1

	header, err := reader.Read()
	if errors.Is(err, io.EOF) {
		s.log.Info("No valid records to insert", zap.String("file", name))
		return nil
	}
	if err != nil {
		return fmt.Errorf("failed to read header of %s: %w", name, err)
	}

	columns := make(map[string]int, len(header))
	for i, col := range header {
		columns[strings.TrimSpace(col)] = i
	}

	records := s.collectRecords(ctx, name, reader, columns)

	if len(records) == 0 {
		s.log.Info("No valid records to insert", zap.String("file", name))
		return nil
	}

	inserted, err := s.repository.InsertBatch(ctx, records)
	if err != nil {
		return fmt.Errorf("failed to bulk insert %s: %w", name, err)
	}

	s.log.Info("Successfully seeded records",
		zap.String("file", name),
		zap.Int("record_count", inserted))
	return nil
}

func (s *Seeder) collectRecords(
	ctx context.Context,
	name string,
	reader *csv.Reader,
	columns map[string]int,
) []*domain.Event {
	var records []*domain.Event

	for {
		fields, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			s.log.Warn("Skipping malformed row",
				zap.String("file", name),
				zap.Error(err))
			continue
		}

		row := make(map[string]string, len(csvColumns))
		for _, col := range csvColumns {
			if idx, ok := columns[col]; ok && idx < len(fields) {
				row[col] = fields[idx]
			}
		}

		eventID := strings.TrimSpace(row["event_id"])
		merchantID := strings.TrimSpace(row["merchant_id"])

		if eventID == "" {
			s.log.Warn("Skipping row: event_id is missing or empty",
				zap.String("file", name))
			continue
		}

		exists, err := s.repository.EventExists(ctx, eventID)
		if err != nil {
			s.log.Warn("Skipping row: existence check failed",
				zap.String("file", name),
				zap.String("event_id", eventID),
				zap.Error(err))
			continue
		}
		if exists {
			s.log.Warn("Skipping row: event_id already exists",
				zap.String("file", name),
				zap.String("event_id", eventID))
			continue
		}

		event, err := buildEvent(eventID, merchantID, row)
		if err != nil {
			s.log.Warn("Skipping row: failed to normalize",
				zap.String("file", name),
				zap.String("event_id", eventID),
				zap.Error(err))
			continue
		}

		records = append(records, event)
	}

	return records
}
