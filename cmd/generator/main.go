package main

import (
	"encoding/csv"
	"flag"
	"fmt"
	"math/rand"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/paystream/merchant-analytics/internal/logger"
)

var (
	products  = []string{"POS_TERMINAL", "PAYMENT_LINK", "CHECKOUT", "TRANSFERS", "SAVINGS"}
	eventKind = []string{"TRANSACTION", "LOGIN", "KYC_UPDATE", "SETTLEMENT"}
	statuses  = []string{"SUCCESS", "SUCCESS", "SUCCESS", "FAILED", "PENDING"}
	channels  = []string{"WEB", "MOBILE", "API", "USSD"}
	regions   = []string{"Lagos", "Abuja", "Port Harcourt", "Kano", "Ibadan"}
	tiers     = []string{"STARTER", "VERIFIED", "PREMIUM"}
)

var header = []string{
	"event_id", "merchant_id", "event_timestamp", "product", "event_type",
	"amount", "status", "channel", "region", "merchant_tier",
}

func main() {
	outDir := flag.String("out", "./data", "output directory for generated CSV files")
	fileCount := flag.Int("files", 3, "number of CSV files to generate")
	rowsPerFile := flag.Int("rows", 200, "rows per file")
	merchants := flag.Int("merchants", 25, "size of the merchant pool")
	flag.Parse()

	log, err := logger.New("development")
	if err != nil {
		panic(fmt.Sprintf("Failed to initialize logger: %v", err))
	}
	defer func() {
		_ = log.Sync()
	}()

	if err := os.MkdirAll(*outDir, 0o755); err != nil {
		log.Fatal("Failed to create output directory", zap.Error(err))
	}

	merchantPool := make([]string, *merchants)
	for i := range merchantPool {
		merchantPool[i] = fmt.Sprintf("merchant_%03d", i+1)
	}

	for i := 0; i < *fileCount; i++ {
		name := fmt.Sprintf("events_%02d.csv", i+1)
		path := filepath.Join(*outDir, name)
		if err := writeFile(path, *rowsPerFile, merchantPool); err != nil {
			log.Fatal("Failed to write file", zap.String("file", name), zap.Error(err))
		}
		log.Info("Generated file", zap.String("file", name), zap.Int("rows", *rowsPerFile))
	}
}

func writeFile(path string, rows int, merchantPool []string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	defer f.Close()

	w := csv.NewWriter(f)
	if err := w.Write(header); err != nil {
		return fmt.Errorf("write header: %w", err)
	}

	for i := 0; i < rows; i++ {
		if err := w.Write(randomRow(merchantPool)); err != nil {
			return fmt.Errorf("write row: %w", err)
		}
	}

	w.Flush()
	return w.Error()
}

// randomRow produces one event row. A small fraction of rows carry the kinds
// of dirt the ingestion pipeline has to handle: blank merchant IDs, blank or
// unparseable timestamps, blank amounts.
func randomRow(merchantPool []string) []string {
	merchantID := merchantPool[rand.Intn(len(merchantPool))]
	if rand.Intn(50) == 0 {
		merchantID = ""
	}

	amount := decimal.NewFromFloat(rand.Float64() * 50000).Round(2).String()
	if rand.Intn(40) == 0 {
		amount = ""
	}

	return []string{
		uuid.NewString(),
		merchantID,
		randomTimestamp(),
		products[rand.Intn(len(products))],
		eventKind[rand.Intn(len(eventKind))],
		amount,
		statuses[rand.Intn(len(statuses))],
		channels[rand.Intn(len(channels))],
		regions[rand.Intn(len(regions))],
		tiers[rand.Intn(len(tiers))],
	}
}

// randomTimestamp emits timestamps in the mix of formats seen in real export
// files, plus the occasional blank or garbage value.
func randomTimestamp() string {
	t := time.Now().AddDate(0, -rand.Intn(12), -rand.Intn(28)).
		Add(-time.Duration(rand.Intn(86400)) * time.Second)

	switch rand.Intn(8) {
	case 0:
		return t.Format("2006-01-02T15:04:05")
	case 1:
		return t.Format("02/01/2006 15:04:05")
	case 2:
		return t.Format("2006/01/02 15:04:05")
	case 3:
		return t.Format(time.RFC3339)
	case 4:
		return ""
	case 5:
		if rand.Intn(4) == 0 {
			return "not-a-date"
		}
		return t.Format("2006-01-02 15:04:05")
	default:
		return t.Format("2006-01-02 15:04:05")
	}
}
