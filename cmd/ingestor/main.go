package main

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"log"
	"os"
	"time"

	"github.com/samirrijal/travelcities/internal/adapters/postgres"
	"github.com/samirrijal/travelcities/internal/core/domain"
	"github.com/samirrijal/travelcities/internal/core/ports"
	"github.com/samirrijal/travelcities/internal/pkg/config"
)

const batchSize = 500

// ---------------------------------------------------------------------------
// Main
// ---------------------------------------------------------------------------

func main() {
	cfg, err := config.Load("travelcities-ingestor")
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Minute)
	defer cancel()

	db, err := postgres.New(ctx, cfg.Database.DSN(), cfg.Database.MaxConns)
	if err != nil {
		log.Fatalf("db: %v", err)
	}
	defer db.Close()

	csvPath := "travel_cities.csv"
	if len(os.Args) > 1 {
		csvPath = os.Args[1]
	}

	f, err := os.Open(csvPath)
	if err != nil {
		log.Fatalf("open %s: %v", csvPath, err)
	}
	defer f.Close()

	log.Printf("Travel Cities Ingestor - loading %s", csvPath)

	total, err := ingestCities(ctx, postgres.NewCityRepo(db.Pool), f)
	if err != nil {
		log.Fatalf("ingest: %v", err)
	}
	log.Printf("ingestion complete: %d cities", total)
}

// ---------------------------------------------------------------------------
// Cities
// ---------------------------------------------------------------------------

func ingestCities(ctx context.Context, w ports.CityWriter, r io.Reader) (int, error) {
	reader := csv.NewReader(r)
	reader.LazyQuotes = true
	reader.FieldsPerRecord = -1

	header, err := reader.Read()
	if err != nil {
		return 0, fmt.Errorf("read header: %w", err)
	}
	cols := indexColumns(header)
	for _, required := range []string{"city", "latitude", "longitude"} {
		if _, ok := cols[required]; !ok {
			return 0, fmt.Errorf("missing column %q", required)
		}
	}

	batch := make([]domain.City, 0, batchSize)
	total := 0
	line := 1

	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		line++
		if err != nil {
			log.Printf("line %d: %v", line, err)
			continue
		}

		city, err := parseCity(record, cols)
		if err != nil {
			log.Printf("line %d: skipped: %v", line, err)
			continue
		}

		batch = append(batch, city)
		if len(batch) >= batchSize {
			if err := w.UpsertBatch(ctx, batch); err != nil {
				return total, err
			}
			total += len(batch)
			batch = batch[:0]
		}
	}

	if len(batch) > 0 {
		if err := w.UpsertBatch(ctx, batch); err != nil {
			return total, err
		}
		total += len(batch)
	}
	return total, nil
}
