package service

import (
	"bytes"
	"context"
	"errors"
	"testing"
	"time"

	"github.com/NNikoGG/water-quality-monitoring/internal/models"
)

func TestExportService_WriteCSV(t *testing.T) {
	t.Parallel()

	repo := &readingRepoStub{
		all: []models.Reading{
			{
				ID:           "a",
				Timestamp:    time.Date(2026, 8, 26, 10, 0, 0, 0, time.UTC),
				PH:           7.012,
				Turbidity:    2.5,
				TDS:          320.4,
				Temperature:  21.55,
				Conductivity: 540,
			},
			{
				ID:           "b",
				Timestamp:    time.Date(2026, 8, 26, 11, 0, 0, 0, time.UTC),
				PH:           6.9,
				Turbidity:    3,
				TDS:          410.129,
				Temperature:  22,
				Conductivity: 611.7,
			},
		},
	}
	s := NewExportService(repo)

	var buf bytes.Buffer
	if err := s.WriteCSV(context.Background(), &buf); err != nil {
		t.Fatalf("WriteCSV(): %v", err)
	}

	want := "Timestamp,pH,Turbidity (NTU),TDS (ppm),Temperature (°C),Conductivity (μS/cm)\n" +
		"2026-08-26T10:00:00Z,7.01,2.50,320.40,21.55,540.00\n" +
		"2026-08-26T11:00:00Z,6.90,3.00,410.13,22.00,611.70\n"
	if got := buf.String(); got != want {
		t.Errorf("csv output mismatch:\nwant:\n%s\ngot:\n%s", want, got)
	}
}

func TestExportService_WriteCSV_EmptyStoreWritesHeaderOnly(t *testing.T) {
	t.Parallel()

	s := NewExportService(&readingRepoStub{})
	var buf bytes.Buffer
	if err := s.WriteCSV(context.Background(), &buf); err != nil {
		t.Fatalf("WriteCSV(): %v", err)
	}
	want := "Timestamp,pH,Turbidity (NTU),TDS (ppm),Temperature (°C),Conductivity (μS/cm)\n"
	if got := buf.String(); got != want {
		t.Errorf("csv output: want header only, got:\n%s", got)
	}
}

func TestExportService_WriteCSV_PropagatesRepositoryError(t *testing.T) {
	t.Parallel()

	s := NewExportService(&readingRepoStub{allErr: errors.New("db down")})
	var buf bytes.Buffer
	if err := s.WriteCSV(context.Background(), &buf); err == nil {
		t.Fatal("expected error")
	}
	if buf.Len() != 0 {
		t.Errorf("nothing should be written on error, got %q", buf.String())
	}
}
