package service

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"time"

	"github.com/NNikoGG/water-quality-monitoring/internal/repository"
)

// csvHeader matches the dashboard's export columns exactly.
var csvHeader = []string{
	"Timestamp",
	"pH",
	"Turbidity (NTU)",
	"TDS (ppm)",
	"Temperature (°C)",
	"Conductivity (μS/cm)",
}

// ExportService writes the entire reading collection as CSV. This is the
// one-time full read of the store; it ignores the bounded window.
type ExportService struct {
	repo repository.ReadingRepo
}

func NewExportService(repo repository.ReadingRepo) *ExportService {
	return &ExportService{repo: repo}
}

// WriteCSV streams header plus one row per reading, values to 2 decimal
// places, oldest first.
func (s *ExportService) WriteCSV(ctx context.Context, w io.Writer) error {
	readings, err := s.repo.All(ctx)
	if err != nil {
		return err
	}

	cw := csv.NewWriter(w)
	if err := cw.Write(csvHeader); err != nil {
		return fmt.Errorf("write csv header: %w", err)
	}
	for _, r := range readings {
		row := []string{
			r.Timestamp.UTC().Format(time.RFC3339),
			fmt.Sprintf("%.2f", r.PH),
			fmt.Sprintf("%.2f", r.Turbidity),
			fmt.Sprintf("%.2f", r.TDS),
			fmt.Sprintf("%.2f", r.Temperature),
			fmt.Sprintf("%.2f", r.Conductivity),
		}
		if err := cw.Write(row); err != nil {
			return fmt.Errorf("write csv row for %s: %w", r.ID, err)
		}
	}
	cw.Flush()
	return cw.Error()
}
