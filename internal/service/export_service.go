package service

import (
	"context"
	"fmt"
	"io"

	"github.com/xuri/excelize/v2"

	"github.com/kursio/kursio-backend/internal/repository"
)

// ExportService builds the admin progress report spreadsheet.
type ExportService struct {
	progressRepo *repository.ProgressRepository
}

// NewExportService creates a new ExportService.
func NewExportService(progressRepo *repository.ProgressRepository) *ExportService {
	return &ExportService{progressRepo: progressRepo}
}

// WriteProgressReport streams an xlsx report of every learner's progress to w.
// Uses a StreamWriter so large cohorts don't buffer the whole sheet in memory.
func (s *ExportService) WriteProgressReport(ctx context.Context, w io.Writer) error {
	report, err := s.progressRepo.ListReport(ctx)
	if err != nil {
		return fmt.Errorf("list report: %w", err)
	}

	f := excelize.NewFile()
	defer f.Close()

	sheetName := "Progres Peserta"
	f.SetSheetName("Sheet1", sheetName)

	sw, err := f.NewStreamWriter(sheetName)
	if err != nil {
		return fmt.Errorf("create stream writer: %w", err)
	}

	headers := []interface{}{
		"ID", "Username", "Nama Lengkap", "Email",
		"Video Lulus", "Video Gagal", "Total Pengulangan", "Progres (%)", "Sertifikat",
	}
	if err := sw.SetRow("A1", headers); err != nil {
		return fmt.Errorf("write headers: %w", err)
	}

	for i, row := range report {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return fmt.Errorf("cell name: %w", err)
		}
		cert := "Belum"
		if row.HasCertificate {
			cert = "Sudah"
		}
		values := []interface{}{
			row.UserID, row.Username, row.FullName, row.Email,
			row.PassedCount, row.FailedCount, row.TotalRetries, row.OverallProgress, cert,
		}
		if err := sw.SetRow(cell, values); err != nil {
			return fmt.Errorf("write row %d: %w", i+2, err)
		}
	}

	if err := sw.Flush(); err != nil {
		return fmt.Errorf("flush: %w", err)
	}
	if err := f.Write(w); err != nil {
		return fmt.Errorf("write workbook: %w", err)
	}
	return nil
}
