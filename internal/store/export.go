package store

import (
	"fmt"

	"github.com/xuri/excelize/v2"
)

var exportHeaders = []string{"Date", "Time", "Purpose", "Assignment", "Latitude", "Longitude", "Force Mark", "Result", "Message"}

// ExportHistory writes the submission audit trail to an xlsx workbook.
func (s *Store) ExportHistory(path string, limit int) error {
	logs, err := s.History(limit)
	if err != nil {
		return err
	}

	f := excelize.NewFile()
	defer f.Close()
	sheet := f.GetSheetName(0)

	for i, h := range exportHeaders {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		f.SetCellValue(sheet, cell, h)
	}

	for row, entry := range logs {
		result := "FAILED"
		if entry.Succeeded {
			result = "OK"
		}
		values := []interface{}{
			entry.CreatedAt.Format("2006-01-02"),
			entry.CreatedAt.Format("15:04:05"),
			entry.Purpose,
			entry.AssignmentID,
			entry.Latitude,
			entry.Longitude,
			entry.ForceMark,
			result,
			entry.Message,
		}
		for col, v := range values {
			cell, _ := excelize.CoordinatesToCellName(col+1, row+2)
			f.SetCellValue(sheet, cell, v)
		}
	}

	if err := f.SaveAs(path); err != nil {
		return fmt.Errorf("save export: %w", err)
	}
	return nil
}
