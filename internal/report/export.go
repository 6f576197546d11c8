package report

import (
	"bytes"
	"fmt"
	"time"

	"github.com/jung-kurt/gofpdf"
	"github.com/xuri/excelize/v2"

	"geotrack-console/internal/tracker"
)

// BuildPositionsPDF renders a position-history report for one device.
func BuildPositionsPDF(device tracker.Device, from, to time.Time, positions []tracker.Position) ([]byte, error) {
	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.SetFont("Arial", "", 12)
	pdf.AddPage()

	pdf.Cell(0, 8, "Position History")
	pdf.Ln(10)
	pdf.SetFont("Arial", "", 10)
	pdf.Cell(0, 6, fmt.Sprintf("Device: %s", device.Name))
	pdf.Ln(5)
	pdf.Cell(0, 6, fmt.Sprintf("Identifier: %s", device.UniqueID))
	pdf.Ln(5)
	pdf.Cell(0, 6, fmt.Sprintf("From: %s", from.UTC().Format(time.RFC3339)))
	pdf.Ln(5)
	pdf.Cell(0, 6, fmt.Sprintf("To: %s", to.UTC().Format(time.RFC3339)))
	pdf.Ln(5)
	pdf.Cell(0, 6, fmt.Sprintf("Fixes: %d", len(positions)))
	pdf.Ln(8)

	pdf.SetFont("Arial", "B", 10)
	pdf.CellFormat(50, 6, "Device Time", "1", 0, "C", false, 0, "")
	pdf.CellFormat(35, 6, "Latitude", "1", 0, "C", false, 0, "")
	pdf.CellFormat(35, 6, "Longitude", "1", 0, "C", false, 0, "")
	pdf.CellFormat(30, 6, "Speed", "1", 0, "C", false, 0, "")
	pdf.Ln(-1)
	pdf.SetFont("Arial", "", 10)
	for _, pos := range positions {
		pdf.CellFormat(50, 6, pos.DeviceTime.UTC().Format("2006-01-02 15:04:05"), "1", 0, "C", false, 0, "")
		pdf.CellFormat(35, 6, fmt.Sprintf("%.6f", pos.Latitude), "1", 0, "R", false, 0, "")
		pdf.CellFormat(35, 6, fmt.Sprintf("%.6f", pos.Longitude), "1", 0, "R", false, 0, "")
		pdf.CellFormat(30, 6, fmt.Sprintf("%.1f", pos.Speed), "1", 0, "R", false, 0, "")
		pdf.Ln(-1)
	}

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// BuildPositionsXLSX renders the same position-history report as a workbook.
func BuildPositionsXLSX(device tracker.Device, from, to time.Time, positions []tracker.Position) ([]byte, error) {
	f := excelize.NewFile()
	summarySheet := "summary"
	fixesSheet := "positions"
	f.SetSheetName("Sheet1", summarySheet)
	if _, err := f.NewSheet(fixesSheet); err != nil {
		return nil, err
	}

	_ = f.SetCellValue(summarySheet, "A1", "Position History")
	_ = f.SetCellValue(summarySheet, "A3", "Device")
	_ = f.SetCellValue(summarySheet, "B3", device.Name)
	_ = f.SetCellValue(summarySheet, "A4", "Identifier")
	_ = f.SetCellValue(summarySheet, "B4", device.UniqueID)
	_ = f.SetCellValue(summarySheet, "A5", "From")
	_ = f.SetCellValue(summarySheet, "B5", from.UTC().Format(time.RFC3339))
	_ = f.SetCellValue(summarySheet, "A6", "To")
	_ = f.SetCellValue(summarySheet, "B6", to.UTC().Format(time.RFC3339))
	_ = f.SetCellValue(summarySheet, "A7", "Fixes")
	_ = f.SetCellValue(summarySheet, "B7", len(positions))

	_ = f.SetCellValue(fixesSheet, "A1", "Device Time")
	_ = f.SetCellValue(fixesSheet, "B1", "Latitude")
	_ = f.SetCellValue(fixesSheet, "C1", "Longitude")
	_ = f.SetCellValue(fixesSheet, "D1", "Speed")
	_ = f.SetCellValue(fixesSheet, "E1", "Valid")
	for i, pos := range positions {
		row := i + 2
		_ = f.SetCellValue(fixesSheet, fmt.Sprintf("A%d", row), pos.DeviceTime.UTC().Format(time.RFC3339))
		_ = f.SetCellValue(fixesSheet, fmt.Sprintf("B%d", row), pos.Latitude)
		_ = f.SetCellValue(fixesSheet, fmt.Sprintf("C%d", row), pos.Longitude)
		_ = f.SetCellValue(fixesSheet, fmt.Sprintf("D%d", row), pos.Speed)
		_ = f.SetCellValue(fixesSheet, fmt.Sprintf("E%d", row), pos.Valid)
	}

	var buf bytes.Buffer
	if err := f.Write(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// BuildDevicesXLSX renders the device inventory as a workbook.
func BuildDevicesXLSX(devices []tracker.Device) ([]byte, error) {
	f := excelize.NewFile()
	sheet := "devices"
	f.SetSheetName("Sheet1", sheet)

	_ = f.SetCellValue(sheet, "A1", "ID")
	_ = f.SetCellValue(sheet, "B1", "Name")
	_ = f.SetCellValue(sheet, "C1", "Identifier")
	_ = f.SetCellValue(sheet, "D1", "Status")
	_ = f.SetCellValue(sheet, "E1", "Last Update")
	for i, device := range devices {
		row := i + 2
		_ = f.SetCellValue(sheet, fmt.Sprintf("A%d", row), device.ID)
		_ = f.SetCellValue(sheet, fmt.Sprintf("B%d", row), device.Name)
		_ = f.SetCellValue(sheet, fmt.Sprintf("C%d", row), device.UniqueID)
		_ = f.SetCellValue(sheet, fmt.Sprintf("D%d", row), device.Status)
		if device.LastUpdate != nil {
			_ = f.SetCellValue(sheet, fmt.Sprintf("E%d", row), device.LastUpdate.UTC().Format(time.RFC3339))
		}
	}

	var buf bytes.Buffer
	if err := f.Write(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
