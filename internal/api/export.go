package api

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"time"

	"meepleden/internal/domain"
	"meepleden/internal/models"

	"github.com/rs/zerolog"
	"github.com/xuri/excelize/v2"
)

// Exporter writes back-office xlsx snapshots of bookings and members.
type Exporter struct {
	bookings   domain.BookingService
	members    domain.MemberService
	exportPath string
	logger     *zerolog.Logger
}

func NewExporter(bookings domain.BookingService, members domain.MemberService, exportPath string, logger *zerolog.Logger) *Exporter {
	return &Exporter{
		bookings:   bookings,
		members:    members,
		exportPath: exportPath,
		logger:     logger,
	}
}

// ExportBookings создает Excel файл с бронированиями за период
func (e *Exporter) ExportBookings(ctx context.Context, startDate, endDate time.Time) (string, error) {
	if err := os.MkdirAll(e.exportPath, 0o755); err != nil {
		return "", fmt.Errorf("error creating export directory: %w", err)
	}

	daily, err := e.bookings.GetDailyBookings(ctx, startDate, endDate)
	if err != nil {
		return "", fmt.Errorf("error getting bookings: %w", err)
	}

	f := excelize.NewFile()
	defer f.Close()

	const sheetName = "Bookings"
	index, err := f.NewSheet(sheetName)
	if err != nil {
		return "", fmt.Errorf("error creating sheet: %w", err)
	}
	f.SetActiveSheet(index)

	_ = f.SetCellValue(sheetName, "A1", fmt.Sprintf("Period: %s - %s",
		startDate.Format(dateLayout), endDate.Format(dateLayout)))

	headers := []string{
		"ID", "Reference", "Date", "Time Slot", "Party", "Tables",
		"Status", "Contact", "Phone", "Member ID", "Note", "Created",
	}
	headerStyle, _ := f.NewStyle(&excelize.Style{
		Fill:      excelize.Fill{Type: "pattern", Color: []string{"#DDEBF7"}, Pattern: 1},
		Font:      &excelize.Font{Bold: true},
		Alignment: &excelize.Alignment{Horizontal: "center"},
	})
	for i, header := range headers {
		cell, _ := excelize.CoordinatesToCellName(i+1, 2)
		_ = f.SetCellValue(sheetName, cell, header)
		_ = f.SetCellStyle(sheetName, cell, cell, headerStyle)
	}

	// Deterministic order: by date, then by id within a day.
	dates := make([]string, 0, len(daily))
	for dateKey := range daily {
		dates = append(dates, dateKey)
	}
	sort.Strings(dates)

	row := 3
	for _, dateKey := range dates {
		bookings := daily[dateKey]
		sort.Slice(bookings, func(i, j int) bool { return bookings[i].ID < bookings[j].ID })

		for _, booking := range bookings {
			memberID := ""
			if booking.MemberID != 0 {
				memberID = fmt.Sprintf("%d", booking.MemberID)
			}
			values := []interface{}{
				booking.ID,
				booking.Reference,
				dateKey,
				booking.TimeSlot,
				booking.PartySize,
				booking.TablesOccupied,
				booking.Status,
				booking.ContactName,
				booking.ContactPhone,
				memberID,
				booking.Note,
				booking.CreatedAt.Format("2006-01-02 15:04"),
			}
			for i, v := range values {
				cell, _ := excelize.CoordinatesToCellName(i+1, row)
				_ = f.SetCellValue(sheetName, cell, v)
			}

			if styleID, err := e.statusStyle(f, booking.Status); err == nil {
				statusCell, _ := excelize.CoordinatesToCellName(7, row)
				_ = f.SetCellStyle(sheetName, statusCell, statusCell, styleID)
			}
			row++
		}
	}

	_ = f.SetColWidth(sheetName, "A", "B", 14)
	_ = f.SetColWidth(sheetName, "C", "D", 12)
	_ = f.SetColWidth(sheetName, "G", "I", 16)
	_ = f.SetColWidth(sheetName, "K", "L", 20)

	_ = f.MergeCell(sheetName, "A1", "L1")
	titleStyle, _ := f.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Bold: true, Size: 14},
		Alignment: &excelize.Alignment{Horizontal: "center"},
	})
	_ = f.SetCellStyle(sheetName, "A1", "A1", titleStyle)

	_ = f.DeleteSheet("Sheet1")

	fileName := fmt.Sprintf("bookings_%s_to_%s.xlsx",
		startDate.Format(dateLayout), endDate.Format(dateLayout))
	filePath := filepath.Join(e.exportPath, fileName)

	if err := f.SaveAs(filePath); err != nil {
		return "", fmt.Errorf("error saving file: %w", err)
	}

	e.logger.Info().Str("file_path", filePath).Msg("bookings export created")
	return filePath, nil
}

// statusStyle возвращает стиль ячейки статуса
func (e *Exporter) statusStyle(f *excelize.File, status string) (int, error) {
	var color string
	switch status {
	case models.StatusConfirmed:
		color = "#C6EFCE"
	case models.StatusCheckedIn:
		color = "#DDEBF7"
	case models.StatusCancelled:
		color = "#FFC7CE"
	default:
		color = "#FFFFFF"
	}
	return f.NewStyle(&excelize.Style{
		Fill:      excelize.Fill{Type: "pattern", Color: []string{color}, Pattern: 1},
		Alignment: &excelize.Alignment{Horizontal: "center"},
	})
}

// ExportMembers создает Excel файл со списком участников
func (e *Exporter) ExportMembers(ctx context.Context) (string, error) {
	if err := os.MkdirAll(e.exportPath, 0o755); err != nil {
		return "", fmt.Errorf("error creating export directory: %w", err)
	}

	members, err := e.members.GetAllMembers(ctx)
	if err != nil {
		return "", fmt.Errorf("error getting members: %w", err)
	}

	f := excelize.NewFile()
	defer f.Close()

	const sheetName = "Members"
	index, err := f.NewSheet(sheetName)
	if err != nil {
		return "", fmt.Errorf("error creating sheet: %w", err)
	}
	f.SetActiveSheet(index)

	headers := []string{
		"ID", "LINE User ID", "Display Name", "Phone",
		"Level", "Exp", "Joined", "Updated",
	}
	headerStyle, _ := f.NewStyle(&excelize.Style{
		Fill: excelize.Fill{Type: "pattern", Color: []string{"#E2EFDA"}, Pattern: 1},
		Font: &excelize.Font{Bold: true},
	})
	for i, header := range headers {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		_ = f.SetCellValue(sheetName, cell, header)
		_ = f.SetCellStyle(sheetName, cell, cell, headerStyle)
	}

	for i, member := range members {
		row := i + 2
		_ = f.SetCellValue(sheetName, fmt.Sprintf("A%d", row), member.ID)
		_ = f.SetCellValue(sheetName, fmt.Sprintf("B%d", row), member.LineUserID)
		_ = f.SetCellValue(sheetName, fmt.Sprintf("C%d", row), member.DisplayName)
		_ = f.SetCellValue(sheetName, fmt.Sprintf("D%d", row), member.Phone)
		_ = f.SetCellValue(sheetName, fmt.Sprintf("E%d", row), member.Level)
		_ = f.SetCellValue(sheetName, fmt.Sprintf("F%d", row), member.CurrentExp)
		_ = f.SetCellValue(sheetName, fmt.Sprintf("G%d", row), member.CreatedAt.Format("02.01.2006 15:04"))
		_ = f.SetCellValue(sheetName, fmt.Sprintf("H%d", row), member.UpdatedAt.Format("02.01.2006 15:04"))
	}

	_ = f.SetColWidth(sheetName, "A", "A", 8)
	_ = f.SetColWidth(sheetName, "B", "B", 36)
	_ = f.SetColWidth(sheetName, "C", "D", 20)
	_ = f.SetColWidth(sheetName, "E", "F", 8)
	_ = f.SetColWidth(sheetName, "G", "H", 18)

	_ = f.DeleteSheet("Sheet1")

	fileName := fmt.Sprintf("members_export_%s.xlsx", time.Now().Format("2006-01-02_15-04-05"))
	filePath := filepath.Join(e.exportPath, fileName)

	if err := f.SaveAs(filePath); err != nil {
		return "", fmt.Errorf("error saving file: %w", err)
	}

	e.logger.Info().Str("file_path", filePath).Msg("members export created")
	return filePath, nil
}
