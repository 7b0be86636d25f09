package google

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"sync"
	"time"

	"meepleden/internal/models"

	"golang.org/x/oauth2/google"
	"google.golang.org/api/option"
	"google.golang.org/api/sheets/v4"
)

// Bookings sheet columns A:L, members sheet columns A:H. Status lives
// in column G, updated_at in column L.
const (
	bookingsRange      = "Bookings!A:A"
	membersRange       = "Members!A:A"
	bookingStatusCol   = "G"
	bookingUpdatedCol  = "L"
	bookingRowWidth    = "L"
	memberRowWidth     = "H"
	sheetsTimeLayout   = "2006-01-02 15:04:05"
	sheetsDateLayout   = "2006-01-02"
)

var ErrRowNotFound = errors.New("sheet row not found")

type SheetsService struct {
	service          *sheets.Service
	membersSheetID   string
	bookingsSheetID  string
	bookingRowCache  map[int64]int
	memberRowCache   map[int64]int
	cacheMu          sync.RWMutex
}

func NewSheetsService(credentialsFile, membersSheetID, bookingsSheetID string) (*SheetsService, error) {
	ctx := context.Background()

	// Читаем файл учетных данных сервисного аккаунта
	credentialsJSON, err := os.ReadFile(credentialsFile)
	if err != nil {
		return nil, fmt.Errorf("unable to read credentials file: %v", err)
	}

	config, err := google.JWTConfigFromJSON(credentialsJSON, sheets.SpreadsheetsScope)
	if err != nil {
		return nil, fmt.Errorf("unable to parse credentials: %v", err)
	}

	client := config.Client(ctx)

	srv, err := sheets.NewService(ctx, option.WithHTTPClient(client))
	if err != nil {
		return nil, fmt.Errorf("unable to create Sheets service: %v", err)
	}

	service := &SheetsService{
		service:         srv,
		membersSheetID:  membersSheetID,
		bookingsSheetID: bookingsSheetID,
		bookingRowCache: make(map[int64]int),
		memberRowCache:  make(map[int64]int),
	}

	// Warm up cache in background
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		service.WarmUpCache(ctx)
	}()

	// Periodic cache refresh every 1 hour
	go func() {
		ticker := time.NewTicker(1 * time.Hour)
		defer ticker.Stop()
		for range ticker.C {
			ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
			service.WarmUpCache(ctx)
			cancel()
		}
	}()

	return service, nil
}

// TestConnection проверяет подключение к таблицам
func (s *SheetsService) TestConnection(ctx context.Context) error {
	_, err := s.service.Spreadsheets.Values.Get(s.membersSheetID, "Members!A1").Context(ctx).Do()
	if err != nil {
		return fmt.Errorf("connection test failed: %v", err)
	}
	return nil
}

// GetServiceAccountEmail возвращает email сервисного аккаунта
func (s *SheetsService) GetServiceAccountEmail(credentialsFile string) (string, error) {
	file, err := os.ReadFile(credentialsFile)
	if err != nil {
		return "", err
	}

	var creds struct {
		ClientEmail string `json:"client_email"`
	}

	if err := json.Unmarshal(file, &creds); err != nil {
		return "", err
	}

	return creds.ClientEmail, nil
}

// WarmUpCache populates both row index caches by reading the ID columns.
func (s *SheetsService) WarmUpCache(ctx context.Context) error {
	bookings, err := s.readIDColumn(ctx, s.bookingsSheetID, bookingsRange)
	if err != nil {
		return err
	}
	members, err := s.readIDColumn(ctx, s.membersSheetID, membersRange)
	if err != nil {
		return err
	}

	s.cacheMu.Lock()
	defer s.cacheMu.Unlock()
	s.bookingRowCache = bookings
	s.memberRowCache = members
	return nil
}

func (s *SheetsService) readIDColumn(ctx context.Context, spreadsheetID, readRange string) (map[int64]int, error) {
	resp, err := s.service.Spreadsheets.Values.Get(spreadsheetID, readRange).Context(ctx).Do()
	if err != nil {
		return nil, err
	}

	cache := make(map[int64]int)
	for i, row := range resp.Values {
		if len(row) == 0 {
			continue
		}
		if id := cellID(row[0]); id > 0 {
			cache[id] = i + 1
		}
	}
	return cache, nil
}

// UpsertBooking updates an existing booking row or appends a new one.
func (s *SheetsService) UpsertBooking(ctx context.Context, booking *models.Booking) error {
	if booking == nil {
		return fmt.Errorf("booking is nil")
	}

	rowIdx, err := s.findBookingRow(ctx, booking.ID)
	if err != nil {
		if errors.Is(err, ErrRowNotFound) {
			return s.appendBooking(ctx, booking)
		}
		return err
	}

	rangeData := fmt.Sprintf("Bookings!A%d:%s%d", rowIdx, bookingRowWidth, rowIdx)
	valueRange := &sheets.ValueRange{
		Values: [][]interface{}{bookingRowValues(booking)},
	}

	_, err = s.service.Spreadsheets.Values.Update(s.bookingsSheetID, rangeData, valueRange).
		ValueInputOption("RAW").
		Context(ctx).
		Do()
	return err
}

func (s *SheetsService) appendBooking(ctx context.Context, booking *models.Booking) error {
	valueRange := &sheets.ValueRange{
		Values: [][]interface{}{bookingRowValues(booking)},
	}

	_, err := s.service.Spreadsheets.Values.Append(s.bookingsSheetID, bookingsRange, valueRange).
		ValueInputOption("RAW").
		InsertDataOption("INSERT_ROWS").
		Context(ctx).
		Do()

	return err
}

// UpdateBookingStatus updates status (and updated_at) for a booking row.
func (s *SheetsService) UpdateBookingStatus(ctx context.Context, bookingID int64, status string) error {
	rowIdx, err := s.findBookingRow(ctx, bookingID)
	if err != nil {
		return err
	}

	now := time.Now().Format(sheetsTimeLayout)

	statusRange := fmt.Sprintf("Bookings!%s%d:%s%d", bookingStatusCol, rowIdx, bookingStatusCol, rowIdx)
	_, err = s.service.Spreadsheets.Values.Update(s.bookingsSheetID, statusRange, &sheets.ValueRange{
		Values: [][]interface{}{{status}},
	}).ValueInputOption("RAW").Context(ctx).Do()
	if err != nil {
		return err
	}

	updatedRange := fmt.Sprintf("Bookings!%s%d:%s%d", bookingUpdatedCol, rowIdx, bookingUpdatedCol, rowIdx)
	_, err = s.service.Spreadsheets.Values.Update(s.bookingsSheetID, updatedRange, &sheets.ValueRange{
		Values: [][]interface{}{{now}},
	}).ValueInputOption("RAW").Context(ctx).Do()
	return err
}

// UpsertMember updates an existing member row or appends a new one.
func (s *SheetsService) UpsertMember(ctx context.Context, member *models.Member) error {
	if member == nil {
		return fmt.Errorf("member is nil")
	}

	rowIdx, err := s.findMemberRow(ctx, member.ID)
	if err != nil {
		if errors.Is(err, ErrRowNotFound) {
			valueRange := &sheets.ValueRange{
				Values: [][]interface{}{memberRowValues(member)},
			}
			_, err := s.service.Spreadsheets.Values.Append(s.membersSheetID, membersRange, valueRange).
				ValueInputOption("RAW").
				InsertDataOption("INSERT_ROWS").
				Context(ctx).
				Do()
			return err
		}
		return err
	}

	rangeData := fmt.Sprintf("Members!A%d:%s%d", rowIdx, memberRowWidth, rowIdx)
	valueRange := &sheets.ValueRange{
		Values: [][]interface{}{memberRowValues(member)},
	}

	_, err = s.service.Spreadsheets.Values.Update(s.membersSheetID, rangeData, valueRange).
		ValueInputOption("RAW").
		Context(ctx).
		Do()
	return err
}

// ReplaceBookingsSheet полностью перезаписывает лист с бронированиями
func (s *SheetsService) ReplaceBookingsSheet(ctx context.Context, bookings []*models.Booking) error {
	clearRange := fmt.Sprintf("Bookings!A2:%s", "Z")
	_, err := s.service.Spreadsheets.Values.Clear(s.bookingsSheetID, clearRange, &sheets.ClearValuesRequest{}).Context(ctx).Do()
	if err != nil {
		return fmt.Errorf("failed to clear bookings sheet: %v", err)
	}

	var values [][]interface{}
	for _, booking := range bookings {
		values = append(values, bookingRowValues(booking))
	}

	if len(values) > 0 {
		_, err = s.service.Spreadsheets.Values.Update(s.bookingsSheetID, "Bookings!A2", &sheets.ValueRange{Values: values}).
			ValueInputOption("RAW").Context(ctx).Do()
		if err != nil {
			return fmt.Errorf("failed to update bookings sheet: %v", err)
		}
	}

	// Re-populate cache, data starts at row 2
	s.cacheMu.Lock()
	s.bookingRowCache = make(map[int64]int)
	for i, b := range bookings {
		s.bookingRowCache[b.ID] = i + 2
	}
	s.cacheMu.Unlock()

	return nil
}

// ReplaceMembersSheet полностью перезаписывает лист участников
func (s *SheetsService) ReplaceMembersSheet(ctx context.Context, members []*models.Member) error {
	headers := []interface{}{"ID", "LINE User ID", "Display Name", "Phone", "Level", "Exp", "Created At", "Updated At"}
	values := [][]interface{}{headers}
	for _, member := range members {
		values = append(values, memberRowValues(member))
	}

	rangeData := fmt.Sprintf("Members!A1:%s%d", memberRowWidth, len(values))
	_, err := s.service.Spreadsheets.Values.Update(s.membersSheetID, rangeData, &sheets.ValueRange{Values: values}).
		ValueInputOption("RAW").
		Context(ctx).
		Do()
	if err != nil {
		return err
	}

	s.cacheMu.Lock()
	s.memberRowCache = make(map[int64]int)
	for i, m := range members {
		s.memberRowCache[m.ID] = i + 2
	}
	s.cacheMu.Unlock()

	return nil
}

// findBookingRow locates the 1-based row index for a booking ID in
// column A, consulting the cache first.
func (s *SheetsService) findBookingRow(ctx context.Context, bookingID int64) (int, error) {
	return s.findRow(ctx, bookingID, s.bookingsSheetID, bookingsRange, false)
}

func (s *SheetsService) findMemberRow(ctx context.Context, memberID int64) (int, error) {
	return s.findRow(ctx, memberID, s.membersSheetID, membersRange, true)
}

func (s *SheetsService) findRow(ctx context.Context, id int64, spreadsheetID, readRange string, member bool) (int, error) {
	if id == 0 {
		return 0, fmt.Errorf("id is required")
	}

	if row, ok := s.getCachedRow(id, member); ok {
		return row, nil
	}

	resp, err := s.service.Spreadsheets.Values.Get(spreadsheetID, readRange).Context(ctx).Do()
	if err != nil {
		return 0, err
	}

	for i, r := range resp.Values {
		if len(r) == 0 {
			continue
		}
		if cellID(r[0]) == id {
			rowIdx := i + 1 // Values are zero-based; sheet rows are 1-based
			s.setCachedRow(id, rowIdx, member)
			return rowIdx, nil
		}
	}

	return 0, ErrRowNotFound
}

func (s *SheetsService) getCachedRow(id int64, member bool) (int, bool) {
	s.cacheMu.RLock()
	defer s.cacheMu.RUnlock()
	if member {
		row, ok := s.memberRowCache[id]
		return row, ok
	}
	row, ok := s.bookingRowCache[id]
	return row, ok
}

func (s *SheetsService) setCachedRow(id int64, row int, member bool) {
	s.cacheMu.Lock()
	defer s.cacheMu.Unlock()
	if member {
		s.memberRowCache[id] = row
	} else {
		s.bookingRowCache[id] = row
	}
}

// ClearCache clears both row index caches.
func (s *SheetsService) ClearCache() {
	s.cacheMu.Lock()
	defer s.cacheMu.Unlock()
	s.bookingRowCache = make(map[int64]int)
	s.memberRowCache = make(map[int64]int)
}

func cellID(cell interface{}) int64 {
	switch v := cell.(type) {
	case float64:
		return int64(v)
	case string:
		var id int64
		fmt.Sscanf(v, "%d", &id)
		return id
	default:
		return 0
	}
}

func bookingRowValues(booking *models.Booking) []interface{} {
	return []interface{}{
		booking.ID,
		booking.Reference,
		booking.Date.Format(sheetsDateLayout),
		booking.TimeSlot,
		booking.PartySize,
		booking.TablesOccupied,
		booking.Status,
		booking.ContactName,
		booking.ContactPhone,
		booking.MemberID,
		booking.CreatedAt.Format(sheetsTimeLayout),
		booking.UpdatedAt.Format(sheetsTimeLayout),
	}
}

func memberRowValues(member *models.Member) []interface{} {
	return []interface{}{
		member.ID,
		member.LineUserID,
		member.DisplayName,
		member.Phone,
		member.Level,
		member.CurrentExp,
		member.CreatedAt.Format(sheetsTimeLayout),
		member.UpdatedAt.Format(sheetsTimeLayout),
	}
}
