package api

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"
	"strings"
	"time"

	"meepleden/internal/models"
)

const dateLayout = "2006-01-02"

func decodeJSON(w http.ResponseWriter, r *http.Request, dst any) bool {
	decoder := json.NewDecoder(r.Body)
	decoder.DisallowUnknownFields()
	if err := decoder.Decode(dst); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return false
	}
	return true
}

func parseDateParam(w http.ResponseWriter, raw, name string) (time.Time, bool) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		writeError(w, http.StatusBadRequest, name+" is required")
		return time.Time{}, false
	}
	date, err := time.Parse(dateLayout, raw)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid "+name+" format; expected YYYY-MM-DD")
		return time.Time{}, false
	}
	return date, true
}

// --- Members ---

func (s *HTTPServer) handleIdentify(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	var body struct {
		LineUserID  string `json:"line_user_id"`
		DisplayName string `json:"display_name"`
	}
	if !decodeJSON(w, r, &body) {
		return
	}
	if strings.TrimSpace(body.LineUserID) == "" {
		writeError(w, http.StatusBadRequest, "line_user_id is required")
		return
	}

	member, err := s.members.Identify(r.Context(), body.LineUserID, body.DisplayName)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, member)
}

func (s *HTTPServer) handleMemberMe(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		lineUserID := strings.TrimSpace(r.URL.Query().Get("line_user_id"))
		if lineUserID == "" {
			writeError(w, http.StatusBadRequest, "line_user_id is required")
			return
		}
		member, err := s.members.GetByLineID(r.Context(), lineUserID)
		if err != nil {
			writeDomainError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, member)
	case http.MethodPut:
		var body struct {
			LineUserID  string `json:"line_user_id"`
			DisplayName string `json:"display_name"`
			Phone       string `json:"phone"`
		}
		if !decodeJSON(w, r, &body) {
			return
		}
		member, err := s.members.GetByLineID(r.Context(), body.LineUserID)
		if err != nil {
			writeDomainError(w, err)
			return
		}
		if err := s.members.UpdateProfile(r.Context(), member.ID, body.DisplayName, body.Phone); err != nil {
			writeDomainError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]bool{"success": true})
	default:
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
	}
}

func (s *HTTPServer) handleAwardExp(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	var body struct {
		LineUserID string `json:"line_user_id"`
		Amount     int    `json:"amount"`
		Reason     string `json:"reason"`
	}
	if !decodeJSON(w, r, &body) {
		return
	}
	if strings.TrimSpace(body.LineUserID) == "" {
		writeError(w, http.StatusBadRequest, "line_user_id is required")
		return
	}

	member, err := s.members.GetByLineID(r.Context(), body.LineUserID)
	if err != nil {
		writeDomainError(w, err)
		return
	}

	updated, err := s.members.AwardExperience(r.Context(), member.ID, body.Amount, body.Reason)
	if err != nil {
		writeDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"success":   true,
		"new_level": updated.Level,
		"new_exp":   updated.CurrentExp,
	})
}

func (s *HTTPServer) handleExpHistory(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	lineUserID := strings.TrimSpace(r.URL.Query().Get("line_user_id"))
	if lineUserID == "" {
		writeError(w, http.StatusBadRequest, "line_user_id is required")
		return
	}

	member, err := s.members.GetByLineID(r.Context(), lineUserID)
	if err != nil {
		writeDomainError(w, err)
		return
	}

	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	if limit <= 0 {
		limit = 50
	}

	events, err := s.members.GetExpHistory(r.Context(), member.ID, limit)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"events": events})
}

// --- Bookings ---

func (s *HTTPServer) handleAvailability(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	date, ok := parseDateParam(w, r.URL.Query().Get("date"), "date")
	if !ok {
		return
	}

	if daysStr := strings.TrimSpace(r.URL.Query().Get("days")); daysStr != "" {
		days, err := strconv.Atoi(daysStr)
		if err != nil || days <= 0 {
			writeError(w, http.StatusBadRequest, "days must be a positive integer")
			return
		}
		avail, err := s.bookings.GetAvailabilityRange(r.Context(), date, days)
		if err != nil {
			writeDomainError(w, err)
			return
		}
		results := make([]map[string]any, 0, len(avail))
		for _, a := range avail {
			results = append(results, availabilityJSON(a))
		}
		writeJSON(w, http.StatusOK, map[string]any{"results": results})
		return
	}

	avail, err := s.bookings.GetAvailability(r.Context(), date)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, availabilityJSON(avail))
}

func availabilityJSON(a *models.Availability) map[string]any {
	return map[string]any{
		"date":      a.Date.Format(dateLayout),
		"limit":     a.Limit,
		"booked":    a.Booked,
		"available": a.Available,
	}
}

func (s *HTTPServer) handleBookings(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		reference := strings.TrimSpace(r.URL.Query().Get("reference"))
		if reference == "" {
			writeError(w, http.StatusBadRequest, "reference is required")
			return
		}
		booking, err := s.bookings.GetBookingByReference(r.Context(), reference)
		if err != nil {
			writeDomainError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, booking)
	case http.MethodPost:
		s.handleCreateBooking(w, r)
	default:
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
	}
}

func (s *HTTPServer) handleCreateBooking(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Date         string `json:"date"`
		TimeSlot     string `json:"time_slot"`
		PartySize    int    `json:"party_size"`
		ContactName  string `json:"contact_name"`
		ContactPhone string `json:"contact_phone"`
		LineUserID   string `json:"line_user_id"`
		Note         string `json:"note"`
	}
	if !decodeJSON(w, r, &body) {
		return
	}

	date, ok := parseDateParam(w, body.Date, "date")
	if !ok {
		return
	}

	booking := &models.Booking{
		Date:         date,
		TimeSlot:     body.TimeSlot,
		PartySize:    body.PartySize,
		ContactName:  body.ContactName,
		ContactPhone: body.ContactPhone,
		Note:         body.Note,
	}

	// Walk-in bookings are allowed without a member link.
	if lineUserID := strings.TrimSpace(body.LineUserID); lineUserID != "" {
		member, err := s.members.GetByLineID(r.Context(), lineUserID)
		if err != nil {
			writeDomainError(w, err)
			return
		}
		booking.MemberID = member.ID
	}

	if err := s.bookings.CreateBooking(r.Context(), booking); err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, booking)
}

func (s *HTTPServer) handleMyBookings(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	lineUserID := strings.TrimSpace(r.URL.Query().Get("line_user_id"))
	if lineUserID == "" {
		writeError(w, http.StatusBadRequest, "line_user_id is required")
		return
	}

	member, err := s.members.GetByLineID(r.Context(), lineUserID)
	if err != nil {
		writeDomainError(w, err)
		return
	}

	bookings, err := s.bookings.GetMemberBookings(r.Context(), member.ID)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"bookings": bookings})
}

// --- LIFF sessions ---

// handleSession persists the in-progress booking draft so the LIFF app
// survives reloads mid-flow.
func (s *HTTPServer) handleSession(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		lineUserID := strings.TrimSpace(r.URL.Query().Get("line_user_id"))
		if lineUserID == "" {
			writeError(w, http.StatusBadRequest, "line_user_id is required")
			return
		}
		session, err := s.sessions.GetSession(r.Context(), lineUserID)
		if err != nil {
			writeError(w, http.StatusInternalServerError, "internal error")
			return
		}
		if session == nil {
			writeJSON(w, http.StatusOK, map[string]any{"session": nil})
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"session": session})
	case http.MethodPut:
		var body struct {
			LineUserID  string         `json:"line_user_id"`
			CurrentStep string         `json:"current_step"`
			TempData    map[string]any `json:"temp_data"`
		}
		if !decodeJSON(w, r, &body) {
			return
		}
		if strings.TrimSpace(body.LineUserID) == "" {
			writeError(w, http.StatusBadRequest, "line_user_id is required")
			return
		}
		if err := s.sessions.SetSession(r.Context(), body.LineUserID, body.CurrentStep, body.TempData); err != nil {
			writeError(w, http.StatusInternalServerError, "internal error")
			return
		}
		writeJSON(w, http.StatusOK, map[string]bool{"success": true})
	case http.MethodDelete:
		lineUserID := strings.TrimSpace(r.URL.Query().Get("line_user_id"))
		if lineUserID == "" {
			writeError(w, http.StatusBadRequest, "line_user_id is required")
			return
		}
		if err := s.sessions.ClearSession(r.Context(), lineUserID); err != nil {
			writeError(w, http.StatusInternalServerError, "internal error")
			return
		}
		writeJSON(w, http.StatusOK, map[string]bool{"success": true})
	default:
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
	}
}

// --- Public catalogue ---

func (s *HTTPServer) handleNewsFeed(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	posts, err := s.news.GetFeed(r.Context(), limit)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"posts": posts})
}

func (s *HTTPServer) handleGames(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	games, err := s.inventory.GetActiveGames(r.Context())
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"games": games})
}

// --- Admin: bookings ---

func (s *HTTPServer) handleAdminBookings(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	start, ok := parseDateParam(w, r.URL.Query().Get("start"), "start")
	if !ok {
		return
	}
	end, ok := parseDateParam(w, r.URL.Query().Get("end"), "end")
	if !ok {
		return
	}

	bookings, err := s.bookings.GetBookingsByDateRange(r.Context(), start, end)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"bookings": bookings})
}

type statusChangeRequest struct {
	ID      int64 `json:"id"`
	Version int64 `json:"version"`
}

func (s *HTTPServer) handleCheckIn(w http.ResponseWriter, r *http.Request) {
	s.handleStatusChange(w, r, s.bookings.CheckInBooking)
}

func (s *HTTPServer) handleCancel(w http.ResponseWriter, r *http.Request) {
	s.handleStatusChange(w, r, s.bookings.CancelBooking)
}

func (s *HTTPServer) handleStatusChange(
	w http.ResponseWriter,
	r *http.Request,
	change func(ctx context.Context, id, version int64) error,
) {
	if r.Method != http.MethodPost {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	var body statusChangeRequest
	if !decodeJSON(w, r, &body) {
		return
	}
	if body.ID == 0 {
		writeError(w, http.StatusBadRequest, "id is required")
		return
	}

	if err := change(r.Context(), body.ID, body.Version); err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]bool{"success": true})
}

// --- Admin: day config ---

func (s *HTTPServer) handleDayConfig(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		start, ok := parseDateParam(w, r.URL.Query().Get("start"), "start")
		if !ok {
			return
		}
		end, ok := parseDateParam(w, r.URL.Query().Get("end"), "end")
		if !ok {
			return
		}
		configs, err := s.bookings.GetDayConfigs(r.Context(), start, end)
		if err != nil {
			writeDomainError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"day_configs": configs})
	case http.MethodPut:
		var body struct {
			Date       string `json:"date"`
			TableLimit int    `json:"table_limit"`
			Disabled   bool   `json:"disabled"`
		}
		if !decodeJSON(w, r, &body) {
			return
		}
		date, ok := parseDateParam(w, body.Date, "date")
		if !ok {
			return
		}
		if body.TableLimit < 0 {
			writeError(w, http.StatusBadRequest, "table_limit must not be negative")
			return
		}
		cfg := &models.DayConfig{Date: date, TableLimit: body.TableLimit, Disabled: body.Disabled}
		if err := s.bookings.SetDayConfig(r.Context(), cfg); err != nil {
			writeDomainError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]bool{"success": true})
	default:
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
	}
}

// --- Admin: members ---

func (s *HTTPServer) handleAdminMembers(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	members, err := s.members.GetAllMembers(r.Context())
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"members": members})
}

// --- Admin: games and rentals ---

func (s *HTTPServer) handleAdminGames(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		games, err := s.inventory.GetAllGames(r.Context())
		if err != nil {
			writeDomainError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"games": games})
	case http.MethodPost:
		var game models.Game
		if !decodeJSON(w, r, &game) {
			return
		}
		if strings.TrimSpace(game.Name) == "" {
			writeError(w, http.StatusBadRequest, "name is required")
			return
		}
		if err := s.inventory.CreateGame(r.Context(), &game); err != nil {
			writeDomainError(w, err)
			return
		}
		writeJSON(w, http.StatusCreated, game)
	case http.MethodPut:
		var game models.Game
		if !decodeJSON(w, r, &game) {
			return
		}
		if game.ID == 0 {
			writeError(w, http.StatusBadRequest, "id is required")
			return
		}
		if err := s.inventory.UpdateGame(r.Context(), &game); err != nil {
			writeDomainError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, game)
	default:
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
	}
}

func (s *HTTPServer) handleDeactivateGame(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	var body struct {
		ID int64 `json:"id"`
	}
	if !decodeJSON(w, r, &body) {
		return
	}
	if body.ID == 0 {
		writeError(w, http.StatusBadRequest, "id is required")
		return
	}

	if err := s.inventory.DeactivateGame(r.Context(), body.ID); err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]bool{"success": true})
}

func (s *HTTPServer) handleAdminRentals(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	rentals, err := s.inventory.GetActiveRentals(r.Context())
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"rentals": rentals})
}

func (s *HTTPServer) handleRentalCheckout(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	var body struct {
		GameID       int64 `json:"game_id"`
		MemberID     int64 `json:"member_id"`
		DepositCents int64 `json:"deposit_cents"`
		Days         int   `json:"days"`
	}
	if !decodeJSON(w, r, &body) {
		return
	}
	if body.GameID == 0 || body.MemberID == 0 {
		writeError(w, http.StatusBadRequest, "game_id and member_id are required")
		return
	}

	rental := &models.Rental{
		GameID:       body.GameID,
		MemberID:     body.MemberID,
		DepositCents: body.DepositCents,
	}
	if body.Days > 0 {
		rental.RentedAt = time.Now()
		rental.DueAt = rental.RentedAt.AddDate(0, 0, body.Days)
	}

	if err := s.inventory.CheckOutGame(r.Context(), rental); err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, rental)
}

func (s *HTTPServer) handleRentalReturn(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	var body struct {
		ID int64 `json:"id"`
	}
	if !decodeJSON(w, r, &body) {
		return
	}
	if body.ID == 0 {
		writeError(w, http.StatusBadRequest, "id is required")
		return
	}

	if err := s.inventory.ReturnRental(r.Context(), body.ID); err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]bool{"success": true})
}

// --- Admin: news ---

func (s *HTTPServer) handleAdminNews(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		posts, err := s.news.GetAllPosts(r.Context())
		if err != nil {
			writeDomainError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"posts": posts})
	case http.MethodPost:
		var post models.NewsPost
		if !decodeJSON(w, r, &post) {
			return
		}
		if strings.TrimSpace(post.Title) == "" {
			writeError(w, http.StatusBadRequest, "title is required")
			return
		}
		if err := s.news.CreatePost(r.Context(), &post); err != nil {
			writeDomainError(w, err)
			return
		}
		writeJSON(w, http.StatusCreated, post)
	case http.MethodPut:
		var post models.NewsPost
		if !decodeJSON(w, r, &post) {
			return
		}
		if post.ID == 0 {
			writeError(w, http.StatusBadRequest, "id is required")
			return
		}
		if err := s.news.UpdatePost(r.Context(), &post); err != nil {
			writeDomainError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, post)
	case http.MethodDelete:
		id, err := strconv.ParseInt(r.URL.Query().Get("id"), 10, 64)
		if err != nil || id == 0 {
			writeError(w, http.StatusBadRequest, "id is required")
			return
		}
		if err := s.news.DeletePost(r.Context(), id); err != nil {
			writeDomainError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]bool{"success": true})
	default:
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
	}
}

// --- Admin: exports and sync ---

func (s *HTTPServer) handleExportBookings(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	var body struct {
		StartDate string `json:"start_date"`
		EndDate   string `json:"end_date"`
	}
	if !decodeJSON(w, r, &body) {
		return
	}

	start, ok := parseDateParam(w, body.StartDate, "start_date")
	if !ok {
		return
	}
	end, ok := parseDateParam(w, body.EndDate, "end_date")
	if !ok {
		return
	}
	if end.Before(start) {
		writeError(w, http.StatusBadRequest, "end_date must not be before start_date")
		return
	}

	filePath, err := s.exporter.ExportBookings(r.Context(), start, end)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "export failed")
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"file_path": filePath})
}

func (s *HTTPServer) handleExportMembers(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	filePath, err := s.exporter.ExportMembers(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, "export failed")
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"file_path": filePath})
}

func (s *HTTPServer) handleFailedSync(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	tasks, err := s.db.GetFailedSyncTasks(r.Context())
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"tasks": tasks})
}
