package models

import "time"

// Booking reserves tables for a party on a calendar day and time slot.
// Bookings are never deleted; they only move between statuses.
type Booking struct {
	ID             int64     `json:"id"`
	Reference      string    `json:"reference"`
	Date           time.Time `json:"date"`
	TimeSlot       string    `json:"time_slot"`
	PartySize      int       `json:"party_size"`
	TablesOccupied int       `json:"tables_occupied"`
	Status         string    `json:"status"` // confirmed, checked_in, cancelled
	ContactName    string    `json:"contact_name"`
	ContactPhone   string    `json:"contact_phone"`
	MemberID       int64     `json:"member_id,omitempty"`
	Note           string    `json:"note,omitempty"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`
	Version        int64     `json:"version"`
}

// DayConfig overrides booking capacity for one calendar date.
// Disabled blocks the date entirely, independent of the limit.
type DayConfig struct {
	Date        time.Time `json:"date"`
	TableLimit  int       `json:"table_limit"`
	Disabled    bool      `json:"disabled"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// Availability is a read-only capacity snapshot for one date. It does
// not reserve anything; creation re-checks inside a transaction.
type Availability struct {
	Date      time.Time `json:"date"`
	Limit     int       `json:"limit"`
	Booked    int       `json:"booked"`
	Available int       `json:"available"`
}
