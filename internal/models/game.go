package models

import "time"

// Game is a board game in the café catalogue, sellable and rentable.
type Game struct {
	ID          int64     `json:"id"`
	Name        string    `json:"name"`
	Category    string    `json:"category"`
	MinPlayers  int       `json:"min_players"`
	MaxPlayers  int       `json:"max_players"`
	PriceCents  int64     `json:"price_cents"`
	RentalStock int       `json:"rental_stock"`
	IsActive    bool      `json:"is_active"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// Rental tracks one copy of a game lent out to a member.
type Rental struct {
	ID           int64      `json:"id"`
	GameID       int64      `json:"game_id"`
	GameName     string     `json:"game_name"`
	MemberID     int64      `json:"member_id"`
	Status       string     `json:"status"` // out, returned, overdue
	DepositCents int64      `json:"deposit_cents"`
	RentedAt     time.Time  `json:"rented_at"`
	DueAt        time.Time  `json:"due_at"`
	ReturnedAt   *time.Time `json:"returned_at,omitempty"`
}
