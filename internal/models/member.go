package models

import "time"

// Member is a café loyalty member identified by their LINE user ID.
// Members are created implicitly the first time an identity is seen,
// starting at level 1 with zero experience.
type Member struct {
	ID           int64     `json:"id"`
	LineUserID   string    `json:"line_user_id"`
	DisplayName  string    `json:"display_name"`
	Phone        string    `json:"phone"`
	Level        int       `json:"level"`
	CurrentExp   int       `json:"current_exp"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// ExpEvent is a single experience grant, kept append-only for audit.
type ExpEvent struct {
	ID        int64     `json:"id"`
	MemberID  int64     `json:"member_id"`
	Amount    int       `json:"amount"`
	Reason    string    `json:"reason"`
	CreatedAt time.Time `json:"created_at"`
}
