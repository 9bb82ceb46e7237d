package domain

import "time"

type Registration struct {
	ID        string       `json:"id"`
	EventID   string       `json:"event"`
	UserID    string       `json:"userId"`
	User      *UserSummary `json:"user,omitempty"`
	TeamName  string       `json:"teamName"`
	CreatedAt time.Time    `json:"createdAt"`
}
