package database

import "time"

// Direction tells inbound customer messages from bot replies.
type Direction string

const (
	DirectionInbound  Direction = "in"
	DirectionOutbound Direction = "out"
)

// Message is one transcript row.
type Message struct {
	ID            int64     `db:"id"`
	UserID        string    `db:"user_id"`
	Direction     Direction `db:"direction"`
	Body          string    `db:"body"`
	CorrelationID string    `db:"correlation_id"`
	CreatedAt     time.Time `db:"created_at"`
}
