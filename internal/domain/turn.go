package domain

import "time"

// Turn completed request/response exchange, journaled for observers.
type Turn struct {
	ID        string    `json:"id"`
	Username  string    `json:"username"`
	Intent    string    `json:"intent"`
	Coin      string    `json:"coin,omitempty"`
	Request   string    `json:"request"`
	Response  string    `json:"response"`
	CreatedAt time.Time `json:"ts"`
}

// TurnRecord bundles a turn with its journal index.
type TurnRecord struct {
	Index uint64
	Turn  Turn
}
