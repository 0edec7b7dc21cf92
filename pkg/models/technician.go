package models

import (
	"time"

	"github.com/google/uuid"
)

// Technician is referenced, never owned, by jobs. Code is the unique badge
// code used on the shop floor.
type Technician struct {
	ID        uuid.UUID `db:"id"         json:"id"`
	Code      string    `db:"code"       json:"code"`
	Name      string    `db:"name"       json:"name"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
}
