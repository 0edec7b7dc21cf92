package models

import (
	"time"

	"github.com/google/uuid"
)

// Job is one vehicle tracked through the shop, keyed by the order reference
// from the dealer management system. CurrentStatus always mirrors the status
// of the job's open history interval.
type Job struct {
	ID            uuid.UUID  `db:"id"             json:"id"`
	OrderRef      string     `db:"order_ref"      json:"order_ref"`
	OrderType     *string    `db:"order_type"     json:"order_type,omitempty"`
	CustomerName  *string    `db:"customer_name"  json:"customer_name,omitempty"`
	Plate         *string    `db:"plate"          json:"plate,omitempty"`
	Make          *string    `db:"make"           json:"make,omitempty"`
	VehicleModel  *string    `db:"vehicle_model"  json:"vehicle_model,omitempty"`
	VIN           *string    `db:"vin"            json:"vin,omitempty"`
	Advisor       *string    `db:"advisor"        json:"advisor,omitempty"`
	Description   *string    `db:"description"    json:"description,omitempty"`
	TotalAmount   *float64   `db:"total_amount"   json:"total_amount,omitempty"`
	CurrentStatus string     `db:"current_status" json:"current_status"`
	ArrivedAt     *time.Time `db:"arrived_at"     json:"arrived_at,omitempty"`
	TechnicianID  *uuid.UUID `db:"technician_id"  json:"technician_id,omitempty"`
	CreatedAt     time.Time  `db:"created_at"     json:"created_at"`
	UpdatedAt     time.Time  `db:"updated_at"     json:"updated_at"`

	// ActiveDays is derived at read time from the status history; -1 means
	// the value could not be computed for this row. Never persisted.
	ActiveDays int `db:"-" json:"active_days_in_shop"`

	// DetainedSeconds is the aggregate the list query scans alongside each
	// row so ActiveDays can be computed without loading full histories.
	DetainedSeconds int64 `db:"-" json:"-"`
}
