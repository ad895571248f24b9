package inventory

import (
	"time"

	"github.com/anuraga/backend/internal/domain/shared"
	"github.com/google/uuid"
)

// Direction represents the direction of a stock movement
type Direction string

const (
	// DirectionIn records stock entering inventory (restock, cancelled order)
	DirectionIn Direction = "IN"
	// DirectionOut records stock leaving inventory (checkout)
	DirectionOut Direction = "OUT"
	// DirectionAdjustment records a signed manual correction
	DirectionAdjustment Direction = "ADJUSTMENT"
)

// String returns the string representation of Direction
func (d Direction) String() string {
	return string(d)
}

// IsValid returns true if the direction is a known value
func (d Direction) IsValid() bool {
	switch d {
	case DirectionIn, DirectionOut, DirectionAdjustment:
		return true
	}
	return false
}

// LedgerEntry is one immutable record of a stock movement. Entries are only
// ever appended; the ledger is the audit trail for every change to a
// variant's stock count, but the variant aggregate remains authoritative for
// current stock reads.
type LedgerEntry struct {
	ID            uuid.UUID  `gorm:"type:uuid;primaryKey"`
	ProductID     uuid.UUID  `gorm:"type:uuid;not null;index"`
	VariantID     uuid.UUID  `gorm:"type:uuid;not null;index"`
	VariantLabel  string     `gorm:"type:varchar(100)"`
	Direction     Direction  `gorm:"type:varchar(20);not null;index"`
	Magnitude     int        `gorm:"not null"` // signed for ADJUSTMENT, positive for IN/OUT
	PreviousStock int        `gorm:"not null"`
	CurrentStock  int        `gorm:"not null"`
	Reason        string     `gorm:"type:varchar(500);not null"`
	ReferenceID   *uuid.UUID `gorm:"type:uuid;index"` // triggering order, when any
	ReferenceLine *uuid.UUID `gorm:"type:uuid;index"` // order line, for per-line idempotency
	PerformedBy   uuid.UUID  `gorm:"type:uuid;not null"`
	CreatedAt     time.Time
}

// TableName returns the table name for GORM
func (LedgerEntry) TableName() string {
	return "stock_ledger_entries"
}

// SignedDelta returns the stock change this entry represents
func (e *LedgerEntry) SignedDelta() int {
	switch e.Direction {
	case DirectionIn:
		return e.Magnitude
	case DirectionOut:
		return -e.Magnitude
	case DirectionAdjustment:
		return e.Magnitude
	}
	return 0
}

// NewLedgerEntry creates a ledger entry and verifies the stock arithmetic:
// currentStock - previousStock must equal the signed delta implied by the
// direction and magnitude.
func NewLedgerEntry(
	productID, variantID uuid.UUID,
	variantLabel string,
	direction Direction,
	magnitude, previousStock, currentStock int,
	reason string,
	performedBy uuid.UUID,
) (*LedgerEntry, error) {
	if productID == uuid.Nil || variantID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_REFERENCE", "Product and variant IDs are required")
	}
	if !direction.IsValid() {
		return nil, shared.NewDomainError("INVALID_DIRECTION", "Unknown stock movement direction")
	}
	if direction != DirectionAdjustment && magnitude < 0 {
		return nil, shared.NewDomainError("INVALID_MAGNITUDE", "Magnitude must be non-negative for IN/OUT movements")
	}
	if reason == "" {
		return nil, shared.NewDomainError("INVALID_REASON", "A reason is required for every stock movement")
	}
	if previousStock < 0 || currentStock < 0 {
		return nil, shared.NewDomainError("INVALID_STOCK", "Stock counts cannot be negative")
	}
	if performedBy == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_ACTOR", "The acting user is required")
	}

	entry := &LedgerEntry{
		ID:            uuid.New(),
		ProductID:     productID,
		VariantID:     variantID,
		VariantLabel:  variantLabel,
		Direction:     direction,
		Magnitude:     magnitude,
		PreviousStock: previousStock,
		CurrentStock:  currentStock,
		Reason:        reason,
		PerformedBy:   performedBy,
		CreatedAt:     time.Now(),
	}

	if currentStock-previousStock != entry.SignedDelta() {
		return nil, shared.NewDomainError("LEDGER_MISMATCH", "Stock delta does not match direction and magnitude")
	}

	return entry, nil
}

// WithReference attaches the triggering order and order line to the entry
func (e *LedgerEntry) WithReference(orderID uuid.UUID, lineID *uuid.UUID) *LedgerEntry {
	e.ReferenceID = &orderID
	e.ReferenceLine = lineID
	return e
}
