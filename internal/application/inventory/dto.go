package inventory

import (
	"time"

	"github.com/anuraga/backend/internal/domain/inventory"
	"github.com/google/uuid"
)

// AdjustRequest represents a manual stock adjustment.
// For IN and OUT the magnitude is a non-negative count; for ADJUSTMENT it is
// the signed delta to apply directly.
type AdjustRequest struct {
	ProductID   uuid.UUID  `json:"product_id" binding:"required"`
	VariantID   uuid.UUID  `json:"variant_id" binding:"required"`
	Direction   string     `json:"direction" binding:"required,oneof=IN OUT ADJUSTMENT"`
	Magnitude   int        `json:"magnitude" binding:"required"`
	Reason      string     `json:"reason" binding:"required,min=1,max=500"`
	ReferenceID *uuid.UUID `json:"reference_id"`
}

// AdjustResponse reports the stock counts around an applied adjustment
type AdjustResponse struct {
	ProductID     uuid.UUID `json:"product_id"`
	VariantID     uuid.UUID `json:"variant_id"`
	PreviousStock int       `json:"previous_stock"`
	CurrentStock  int       `json:"current_stock"`
	LedgerEntryID uuid.UUID `json:"ledger_entry_id"`
}

// BulkSetItem sets one variant's stock to an absolute target count
type BulkSetItem struct {
	VariantID   uuid.UUID `json:"variant_id" binding:"required"`
	TargetStock int       `json:"target_stock" binding:"min=0"`
}

// BulkSetRequest represents an administrative mass correction
type BulkSetRequest struct {
	Items []BulkSetItem `json:"items" binding:"required,min=1"`
}

// BulkSetItemResult reports the outcome for one bulk-set item
type BulkSetItemResult struct {
	VariantID     uuid.UUID `json:"variant_id"`
	Applied       bool      `json:"applied"`
	PreviousStock int       `json:"previous_stock,omitempty"`
	CurrentStock  int       `json:"current_stock,omitempty"`
	Error         string    `json:"error,omitempty"`
}

// BulkSetResponse reports per-item outcomes of a bulk correction
type BulkSetResponse struct {
	Results []BulkSetItemResult `json:"results"`
	Applied int                 `json:"applied"`
	Skipped int                 `json:"skipped"`
}

// HistoryFilter represents filter options for ledger history queries
type HistoryFilter struct {
	ProductID *uuid.UUID `form:"product_id"`
	VariantID *uuid.UUID `form:"variant_id"`
	Direction *string    `form:"direction"`
	Page      int        `form:"page"`
	PageSize  int        `form:"page_size"`
}

// LedgerEntryResponse represents a ledger entry in API responses
type LedgerEntryResponse struct {
	ID            uuid.UUID  `json:"id"`
	ProductID     uuid.UUID  `json:"product_id"`
	VariantID     uuid.UUID  `json:"variant_id"`
	VariantLabel  string     `json:"variant_label,omitempty"`
	Direction     string     `json:"direction"`
	Magnitude     int        `json:"magnitude"`
	PreviousStock int        `json:"previous_stock"`
	CurrentStock  int        `json:"current_stock"`
	Reason        string     `json:"reason"`
	ReferenceID   *uuid.UUID `json:"reference_id,omitempty"`
	PerformedBy   uuid.UUID  `json:"performed_by"`
	CreatedAt     time.Time  `json:"created_at"`
}

// ToLedgerEntryResponse converts a ledger entry to its response representation
func ToLedgerEntryResponse(e *inventory.LedgerEntry) LedgerEntryResponse {
	return LedgerEntryResponse{
		ID:            e.ID,
		ProductID:     e.ProductID,
		VariantID:     e.VariantID,
		VariantLabel:  e.VariantLabel,
		Direction:     e.Direction.String(),
		Magnitude:     e.Magnitude,
		PreviousStock: e.PreviousStock,
		CurrentStock:  e.CurrentStock,
		Reason:        e.Reason,
		ReferenceID:   e.ReferenceID,
		PerformedBy:   e.PerformedBy,
		CreatedAt:     e.CreatedAt,
	}
}

// ToLedgerEntryResponses converts a slice of ledger entries
func ToLedgerEntryResponses(entries []inventory.LedgerEntry) []LedgerEntryResponse {
	out := make([]LedgerEntryResponse, 0, len(entries))
	for i := range entries {
		out = append(out, ToLedgerEntryResponse(&entries[i]))
	}
	return out
}
