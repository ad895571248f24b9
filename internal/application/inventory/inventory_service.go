package inventory

import (
	"context"
	"errors"
	"fmt"

	"github.com/anuraga/backend/internal/domain/inventory"
	"github.com/anuraga/backend/internal/domain/shared"
	"github.com/google/uuid"
)

// Service applies stock deltas to variants and writes the matching ledger
// entries. Every adjustment and its ledger record commit as one transaction.
type Service struct {
	scope      TransactionScope
	ledgerRepo inventory.LedgerRepository
}

// NewService creates a new inventory Service
func NewService(scope TransactionScope, ledgerRepo inventory.LedgerRepository) *Service {
	return &Service{
		scope:      scope,
		ledgerRepo: ledgerRepo,
	}
}

// Adjust applies a single stock movement. IN adds the magnitude, OUT
// subtracts it and fails with insufficient stock when the result would go
// negative, ADJUSTMENT adds the signed magnitude directly (manual
// corrections where the administrator knows the exact change).
func (s *Service) Adjust(ctx context.Context, actorID uuid.UUID, req AdjustRequest) (*AdjustResponse, error) {
	direction := inventory.Direction(req.Direction)
	if !direction.IsValid() {
		return nil, shared.NewDomainError("INVALID_DIRECTION", "Unknown stock movement direction")
	}
	if direction != inventory.DirectionAdjustment && req.Magnitude < 0 {
		return nil, shared.NewDomainError("INVALID_MAGNITUDE", "Magnitude must be non-negative for IN/OUT movements")
	}

	var resp *AdjustResponse
	err := s.scope.Execute(ctx, func(repos Repositories) error {
		product, variant, err := repos.Products().FindVariant(ctx, req.ProductID, req.VariantID)
		if err != nil {
			return err
		}

		delta := req.Magnitude
		if direction == inventory.DirectionOut {
			delta = -req.Magnitude
		}

		var current int
		switch {
		case delta > 0:
			current, err = repos.Products().IncrementVariantStock(ctx, variant.ID, delta)
		case delta < 0:
			var remaining int
			remaining, err = repos.Products().DecrementVariantStock(ctx, variant.ID, -delta)
			if err != nil && errors.Is(err, shared.ErrInsufficientStock) {
				return shared.NewDomainError("INSUFFICIENT_STOCK",
					fmt.Sprintf("Insufficient stock for %s (%s). Only %d available.", product.Name, variant.Label, remaining))
			}
			current = remaining
		default:
			current = variant.Stock
		}
		if err != nil {
			return err
		}

		entry, err := inventory.NewLedgerEntry(
			product.ID,
			variant.ID,
			variant.Label,
			direction,
			req.Magnitude,
			current-delta,
			current,
			req.Reason,
			actorID,
		)
		if err != nil {
			return err
		}
		if req.ReferenceID != nil {
			entry.ReferenceID = req.ReferenceID
		}

		entryID, err := repos.Ledger().Record(ctx, entry)
		if err != nil {
			return err
		}

		resp = &AdjustResponse{
			ProductID:     product.ID,
			VariantID:     variant.ID,
			PreviousStock: current - delta,
			CurrentStock:  current,
			LedgerEntryID: entryID,
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return resp, nil
}

// BulkSet applies an administrative mass correction: each item's stock is set
// to an absolute target by applying the difference as an ADJUSTMENT. Items
// referencing unknown variants are skipped and reported; each applied item's
// stock update and ledger entry commit atomically, independent of its
// siblings.
func (s *Service) BulkSet(ctx context.Context, actorID uuid.UUID, req BulkSetRequest) (*BulkSetResponse, error) {
	resp := &BulkSetResponse{Results: make([]BulkSetItemResult, 0, len(req.Items))}

	for _, item := range req.Items {
		result := BulkSetItemResult{VariantID: item.VariantID}

		if item.TargetStock < 0 {
			result.Error = "target stock cannot be negative"
			resp.Results = append(resp.Results, result)
			resp.Skipped++
			continue
		}

		err := s.scope.Execute(ctx, func(repos Repositories) error {
			product, variant, err := repos.Products().FindVariantByID(ctx, item.VariantID)
			if err != nil {
				return err
			}

			previous := variant.Stock
			delta := item.TargetStock - previous

			current := previous
			switch {
			case delta > 0:
				current, err = repos.Products().IncrementVariantStock(ctx, variant.ID, delta)
			case delta < 0:
				current, err = repos.Products().DecrementVariantStock(ctx, variant.ID, -delta)
			}
			if err != nil {
				return err
			}

			if delta != 0 {
				entry, err := inventory.NewLedgerEntry(
					product.ID,
					variant.ID,
					variant.Label,
					inventory.DirectionAdjustment,
					delta,
					previous,
					current,
					fmt.Sprintf("Bulk stock correction to %d", item.TargetStock),
					actorID,
				)
				if err != nil {
					return err
				}
				if _, err := repos.Ledger().Record(ctx, entry); err != nil {
					return err
				}
			}

			result.Applied = true
			result.PreviousStock = previous
			result.CurrentStock = current
			return nil
		})
		if err != nil {
			if errors.Is(err, shared.ErrNotFound) {
				result.Error = "variant not found"
				resp.Results = append(resp.Results, result)
				resp.Skipped++
				continue
			}
			// Concurrent sales can push the variant below the computed
			// target delta; report and continue with the remaining items.
			result.Error = err.Error()
			resp.Results = append(resp.Results, result)
			resp.Skipped++
			continue
		}

		resp.Results = append(resp.Results, result)
		resp.Applied++
	}

	return resp, nil
}

// History returns ledger entries matching the filter, newest first
func (s *Service) History(ctx context.Context, filter HistoryFilter) ([]LedgerEntryResponse, int64, error) {
	f := shared.DefaultFilter()
	if filter.Page > 0 {
		f.Page = filter.Page
	}
	if filter.PageSize > 0 {
		f.PageSize = filter.PageSize
	}
	if filter.ProductID != nil {
		f.Filters["product_id"] = *filter.ProductID
	}
	if filter.VariantID != nil {
		f.Filters["variant_id"] = *filter.VariantID
	}
	if filter.Direction != nil {
		f.Filters["direction"] = *filter.Direction
	}

	entries, total, err := s.ledgerRepo.FindHistory(ctx, f)
	if err != nil {
		return nil, 0, err
	}
	return ToLedgerEntryResponses(entries), total, nil
}
