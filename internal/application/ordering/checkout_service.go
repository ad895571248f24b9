package ordering

import (
	"context"
	"errors"
	"fmt"

	"github.com/anuraga/backend/internal/domain/cart"
	"github.com/anuraga/backend/internal/domain/catalog"
	"github.com/anuraga/backend/internal/domain/inventory"
	"github.com/anuraga/backend/internal/domain/ordering"
	"github.com/anuraga/backend/internal/domain/shared"
	"github.com/anuraga/backend/internal/domain/shared/valueobject"
	"github.com/google/uuid"
)

// CheckoutService turns a cart into a committed order, reserves stock, writes
// the matching ledger entries, and manages the order lifecycle afterwards.
type CheckoutService struct {
	scope          TransactionScope
	orderRepo      ordering.Repository
	cartRepo       cart.Repository
	productRepo    catalog.ProductRepository
	eventPublisher shared.EventPublisher
}

// NewCheckoutService creates a new CheckoutService
func NewCheckoutService(
	scope TransactionScope,
	orderRepo ordering.Repository,
	cartRepo cart.Repository,
	productRepo catalog.ProductRepository,
) *CheckoutService {
	return &CheckoutService{
		scope:       scope,
		orderRepo:   orderRepo,
		cartRepo:    cartRepo,
		productRepo: productRepo,
	}
}

// SetEventPublisher sets the event publisher for domain events
func (s *CheckoutService) SetEventPublisher(publisher shared.EventPublisher) {
	s.eventPublisher = publisher
}

func (s *CheckoutService) publishEvents(ctx context.Context, agg shared.AggregateRoot) {
	if s.eventPublisher == nil {
		return
	}
	events := agg.GetDomainEvents()
	if len(events) == 0 {
		return
	}
	// Publish failures are logged by the bus, never propagated to the caller.
	_ = s.eventPublisher.Publish(ctx, events...)
	agg.ClearDomainEvents()
}

// Checkout converts the user's cart into a persisted order. The order insert,
// all stock decrements with their ledger entries, and the cart clear commit as
// one transaction: a failed stock decrement rolls back everything, so no order
// ever exists with stock it did not reserve.
func (s *CheckoutService) Checkout(ctx context.Context, userID uuid.UUID, req CheckoutRequest) (*OrderResponse, error) {
	userCart, err := s.cartRepo.FindByUser(ctx, userID)
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			return nil, shared.ErrEmptyCart
		}
		return nil, err
	}
	if userCart.IsEmpty() {
		return nil, shared.ErrEmptyCart
	}

	address, err := valueobject.NewShippingAddress(
		req.ShippingAddress.Name,
		req.ShippingAddress.Phone,
		req.ShippingAddress.AddressLine1,
		req.ShippingAddress.City,
		req.ShippingAddress.State,
		req.ShippingAddress.Pincode,
	)
	if err != nil {
		return nil, shared.NewDomainError("INVALID_ADDRESS", err.Error())
	}

	method := ordering.PaymentMethod(req.PaymentMethod)
	if !method.IsValid() {
		return nil, shared.NewDomainError("INVALID_PAYMENT_METHOD", "Unknown payment method")
	}

	// Pre-validate every line against the live variant before creating
	// anything. This is advisory: the transactional decrement below is the
	// authoritative guard under concurrency.
	type pricedLine struct {
		line         ordering.OrderLine
		productName  string
		variantLabel string
	}
	priced := make([]pricedLine, 0, len(userCart.Lines))
	for i := range userCart.Lines {
		cl := &userCart.Lines[i]

		product, variant, err := s.productRepo.FindVariant(ctx, cl.ProductID, cl.VariantID)
		if err != nil {
			return nil, err
		}

		quantity := cl.Quantity
		if product.IsCombo {
			quantity = 1
		}
		if !variant.HasStock(quantity) {
			return nil, insufficientStock(product.Name, variant.Label, variant.Stock)
		}

		line, err := ordering.NewOrderLine(uuid.Nil, cl.ProductID, cl.VariantID, product.Name, variant.Label, cl.Price, quantity)
		if err != nil {
			return nil, err
		}
		priced = append(priced, pricedLine{line: *line, productName: product.Name, variantLabel: variant.Label})
	}

	lines := make([]ordering.OrderLine, 0, len(priced))
	for i := range priced {
		lines = append(lines, priced[i].line)
	}

	order, err := ordering.NewOrder(userID, lines, address, method)
	if err != nil {
		return nil, err
	}

	err = s.scope.Execute(ctx, func(repos Repositories) error {
		if err := repos.Orders().Create(ctx, order); err != nil {
			return err
		}

		for i := range order.Lines {
			line := &order.Lines[i]

			remaining, err := repos.Products().DecrementVariantStock(ctx, line.VariantID, line.Quantity)
			if err != nil {
				if errors.Is(err, shared.ErrInsufficientStock) {
					return insufficientStock(priced[i].productName, priced[i].variantLabel, remaining)
				}
				return err
			}

			entry, err := inventory.NewLedgerEntry(
				line.ProductID,
				line.VariantID,
				line.VariantLabel,
				inventory.DirectionOut,
				line.Quantity,
				remaining+line.Quantity,
				remaining,
				fmt.Sprintf("Order #%s", order.ID),
				userID,
			)
			if err != nil {
				return err
			}
			entry.WithReference(order.ID, &line.ID)

			if _, err := repos.Ledger().Record(ctx, entry); err != nil {
				return err
			}
		}

		return repos.Carts().ClearByUser(ctx, userID)
	})
	if err != nil {
		return nil, err
	}

	s.publishEvents(ctx, order)

	resp := ToOrderResponse(order)
	return &resp, nil
}

// GetByID returns an order visible to the requesting user. Admins can read
// any order; other users only their own.
func (s *CheckoutService) GetByID(ctx context.Context, orderID, userID uuid.UUID, isAdmin bool) (*OrderResponse, error) {
	order, err := s.orderRepo.FindByID(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if !isAdmin && order.UserID != userID {
		return nil, shared.ErrForbidden
	}
	resp := ToOrderResponse(order)
	return &resp, nil
}

// ListMine returns the requesting user's orders, newest first
func (s *CheckoutService) ListMine(ctx context.Context, userID uuid.UUID, filter ListFilter) ([]OrderResponse, int64, error) {
	orders, total, err := s.orderRepo.FindByUser(ctx, userID, toDomainFilter(filter))
	if err != nil {
		return nil, 0, err
	}
	return ToOrderResponses(orders), total, nil
}

// ListAll returns all orders for the admin surface
func (s *CheckoutService) ListAll(ctx context.Context, filter ListFilter) ([]OrderResponse, int64, error) {
	orders, total, err := s.orderRepo.FindAll(ctx, toDomainFilter(filter))
	if err != nil {
		return nil, 0, err
	}
	return ToOrderResponses(orders), total, nil
}

// UpdateStatus moves an order along its status machine (admin operation)
func (s *CheckoutService) UpdateStatus(ctx context.Context, orderID uuid.UUID, req UpdateStatusRequest) (*OrderResponse, error) {
	order, err := s.orderRepo.FindByID(ctx, orderID)
	if err != nil {
		return nil, err
	}

	if err := order.TransitionTo(ordering.OrderStatus(req.Status), req.Note); err != nil {
		return nil, err
	}
	if err := s.orderRepo.Save(ctx, order); err != nil {
		return nil, err
	}

	resp := ToOrderResponse(order)
	return &resp, nil
}

// Cancel cancels an order and restores every line's stock. All restocks and
// the CANCELLED save commit as one transaction: the save's version guard
// rejects the commit if the order moved on (say, an admin shipped it) after
// the cancellability check, and the rollback takes the restocks with it.
// Restocks stay keyed by (order, line) through the ledger, so a line restored
// by an earlier interrupted attempt is never restored twice.
func (s *CheckoutService) Cancel(ctx context.Context, orderID, userID uuid.UUID, isAdmin bool, req CancelOrderRequest) (*OrderResponse, error) {
	order, err := s.orderRepo.FindByID(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if !isAdmin && order.UserID != userID {
		return nil, shared.ErrForbidden
	}
	if !order.CanCancel() {
		return nil, shared.NewDomainError("INVALID_STATE", "Only pending or confirmed orders can be cancelled")
	}

	reason := fmt.Sprintf("Restock for cancelled order #%s", order.ID)
	err = s.scope.Execute(ctx, func(repos Repositories) error {
		for i := range order.Lines {
			line := &order.Lines[i]

			restored, err := repos.Ledger().ExistsForReference(ctx, order.ID, line.ID, inventory.DirectionIn)
			if err != nil {
				return err
			}
			if restored {
				// A previous cancel attempt already restocked this line.
				continue
			}

			current, err := repos.Products().IncrementVariantStock(ctx, line.VariantID, line.Quantity)
			if err != nil {
				return err
			}

			entry, err := inventory.NewLedgerEntry(
				line.ProductID,
				line.VariantID,
				line.VariantLabel,
				inventory.DirectionIn,
				line.Quantity,
				current-line.Quantity,
				current,
				reason,
				userID,
			)
			if err != nil {
				return err
			}
			entry.WithReference(order.ID, &line.ID)

			if _, err := repos.Ledger().Record(ctx, entry); err != nil {
				return err
			}
		}

		if err := order.Cancel(req.Reason); err != nil {
			return err
		}
		return repos.Orders().Save(ctx, order)
	})
	if err != nil {
		return nil, err
	}

	s.publishEvents(ctx, order)

	resp := ToOrderResponse(order)
	return &resp, nil
}

func toDomainFilter(filter ListFilter) shared.Filter {
	f := shared.DefaultFilter()
	if filter.Page > 0 {
		f.Page = filter.Page
	}
	if filter.PageSize > 0 {
		f.PageSize = filter.PageSize
	}
	if filter.Status != nil {
		f.Filters["status"] = string(*filter.Status)
	}
	if filter.PaymentStatus != nil {
		f.Filters["payment_status"] = string(*filter.PaymentStatus)
	}
	return f
}

func insufficientStock(productName, variantLabel string, available int) *shared.DomainError {
	return shared.NewDomainError("INSUFFICIENT_STOCK",
		fmt.Sprintf("Insufficient stock for %s (%s). Only %d available.", productName, variantLabel, available))
}
