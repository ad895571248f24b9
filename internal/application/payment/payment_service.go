package payment

import (
	"context"
	"errors"
	"fmt"

	"github.com/anuraga/backend/internal/domain/ordering"
	"github.com/anuraga/backend/internal/domain/payment"
	"github.com/anuraga/backend/internal/domain/shared"
	"github.com/anuraga/backend/internal/domain/shared/valueobject"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Service reconciles gateway payment confirmations against orders. The PAID
// transition is applied exactly once per order no matter how often the same
// confirmation is delivered.
type Service struct {
	scope          TransactionScope
	paymentRepo    payment.Repository
	orderRepo      ordering.Repository
	gateway        payment.Gateway
	idempotency    shared.IdempotencyStore
	idempotencyCfg shared.IdempotencyConfig
	eventPublisher shared.EventPublisher
	logger         *zap.Logger
}

// NewService creates a new payment Service
func NewService(
	scope TransactionScope,
	paymentRepo payment.Repository,
	orderRepo ordering.Repository,
	gateway payment.Gateway,
	idempotency shared.IdempotencyStore,
	idempotencyCfg shared.IdempotencyConfig,
	logger *zap.Logger,
) *Service {
	if idempotencyCfg.TTL <= 0 {
		idempotencyCfg.TTL = shared.DefaultIdempotencyConfig().TTL
	}
	return &Service{
		scope:          scope,
		paymentRepo:    paymentRepo,
		orderRepo:      orderRepo,
		gateway:        gateway,
		idempotency:    idempotency,
		idempotencyCfg: idempotencyCfg,
		logger:         logger,
	}
}

// SetEventPublisher sets the event publisher for domain events
func (s *Service) SetEventPublisher(publisher shared.EventPublisher) {
	s.eventPublisher = publisher
}

// CreateIntent opens a gateway payment order for an existing order and
// records the attempt in CREATED state. Repeated calls for the same order
// create fresh gateway orders; only one of them can ever reach PAID.
func (s *Service) CreateIntent(ctx context.Context, userID uuid.UUID, req CreateIntentRequest) (*IntentResponse, error) {
	order, err := s.orderRepo.FindByID(ctx, req.OrderID)
	if err != nil {
		return nil, err
	}
	if order.UserID != userID {
		return nil, shared.ErrForbidden
	}
	if order.IsPaid() {
		return nil, shared.NewDomainError("INVALID_STATE", "Order is already paid")
	}
	if order.Status == ordering.OrderStatusCancelled {
		return nil, shared.NewDomainError("INVALID_STATE", "Cannot pay a cancelled order")
	}

	gw, err := s.gateway.CreateOrder(ctx, payment.CreateGatewayOrderRequest{
		Receipt: order.ID.String(),
		Amount:  valueobject.NewMoneyINR(order.TotalAmount),
	})
	if err != nil {
		s.logger.Error("Gateway order creation failed",
			zap.String("order_id", order.ID.String()),
			zap.Error(err))
		return nil, shared.ErrGatewayUnavailable
	}

	record, err := payment.NewRecord(order.ID, gw.GatewayOrderID, order.TotalAmount, gw.Currency, gw.RawPayload)
	if err != nil {
		return nil, err
	}
	if err := s.paymentRepo.Create(ctx, record); err != nil {
		return nil, err
	}

	s.logger.Info("Payment intent created",
		zap.String("order_id", order.ID.String()),
		zap.String("gateway_order_id", gw.GatewayOrderID))

	return &IntentResponse{
		PaymentRecordID: record.ID,
		OrderID:         order.ID,
		GatewayOrderID:  gw.GatewayOrderID,
		AmountMinor:     gw.AmountMinor,
		Currency:        gw.Currency,
	}, nil
}

// Verify validates a gateway payment confirmation and applies it. On a valid
// signature the payment record and the order move to PAID in one transaction;
// an invalid signature fails the record and leaves the order untouched.
// Redelivered confirmations return success without further effect.
func (s *Service) Verify(ctx context.Context, req VerifyRequest) (*VerifyResponse, error) {
	idemKey := fmt.Sprintf("payment:verify:%s:%s", req.GatewayOrderID, req.GatewayPaymentID)

	record, err := s.paymentRepo.FindByGatewayOrderID(ctx, req.GatewayOrderID)
	if err != nil {
		return nil, err
	}

	// Fast path for redelivery: the key is only marked after a commit, so a
	// hit means this exact confirmation was fully applied before.
	if s.idempotency != nil && s.idempotencyCfg.Enabled {
		seen, err := s.idempotency.IsProcessed(ctx, idemKey)
		if err != nil {
			s.logger.Warn("Idempotency lookup failed, falling back to database state", zap.Error(err))
		} else if seen {
			return &VerifyResponse{
				OrderID:          record.OrderID,
				GatewayOrderID:   record.GatewayOrderID,
				GatewayPaymentID: req.GatewayPaymentID,
				Status:           payment.StatusPaid.String(),
				AlreadyProcessed: true,
			}, nil
		}
	}

	// Authoritative redelivery check: the database, not the cache, decides.
	if record.Status == payment.StatusPaid && record.GatewayPaymentID == req.GatewayPaymentID {
		return &VerifyResponse{
			OrderID:          record.OrderID,
			GatewayOrderID:   record.GatewayOrderID,
			GatewayPaymentID: record.GatewayPaymentID,
			Status:           payment.StatusPaid.String(),
			AlreadyProcessed: true,
		}, nil
	}

	if !s.gateway.VerifySignature(req.GatewayOrderID, req.GatewayPaymentID, req.Signature) {
		s.logger.Warn("Payment signature verification failed",
			zap.String("gateway_order_id", req.GatewayOrderID),
			zap.String("gateway_payment_id", req.GatewayPaymentID))
		s.recordFailure(ctx, record, req.GatewayPaymentID, "signature verification failed")
		return nil, shared.ErrInvalidSignature
	}

	// Snapshot the record before the transactional transition: if the unit
	// aborts after record.MarkPaid mutated it in memory, the failure write
	// below still starts from the persisted state.
	attempted := *record

	var order *ordering.Order
	err = s.scope.Execute(ctx, func(repos Repositories) error {
		order, err = repos.Orders().FindByID(ctx, record.OrderID)
		if err != nil {
			return err
		}
		if err := order.MarkPaid(req.GatewayPaymentID); err != nil {
			return err
		}
		if err := repos.Orders().MarkPaid(ctx, order); err != nil {
			return err
		}
		if err := record.MarkPaid(req.GatewayPaymentID); err != nil {
			return err
		}
		return repos.Payments().MarkPaid(ctx, record)
	})
	if err != nil {
		// A concurrent delivery of the same confirmation won the race; the
		// order is paid, so this delivery succeeds with no further effect.
		if errors.Is(err, shared.ErrInvalidState) {
			if current, ferr := s.paymentRepo.FindByGatewayOrderID(ctx, req.GatewayOrderID); ferr == nil &&
				current.Status == payment.StatusPaid && current.GatewayPaymentID == req.GatewayPaymentID {
				return &VerifyResponse{
					OrderID:          current.OrderID,
					GatewayOrderID:   current.GatewayOrderID,
					GatewayPaymentID: current.GatewayPaymentID,
					Status:           payment.StatusPaid.String(),
					AlreadyProcessed: true,
				}, nil
			}
		}
		// The transition aborted: fail the record outside the rolled-back
		// unit so the attempt leaves evidence behind.
		s.recordFailure(ctx, &attempted, req.GatewayPaymentID, err.Error())
		return nil, err
	}

	if s.idempotency != nil && s.idempotencyCfg.Enabled {
		if _, err := s.idempotency.MarkProcessed(ctx, idemKey, s.idempotencyCfg.TTL); err != nil {
			s.logger.Warn("Failed to mark payment confirmation as processed", zap.Error(err))
		}
	}

	s.publishEvents(ctx, order)

	s.logger.Info("Payment verified",
		zap.String("order_id", record.OrderID.String()),
		zap.String("gateway_payment_id", req.GatewayPaymentID))

	return &VerifyResponse{
		OrderID:          record.OrderID,
		GatewayOrderID:   record.GatewayOrderID,
		GatewayPaymentID: req.GatewayPaymentID,
		Status:           payment.StatusPaid.String(),
	}, nil
}

// recordFailure persists a FAILED record outside any transaction so the
// evidence survives. Persistence errors are logged, never propagated: the
// caller's signature error is the one the client must see.
func (s *Service) recordFailure(ctx context.Context, record *payment.Record, gatewayPaymentID, reason string) {
	if err := record.MarkFailed(gatewayPaymentID, reason); err != nil {
		s.logger.Warn("Cannot fail payment record",
			zap.String("gateway_order_id", record.GatewayOrderID),
			zap.Error(err))
		return
	}
	if err := s.paymentRepo.SaveFailure(ctx, record); err != nil {
		s.logger.Error("Failed to persist payment failure",
			zap.String("gateway_order_id", record.GatewayOrderID),
			zap.Error(err))
	}
}

// ListByOrder returns all payment attempts for one order
func (s *Service) ListByOrder(ctx context.Context, userID uuid.UUID, isAdmin bool, orderID uuid.UUID) ([]RecordResponse, error) {
	order, err := s.orderRepo.FindByID(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if !isAdmin && order.UserID != userID {
		return nil, shared.ErrForbidden
	}
	records, err := s.paymentRepo.FindByOrder(ctx, orderID)
	if err != nil {
		return nil, err
	}
	return ToRecordResponses(records), nil
}

// ListPaid returns settled payments for the admin surface, newest first
func (s *Service) ListPaid(ctx context.Context, filter ListFilter) ([]RecordResponse, int64, error) {
	f := shared.DefaultFilter()
	if filter.Page > 0 {
		f.Page = filter.Page
	}
	if filter.PageSize > 0 {
		f.PageSize = filter.PageSize
	}
	records, total, err := s.paymentRepo.FindPaid(ctx, f)
	if err != nil {
		return nil, 0, err
	}
	return ToRecordResponses(records), total, nil
}

func (s *Service) publishEvents(ctx context.Context, agg shared.AggregateRoot) {
	if s.eventPublisher == nil || agg == nil {
		return
	}
	events := agg.GetDomainEvents()
	if len(events) == 0 {
		return
	}
	_ = s.eventPublisher.Publish(ctx, events...)
	agg.ClearDomainEvents()
}
