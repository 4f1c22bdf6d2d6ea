package service

import (
	"context"

	"github.com/example/goshop/internal/datamodels/order"
	"github.com/example/goshop/internal/datamodels/payment"
)

// OrderView order with its payment, if any
type OrderView struct {
	*order.Order
	Payment *payment.Payment
}

// OrderService order listings for the shop and the back office
type OrderService struct {
	repo     order.Repository
	payments payment.Repository
}

func NewOrderService(repo order.Repository, payments payment.Repository) *OrderService {
	return &OrderService{repo: repo, payments: payments}
}

// ListByUser the user's orders, newest first
func (s *OrderService) ListByUser(ctx context.Context, userID int64) ([]OrderView, error) {
	list, err := s.repo.ListByUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	return s.withPayments(ctx, list)
}

// ListRecent latest orders across all users
func (s *OrderService) ListRecent(ctx context.Context, limit int) ([]OrderView, error) {
	list, err := s.repo.ListRecent(ctx, limit)
	if err != nil {
		return nil, err
	}
	return s.withPayments(ctx, list)
}

func (s *OrderService) withPayments(ctx context.Context, list []*order.Order) ([]OrderView, error) {
	ids := make([]int64, 0, len(list))
	for _, o := range list {
		ids = append(ids, o.ID)
	}
	pays, err := s.payments.GetByOrderIDs(ctx, ids)
	if err != nil {
		return nil, err
	}
	byOrder := make(map[int64]*payment.Payment, len(pays))
	for _, p := range pays {
		byOrder[p.OrderID] = p
	}
	out := make([]OrderView, 0, len(list))
	for _, o := range list {
		out = append(out, OrderView{Order: o, Payment: byOrder[o.ID]})
	}
	return out, nil
}
