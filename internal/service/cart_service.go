package service

import (
	"context"
	"errors"
	"strconv"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/example/goshop/internal/datamodels/cart"
	"github.com/example/goshop/internal/datamodels/product"
)

// CheckoutLine one submitted row of the checkout form
type CheckoutLine struct {
	CartID    int64
	ProductID int64
	Price     decimal.Decimal
	Quantity  int64
}

type CartService struct {
	db       *gorm.DB
	repo     cart.Repository
	products product.Repository
	// perUser scopes the "already in cart" rule to one user
	perUser bool
}

func NewCartService(db *gorm.DB, repo cart.Repository, products product.Repository, perUser bool) *CartService {
	return &CartService{db: db, repo: repo, products: products, perUser: perUser}
}

// Add puts productID in the user's cart with zero quantity and amounts.
func (s *CartService) Add(ctx context.Context, userID, productID int64) (*cart.Line, error) {
	if _, err := s.products.GetByID(ctx, productID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrProductNotFound
		}
		return nil, err
	}

	var (
		exists bool
		err    error
	)
	if s.perUser {
		exists, err = s.repo.ExistsForUserProduct(ctx, userID, productID)
	} else {
		exists, err = s.repo.ExistsForProduct(ctx, productID)
	}
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, ErrProductInCart
	}

	l := &cart.Line{
		ProductID: productID,
		UserID:    userID,
		Amount:    decimal.Zero,
		Payable:   decimal.Zero,
	}
	if err := s.repo.Create(ctx, l); err != nil {
		return nil, err
	}
	return l, nil
}

// Remove deletes the line only if it belongs to userID.
func (s *CartService) Remove(ctx context.Context, userID, lineID int64) error {
	ok, err := s.repo.Delete(ctx, lineID, userID)
	if err != nil {
		return err
	}
	if !ok {
		return ErrCartLineNotFound
	}
	return nil
}

func (s *CartService) Lines(ctx context.Context, userID int64) ([]*cart.Line, error) {
	return s.repo.ListByUser(ctx, userID)
}

// Total sum of amount x quantity over the user's lines
func (s *CartService) Total(ctx context.Context, userID int64) (decimal.Decimal, error) {
	lines, err := s.repo.ListByUser(ctx, userID)
	if err != nil {
		return decimal.Zero, err
	}
	return CartTotal(lines), nil
}

// CartTotal sum of amount x quantity, rounded to cents
func CartTotal(lines []*cart.Line) decimal.Decimal {
	total := decimal.Zero
	for _, l := range lines {
		total = total.Add(l.Amount.Mul(decimal.NewFromInt(l.Quantity)))
	}
	return total.Round(2)
}

// UpdateCheckout stores the submitted price and quantity on each line.
// A line must belong to userID and reference the submitted product, and the
// submitted price must still be the product's price.
func (s *CartService) UpdateCheckout(ctx context.Context, userID int64, lines []CheckoutLine) error {
	if len(lines) == 0 {
		return ErrEmptyCheckout
	}
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for _, in := range lines {
			if in.Quantity < 1 || in.Price.IsNegative() {
				return ErrMalformedCheckout
			}
			var l cart.Line
			err := tx.Preload("Product").
				Where("id = ? AND product_id = ? AND user_id = ?", in.CartID, in.ProductID, userID).
				First(&l).Error
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrCartLineNotFound
			}
			if err != nil {
				return err
			}
			if !l.Product.Price.Equal(in.Price) {
				return ErrPriceChanged
			}
			if err := tx.Model(&cart.Line{}).Where("id = ?", l.ID).Updates(map[string]interface{}{
				"amount":   in.Price,
				"quantity": in.Quantity,
			}).Error; err != nil {
				return err
			}
		}
		return nil
	})
}

// ParseCheckoutForm zips the cid[], pid[], price[] and qty[] form arrays.
func ParseCheckoutForm(form map[string][]string) ([]CheckoutLine, error) {
	cids, pids, prices, qtys := form["cid[]"], form["pid[]"], form["price[]"], form["qty[]"]
	n := len(cids)
	if n == 0 {
		return nil, ErrEmptyCheckout
	}
	if len(pids) != n || len(prices) != n || len(qtys) != n {
		return nil, ErrMalformedCheckout
	}
	lines := make([]CheckoutLine, 0, n)
	seen := make(map[int64]bool, n)
	for i := 0; i < n; i++ {
		cid, err1 := strconv.ParseInt(cids[i], 10, 64)
		pid, err2 := strconv.ParseInt(pids[i], 10, 64)
		qty, err3 := strconv.ParseInt(qtys[i], 10, 64)
		price, err4 := decimal.NewFromString(prices[i])
		if err := errors.Join(err1, err2, err3, err4); err != nil {
			return nil, ErrMalformedCheckout
		}
		// each cart line at most once
		if seen[cid] {
			return nil, ErrMalformedCheckout
		}
		seen[cid] = true
		lines = append(lines, CheckoutLine{CartID: cid, ProductID: pid, Price: price, Quantity: qty})
	}
	return lines, nil
}
