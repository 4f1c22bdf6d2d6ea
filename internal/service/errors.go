package service

import (
	"errors"

	"github.com/example/goshop/internal/auth"
)

// Business rule violations. Handlers flash err.Error() for these and a
// generic message for anything else.
var (
	ErrPasswordMismatch   = errors.New("passwords do not match")
	ErrEmailTaken         = errors.New("email taken by another user")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrUserNotFound       = errors.New("user not found")

	ErrDuplicateProduct = errors.New("product has been registered before, use the update button to change it")
	ErrProductNotFound  = errors.New("product not found")
	ErrNoImages         = errors.New("at least a picture is needed")
	ErrTooManyImages    = errors.New("maximum number of pictures is 4")
	ErrUnsupportedImage = errors.New("image format not supported")

	ErrProductInCart     = errors.New("product is already in a cart")
	ErrCartLineNotFound  = errors.New("cart item not found")
	ErrCartLineMismatch  = errors.New("cart item does not match the checkout")
	ErrPriceChanged      = errors.New("product price has changed, please review your cart")
	ErrEmptyCheckout     = errors.New("your cart is empty")
	ErrMalformedCheckout = errors.New("checkout form is malformed")

	ErrPaymentNotFound = errors.New("payment not found")
	ErrPaymentSettled  = errors.New("payment has already been settled")
	ErrPaymentBusy     = errors.New("payment is already being verified")
)

// IsUserFacing reports whether err carries a message safe to show.
func IsUserFacing(err error) bool {
	for _, target := range []error{
		auth.ErrInvalidPhone, ErrPasswordMismatch, ErrEmailTaken, ErrInvalidCredentials, ErrUserNotFound,
		ErrDuplicateProduct, ErrProductNotFound, ErrNoImages, ErrTooManyImages, ErrUnsupportedImage,
		ErrProductInCart, ErrCartLineNotFound, ErrCartLineMismatch, ErrPriceChanged,
		ErrEmptyCheckout, ErrMalformedCheckout,
		ErrPaymentNotFound, ErrPaymentSettled, ErrPaymentBusy,
	} {
		if errors.Is(err, target) {
			return true
		}
	}
	return false
}
