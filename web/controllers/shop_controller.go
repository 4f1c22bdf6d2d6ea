package controllers

import (
	"github.com/kataras/iris/v12"
	"github.com/kataras/iris/v12/sessions"
	"github.com/shopspring/decimal"

	"github.com/example/goshop/internal/datamodels/cart"
	"github.com/example/goshop/internal/datamodels/payment"
	"github.com/example/goshop/internal/middleware"
	"github.com/example/goshop/internal/service"
)

// ShopController catalog, cart, checkout and payment pages
type ShopController struct {
	products   *service.ProductService
	categories *service.CategoryService
	cart       *service.CartService
	checkout   *service.CheckoutService
	payments   *service.PaymentService
	history    *service.HistoryService
	orders     *service.OrderService
}

func NewShopController(
	products *service.ProductService,
	categories *service.CategoryService,
	cartSvc *service.CartService,
	checkout *service.CheckoutService,
	payments *service.PaymentService,
	history *service.HistoryService,
	orders *service.OrderService,
) *ShopController {
	return &ShopController{
		products:   products,
		categories: categories,
		cart:       cartSvc,
		checkout:   checkout,
		payments:   payments,
		history:    history,
		orders:     orders,
	}
}

func (c *ShopController) Home(ctx iris.Context) {
	list, err := c.products.ListAll(ctx.Request().Context())
	if err != nil {
		fail(ctx, err, "/user/login")
		return
	}
	cats, err := c.categories.Names(ctx.Request().Context())
	if err != nil {
		fail(ctx, err, "/user/login")
		return
	}
	render(ctx, "home/index.html", iris.Map{"Products": list, "Categories": cats})
}

func (c *ShopController) Cart(ctx iris.Context) {
	lines, err := c.cart.Lines(ctx.Request().Context(), middleware.PrincipalID(ctx))
	if err != nil {
		fail(ctx, err, "/")
		return
	}
	render(ctx, "cart/index.html", iris.Map{"Lines": lines})
}

func (c *ShopController) AddToCart(ctx iris.Context) {
	pid, ok := parseID(ctx.FormValue("product_id"))
	if !ok {
		fail(ctx, service.ErrProductNotFound, "/")
		return
	}
	if _, err := c.cart.Add(ctx.Request().Context(), middleware.PrincipalID(ctx), pid); err != nil {
		fail(ctx, err, "/")
		return
	}
	flashSuccess(ctx, "Product added to cart")
	ctx.Redirect("/cart", iris.StatusFound)
}

func (c *ShopController) RemoveFromCart(ctx iris.Context) {
	id, ok := parseID(ctx.FormValue("id"))
	if !ok {
		fail(ctx, service.ErrCartLineNotFound, "/cart")
		return
	}
	if err := c.cart.Remove(ctx.Request().Context(), middleware.PrincipalID(ctx), id); err != nil {
		fail(ctx, err, "/cart")
		return
	}
	flashSuccess(ctx, "Item removed from cart")
	ctx.Redirect("/cart", iris.StatusFound)
}

// checkoutRow cart line with its line payable
type checkoutRow struct {
	*cart.Line
	Payable decimal.Decimal
}

func (c *ShopController) ShowCheckout(ctx iris.Context) {
	lines, err := c.cart.Lines(ctx.Request().Context(), middleware.PrincipalID(ctx))
	if err != nil {
		fail(ctx, err, "/cart")
		return
	}
	rows := make([]checkoutRow, 0, len(lines))
	ready := len(lines) > 0
	for _, l := range lines {
		rows = append(rows, checkoutRow{Line: l, Payable: l.Amount.Mul(decimal.NewFromInt(l.Quantity)).Round(2)})
		if l.Quantity < 1 {
			ready = false
		}
	}
	render(ctx, "cart/checkout.html", iris.Map{
		"Rows":  rows,
		"Total": service.CartTotal(lines),
		"Ready": ready,
	})
}

func (c *ShopController) PostCheckout(ctx iris.Context) {
	lines, err := service.ParseCheckoutForm(ctx.FormValues())
	if err != nil {
		fail(ctx, err, "/checkout")
		return
	}
	if err := c.cart.UpdateCheckout(ctx.Request().Context(), middleware.PrincipalID(ctx), lines); err != nil {
		fail(ctx, err, "/checkout")
		return
	}
	ctx.Redirect("/checkout", iris.StatusFound)
}

func (c *ShopController) Pay(ctx iris.Context) {
	lines, err := service.ParsePayForm(ctx.FormValues())
	if err != nil {
		fail(ctx, err, "/checkout")
		return
	}
	res, err := c.checkout.Pay(ctx.Request().Context(), middleware.PrincipalID(ctx), lines)
	if err != nil {
		fail(ctx, err, "/checkout")
		return
	}
	sessions.Get(ctx).Set(middleware.PaymentRefKey, res.Payment.Reference)
	ctx.Redirect("/payment/initialize", iris.StatusFound)
}

// InitializePayment sends the browser to the gateway's checkout page.
func (c *ShopController) InitializePayment(ctx iris.Context) {
	ref := sessions.Get(ctx).GetString(middleware.PaymentRefKey)
	url, err := c.payments.Initialize(ctx.Request().Context(), middleware.PrincipalID(ctx), ref)
	if err != nil {
		fail(ctx, err, "/checkout")
		return
	}
	ctx.Redirect(url, iris.StatusFound)
}

// VerifyPayment gateway callback. The reference the gateway appends to the
// callback URL wins over the one kept in the session.
func (c *ShopController) VerifyPayment(ctx iris.Context) {
	sess := sessions.Get(ctx)
	ref := ctx.URLParam("reference")
	if ref == "" {
		ref = sess.GetString(middleware.PaymentRefKey)
	}
	p, err := c.payments.Verify(ctx.Request().Context(), middleware.PrincipalID(ctx), ref)
	if err != nil {
		fail(ctx, err, "/")
		return
	}
	if sess.GetString(middleware.PaymentRefKey) == ref {
		sess.Delete(middleware.PaymentRefKey)
	}
	if p.Status == payment.StatusPaid {
		flashSuccess(ctx, "Payment successful, thank you for your order")
	} else {
		flashError(ctx, "Payment was not successful, your cart has been cleared")
	}
	ctx.Redirect("/", iris.StatusFound)
}

func (c *ShopController) History(ctx iris.Context) {
	entries, err := c.history.List(ctx.Request().Context(), middleware.PrincipalID(ctx))
	if err != nil {
		fail(ctx, err, "/")
		return
	}
	render(ctx, "history/index.html", iris.Map{"Entries": entries})
}

func (c *ShopController) Orders(ctx iris.Context) {
	views, err := c.orders.ListByUser(ctx.Request().Context(), middleware.PrincipalID(ctx))
	if err != nil {
		fail(ctx, err, "/")
		return
	}
	render(ctx, "orders/index.html", iris.Map{"Orders": views})
}
