package server

import (
	"github.com/kataras/iris/v12"

	"github.com/example/goshop/internal/config"
	"github.com/example/goshop/internal/middleware"
	"github.com/example/goshop/internal/repository/mysql"
	"github.com/example/goshop/internal/service"
	webcontrollers "github.com/example/goshop/web/controllers"
)

// NewShopApp customer facing server
func NewShopApp(cfg *config.Config, deps Deps) *iris.Application {
	app := newApp(cfg, "shop", cfg.Session.Cookie)
	RegisterRoutes(app, cfg, deps)
	return app
}

// RegisterRoutes mounts the shop pages on app.
func RegisterRoutes(app *iris.Application, cfg *config.Config, deps Deps) {
	db := deps.DB

	userRepo := mysql.NewUserRepository(db)
	productRepo := mysql.NewProductRepository(db)
	cartRepo := mysql.NewCartRepository(db)
	paymentRepo := mysql.NewPaymentRepository(db)

	userSvc := service.NewUserService(userRepo)
	productSvc := service.NewProductService(productRepo, deps.Images)
	categorySvc := service.NewCategoryService(mysql.NewCategoryRepository(db))
	cartSvc := service.NewCartService(db, cartRepo, productRepo, cfg.Cart.PerUserLines)
	checkoutSvc := service.NewCheckoutService(db)
	paymentSvc := service.NewPaymentService(db, paymentRepo, userRepo, deps.Gateway, cfg.Gateway.CallbackURL)
	if deps.Locker != nil {
		paymentSvc.WithLocker(deps.Locker)
	}
	if deps.Notifier != nil {
		paymentSvc.WithNotifier(deps.Notifier)
	}
	historySvc := service.NewHistoryService(mysql.NewHistoryRepository(db))
	orderSvc := service.NewOrderService(mysql.NewOrderRepository(db), paymentRepo)

	userController := webcontrollers.NewUserController(userSvc)
	shopController := webcontrollers.NewShopController(productSvc, categorySvc, cartSvc, checkoutSvc, paymentSvc, historySvc, orderSvc)

	shop := app.Party("/", webcontrollers.Nav("shop"))
	shop.Get("/", shopController.Home)

	users := shop.Party("/user")
	users.Get("/signup", userController.ShowSignup)
	users.Post("/signup", userController.PostSignup)
	users.Get("/login", userController.ShowLogin)
	users.Post("/login", middleware.LoginRateLimit(), userController.PostLogin)
	users.Get("/logout", userController.Logout)

	authed := shop.Party("/", middleware.RequireUser("/user/login"))
	authed.Get("/cart", shopController.Cart)
	authed.Post("/cart/add", shopController.AddToCart)
	authed.Post("/cart/remove", shopController.RemoveFromCart)
	authed.Get("/checkout", shopController.ShowCheckout)
	authed.Post("/checkout", shopController.PostCheckout)
	authed.Post("/pay", shopController.Pay)
	authed.Get("/payment/initialize", shopController.InitializePayment)
	authed.Get("/payment/verify", shopController.VerifyPayment)
	authed.Get("/history", shopController.History)
	authed.Get("/orders", shopController.Orders)
}
