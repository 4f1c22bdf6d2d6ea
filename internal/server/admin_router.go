package server

import (
	"github.com/kataras/iris/v12"

	"github.com/example/goshop/internal/config"
	"github.com/example/goshop/internal/middleware"
	"github.com/example/goshop/internal/repository/mysql"
	"github.com/example/goshop/internal/service"
	webcontrollers "github.com/example/goshop/web/controllers"
)

// NewAdminApp back office server. Its session cookie is distinct from the
// shop's so the two principals never share a session.
func NewAdminApp(cfg *config.Config, deps Deps) *iris.Application {
	app := newApp(cfg, "admin", cfg.Session.Cookie+"_admin")
	RegisterAdminRoutes(app, deps)
	return app
}

// RegisterAdminRoutes mounts the back office pages on app.
func RegisterAdminRoutes(app *iris.Application, deps Deps) {
	db := deps.DB

	paymentRepo := mysql.NewPaymentRepository(db)
	adminSvc := service.NewAdminService(mysql.NewAdminRepository(db))
	productSvc := service.NewProductService(mysql.NewProductRepository(db), deps.Images)
	categorySvc := service.NewCategoryService(mysql.NewCategoryRepository(db))
	orderSvc := service.NewOrderService(mysql.NewOrderRepository(db), paymentRepo)

	adminController := webcontrollers.NewAdminController(adminSvc, productSvc, categorySvc, orderSvc)

	app.Get("/", func(ctx iris.Context) {
		ctx.Redirect("/admin/home", iris.StatusFound)
	})

	admin := app.Party("/admin", webcontrollers.Nav("admin"))
	admin.Get("/signup", adminController.ShowSignup)
	admin.Post("/signup", adminController.PostSignup)
	admin.Get("/login", adminController.ShowLogin)
	admin.Post("/login", middleware.LoginRateLimit(), adminController.PostLogin)

	authed := admin.Party("/", middleware.RequireAdmin("/admin/login"))
	authed.Get("/logout", adminController.Logout)
	authed.Get("/home", adminController.Home)
	authed.Get("/addproduct", adminController.Home)
	authed.Post("/addproduct", adminController.AddProduct)
	authed.Get("/update/product", adminController.ShowUpdate)
	authed.Post("/update/product", adminController.UpdateProduct)
	authed.Post("/delete/product", adminController.DeleteProduct)
	authed.Get("/products/export", adminController.ExportProducts)
	authed.Get("/orders", adminController.Orders)
}
