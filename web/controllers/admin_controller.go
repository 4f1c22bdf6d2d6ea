package controllers

import (
	"time"

	"github.com/kataras/iris/v12"
	"github.com/kataras/iris/v12/sessions"
	"go.uber.org/zap"

	"github.com/example/goshop/internal/middleware"
	"github.com/example/goshop/internal/service"
)

const recentOrdersLimit = 50

// AdminController back office pages
type AdminController struct {
	admins     *service.AdminService
	products   *service.ProductService
	categories *service.CategoryService
	orders     *service.OrderService
}

func NewAdminController(
	admins *service.AdminService,
	products *service.ProductService,
	categories *service.CategoryService,
	orders *service.OrderService,
) *AdminController {
	return &AdminController{admins: admins, products: products, categories: categories, orders: orders}
}

func (c *AdminController) ShowSignup(ctx iris.Context) {
	render(ctx, "admin/signup.html", nil)
}

func (c *AdminController) PostSignup(ctx iris.Context) {
	form := readAdminSignupForm(ctx)
	if msgs := validateForm(form); len(msgs) > 0 {
		flashError(ctx, msgs...)
		ctx.Redirect("/admin/signup", iris.StatusFound)
		return
	}
	a, err := c.admins.Signup(ctx.Request().Context(), service.AdminSignupInput{
		Username:        form.Username,
		Email:           form.Email,
		Phone:           form.Phone,
		Password:        form.Password,
		ConfirmPassword: form.ConfirmPassword,
	})
	if err != nil {
		fail(ctx, err, "/admin/signup")
		return
	}
	zap.L().Info("admin signed up", zap.Int64("admin_id", a.ID))
	flashSuccess(ctx, "Admin account created successfully. Please log in.")
	ctx.Redirect("/admin/login", iris.StatusFound)
}

func (c *AdminController) ShowLogin(ctx iris.Context) {
	render(ctx, "admin/login.html", nil)
}

func (c *AdminController) PostLogin(ctx iris.Context) {
	form := readLoginForm(ctx)
	if msgs := validateForm(form); len(msgs) > 0 {
		flashError(ctx, msgs...)
		ctx.Redirect("/admin/login", iris.StatusFound)
		return
	}
	a, err := c.admins.Login(ctx.Request().Context(), form.Identifier, form.Password)
	if err != nil {
		fail(ctx, err, "/admin/login")
		return
	}
	sessions.Get(ctx).Set(middleware.AdminSessionKey, a.ID)
	flashSuccess(ctx, "Admin login successful")
	ctx.Redirect("/admin/home", iris.StatusFound)
}

func (c *AdminController) Logout(ctx iris.Context) {
	sessions.Get(ctx).Delete(middleware.AdminSessionKey)
	flashSuccess(ctx, "Admin logged out successfully")
	ctx.Redirect("/admin/login", iris.StatusFound)
}

// Home product list with the add form
func (c *AdminController) Home(ctx iris.Context) {
	c.renderCatalog(ctx, "admin/home.html")
}

func (c *AdminController) ShowUpdate(ctx iris.Context) {
	c.renderCatalog(ctx, "admin/update.html")
}

func (c *AdminController) renderCatalog(ctx iris.Context, view string) {
	list, err := c.products.ListAll(ctx.Request().Context())
	if err != nil {
		fail(ctx, err, "/admin/login")
		return
	}
	cats, err := c.categories.Names(ctx.Request().Context())
	if err != nil {
		fail(ctx, err, "/admin/login")
		return
	}
	render(ctx, view, iris.Map{"Products": list, "Categories": cats})
}

func (c *AdminController) AddProduct(ctx iris.Context) {
	uploads, files, err := uploadedImages(ctx)
	if err != nil {
		fail(ctx, err, "/admin/addproduct")
		return
	}
	defer closeAll(files)

	form := readAddProductForm(ctx)
	if msgs := validateForm(form); len(msgs) > 0 {
		flashError(ctx, msgs...)
		ctx.Redirect("/admin/addproduct", iris.StatusFound)
		return
	}
	price, err := parsePrice(form.Price)
	if err != nil {
		flashError(ctx, "Price must be a positive number")
		ctx.Redirect("/admin/addproduct", iris.StatusFound)
		return
	}
	qty, err := parseQuantity(form.Quantity)
	if err != nil {
		flashError(ctx, "Quantity must be a whole number")
		ctx.Redirect("/admin/addproduct", iris.StatusFound)
		return
	}

	p, err := c.products.Add(ctx.Request().Context(), service.AddProductInput{
		Name:     form.Name,
		Price:    price,
		Category: form.Category,
		Quantity: qty,
		Status:   statusOrDefault(form.Status),
		Images:   uploads,
	})
	if err != nil {
		fail(ctx, err, "/admin/addproduct")
		return
	}
	zap.L().Info("product added", zap.Int64("product_id", p.ID), zap.String("name", p.Name))
	flashSuccess(ctx, "Product added successfully!")
	ctx.Redirect("/admin/addproduct", iris.StatusFound)
}

func (c *AdminController) UpdateProduct(ctx iris.Context) {
	uploads, files, err := uploadedImages(ctx)
	if err != nil {
		fail(ctx, err, "/admin/update/product")
		return
	}
	defer closeAll(files)

	form := readUpdateProductForm(ctx)
	if msgs := validateForm(form); len(msgs) > 0 {
		flashError(ctx, msgs...)
		ctx.Redirect("/admin/update/product", iris.StatusFound)
		return
	}
	id, _ := parseID(form.ID)
	in := service.UpdateProductInput{
		ID:       id,
		Category: form.Category,
		Status:   form.Status,
		Images:   uploads,
	}
	if form.Price != "" {
		price, err := parsePrice(form.Price)
		if err != nil {
			flashError(ctx, "Price must be a positive number")
			ctx.Redirect("/admin/update/product", iris.StatusFound)
			return
		}
		in.Price = &price
	}
	if form.Quantity != "" {
		qty, err := parseQuantity(form.Quantity)
		if err != nil {
			flashError(ctx, "Quantity must be a whole number")
			ctx.Redirect("/admin/update/product", iris.StatusFound)
			return
		}
		in.Quantity = &qty
	}

	if _, err := c.products.Update(ctx.Request().Context(), in); err != nil {
		fail(ctx, err, "/admin/update/product")
		return
	}
	flashSuccess(ctx, "Product updated successfully!")
	ctx.Redirect("/admin/addproduct", iris.StatusFound)
}

func (c *AdminController) DeleteProduct(ctx iris.Context) {
	id, ok := parseID(ctx.FormValue("id"))
	if !ok {
		fail(ctx, service.ErrProductNotFound, "/admin/home")
		return
	}
	if err := c.products.Delete(ctx.Request().Context(), id); err != nil {
		fail(ctx, err, "/admin/home")
		return
	}
	flashSuccess(ctx, "Product deleted successfully")
	ctx.Redirect("/admin/home", iris.StatusFound)
}

// ExportProducts downloads the catalog as an xlsx workbook.
func (c *AdminController) ExportProducts(ctx iris.Context) {
	name := "products_" + time.Now().Format("20060102_150405") + ".xlsx"
	ctx.ContentType("application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	ctx.Header("Content-Disposition", `attachment; filename="`+name+`"`)
	if err := c.products.ExportXLSX(ctx.Request().Context(), ctx.ResponseWriter()); err != nil {
		zap.L().Error("export products failed", zap.Error(err))
		ctx.StopWithStatus(iris.StatusInternalServerError)
	}
}

func (c *AdminController) Orders(ctx iris.Context) {
	views, err := c.orders.ListRecent(ctx.Request().Context(), recentOrdersLimit)
	if err != nil {
		fail(ctx, err, "/admin/home")
		return
	}
	render(ctx, "admin/orders.html", iris.Map{"Orders": views})
}
