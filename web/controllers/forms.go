package controllers

import (
	"errors"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/kataras/iris/v12"
	"github.com/shopspring/decimal"

	"github.com/example/goshop/internal/datamodels/product"
)

var validate = validator.New()

type loginForm struct {
	Identifier string `validate:"required"`
	Password   string `validate:"required"`
}

type userSignupForm struct {
	FirstName       string `validate:"required"`
	LastName        string `validate:"required"`
	Email           string `validate:"required,email"`
	Username        string `validate:"required"`
	Phone           string `validate:"required,min=11,max=15"`
	Password        string `validate:"required"`
	ConfirmPassword string `validate:"required"`
}

type adminSignupForm struct {
	Username        string `validate:"required"`
	Email           string `validate:"required,email"`
	Phone           string `validate:"required,min=11,max=15"`
	Password        string `validate:"required"`
	ConfirmPassword string `validate:"required"`
}

type addProductForm struct {
	Name     string `validate:"required"`
	Price    string `validate:"required,numeric"`
	Category string
	Quantity string `validate:"omitempty,number"`
	Status   string `validate:"omitempty,oneof='in stock' 'out of stock'"`
}

type updateProductForm struct {
	ID       string `validate:"required,number"`
	Price    string `validate:"omitempty,numeric"`
	Category string
	Quantity string `validate:"omitempty,number"`
	Status   string `validate:"omitempty,oneof='in stock' 'out of stock'"`
}

var fieldMessages = map[string]string{
	"Identifier.required":      "You must supply your username or email or phone!",
	"Password.required":        "Password cannot be empty!",
	"ConfirmPassword.required": "Password cannot be empty!",
	"FirstName.required":       "You must supply your first name!",
	"LastName.required":        "You must supply your last name!",
	"Email.required":           "You did not type any email address!",
	"Email.email":              "You email must be correct and valid!",
	"Username.required":        "You must supply your username!",
	"Phone.required":           "You must supply your phone number!",
	"Phone.min":                "Phone number must be between 11 and 15 characters",
	"Phone.max":                "Phone number must be between 11 and 15 characters",
	"Name.required":            "Insert a name for the product",
	"Price.required":           "The product cannot be free, it's a business we are running here",
	"Price.numeric":            "Price must be a number",
	"Quantity.number":          "Quantity must be a whole number",
	"Status.oneof":             "Status must be in stock or out of stock",
	"ID.required":              "Choose a product to update",
	"ID.number":                "Choose a product to update",
}

// validateForm returns one message per failed field, nil when form is valid.
func validateForm(form interface{}) []string {
	err := validate.Struct(form)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return []string{genericErrorMessage}
	}
	msgs := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		if msg, ok := fieldMessages[fe.StructField()+"."+fe.Tag()]; ok {
			msgs = append(msgs, msg)
			continue
		}
		msgs = append(msgs, fe.Field()+" is invalid")
	}
	return msgs
}

func formValue(ctx iris.Context, name string) string {
	return strings.TrimSpace(ctx.FormValue(name))
}

func readLoginForm(ctx iris.Context) loginForm {
	return loginForm{
		Identifier: formValue(ctx, "username"),
		Password:   ctx.FormValue("password"),
	}
}

func readUserSignupForm(ctx iris.Context) userSignupForm {
	return userSignupForm{
		FirstName:       formValue(ctx, "fname"),
		LastName:        formValue(ctx, "lname"),
		Email:           formValue(ctx, "email"),
		Username:        formValue(ctx, "username"),
		Phone:           formValue(ctx, "phone"),
		Password:        ctx.FormValue("password"),
		ConfirmPassword: ctx.FormValue("cpassword"),
	}
}

func readAdminSignupForm(ctx iris.Context) adminSignupForm {
	return adminSignupForm{
		Username:        formValue(ctx, "username"),
		Email:           formValue(ctx, "email"),
		Phone:           formValue(ctx, "phone"),
		Password:        ctx.FormValue("password"),
		ConfirmPassword: ctx.FormValue("cpassword"),
	}
}

func readAddProductForm(ctx iris.Context) addProductForm {
	return addProductForm{
		Name:     formValue(ctx, "name"),
		Price:    formValue(ctx, "price"),
		Category: formValue(ctx, "category"),
		Quantity: formValue(ctx, "quantity"),
		Status:   formValue(ctx, "status"),
	}
}

func readUpdateProductForm(ctx iris.Context) updateProductForm {
	return updateProductForm{
		ID:       formValue(ctx, "id"),
		Price:    formValue(ctx, "price"),
		Category: formValue(ctx, "category"),
		Quantity: formValue(ctx, "quantity"),
		Status:   formValue(ctx, "status"),
	}
}

var errNegativePrice = errors.New("price cannot be negative")

func parsePrice(v string) (decimal.Decimal, error) {
	d, err := decimal.NewFromString(v)
	if err != nil {
		return decimal.Zero, err
	}
	if d.IsNegative() {
		return decimal.Zero, errNegativePrice
	}
	return d.Round(2), nil
}

func parseQuantity(v string) (int64, error) {
	if v == "" {
		return 0, nil
	}
	return strconv.ParseInt(v, 10, 64)
}

func statusOrDefault(v string) string {
	if v == "" {
		return product.StatusInStock
	}
	return v
}

func parseID(v string) (int64, bool) {
	id, err := strconv.ParseInt(strings.TrimSpace(v), 10, 64)
	return id, err == nil && id > 0
}
