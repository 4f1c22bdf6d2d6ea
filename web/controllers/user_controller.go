package controllers

import (
	"github.com/kataras/iris/v12"
	"github.com/kataras/iris/v12/sessions"
	"go.uber.org/zap"

	"github.com/example/goshop/internal/middleware"
	"github.com/example/goshop/internal/service"
)

// UserController customer signup, login and logout
type UserController struct {
	userService *service.UserService
}

func NewUserController(userSvc *service.UserService) *UserController {
	return &UserController{userService: userSvc}
}

func (c *UserController) ShowSignup(ctx iris.Context) {
	render(ctx, "user/signup.html", nil)
}

func (c *UserController) PostSignup(ctx iris.Context) {
	form := readUserSignupForm(ctx)
	if msgs := validateForm(form); len(msgs) > 0 {
		flashError(ctx, msgs...)
		ctx.Redirect("/user/signup", iris.StatusFound)
		return
	}

	u, err := c.userService.Signup(ctx.Request().Context(), service.SignupInput{
		FirstName:       form.FirstName,
		LastName:        form.LastName,
		Username:        form.Username,
		Email:           form.Email,
		Phone:           form.Phone,
		Password:        form.Password,
		ConfirmPassword: form.ConfirmPassword,
	})
	if err != nil {
		fail(ctx, err, "/user/signup")
		return
	}
	zap.L().Info("user signed up", zap.Int64("user_id", u.ID))
	flashSuccess(ctx, "Account created successfully, please log in")
	ctx.Redirect("/user/login", iris.StatusFound)
}

func (c *UserController) ShowLogin(ctx iris.Context) {
	render(ctx, "user/login.html", nil)
}

func (c *UserController) PostLogin(ctx iris.Context) {
	form := readLoginForm(ctx)
	if msgs := validateForm(form); len(msgs) > 0 {
		flashError(ctx, msgs...)
		ctx.Redirect("/user/login", iris.StatusFound)
		return
	}

	u, err := c.userService.Login(ctx.Request().Context(), form.Identifier, form.Password)
	if err != nil {
		fail(ctx, err, "/user/login")
		return
	}
	sessions.Get(ctx).Set(middleware.UserSessionKey, u.ID)
	flashSuccess(ctx, "Login successful")
	ctx.Redirect("/", iris.StatusFound)
}

func (c *UserController) Logout(ctx iris.Context) {
	sess := sessions.Get(ctx)
	sess.Delete(middleware.UserSessionKey)
	sess.Delete(middleware.PaymentRefKey)
	flashSuccess(ctx, "You have been logged out")
	ctx.Redirect("/user/login", iris.StatusFound)
}
