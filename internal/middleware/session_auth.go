package middleware

import (
	"github.com/kataras/iris/v12"
	"github.com/kataras/iris/v12/sessions"
)

// Session keys
const (
	UserSessionKey    = "useronline"
	AdminSessionKey   = "adminonline"
	PaymentRefKey     = "payment_ref"
	FlashErrorKey     = "error"
	FlashSuccessKey   = "success"
	principalValueKey = "principal_id"
)

// RequireUser lets the request through only when a customer is logged in.
func RequireUser(loginPath string) iris.Handler {
	return requirePrincipal(UserSessionKey, loginPath, "You need to login first")
}

// RequireAdmin lets the request through only when an admin is logged in.
func RequireAdmin(loginPath string) iris.Handler {
	return requirePrincipal(AdminSessionKey, loginPath, "You need to be logged in as an Admin")
}

func requirePrincipal(key, loginPath, msg string) iris.Handler {
	return func(ctx iris.Context) {
		sess := sessions.Get(ctx)
		if sess == nil {
			ctx.StopWithStatus(iris.StatusInternalServerError)
			return
		}
		id := sess.GetInt64Default(key, 0)
		if id <= 0 {
			sess.SetFlash(FlashErrorKey, msg)
			ctx.Redirect(loginPath, iris.StatusFound)
			return
		}
		ctx.Values().Set(principalValueKey, id)
		ctx.Next()
	}
}

// PrincipalID id stored by RequireUser or RequireAdmin, 0 if none
func PrincipalID(ctx iris.Context) int64 {
	return ctx.Values().GetInt64Default(principalValueKey, 0)
}
