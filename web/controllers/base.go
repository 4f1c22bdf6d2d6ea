// Package controllers holds the HTML handlers of the shop and admin servers.
package controllers

import (
	"errors"
	"mime/multipart"
	"net/http"
	"unicode"
	"unicode/utf8"

	"github.com/kataras/iris/v12"
	"github.com/kataras/iris/v12/sessions"
	"go.uber.org/zap"

	"github.com/example/goshop/internal/gateway"
	"github.com/example/goshop/internal/middleware"
	"github.com/example/goshop/internal/service"
)

const (
	genericErrorMessage = "Something went wrong, please try again."
	navKey              = "nav"
	maxUploadMemory     = 32 << 20
)

// Nav marks which navigation bar the layout shows.
func Nav(name string) iris.Handler {
	return func(ctx iris.Context) {
		ctx.Values().Set(navKey, name)
		ctx.Next()
	}
}

// render executes a view with the pending flashes and login state added.
func render(ctx iris.Context, name string, data iris.Map) {
	if data == nil {
		data = iris.Map{}
	}
	sess := sessions.Get(ctx)
	data["Errors"] = popFlashes(sess, middleware.FlashErrorKey)
	data["Successes"] = popFlashes(sess, middleware.FlashSuccessKey)
	data["Nav"] = ctx.Values().GetStringDefault(navKey, "shop")
	data["UserOnline"] = sess.GetInt64Default(middleware.UserSessionKey, 0) > 0
	data["AdminOnline"] = sess.GetInt64Default(middleware.AdminSessionKey, 0) > 0

	if err := ctx.View(name, data); err != nil {
		zap.L().Error("render view failed", zap.String("view", name), zap.Error(err))
		ctx.StopWithStatus(iris.StatusInternalServerError)
	}
}

func flashError(ctx iris.Context, msgs ...string) {
	addFlash(ctx, middleware.FlashErrorKey, msgs)
}

func flashSuccess(ctx iris.Context, msgs ...string) {
	addFlash(ctx, middleware.FlashSuccessKey, msgs)
}

func addFlash(ctx iris.Context, key string, msgs []string) {
	sess := sessions.Get(ctx)
	all := flashList(sess.PeekFlash(key))
	sess.SetFlash(key, append(all, msgs...))
}

func popFlashes(sess *sessions.Session, key string) []string {
	return flashList(sess.GetFlash(key))
}

func flashList(v interface{}) []string {
	switch m := v.(type) {
	case string:
		return []string{m}
	case []string:
		return m
	default:
		return nil
	}
}

// fail flashes err and redirects. Errors without a user-facing message are
// logged and replaced by a generic one.
func fail(ctx iris.Context, err error, redirect string) {
	var gwErr *gateway.Error
	switch {
	case service.IsUserFacing(err):
		flashError(ctx, sentence(err.Error()))
	case errors.As(err, &gwErr):
		flashError(ctx, gwErr.Message)
	default:
		zap.L().Error("request failed",
			zap.String("method", ctx.Method()),
			zap.String("path", ctx.Path()),
			zap.Error(err))
		flashError(ctx, genericErrorMessage)
	}
	ctx.Redirect(redirect, iris.StatusFound)
}

// sentence upper-cases the first letter of msg
func sentence(msg string) string {
	r, size := utf8.DecodeRuneInString(msg)
	if r == utf8.RuneError {
		return msg
	}
	return string(unicode.ToUpper(r)) + msg[size:]
}

// uploadedImages opens the files of the "image" field. The caller closes
// them with closeAll.
func uploadedImages(ctx iris.Context) ([]service.ImageUpload, []multipart.File, error) {
	req := ctx.Request()
	if err := req.ParseMultipartForm(maxUploadMemory); err != nil && !errors.Is(err, http.ErrNotMultipart) {
		return nil, nil, err
	}
	if req.MultipartForm == nil {
		return nil, nil, nil
	}
	var (
		uploads []service.ImageUpload
		files   []multipart.File
	)
	for _, fh := range req.MultipartForm.File["image"] {
		if fh.Filename == "" {
			continue
		}
		f, err := fh.Open()
		if err != nil {
			closeAll(files)
			return nil, nil, err
		}
		files = append(files, f)
		uploads = append(uploads, service.ImageUpload{Filename: fh.Filename, Content: f})
	}
	return uploads, files, nil
}

func closeAll(files []multipart.File) {
	for _, f := range files {
		f.Close()
	}
}
