package server

import (
	"net/http"
	"strings"
	"time"

	"github.com/gorilla/securecookie"
	"github.com/kataras/iris/v12"
	"github.com/kataras/iris/v12/sessions"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/example/goshop/internal/config"
	"github.com/example/goshop/internal/middleware"
	"github.com/example/goshop/internal/service"
)

// Deps infrastructure shared by both servers. Locker and Notifier may be nil.
type Deps struct {
	DB       *gorm.DB
	Gateway  service.Gateway
	Images   service.ImageStore
	Locker   service.Locker
	Notifier service.Notifier
}

// newApp builds an iris app with logging, metrics, sessions and views.
func newApp(cfg *config.Config, name, cookie string) *iris.Application {
	app := iris.New()
	app.Logger().SetLevel(irisLogLevel(cfg.Log.Level))
	app.Use(middleware.PrometheusMiddleware(name))

	registerViews(app, cfg)

	app.Use(NewSessions(&cfg.Session, cookie).Handler())

	app.Get("/metrics", iris.FromStd(promhttp.Handler()))
	app.HandleDir(cfg.Upload.URLPrefix, iris.Dir(cfg.Upload.Dir))

	app.OnAnyErrorCode(func(ctx iris.Context) {
		ctx.ViewLayout(iris.NoLayout)
		if err := ctx.View("shared/error.html", iris.Map{
			"Status":  ctx.GetStatusCode(),
			"Message": http.StatusText(ctx.GetStatusCode()),
		}); err != nil {
			zap.L().Error("render error page failed", zap.Error(err))
		}
	})
	return app
}

// NewSessions cookie sessions signed with the configured secret.
func NewSessions(cfg *config.SessionConfig, cookie string) *sessions.Sessions {
	return sessions.New(sessions.Config{
		Cookie:                      cookie,
		Expires:                     cfg.Expires,
		Encoding:                    securecookie.New([]byte(cfg.Secret), nil),
		AllowReclaim:                true,
		DisableSubdomainPersistence: true,
	})
}

func registerViews(app *iris.Application, cfg *config.Config) {
	tmpl := iris.HTML(cfg.Views.Dir, ".html").Layout("shared/layout.html")
	tmpl.Reload(cfg.Views.Reload)

	prefix := strings.TrimRight(cfg.Upload.URLPrefix, "/")
	tmpl.AddFunc("money", func(d decimal.Decimal) string {
		return d.StringFixed(2)
	})
	tmpl.AddFunc("nullMoney", func(d decimal.NullDecimal) string {
		if !d.Valid {
			return "-"
		}
		return d.Decimal.StringFixed(2)
	})
	tmpl.AddFunc("imageURL", func(filename string) string {
		return prefix + "/" + filename
	})
	tmpl.AddFunc("date", func(t time.Time) string {
		return t.Format("2006-01-02 15:04")
	})
	app.RegisterView(tmpl)
}

func irisLogLevel(level string) string {
	switch level {
	case "debug", "info", "warn", "error":
		return level
	default:
		return "info"
	}
}
