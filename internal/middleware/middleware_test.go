package middleware

import (
	"io"
	"net/http"
	"net/http/cookiejar"
	"net/http/httptest"
	"strconv"
	"testing"
	"time"

	"github.com/kataras/iris/v12"
	"github.com/kataras/iris/v12/sessions"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTokenBucket(t *testing.T) {
	start := time.Now()
	tb := NewTokenBucket(2, 1)
	tb.lastRefill = start

	assert.True(t, tb.allowAt(start))
	assert.True(t, tb.allowAt(start))
	assert.False(t, tb.allowAt(start.Add(500*time.Millisecond)))
	assert.True(t, tb.allowAt(start.Add(1100*time.Millisecond)))
	assert.False(t, tb.allowAt(start.Add(1200*time.Millisecond)))
	// refill is capped at capacity
	later := start.Add(time.Hour)
	assert.True(t, tb.allowAt(later))
	assert.True(t, tb.allowAt(later))
	assert.False(t, tb.allowAt(later))
}

func TestKeyedLimiterSeparatesKeys(t *testing.T) {
	now := time.Now()
	l := NewKeyedLimiter(1, 1)

	assert.True(t, l.allowAt("a", now))
	assert.False(t, l.allowAt("a", now))
	assert.True(t, l.allowAt("b", now))
}

func newAuthApp(t *testing.T) (*http.Client, string) {
	t.Helper()
	app := iris.New()
	sess := sessions.New(sessions.Config{Cookie: "test_session", DisableSubdomainPersistence: true})
	app.Use(sess.Handler())

	app.Get("/login-as/{id:int64}", func(ctx iris.Context) {
		id, _ := ctx.Params().GetInt64("id")
		sessions.Get(ctx).Set(UserSessionKey, id)
		ctx.StatusCode(iris.StatusNoContent)
	})
	app.Get("/private", RequireUser("/user/login"), func(ctx iris.Context) {
		ctx.WriteString(strconv.FormatInt(PrincipalID(ctx), 10))
	})
	app.Get("/admin", RequireAdmin("/admin/login"), func(ctx iris.Context) {
		ctx.WriteString("admin")
	})
	app.Get("/flash", func(ctx iris.Context) {
		ctx.WriteString(sessions.Get(ctx).GetFlashString(FlashErrorKey))
	})
	require.NoError(t, app.Build())

	srv := httptest.NewServer(app)
	t.Cleanup(srv.Close)

	jar, err := cookiejar.New(nil)
	require.NoError(t, err)
	client := &http.Client{
		Jar: jar,
		CheckRedirect: func(*http.Request, []*http.Request) error {
			return http.ErrUseLastResponse
		},
	}
	return client, srv.URL
}

func get(t *testing.T, c *http.Client, url string) (*http.Response, string) {
	t.Helper()
	resp, err := c.Get(url)
	require.NoError(t, err)
	defer resp.Body.Close()
	b, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return resp, string(b)
}

func TestRequireUser(t *testing.T) {
	c, base := newAuthApp(t)

	resp, _ := get(t, c, base+"/private")
	assert.Equal(t, http.StatusFound, resp.StatusCode)
	assert.Equal(t, "/user/login", resp.Header.Get("Location"))

	_, body := get(t, c, base+"/flash")
	assert.Equal(t, "You need to login first", body)

	resp, _ = get(t, c, base+"/login-as/7")
	assert.Equal(t, http.StatusNoContent, resp.StatusCode)

	resp, body = get(t, c, base+"/private")
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "7", body)

	// a customer session is not an admin session
	resp, _ = get(t, c, base+"/admin")
	assert.Equal(t, http.StatusFound, resp.StatusCode)
	assert.Equal(t, "/admin/login", resp.Header.Get("Location"))
}

func TestLoginRateLimitReturns429(t *testing.T) {
	app := iris.New()
	app.Post("/login", RateLimitMiddleware(NewKeyedLimiter(2, 0)), func(ctx iris.Context) {
		ctx.StatusCode(iris.StatusNoContent)
	})
	require.NoError(t, app.Build())

	codes := make([]int, 0, 3)
	for i := 0; i < 3; i++ {
		rec := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodPost, "/login", nil)
		app.ServeHTTP(rec, req)
		codes = append(codes, rec.Code)
	}
	assert.Equal(t, []int{http.StatusNoContent, http.StatusNoContent, http.StatusTooManyRequests}, codes)
}
