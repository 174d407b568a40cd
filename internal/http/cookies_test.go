package http

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"

	"tutor-hub/internal/service"
)

func newTestCookieManager(secret string) *CookieManager {
	return NewCookieManager(secret, false, "lax", 7*24*time.Hour, 30*24*time.Hour)
}

func requestWithCookies(cookies []*http.Cookie) *gin.Context {
	gin.SetMode(gin.TestMode)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodGet, "/", nil)
	for _, ck := range cookies {
		c.Request.AddCookie(ck)
	}
	return c
}

func TestCookieSignRoundTrip(t *testing.T) {
	gin.SetMode(gin.TestMode)
	mgr := newTestCookieManager("cookie-secret")

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodPost, "/", nil)
	mgr.SetAuthCookies(c, service.TokenPair{AccessToken: "header.payload.sig", RefreshToken: "h.p.s2"})

	cookies := w.Result().Cookies()
	if len(cookies) != 2 {
		t.Fatalf("got %d cookies, want 2", len(cookies))
	}
	for _, ck := range cookies {
		if !ck.HttpOnly {
			t.Fatalf("cookie %s is not http-only", ck.Name)
		}
		if ck.Path != "/" {
			t.Fatalf("cookie %s path = %q", ck.Name, ck.Path)
		}
	}

	read := requestWithCookies(cookies)
	access, err := mgr.ReadAccessToken(read)
	if err != nil {
		t.Fatalf("ReadAccessToken: %v", err)
	}
	if access != "header.payload.sig" {
		t.Fatalf("access = %q", access)
	}
	refresh, err := mgr.ReadRefreshToken(read)
	if err != nil {
		t.Fatalf("ReadRefreshToken: %v", err)
	}
	if refresh != "h.p.s2" {
		t.Fatalf("refresh = %q", refresh)
	}
}

func TestCookieRejectsTampering(t *testing.T) {
	mgr := newTestCookieManager("cookie-secret")
	other := newTestCookieManager("another-secret")

	signed := mgr.signValue("header.payload.sig")

	cases := map[string]string{
		"flipped token":   "Xeader.payload.sig" + signed[len("header.payload.sig"):],
		"truncated sig":   signed[:len(signed)-2],
		"no signature":    "header.payload.sig",
		"foreign secret":  other.signValue("header.payload.sig"),
		"empty value":     "",
		"only separator":  ".",
		"trailing period": signed + ".",
	}
	for name, value := range cases {
		c := requestWithCookies([]*http.Cookie{{Name: accessCookieName, Value: value}})
		if _, err := mgr.ReadAccessToken(c); err == nil {
			t.Errorf("%s: tampered cookie accepted", name)
		}
	}
}

func TestCookieMissing(t *testing.T) {
	mgr := newTestCookieManager("cookie-secret")
	c := requestWithCookies(nil)
	if _, err := mgr.ReadAccessToken(c); err == nil {
		t.Fatal("missing cookie accepted")
	}
}

func TestClearAuthCookies(t *testing.T) {
	gin.SetMode(gin.TestMode)
	mgr := newTestCookieManager("cookie-secret")

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodPost, "/", nil)
	mgr.ClearAuthCookies(c)

	cookies := w.Result().Cookies()
	if len(cookies) != 2 {
		t.Fatalf("got %d cookies, want 2", len(cookies))
	}
	for _, ck := range cookies {
		if ck.Value != "" || ck.MaxAge >= 0 {
			t.Fatalf("cookie %s not cleared: value=%q maxAge=%d", ck.Name, ck.Value, ck.MaxAge)
		}
	}
}

func TestParseSameSite(t *testing.T) {
	cases := map[string]http.SameSite{
		"lax":     http.SameSiteLaxMode,
		"Strict":  http.SameSiteStrictMode,
		" none ":  http.SameSiteNoneMode,
		"":        http.SameSiteLaxMode,
		"unknown": http.SameSiteLaxMode,
	}
	for input, want := range cases {
		if got := parseSameSite(input); got != want {
			t.Errorf("parseSameSite(%q) = %v, want %v", input, got, want)
		}
	}
}
