package http

import (
	"crypto/hmac"
	"crypto/sha256"
	"crypto/subtle"
	"encoding/base64"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"tutor-hub/internal/service"
)

const (
	accessCookieName  = "access_token"
	refreshCookieName = "refresh_token"
)

var errCookieInvalid = errors.New("cookie missing or invalid")

// CookieManager emite y lee las cookies de sesion. El valor lleva una firma
// HMAC propia ademas de la firma del JWT: dos capas de integridad.
type CookieManager struct {
	secret     []byte
	secure     bool
	sameSite   http.SameSite
	accessTTL  time.Duration
	refreshTTL time.Duration
}

func NewCookieManager(secret string, secure bool, sameSiteMode string, accessTTL, refreshTTL time.Duration) *CookieManager {
	return &CookieManager{
		secret:     []byte(secret),
		secure:     secure,
		sameSite:   parseSameSite(sameSiteMode),
		accessTTL:  accessTTL,
		refreshTTL: refreshTTL,
	}
}

func parseSameSite(mode string) http.SameSite {
	switch strings.ToLower(strings.TrimSpace(mode)) {
	case "strict":
		return http.SameSiteStrictMode
	case "none":
		return http.SameSiteNoneMode
	default:
		return http.SameSiteLaxMode
	}
}

// SetAuthCookies escribe access y refresh como cookies http-only firmadas.
func (m *CookieManager) SetAuthCookies(c *gin.Context, pair service.TokenPair) {
	c.SetSameSite(m.sameSite)
	c.SetCookie(accessCookieName, m.signValue(pair.AccessToken), int(m.accessTTL.Seconds()), "/", "", m.secure, true)
	c.SetCookie(refreshCookieName, m.signValue(pair.RefreshToken), int(m.refreshTTL.Seconds()), "/", "", m.secure, true)
}

// ClearAuthCookies borra ambas cookies con los mismos atributos con que se
// emitieron; de otro modo varios navegadores no las eliminan.
func (m *CookieManager) ClearAuthCookies(c *gin.Context) {
	c.SetSameSite(m.sameSite)
	c.SetCookie(accessCookieName, "", -1, "/", "", m.secure, true)
	c.SetCookie(refreshCookieName, "", -1, "/", "", m.secure, true)
}

// ReadAccessToken devuelve el access token si la cookie existe y la firma
// del valor es valida.
func (m *CookieManager) ReadAccessToken(c *gin.Context) (string, error) {
	return m.readSigned(c, accessCookieName)
}

// ReadRefreshToken devuelve el refresh token de la cookie.
func (m *CookieManager) ReadRefreshToken(c *gin.Context) (string, error) {
	return m.readSigned(c, refreshCookieName)
}

func (m *CookieManager) readSigned(c *gin.Context, name string) (string, error) {
	value, err := c.Cookie(name)
	if err != nil || value == "" {
		return "", errCookieInvalid
	}
	token, ok := m.verifyValue(value)
	if !ok {
		return "", errCookieInvalid
	}
	return token, nil
}

// signValue firma el token con HMAC-SHA256 y adjunta la firma al final.
// El token JWT es base64url, asi que el ultimo punto separa la firma.
func (m *CookieManager) signValue(token string) string {
	mac := hmac.New(sha256.New, m.secret)
	mac.Write([]byte(token))
	sig := base64.RawURLEncoding.EncodeToString(mac.Sum(nil))
	return token + "." + sig
}

func (m *CookieManager) verifyValue(value string) (string, bool) {
	idx := strings.LastIndex(value, ".")
	if idx <= 0 || idx == len(value)-1 {
		return "", false
	}
	token, sig := value[:idx], value[idx+1:]
	mac := hmac.New(sha256.New, m.secret)
	mac.Write([]byte(token))
	expected := base64.RawURLEncoding.EncodeToString(mac.Sum(nil))
	if subtle.ConstantTimeCompare([]byte(sig), []byte(expected)) != 1 {
		return "", false
	}
	return token, true
}
