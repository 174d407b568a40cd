package http

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"

	"tutor-hub/internal/service"
)

const (
	oauthStateCookieName = "oauth_state"
	oauthStateTTLSeconds = 600
	googleUserInfoURL    = "https://www.googleapis.com/oauth2/v2/userinfo"
)

type googleProfile struct {
	Email         string `json:"email"`
	VerifiedEmail bool   `json:"verified_email"`
	GivenName     string `json:"given_name"`
	FamilyName    string `json:"family_name"`
}

// GoogleHandler implementa el login con Google: redireccion al consentimiento
// y callback que emite el mismo par de cookies que el login por contraseña.
type GoogleHandler struct {
	logger      *zap.Logger
	authSvc     *service.AuthService
	tokenSvc    *service.TokenService
	cookies     *CookieManager
	oauth       *oauth2.Config
	frontendURL string

	fetchProfile func(ctx context.Context, code string) (googleProfile, error)
}

// NewGoogleHandler deja el flujo deshabilitado (503) si faltan credenciales.
func NewGoogleHandler(logger *zap.Logger, authSvc *service.AuthService, tokenSvc *service.TokenService, cookies *CookieManager, clientID, clientSecret, redirectURL, frontendURL string) *GoogleHandler {
	h := &GoogleHandler{
		logger:      logger,
		authSvc:     authSvc,
		tokenSvc:    tokenSvc,
		cookies:     cookies,
		frontendURL: frontendURL,
	}
	if clientID != "" && clientSecret != "" && redirectURL != "" {
		h.oauth = &oauth2.Config{
			ClientID:     clientID,
			ClientSecret: clientSecret,
			RedirectURL:  redirectURL,
			Scopes:       []string{"openid", "email", "profile"},
			Endpoint:     google.Endpoint,
		}
		h.fetchProfile = fetchGoogleProfile(h.oauth)
	}
	return h
}

// Login maneja GET /auth/google: guarda un state anti-CSRF en cookie y
// redirige al consentimiento de Google.
func (h *GoogleHandler) Login(c *gin.Context) {
	if h.oauth == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"message": "Google login not configured"})
		return
	}
	state := uuid.NewString()
	c.SetSameSite(h.cookies.sameSite)
	c.SetCookie(oauthStateCookieName, state, oauthStateTTLSeconds, "/", "", h.cookies.secure, true)
	c.Redirect(http.StatusFound, h.oauth.AuthCodeURL(state))
}

// Callback maneja GET /auth/google/callback: valida el state, canjea el code,
// resuelve la cuenta y redirige al dashboard del rol.
func (h *GoogleHandler) Callback(c *gin.Context) {
	if h.oauth == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"message": "Google login not configured"})
		return
	}

	state, err := c.Cookie(oauthStateCookieName)
	c.SetSameSite(h.cookies.sameSite)
	c.SetCookie(oauthStateCookieName, "", -1, "/", "", h.cookies.secure, true)
	if err != nil || state == "" || c.Query("state") != state {
		c.JSON(http.StatusUnauthorized, gin.H{"message": "Unauthorized"})
		return
	}

	code := c.Query("code")
	if code == "" {
		c.JSON(http.StatusUnauthorized, gin.H{"message": "Unauthorized"})
		return
	}

	profile, err := h.fetchProfile(c.Request.Context(), code)
	if err != nil {
		h.logger.Error("google profile fetch failed", zap.Error(err))
		c.JSON(http.StatusBadGateway, gin.H{"message": "Could not login with Google"})
		return
	}
	if profile.Email == "" || !profile.VerifiedEmail {
		c.JSON(http.StatusUnauthorized, gin.H{"message": "Unauthorized"})
		return
	}

	user, err := h.authSvc.LoginWithGoogle(c.Request.Context(), profile.Email, profile.GivenName, profile.FamilyName)
	if err != nil {
		h.logger.Error("google login failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Could not login with Google"})
		return
	}

	if !issueSession(c, h.logger, h.tokenSvc, h.cookies, user) {
		return
	}
	c.Redirect(http.StatusFound, h.frontendURL+"/dashboard/"+string(user.Role))
}

func fetchGoogleProfile(cfg *oauth2.Config) func(ctx context.Context, code string) (googleProfile, error) {
	return func(ctx context.Context, code string) (googleProfile, error) {
		token, err := cfg.Exchange(ctx, code)
		if err != nil {
			return googleProfile{}, err
		}
		resp, err := cfg.Client(ctx, token).Get(googleUserInfoURL)
		if err != nil {
			return googleProfile{}, err
		}
		defer resp.Body.Close()
		if resp.StatusCode != http.StatusOK {
			return googleProfile{}, fmt.Errorf("userinfo status %d", resp.StatusCode)
		}
		var profile googleProfile
		if err := json.NewDecoder(resp.Body).Decode(&profile); err != nil {
			return googleProfile{}, err
		}
		return profile, nil
	}
}
