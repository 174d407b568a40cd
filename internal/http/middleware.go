package http

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"tutor-hub/internal/domain"
	"tutor-hub/internal/service"
)

const authClaimsKey = "auth_claims"

// AuthMiddleware reconstruye la identidad desde la cookie de acceso y la
// guarda en el contexto. Cookie ausente, firma rota o token vencido terminan
// en 401, nunca en panico.
func AuthMiddleware(cookies *CookieManager, tokens *service.TokenService) gin.HandlerFunc {
	return func(c *gin.Context) {
		if cookies == nil || tokens == nil {
			c.JSON(http.StatusInternalServerError, gin.H{"message": "auth not configured"})
			c.Abort()
			return
		}

		token, err := cookies.ReadAccessToken(c)
		if err != nil {
			c.JSON(http.StatusUnauthorized, gin.H{"message": "Unauthorized"})
			c.Abort()
			return
		}

		claims, err := tokens.ParseAccessToken(token)
		if err != nil {
			c.JSON(http.StatusUnauthorized, gin.H{"message": "Unauthorized"})
			c.Abort()
			return
		}

		c.Set(authClaimsKey, claims)
		c.Next()
	}
}

// RequireRoles exige pertenencia exacta al conjunto de roles del endpoint.
// No hay jerarquia: admin no satisface un chequeo de tutor o student.
func RequireRoles(roles ...domain.Role) gin.HandlerFunc {
	allowed := make(map[domain.Role]struct{}, len(roles))
	for _, r := range roles {
		allowed[r] = struct{}{}
	}
	return func(c *gin.Context) {
		claims, ok := GetAuthClaims(c)
		if !ok {
			c.JSON(http.StatusUnauthorized, gin.H{"message": "Unauthorized"})
			c.Abort()
			return
		}
		if _, ok := allowed[claims.Role]; !ok {
			c.JSON(http.StatusForbidden, gin.H{"message": "Forbidden"})
			c.Abort()
			return
		}
		c.Next()
	}
}

// GetAuthClaims obtiene los claims de la sesion desde el contexto.
func GetAuthClaims(c *gin.Context) (service.Claims, bool) {
	val, ok := c.Get(authClaimsKey)
	if !ok {
		return service.Claims{}, false
	}
	claims, ok := val.(service.Claims)
	return claims, ok
}

// Throttle aplica una ventana fija por ruta y cliente antes del handler.
func Throttle(limiter service.RateLimiter, window time.Duration, max int) gin.HandlerFunc {
	return func(c *gin.Context) {
		if limiter == nil {
			c.Next()
			return
		}
		route := c.FullPath()
		if route == "" {
			route = c.Request.URL.Path
		}
		key := route + "|" + c.ClientIP()
		if !limiter.Allow(key, window, max) {
			c.JSON(http.StatusTooManyRequests, gin.H{"message": "Too many requests"})
			c.Abort()
			return
		}
		c.Next()
	}
}
