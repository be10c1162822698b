package middleware

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/simp-lee/ginx"
)

// CORSConfig holds the cross-origin settings of the API.
type CORSConfig struct {
	AllowOrigins     []string
	AllowMethods     []string
	AllowHeaders     []string
	AllowCredentials bool
	MaxAge           time.Duration
}

// ResolveCORSConfig fills the gaps of a configured policy. Debug mode without
// an allow-list admits every origin without credentials; release mode
// without one admits none.
func ResolveCORSConfig(mode string, cfg CORSConfig) CORSConfig {
	if len(cfg.AllowOrigins) == 0 {
		if mode == gin.ReleaseMode {
			cfg.AllowOrigins = []string{}
		} else {
			cfg.AllowOrigins = []string{"*"}
			cfg.AllowCredentials = false
		}
	}
	if len(cfg.AllowHeaders) == 0 {
		cfg.AllowHeaders = []string{"Origin", "Content-Type", "Accept", "Authorization", requestIDHeader}
	}
	return cfg
}

// CORS handles preflight and actual cross-origin requests.
func CORS(cfg CORSConfig) gin.HandlerFunc {
	opts := []ginx.Option[ginx.CORSConfig]{
		ginx.WithAllowOrigins(cfg.AllowOrigins...),
		ginx.WithAllowHeaders(cfg.AllowHeaders...),
		ginx.WithExposeHeaders(requestIDHeader),
		ginx.WithAllowCredentials(cfg.AllowCredentials),
	}
	if len(cfg.AllowMethods) > 0 {
		opts = append(opts, ginx.WithAllowMethods(cfg.AllowMethods...))
	}
	if cfg.MaxAge > 0 {
		opts = append(opts, ginx.WithMaxAge(cfg.MaxAge))
	}
	return ginx.NewChain().Use(ginx.CORS(opts...)).Build()
}
