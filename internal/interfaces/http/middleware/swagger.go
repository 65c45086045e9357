package middleware

import (
	"net/http"
	"net/netip"
	"strings"

	"github.com/atelier/backend/internal/interfaces/http/dto"
	"github.com/gin-gonic/gin"
)

// SwaggerConfig gates the API documentation endpoint
type SwaggerConfig struct {
	Enabled     bool
	RequireAuth bool
	// AllowedIPs holds addresses or CIDR ranges; empty allows every caller
	AllowedIPs []string
}

// SwaggerProtection guards the documentation routes. A disabled endpoint
// answers 404, a caller outside AllowedIPs gets 403, and with RequireAuth the
// given auth middleware must accept the request.
func SwaggerProtection(cfg SwaggerConfig, auth gin.HandlerFunc) gin.HandlerFunc {
	allowed := parseAllowList(cfg.AllowedIPs)

	return func(c *gin.Context) {
		if !cfg.Enabled {
			c.AbortWithStatusJSON(http.StatusNotFound,
				dto.NewErrorResponse(dto.ErrCodeNotFound, "API documentation is not available"))
			return
		}
		if len(cfg.AllowedIPs) > 0 && !allowed.contains(c.ClientIP()) {
			c.AbortWithStatusJSON(http.StatusForbidden,
				dto.NewErrorResponse(dto.ErrCodeForbidden, "Access to API documentation is restricted"))
			return
		}
		if cfg.RequireAuth && auth != nil {
			auth(c)
			if c.IsAborted() {
				return
			}
		}
		c.Next()
	}
}

type allowList []netip.Prefix

// parseAllowList skips entries that are neither an address nor a CIDR range
func parseAllowList(entries []string) allowList {
	var list allowList
	for _, e := range entries {
		e = strings.TrimSpace(e)
		if strings.Contains(e, "/") {
			if p, err := netip.ParsePrefix(e); err == nil {
				list = append(list, p.Masked())
			}
			continue
		}
		if a, err := netip.ParseAddr(e); err == nil {
			list = append(list, netip.PrefixFrom(a.Unmap(), a.Unmap().BitLen()))
		}
	}
	return list
}

func (l allowList) contains(ip string) bool {
	addr, err := netip.ParseAddr(ip)
	if err != nil {
		return false
	}
	addr = addr.Unmap()
	for _, p := range l {
		if p.Contains(addr) {
			return true
		}
	}
	return false
}
