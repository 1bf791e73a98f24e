package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

const headerAllowOrigin = "Access-Control-Allow-Origin"

// OriginGate decides which browser origins get the allow-origin header reflected back.
type OriginGate struct {
	allowed map[string]struct{}
	logger  *logrus.Logger
}

func NewOriginGate(origins []string, logger *logrus.Logger) *OriginGate {
	allowed := make(map[string]struct{}, len(origins))
	for _, o := range origins {
		allowed[o] = struct{}{}
	}
	return &OriginGate{allowed: allowed, logger: logger}
}

// CrossOriginHeader returns the headers to add to a response for a request carrying h, or nil
// when the request origin is absent or not allowed. Matching is exact and case-sensitive.
func (g *OriginGate) CrossOriginHeader(h http.Header) http.Header {
	origin := h.Get("Origin")
	if origin == "" {
		g.logger.Debug("request without origin")
		return nil
	}
	if _, ok := g.allowed[origin]; !ok {
		g.logger.WithField("origin", origin).Info("origin not allowed")
		return nil
	}
	out := http.Header{}
	out.Set(headerAllowOrigin, origin)
	g.logger.WithField("origin", origin).Debug("origin allowed")
	return out
}

func (g *OriginGate) apply(c *gin.Context) {
	for k, vs := range g.CrossOriginHeader(c.Request.Header) {
		for _, v := range vs {
			c.Header(k, v)
		}
	}
}

func (g *OriginGate) preflight(c *gin.Context) {
	if g.CrossOriginHeader(c.Request.Header) != nil {
		g.apply(c)
		c.Header("Access-Control-Allow-Methods", "POST, OPTIONS")
		c.Header("Access-Control-Allow-Headers", "Content-Type")
	}
	c.Status(http.StatusNoContent)
}
