package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

func RegisterHealth(router gin.IRoutes) {
	router.GET("/healthz", func(c *gin.Context) {
		c.String(http.StatusOK, "ok")
	})
}
