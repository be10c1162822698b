package app

import "github.com/gin-gonic/gin"

// Module is a self-registering API module mounted under /api/v1.
type Module interface {
	RegisterRoutes(api *gin.RouterGroup)
}
