package app

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/a89529294/project-assembly-monorepo-sub001/internal/pkg"
)

func notFoundHandler(c *gin.Context) {
	c.JSON(http.StatusNotFound, pkg.ErrorBody(http.StatusNotFound, "not found"))
}

func methodNotAllowedHandler(c *gin.Context) {
	c.JSON(http.StatusMethodNotAllowed, pkg.ErrorBody(http.StatusMethodNotAllowed, "method not allowed"))
}
