package response

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// OK sends the plain success envelope.
func OK(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"ok": true})
}

// Data sends a 200 response with the given body as-is.
func Data(c *gin.Context, data interface{}) {
	c.JSON(http.StatusOK, data)
}

// BadRequest sends a 400 error envelope.
func BadRequest(c *gin.Context, message string) {
	c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"ok": false, "error": message})
}

// NotFound sends a 404 error envelope.
func NotFound(c *gin.Context) {
	c.AbortWithStatusJSON(http.StatusNotFound, gin.H{"ok": false, "error": "not found"})
}

// MethodNotAllowed sends a 405 error envelope.
func MethodNotAllowed(c *gin.Context) {
	c.AbortWithStatusJSON(http.StatusMethodNotAllowed, gin.H{"ok": false, "error": "method not allowed"})
}

// InternalError sends a 500 error envelope.
func InternalError(c *gin.Context, err error) {
	c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"ok": false, "error": err.Error()})
}
