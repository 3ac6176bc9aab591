// internal/api/handlers/respond.go
package handlers

import (
	"errors"
	"log"
	"net/http"

	"stall-market-api-server/internal/market"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// respondError maps the domain error kinds onto HTTP status codes. Unknown
// errors are logged and reported as 500 without internals leaking out.
func respondError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, market.ErrValidation):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case errors.Is(err, market.ErrInsufficientStock):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case errors.Is(err, market.ErrConflict):
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
	case errors.Is(err, market.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	default:
		log.Printf("Internal error on %s %s: %v", c.Request.Method, c.Request.URL.Path, err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
	}
}

// callerID parses the authenticated identity set by the Authenticate
// middleware into an ObjectID.
func callerID(c *gin.Context) (primitive.ObjectID, bool) {
	id, err := primitive.ObjectIDFromHex(c.GetString("user_id"))
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid identity in token"})
		return primitive.NilObjectID, false
	}
	return id, true
}

func parseHex(hex string) (primitive.ObjectID, error) {
	return primitive.ObjectIDFromHex(hex)
}

// pathID parses the ":id" route parameter into an ObjectID.
func pathID(c *gin.Context, param string) (primitive.ObjectID, bool) {
	id, err := primitive.ObjectIDFromHex(c.Param(param))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid id in path"})
		return primitive.NilObjectID, false
	}
	return id, true
}
