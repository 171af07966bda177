package handlers

import (
	"errors"
	"log"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/01moynul/storefront-golang/internal/account"
	"github.com/01moynul/storefront-golang/internal/apperr"
	"github.com/01moynul/storefront-golang/internal/cart"
	"github.com/01moynul/storefront-golang/internal/catalog"
	"github.com/01moynul/storefront-golang/internal/events"
	"github.com/01moynul/storefront-golang/internal/pricing"
)

// Handlers struct holds all dependencies for our handlers.
type Handlers struct {
	Accounts *account.Service
	Catalog  *catalog.Service
	Cart     *cart.Service
	Hub      *events.Hub
	Rates    pricing.Rates

	UploadDir      string   // where admin image uploads are written
	BaseURL        string   // public URL prefix for uploaded files
	AllowedOrigins []string // websocket origin check
}

// respondError answers with {"error": ...} and the status for the error's
// kind. Backend causes are logged, never sent.
func respondError(c *gin.Context, err error) {
	status := apperr.Status(err)
	if status == http.StatusInternalServerError {
		log.Printf("%s %s: %v", c.Request.Method, c.FullPath(), err)
	}
	c.JSON(status, gin.H{"error": apperr.Message(err)})
}

// respondResult answers a cart mutation with the uniform Result shape.
func respondResult(c *gin.Context, okStatus int, message string, data any, err error) {
	if err != nil {
		status := apperr.Status(err)
		if status == http.StatusInternalServerError {
			log.Printf("%s %s: %v", c.Request.Method, c.FullPath(), err)
		}
		c.JSON(status, cart.Fail(err))
		return
	}
	c.JSON(okStatus, cart.Ok(message, data))
}

// paramID parses a positive integer path parameter.
func paramID(c *gin.Context, name string) (int64, error) {
	id, err := strconv.ParseInt(c.Param(name), 10, 64)
	if err != nil || id <= 0 {
		return 0, apperr.New(apperr.ErrValidation, "Invalid %s", name)
	}
	return id, nil
}

// bindError converts a gin binding failure into a validation error.
func bindError(err error) error {
	if errors.Is(err, apperr.ErrValidation) {
		return err
	}
	return apperr.New(apperr.ErrValidation, "Invalid input: %v", err)
}
