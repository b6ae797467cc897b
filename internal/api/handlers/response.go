package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"

	"github.com/Marga-Ghale/ora-project-tracker/internal/api/middleware"
	"github.com/Marga-Ghale/ora-project-tracker/internal/service"
	"github.com/Marga-Ghale/ora-project-tracker/internal/types"
)

var errMalformedJSON = errors.New("Invalid JSON in request body")

const (
	msgNotFound      = "Project not found"
	msgInternalError = "Internal server error"
	msgInvalidID     = "Invalid project ID"
	msgInvalidPage   = "page must be an integer greater than or equal to 1"
	msgInvalidLimit  = "limit must be an integer between 1 and 100"
)

// ============================================
// Envelope
// ============================================

func respondData(c *gin.Context, status int, data interface{}) {
	c.JSON(status, gin.H{"success": true, "data": data})
}

func respondMessage(c *gin.Context, status int, message string) {
	c.JSON(status, gin.H{"success": true, "message": message})
}

// respondError maps service and request errors onto the failure envelope.
func respondError(c *gin.Context, err error) {
	var validationErr *service.ValidationError
	var transitionErr *types.TransitionError

	switch {
	case errors.As(err, &validationErr):
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "errors": validationErr.Errors})
	case errors.As(err, &transitionErr):
		c.JSON(http.StatusBadRequest, gin.H{
			"success":            false,
			"error":              transitionErr.Error(),
			"allowedTransitions": allowedOrEmpty(transitionErr.Allowed),
		})
	case errors.Is(err, service.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"success": false, "error": msgNotFound})
	case errors.Is(err, errMalformedJSON):
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": errMalformedJSON.Error()})
	default:
		log.Printf("❌ [Project] request_id=%s %s %s failed: %v",
			middleware.GetRequestID(c.Request.Context()), c.Request.Method, c.Request.URL.Path, err)
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "error": msgInternalError})
	}
}

func allowedOrEmpty(s []types.ProjectStatus) []types.ProjectStatus {
	if s == nil {
		return []types.ProjectStatus{}
	}
	return s
}

// RouteNotFound answers unmatched routes with the JSON envelope.
func RouteNotFound(c *gin.Context) {
	c.JSON(http.StatusNotFound, gin.H{
		"success": false,
		"error":   fmt.Sprintf("Route %s %s not found", c.Request.Method, c.Request.URL.RequestURI()),
	})
}

// ============================================
// Request Decoding
// ============================================

// decodeJSON binds the request body into obj. An empty body decodes as {}.
// A value of the wrong JSON type becomes a field error; anything else that
// fails to parse is errMalformedJSON.
func decodeJSON(c *gin.Context, obj interface{}) error {
	body, err := c.GetRawData()
	if err != nil {
		return errMalformedJSON
	}
	if len(strings.TrimSpace(string(body))) == 0 {
		return nil
	}
	// The decoder stops after the first value; anything trailing it is still malformed.
	if !json.Valid(body) {
		return errMalformedJSON
	}

	if err := binding.JSON.BindBody(body, obj); err != nil {
		var typeErr *json.UnmarshalTypeError
		if errors.As(err, &typeErr) && typeErr.Field != "" {
			return service.NewValidationError(typeErr.Field, typeErr.Field+" must be a "+jsonTypeName(typeErr.Type.String()))
		}
		return errMalformedJSON
	}
	return nil
}

func jsonTypeName(goType string) string {
	switch strings.TrimPrefix(goType, "*") {
	case "string", "types.OptionalString":
		return "string"
	default:
		return "valid value"
	}
}

// parseProjectID rejects anything that is not a canonical UUID before a lookup is attempted.
func parseProjectID(c *gin.Context) (string, error) {
	id := c.Param("id")
	if len(id) != 36 {
		return "", service.NewValidationError("id", msgInvalidID)
	}
	if _, err := uuid.Parse(id); err != nil {
		return "", service.NewValidationError("id", msgInvalidID)
	}
	return id, nil
}

// queryError turns a query binding failure into field errors for page and limit.
func queryError(c *gin.Context, err error) error {
	v := &service.ValidationError{}

	var fieldErrs validator.ValidationErrors
	if errors.As(err, &fieldErrs) {
		for _, fe := range fieldErrs {
			switch fe.Field() {
			case "Page":
				v.Add("page", msgInvalidPage)
			case "Limit":
				v.Add("limit", msgInvalidLimit)
			default:
				v.Add(strings.ToLower(fe.Field()), fe.Error())
			}
		}
		return v
	}

	// Non-numeric values fail before validation runs.
	if raw, ok := c.GetQuery("page"); ok {
		if n, convErr := strconv.Atoi(raw); convErr != nil || n < 1 {
			v.Add("page", msgInvalidPage)
		}
	}
	if raw, ok := c.GetQuery("limit"); ok {
		if n, convErr := strconv.Atoi(raw); convErr != nil || n < 1 || n > 100 {
			v.Add("limit", msgInvalidLimit)
		}
	}
	if len(v.Errors) == 0 {
		return fmt.Errorf("bind query: %w", err)
	}
	return v
}
