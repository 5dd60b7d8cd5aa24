package handlers

import (
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"yamdb/internal/apperr"
	"yamdb/internal/middleware"
	"yamdb/internal/store"
	"yamdb/internal/utils"
)

// RespondError writes err as JSON. Only 5xx errors are logged; their
// details never reach the client.
func RespondError(c *gin.Context, log *zap.Logger, err error) {
	status := apperr.Status(err)
	if status >= http.StatusInternalServerError {
		middleware.LoggerFrom(c, log).Error("Request failed",
			zap.String("method", c.Request.Method),
			zap.String("path", c.FullPath()),
			zap.Error(err),
		)
	}
	c.AbortWithStatusJSON(status, apperr.Payload(err))
}

// bindJSON decodes the body into obj, writing a 400 on failure.
func bindJSON(c *gin.Context, obj any) bool {
	err := c.ShouldBindJSON(obj)
	if err == nil {
		return true
	}

	var verrs validator.ValidationErrors
	switch {
	case errors.As(err, &verrs):
		ve := &apperr.ValidationError{}
		for _, fe := range verrs {
			ve.Add(fe.Field(), fieldMessage(fe))
		}
		c.AbortWithStatusJSON(http.StatusBadRequest, ve.Fields)
	case errors.Is(err, io.EOF):
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{apperr.NonFieldErrors: []string{"Request body is empty."}})
	default:
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{apperr.NonFieldErrors: []string{"Malformed JSON: " + err.Error()}})
	}
	return false
}

func fieldMessage(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "This field is required."
	case "max":
		return fmt.Sprintf("Ensure this field has no more than %s characters.", fe.Param())
	case "email":
		return "Enter a valid email address."
	case "username":
		return "Invalid username format."
	case "slug":
		return "Enter a valid slug consisting of letters, numbers, underscores or hyphens."
	case "oneof":
		return fmt.Sprintf("Must be one of: %s.", fe.Param())
	default:
		return fmt.Sprintf("Failed on the '%s' rule.", fe.Tag())
	}
}

// pathID reads a numeric path parameter. Anything else is a 404.
func pathID(c *gin.Context, name string) (uint, bool) {
	id, ok := utils.ParseID(c.Param(name))
	if !ok {
		c.AbortWithStatusJSON(http.StatusNotFound, gin.H{"detail": "Not found."})
		return 0, false
	}
	return id, true
}

func pageFrom(c *gin.Context) store.Page {
	return store.NewPage(
		utils.StringToInt(c.Query("page"), 1),
		utils.StringToInt(c.Query("page_size"), store.DefaultPageSize),
	)
}

// Paginated is the list envelope.
type Paginated[T any] struct {
	Count    int64   `json:"count"`
	Next     *string `json:"next"`
	Previous *string `json:"previous"`
	Results  []T     `json:"results"`
}

func paginate[T any](c *gin.Context, page store.Page, total int64, results []T) Paginated[T] {
	if results == nil {
		results = []T{}
	}
	out := Paginated[T]{Count: total, Results: results}
	if int64(page.Offset()+len(results)) < total {
		next := pageURL(c, page.Number+1)
		out.Next = &next
	}
	if page.Number > 1 {
		prev := pageURL(c, page.Number-1)
		out.Previous = &prev
	}
	return out
}

func pageURL(c *gin.Context, number int) string {
	u := url.URL{
		Scheme: "http",
		Host:   c.Request.Host,
		Path:   c.Request.URL.Path,
	}
	if c.Request.TLS != nil || c.GetHeader("X-Forwarded-Proto") == "https" {
		u.Scheme = "https"
	}
	q := c.Request.URL.Query()
	if number <= 1 {
		q.Del("page")
	} else {
		q.Set("page", strconv.Itoa(number))
	}
	u.RawQuery = q.Encode()
	return u.String()
}
