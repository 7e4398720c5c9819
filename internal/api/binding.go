package api

import (
	"errors"
	"fmt"
	"net/http"
	"reflect"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
	"github.com/go-playground/validator/v10/non-standard/validators"
	"github.com/rs/zerolog/log"

	apperrors "tournament-backend/internal/errors"
)

const (
	dateLayout      = "2006-01-02"
	localTimeLayout = "2006-01-02T15:04:05"
)

var setupValidator sync.Once

// registerValidators reports validation errors by JSON field name and adds
// the notblank tag.
func registerValidators() {
	setupValidator.Do(func() {
		v, ok := binding.Validator.Engine().(*validator.Validate)
		if !ok {
			return
		}
		v.RegisterTagNameFunc(func(f reflect.StructField) string {
			name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
			if name == "-" {
				return ""
			}
			if name == "" {
				name = f.Name
			}
			return name
		})
		_ = v.RegisterValidation("notblank", validators.NotBlank)
	})
}

func fieldMessage(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required", "notblank":
		return "must not be blank"
	case "min":
		if fe.Kind() == reflect.String {
			return fmt.Sprintf("size must be at least %s", fe.Param())
		}
		return fmt.Sprintf("must be greater than or equal to %s", fe.Param())
	case "max":
		if fe.Kind() == reflect.String {
			return fmt.Sprintf("size must be at most %s", fe.Param())
		}
		return fmt.Sprintf("must be less than or equal to %s", fe.Param())
	case "email":
		return "must be a well-formed email address"
	case "oneof":
		return fmt.Sprintf("must be one of [%s]", fe.Param())
	case "datetime":
		return fmt.Sprintf("must be a date in %s format", strings.ToUpper(fe.Param()))
	}
	return "is invalid"
}

// bind decodes the JSON body into req. Failures are returned as
// VALIDATION_ERROR with per-field messages.
func bind(c *gin.Context, req any) error {
	err := c.ShouldBindJSON(req)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) {
		fields := make(map[string]string, len(verrs))
		for _, fe := range verrs {
			fields[fe.Field()] = fieldMessage(fe)
		}
		return apperrors.Validation("Input validation failed", fields)
	}
	return apperrors.Validation("Malformed request body", nil)
}

func writeError(c *gin.Context, err error) {
	e, ok := apperrors.As(err)
	if !ok || e.Code == apperrors.CodeInternal {
		log.Error().Err(err).Str("path", c.FullPath()).Msg("unexpected error")
		e = apperrors.ErrInternal
	}
	body := gin.H{"error": e.Code, "message": e.Message}
	if len(e.Fields) > 0 {
		body["validationErrors"] = e.Fields
	}
	c.AbortWithStatusJSON(e.Code.HTTPStatus(), body)
}

func idParam(c *gin.Context, name string) (int64, error) {
	id, err := strconv.ParseInt(c.Param(name), 10, 64)
	if err != nil || id < 1 {
		return 0, apperrors.InvalidParameter(name)
	}
	return id, nil
}

func parseDate(field, s string) (time.Time, error) {
	t, err := time.Parse(dateLayout, s)
	if err != nil {
		return time.Time{}, apperrors.Validation("Input validation failed", map[string]string{field: "must be a date in YYYY-MM-DD format"})
	}
	return t, nil
}

func parseOptionalDate(field string, s *string) (*time.Time, error) {
	if s == nil {
		return nil, nil
	}
	t, err := parseDate(field, *s)
	if err != nil {
		return nil, err
	}
	return &t, nil
}

// parseDateTime accepts RFC 3339 or a zone-less local date-time read as UTC.
func parseDateTime(s string) (time.Time, bool) {
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return t.UTC(), true
	}
	if t, err := time.Parse(localTimeLayout, s); err == nil {
		return t, true
	}
	return time.Time{}, false
}

func parseOptionalDateTime(field string, s *string) (*time.Time, error) {
	if s == nil {
		return nil, nil
	}
	t, ok := parseDateTime(*s)
	if !ok {
		return nil, apperrors.Validation("Input validation failed", map[string]string{field: "must be a date-time in YYYY-MM-DDTHH:MM:SS format"})
	}
	return &t, nil
}

func queryDateTime(c *gin.Context, name string) (time.Time, error) {
	t, ok := parseDateTime(c.Query(name))
	if !ok {
		return time.Time{}, apperrors.InvalidParameter(name)
	}
	return t, nil
}

func created(c *gin.Context, body any) {
	c.JSON(http.StatusCreated, body)
}

func noContent(c *gin.Context) {
	c.Status(http.StatusNoContent)
}
