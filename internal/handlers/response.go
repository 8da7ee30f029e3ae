package handlers

import (
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/urbanatlas/urban-backend/internal/apierr"
)

type APIError struct {
	Message string `json:"message"`
	Code    string `json:"code,omitempty"`
}

type ErrorEnvelope struct {
	Error APIError `json:"error"`
}

// RespondError maps an error chain onto the HTTP envelope. Errors that do
// not carry an api error anywhere in the chain come out as plain 500s.
func RespondError(c *gin.Context, err error) {
	msg := "unknown error"
	if err != nil {
		msg = err.Error()
	}
	c.JSON(apierr.Status(err), ErrorEnvelope{
		Error: APIError{
			Message: msg,
			Code:    apierr.Code(err),
		},
	})
}

func RespondBadRequest(c *gin.Context, err error) {
	msg := "bad request"
	if err != nil {
		msg = err.Error()
	}
	c.JSON(http.StatusBadRequest, ErrorEnvelope{
		Error: APIError{
			Message: msg,
			Code:    "bad_request",
		},
	})
}

func RespondOK(c *gin.Context, payload any) {
	c.JSON(http.StatusOK, payload)
}

func RespondCreated(c *gin.Context, payload any) {
	c.JSON(http.StatusCreated, payload)
}

func RespondNoContent(c *gin.Context) {
	c.Status(http.StatusNoContent)
}

// pathID reads a required int64 path parameter.
func pathID(c *gin.Context, name string) (int64, error) {
	raw := c.Param(name)
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("path parameter %s must be an integer, got %q", name, raw)
	}
	return id, nil
}

// queryInt64Ptr reads an optional int64 query parameter, nil when absent.
func queryInt64Ptr(c *gin.Context, name string) (*int64, error) {
	raw := c.Query(name)
	if raw == "" {
		return nil, nil
	}
	v, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return nil, fmt.Errorf("query parameter %s must be an integer, got %q", name, raw)
	}
	return &v, nil
}

// queryBool reads an optional boolean query parameter, false when absent.
func queryBool(c *gin.Context, name string) (bool, error) {
	raw := c.Query(name)
	if raw == "" {
		return false, nil
	}
	v, err := strconv.ParseBool(raw)
	if err != nil {
		return false, fmt.Errorf("query parameter %s must be a boolean, got %q", name, raw)
	}
	return v, nil
}

// queryInt64List reads a comma-separated list query parameter.
func queryInt64List(c *gin.Context, name string) ([]int64, error) {
	raw := c.Query(name)
	if raw == "" {
		return nil, nil
	}
	parts := strings.Split(raw, ",")
	values := make([]int64, 0, len(parts))
	for _, part := range parts {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		v, err := strconv.ParseInt(part, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("query parameter %s must be a comma-separated integer list, got %q", name, raw)
		}
		values = append(values, v)
	}
	return values, nil
}
