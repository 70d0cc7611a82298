package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/asteya/yogaflow-backend/internal/apierr"
	"github.com/asteya/yogaflow-backend/internal/types"
)

type APIError struct {
	Message string `json:"message"`
	Code    string `json:"code,omitempty"`
}

type ErrorEnvelope struct {
	Error APIError `json:"error"`
}

func RespondError(c *gin.Context, status int, code string, err error) {
	msg := "unknown error"
	if err != nil {
		msg = err.Error()
	}
	c.JSON(status, ErrorEnvelope{
		Error: APIError{
			Message: msg,
			Code:    code,
		},
	})
}

// RespondServiceError unwraps the service layer's typed errors; anything else
// is an internal failure whose details stay out of the response.
func RespondServiceError(c *gin.Context, err error) {
	var apiErr *apierr.Error
	if errors.As(err, &apiErr) {
		RespondError(c, apiErr.Status, apiErr.Code, apiErr.Err)
		return
	}
	RespondError(c, http.StatusInternalServerError, "internal_error", errors.New("internal error"))
}

func RespondOK(c *gin.Context, payload any) {
	c.JSON(http.StatusOK, payload)
}

func RespondCreated(c *gin.Context, payload any) {
	c.JSON(http.StatusCreated, payload)
}

// currentUser returns the profile the auth middleware resolved. Routes behind
// RequireAuth always have one.
func currentUser(c *gin.Context) *types.UserProfile {
	if val, ok := c.Get("user"); ok {
		if user, ok := val.(*types.UserProfile); ok {
			return user
		}
	}
	return nil
}
