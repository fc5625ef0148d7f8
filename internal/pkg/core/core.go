// Package core writes uniform API responses.
package core

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/mentatproj/mentat/pkg/errorx"
	"github.com/mentatproj/mentat/pkg/logger"
)

// ErrResponse is the body returned for any failed request.
type ErrResponse struct {
	// Code is the business error code.
	Code int `json:"code"`
	// Message is the user-facing description.
	Message string `json:"message"`
	// Reference optionally points at a document describing the error.
	Reference string `json:"reference,omitempty"`
}

// WriteResponse writes either an error envelope (resolved through the
// errorx coder registry) or the success payload.
func WriteResponse(c *gin.Context, err error, data interface{}) {
	if err != nil {
		logger.Error("%#v", err)
		coder := errorx.ParseCoder(err)
		c.JSON(coder.HTTPStatus(), ErrResponse{
			Code:      coder.Code(),
			Message:   coder.String(),
			Reference: coder.Reference(),
		})
		return
	}

	c.JSON(http.StatusOK, data)
}
