// Package handlers contains the gin HTTP handlers for the analysis API.
package handlers

import (
	"time"

	"github.com/gin-gonic/gin"

	"github.com/turtacn/MedReg-Intelligence/pkg/errors"
	"github.com/turtacn/MedReg-Intelligence/pkg/types/common"
)

func respondOK(c *gin.Context, status int, data interface{}) {
	c.JSON(status, common.APIResponse[interface{}]{
		Success:   true,
		Data:      data,
		Timestamp: common.Timestamp(time.Now().UTC()),
	})
}

func respondError(c *gin.Context, err error) {
	code := errors.GetCode(err)
	status := errors.HTTPStatusForCode(code)
	c.JSON(status, common.APIResponse[interface{}]{
		Success: false,
		Error: &common.ErrorDetail{
			Code:    code.String(),
			Message: err.Error(),
		},
		Timestamp: common.Timestamp(time.Now().UTC()),
	})
}

func respondValidationError(c *gin.Context, message string) {
	respondError(c, errors.New(errors.ErrCodeValidation, message))
}
