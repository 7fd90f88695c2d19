package server

import (
	"net/http"

	"github.com/Luismorlan/socialmux/utils"
	Logger "github.com/Luismorlan/socialmux/utils/log"
	"github.com/gin-gonic/gin"
)

func statusAndCode(kind error) (int, int) {
	switch kind {
	case utils.ErrValidation:
		return http.StatusBadRequest, utils.ErrorValidation
	case utils.ErrConflict:
		return http.StatusBadRequest, utils.ErrorConflict
	case utils.ErrNotFound:
		return http.StatusNotFound, utils.ErrorNotFound
	case utils.ErrAuth:
		return http.StatusBadRequest, utils.ErrorAuthFail
	case utils.ErrForbidden:
		return http.StatusForbidden, utils.ErrorForbidden
	}
	return http.StatusInternalServerError, utils.ErrorInternal
}

// WriteError is the only place where a service error becomes an http
// response. Internal errors are logged and reported without details.
func WriteError(c *gin.Context, err error) {
	status, code := statusAndCode(utils.KindOf(err))
	writeErrorStatus(c, status, code, err)
}

// writeLoginError reports an unknown email the same way as a wrong password
// status wise, the message still tells them apart.
func writeLoginError(c *gin.Context, err error) {
	if utils.KindOf(err) == utils.ErrNotFound {
		writeErrorStatus(c, http.StatusBadRequest, utils.ErrorAuthFail, err)
		return
	}
	WriteError(c, err)
}

func writeErrorStatus(c *gin.Context, status, code int, err error) {
	if status == http.StatusInternalServerError {
		Logger.Log.WithField("path", c.FullPath()).Errorf("request failed: %+v", err)
	}
	c.AbortWithStatusJSON(status, gin.H{
		"code":    code,
		"message": utils.ClientMessage(err),
	})
}

func badRequest(c *gin.Context, format string, args ...interface{}) {
	WriteError(c, utils.NewError(utils.ErrValidation, format, args...))
}
