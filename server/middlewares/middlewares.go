package middlewares

import (
	"net/http"
	"strings"

	"github.com/Luismorlan/socialmux/model"
	"github.com/Luismorlan/socialmux/store"
	"github.com/Luismorlan/socialmux/token"
	"github.com/Luismorlan/socialmux/utils"
	Logger "github.com/Luismorlan/socialmux/utils/log"
	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

const (
	// PrincipalKey is the gin context key holding the authenticated
	// *model.User.
	PrincipalKey = "principal"

	bearerPrefix = "Bearer "
)

func abortUnauthorized(c *gin.Context, code int, msg string) {
	c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
		"code":    code,
		"message": msg,
	})
}

// AccessGate reads the session token from "Authorization: Bearer <token>",
// loads the user it was issued to and stores it under PrincipalKey. Requests
// without a valid token are rejected with 401 before reaching the handler, a
// failing user lookup is a 500.
func AccessGate(tokens *token.Service, users store.UserStore) gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		if !strings.HasPrefix(header, bearerPrefix) {
			abortUnauthorized(c, utils.ErrorTokenNotExists, "Not authorized, no token")
			return
		}
		raw := strings.TrimSpace(strings.TrimPrefix(header, bearerPrefix))
		if raw == "" {
			abortUnauthorized(c, utils.ErrorTokenNotExists, "Not authorized, no token")
			return
		}

		grant, err := tokens.VerifySession(raw)
		if err != nil {
			abortUnauthorized(c, utils.ErrorTokenAuthFail, "Not authorized")
			return
		}

		user, err := users.GetUserById(c.Request.Context(), grant.Subject)
		if err != nil {
			if utils.KindOf(err) == utils.ErrNotFound {
				abortUnauthorized(c, utils.ErrorTokenAuthFail, "Not authorized")
				return
			}
			Logger.Log.WithFields(logrus.Fields{"user_id": grant.Subject}).Errorln("fail to load principal", err)
			c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{
				"code":    utils.ErrorInternal,
				"message": utils.ClientMessage(err),
			})
			return
		}

		c.Set(PrincipalKey, user)
		c.Next()
	}
}

// Principal returns the user authenticated by AccessGate, nil if the route is
// not behind the gate.
func Principal(c *gin.Context) *model.User {
	v, ok := c.Get(PrincipalKey)
	if !ok {
		return nil
	}
	user, _ := v.(*model.User)
	return user
}
