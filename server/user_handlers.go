package server

import (
	"net/http"

	"github.com/Luismorlan/socialmux/server/middlewares"
	"github.com/Luismorlan/socialmux/utils"
	"github.com/gin-gonic/gin"
)

func (h *handlers) getUser(c *gin.Context) {
	user, err := h.Friends.GetUser(c.Request.Context(), middlewares.Principal(c).Id, c.Param("id"))
	if err != nil {
		WriteError(c, err)
		return
	}
	c.JSON(http.StatusOK, user)
}

func (h *handlers) listFriends(c *gin.Context) {
	friends, err := h.Friends.ListFriends(c.Request.Context(), c.Param("id"))
	if err != nil {
		WriteError(c, err)
		return
	}
	c.JSON(http.StatusOK, friends)
}

// toggleFriend only lets a user edit their own friend list.
func (h *handlers) toggleFriend(c *gin.Context) {
	id := c.Param("id")
	if middlewares.Principal(c).Id != id {
		WriteError(c, utils.NewError(utils.ErrForbidden, "Access denied"))
		return
	}
	friends, err := h.Friends.ToggleFriend(c.Request.Context(), id, c.Param("friendId"))
	if err != nil {
		WriteError(c, err)
		return
	}
	c.JSON(http.StatusOK, friends)
}

func (h *handlers) listNonFriends(c *gin.Context) {
	strangers, err := h.Friends.ListNonFriends(c.Request.Context(), c.Param("id"))
	if err != nil {
		WriteError(c, err)
		return
	}
	c.JSON(http.StatusOK, strangers)
}
