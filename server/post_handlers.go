package server

import (
	"net/http"

	"github.com/Luismorlan/socialmux/server/middlewares"
	"github.com/gin-gonic/gin"
)

type createPostForm struct {
	Description string `form:"description" json:"description"`
}

type commentRequest struct {
	CommentText string `json:"commentText"`
}

func (h *handlers) createPost(c *gin.Context) {
	var form createPostForm
	if err := c.ShouldBind(&form); err != nil {
		badRequest(c, "invalid post form")
		return
	}
	picture, done, err := readPicture(c, h.Setting.MAX_UPLOAD_BYTES)
	if err != nil {
		WriteError(c, err)
		return
	}
	defer done()

	post, err := h.Posts.CreatePost(c.Request.Context(), middlewares.Principal(c).Id, form.Description, picture)
	if err != nil {
		WriteError(c, err)
		return
	}
	c.JSON(http.StatusCreated, post)
}

func (h *handlers) listFeed(c *gin.Context) {
	posts, err := h.Posts.ListFeed(c.Request.Context())
	if err != nil {
		WriteError(c, err)
		return
	}
	c.JSON(http.StatusOK, posts)
}

func (h *handlers) listUserPosts(c *gin.Context) {
	posts, err := h.Posts.ListByAuthor(c.Request.Context(), c.Param("userId"))
	if err != nil {
		WriteError(c, err)
		return
	}
	c.JSON(http.StatusOK, posts)
}

func (h *handlers) toggleLike(c *gin.Context) {
	post, err := h.Posts.ToggleLike(c.Request.Context(), c.Param("id"), middlewares.Principal(c).Id)
	if err != nil {
		WriteError(c, err)
		return
	}
	c.JSON(http.StatusOK, post)
}

func (h *handlers) addComment(c *gin.Context) {
	var req commentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "invalid comment request")
		return
	}
	post, err := h.Posts.AddComment(c.Request.Context(), c.Param("postId"), middlewares.Principal(c).Id, req.CommentText)
	if err != nil {
		WriteError(c, err)
		return
	}
	c.JSON(http.StatusOK, post)
}

func (h *handlers) postStats(c *gin.Context) {
	stats, err := h.Posts.CountStats(c.Request.Context(), c.Param("userId"))
	if err != nil {
		WriteError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"stats": stats})
}
