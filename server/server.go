// Package server exposes the social network over http.
package server

import (
	"net/http"

	"github.com/Luismorlan/socialmux/app_setting"
	"github.com/Luismorlan/socialmux/credential"
	"github.com/Luismorlan/socialmux/friendgraph"
	"github.com/Luismorlan/socialmux/poststore"
	"github.com/Luismorlan/socialmux/server/middlewares"
	"github.com/Luismorlan/socialmux/store"
	"github.com/Luismorlan/socialmux/token"
	"github.com/gin-gonic/gin"
)

// multipart envelope on top of the picture itself
const multipartOverheadBytes = 1 << 20

// Dependencies are the services the handlers call into.
type Dependencies struct {
	Users       store.UserStore
	Tokens      *token.Service
	Credentials *credential.Service
	Friends     *friendgraph.Service
	Posts       *poststore.Service
	Setting     app_setting.AppSetting
	// Directory served under /assets, nothing is served if empty.
	AssetDir string
}

type handlers struct {
	Dependencies
}

// limitBody caps the request body, reads beyond n fail.
func limitBody(n int64) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, n)
		c.Next()
	}
}

// RegisterRoutes mounts every route of the api on router.
func RegisterRoutes(router *gin.Engine, deps Dependencies) {
	h := &handlers{Dependencies: deps}
	gate := middlewares.AccessGate(deps.Tokens, deps.Users)
	uploadLimit := limitBody(deps.Setting.MAX_UPLOAD_BYTES + multipartOverheadBytes)
	router.MaxMultipartMemory = 8 << 20

	router.GET("/ping", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"message": "pong",
		})
	})
	if deps.AssetDir != "" {
		router.Static("/assets", deps.AssetDir)
	}

	auth := router.Group("/auth")
	{
		auth.POST("/register", uploadLimit, h.register)
		auth.POST("/login", h.login)
		auth.POST("/forgot-password", h.forgotPassword)
		auth.POST("/reset-password/:token", h.resetPassword)
	}

	user := router.Group("/user")
	{
		user.GET("/:id", gate, h.getUser)
		user.GET("/:id/friends", h.listFriends)
		user.PATCH("/:id/:friendId", gate, h.toggleFriend)
		user.GET("/:id/notfriends", gate, h.listNonFriends)
	}

	posts := router.Group("/posts", gate)
	{
		posts.POST("/create", uploadLimit, h.createPost)
		posts.GET("", h.listFeed)
		posts.GET("/:userId/posts", h.listUserPosts)
		posts.PATCH("/:id/like", h.toggleLike)
		posts.POST("/:postId/comment", h.addComment)
		posts.GET("/:userId/posts-stats", h.postStats)
	}
}
