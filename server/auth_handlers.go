package server

import (
	"net/http"

	"github.com/Luismorlan/socialmux/credential"
	"github.com/gin-gonic/gin"
)

type registerForm struct {
	FirstName  string `form:"firstName" json:"firstName"`
	LastName   string `form:"lastName" json:"lastName"`
	Email      string `form:"email" json:"email"`
	Password   string `form:"password" json:"password"`
	Location   string `form:"location" json:"location"`
	Occupation string `form:"occupation" json:"occupation"`
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type forgotPasswordRequest struct {
	Email       string `json:"email"`
	RedirectUrl string `json:"redirectUrl"`
}

type resetPasswordRequest struct {
	NewPassword string `json:"newPassword"`
}

func (h *handlers) register(c *gin.Context) {
	var form registerForm
	if err := c.ShouldBind(&form); err != nil {
		badRequest(c, "invalid registration form")
		return
	}
	picture, done, err := readPicture(c, h.Setting.MAX_UPLOAD_BYTES)
	if err != nil {
		WriteError(c, err)
		return
	}
	defer done()

	user, err := h.Credentials.Register(c.Request.Context(), credential.RegisterInput{
		FirstName:  form.FirstName,
		LastName:   form.LastName,
		Email:      form.Email,
		Password:   form.Password,
		Location:   form.Location,
		Occupation: form.Occupation,
		Picture:    picture,
	})
	if err != nil {
		WriteError(c, err)
		return
	}
	c.JSON(http.StatusCreated, user)
}

func (h *handlers) login(c *gin.Context) {
	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "invalid login request")
		return
	}
	res, err := h.Credentials.Login(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		writeLoginError(c, err)
		return
	}
	c.JSON(http.StatusOK, res)
}

func (h *handlers) forgotPassword(c *gin.Context) {
	var req forgotPasswordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "invalid forgot password request")
		return
	}
	if err := h.Credentials.RequestPasswordReset(c.Request.Context(), req.Email, req.RedirectUrl); err != nil {
		WriteError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Password reset link sent"})
}

func (h *handlers) resetPassword(c *gin.Context) {
	var req resetPasswordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "invalid reset password request")
		return
	}
	if err := h.Credentials.ResetPassword(c.Request.Context(), c.Param("token"), req.NewPassword); err != nil {
		WriteError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Password has been reset"})
}
