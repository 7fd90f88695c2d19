package server

import (
	"mime/multipart"
	"net/http"

	"github.com/Luismorlan/socialmux/file_store"
	"github.com/Luismorlan/socialmux/utils"
	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
)

const pictureField = "picture"

// readPicture returns the optional "picture" part of a multipart request. Json
// and urlencoded bodies carry no picture. The returned close func must be
// called once the upload has been consumed.
func readPicture(c *gin.Context, maxBytes int64) (*file_store.Upload, func(), error) {
	if c.ContentType() != binding.MIMEMultipartPOSTForm {
		return nil, func() {}, nil
	}
	header, err := c.FormFile(pictureField)
	if err == http.ErrMissingFile || err == http.ErrNotMultipart {
		return nil, func() {}, nil
	}
	if err != nil {
		return nil, nil, utils.NewError(utils.ErrValidation, "invalid picture upload")
	}
	if header.Size > maxBytes {
		return nil, nil, utils.NewError(utils.ErrValidation, "picture must be at most %d bytes", maxBytes)
	}
	f, err := header.Open()
	if err != nil {
		return nil, nil, err
	}
	return &file_store.Upload{FileName: header.Filename, Body: f}, closer(f), nil
}

func closer(f multipart.File) func() {
	return func() { f.Close() }
}
