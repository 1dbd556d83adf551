package handlers

import (
	"github.com/gin-gonic/gin"

	"medical-gallery-portal/internal/gallery"
	"medical-gallery-portal/internal/utils"
)

// respondAPIError maps a gallery client error onto an HTTP response.
func respondAPIError(c *gin.Context, err error, fallback string) {
	switch {
	case gallery.IsValidation(err):
		utils.BadRequest(c, gallery.UserMessage(err, fallback))
	case gallery.IsUnreachable(err):
		utils.BadGateway(c, gallery.MsgServerUnreachable)
	default:
		utils.BadRequest(c, gallery.UserMessage(err, fallback))
	}
}

// serveBinary writes fetched record bytes back to the shell.
func serveBinary(c *gin.Context, data []byte, contentType string) {
	if contentType == "" {
		contentType = "application/octet-stream"
	}
	c.Data(200, contentType, data)
}
