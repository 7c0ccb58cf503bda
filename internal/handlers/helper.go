package handlers

import (
	"mime/multipart"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
)

func ParseStringIDParam(c *gin.Context, param string) string {
	idStr := strings.TrimSpace(c.Param(param))
	if idStr == "" {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Message: "Invalid " + param,
			Details: "ID cannot be empty",
		})
		return ""
	}
	return idStr
}

func ParseUintIDParam(c *gin.Context, param string) uint {
	idStr := strings.TrimSpace(c.Param(param))
	id, err := strconv.ParseUint(idStr, 10, 32)
	if err != nil || id == 0 {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Message: "Invalid " + param,
			Details: "ID must be a positive integer",
		})
		return 0
	}
	return uint(id)
}

// openFormFile pulls a named multipart file out of the request, reporting a
// 400 itself when the part is missing.
func openFormFile(c *gin.Context, field string) (multipart.File, string, bool) {
	fileHeader, err := c.FormFile(field)
	if err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Message: "Missing file upload",
			Details: "expected multipart field '" + field + "'",
		})
		return nil, "", false
	}

	file, err := fileHeader.Open()
	if err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Message: "Could not read uploaded file",
			Details: err.Error(),
		})
		return nil, "", false
	}
	return file, fileHeader.Filename, true
}
