package handlers

import (
	"errors"
	"io"
	"log"
	"mime/multipart"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/NEPJU/APIs/internal/service"
)

const internalMessage = "Internal server error"

func statusFor(err error) int {
	switch {
	case errors.Is(err, service.ErrValidation), errors.Is(err, service.ErrDuplicate):
		return http.StatusBadRequest
	case errors.Is(err, service.ErrAuth):
		return http.StatusUnauthorized
	case errors.Is(err, service.ErrNotFound):
		return http.StatusNotFound
	}
	return http.StatusInternalServerError
}

// fail logs err and writes it as {"message": ...}. Errors that are not one of
// the service kinds never leak their text to the client.
func fail(c *gin.Context, err error) {
	status := statusFor(err)
	log.Printf("[%s] %s %s -> %d: %v", requestID(c), c.Request.Method, c.Request.URL.Path, status, err)

	msg := internalMessage
	var se *service.Error
	if status != http.StatusInternalServerError && errors.As(err, &se) {
		msg = se.Message
	}
	c.AbortWithStatusJSON(status, gin.H{"message": msg})
}

func badRequest(c *gin.Context, msg string) {
	fail(c, &service.Error{Kind: service.ErrValidation, Message: msg})
}

func message(c *gin.Context, status int, msg string) {
	c.JSON(status, gin.H{"message": msg})
}

// uintParam reads a positive integer path parameter.
func uintParam(c *gin.Context, name string) (uint, bool) {
	n, err := strconv.ParseUint(c.Param(name), 10, 64)
	if err != nil || n == 0 {
		badRequest(c, "invalid "+name)
		return 0, false
	}
	return uint(n), true
}

// readUpload reads an uploaded file. Files over limit bytes are rejected
// rather than cut short.
func readUpload(fh *multipart.FileHeader, limit int64) ([]byte, error) {
	f, err := fh.Open()
	if err != nil {
		return nil, err
	}
	defer f.Close()
	raw, err := io.ReadAll(io.LimitReader(f, limit+1))
	if err != nil {
		return nil, err
	}
	if int64(len(raw)) > limit {
		return nil, &service.Error{Kind: service.ErrValidation, Message: "File too large"}
	}
	return raw, nil
}
