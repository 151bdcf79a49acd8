package handler

import (
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"

	"user_auth/internal/model"
	"user_auth/internal/validator"

	"github.com/gin-gonic/gin"
)

func isMultipart(c *gin.Context) bool {
	return strings.HasPrefix(c.ContentType(), "multipart/form-data")
}

// formValue returns the first of keys present in the submitted form
func formValue(c *gin.Context, keys ...string) (string, bool) {
	for _, key := range keys {
		if v, ok := c.GetPostForm(key); ok {
			return v, true
		}
	}
	return "", false
}

func formPtr(c *gin.Context, keys ...string) *string {
	if v, ok := formValue(c, keys...); ok {
		return &v
	}
	return nil
}

// formBool parses a boolean form field, recording an error when malformed
func formBool(c *gin.Context, errs validator.Errors, field string) *bool {
	v, ok := c.GetPostForm(field)
	if !ok || v == "" {
		return nil
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		errs.Add(field, "invalid", "Must be a valid boolean.")
		return nil
	}
	return &b
}

// readUpload reads the first file present under keys. At most maxBytes+1
// bytes are read so oversize files still fail validation.
func readUpload(c *gin.Context, maxBytes int64, keys ...string) (*model.Upload, error) {
	for _, key := range keys {
		header, err := c.FormFile(key)
		if errors.Is(err, http.ErrMissingFile) {
			continue
		}
		if err != nil {
			return nil, fmt.Errorf("failed to read %s: %w", key, err)
		}

		file, err := header.Open()
		if err != nil {
			return nil, fmt.Errorf("failed to open %s: %w", key, err)
		}
		defer file.Close()

		data, err := io.ReadAll(io.LimitReader(file, maxBytes+1))
		if err != nil {
			return nil, fmt.Errorf("failed to read %s: %w", key, err)
		}
		return &model.Upload{
			Filename:    header.Filename,
			ContentType: header.Header.Get("Content-Type"),
			Data:        data,
		}, nil
	}
	return nil, nil
}
