package validator

import (
	"bytes"
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"

	"user_auth/internal/model"

	_ "golang.org/x/image/webp"
)

// CheckImage decodes the upload header and enforces size limits. On success
// the upload's content type is set from the detected format.
func CheckImage(up *model.Upload, maxBytes int64, maxWidth, maxHeight int) []FieldError {
	if maxBytes > 0 && int64(len(up.Data)) > maxBytes {
		return []FieldError{{
			Code:    CodeFileTooLarge,
			Message: fmt.Sprintf("The file is too large. Maximum size is %d bytes.", maxBytes),
		}}
	}

	cfg, format, err := image.DecodeConfig(bytes.NewReader(up.Data))
	if err != nil {
		return []FieldError{{
			Code:    CodeInvalidImage,
			Message: "Upload a valid image. The file you uploaded was either not an image or a corrupted image.",
		}}
	}
	up.ContentType = "image/" + format

	var errs []FieldError
	if cfg.Width > maxWidth {
		errs = append(errs, FieldError{Code: CodeImageTooLarge, Message: "The image is too wide"})
	}
	if cfg.Height > maxHeight {
		errs = append(errs, FieldError{Code: CodeImageTooLarge, Message: "The image is too tall"})
	}
	return errs
}
