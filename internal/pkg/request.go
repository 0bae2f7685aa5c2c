package pkg

import (
	"io"
	"mime/multipart"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/simp-lee/touradmin/internal/domain"
)

// DefaultMaxUpload is the upload size limit used when none is configured.
const DefaultMaxUpload int64 = 10 << 20

// allowedUploadTypes lists the accepted upload content types.
var allowedUploadTypes = map[string]bool{
	"image/jpeg": true,
	"image/png":  true,
	"image/webp": true,
	"image/gif":  true,
}

// ReasonRequest is the optional body of delete and review endpoints.
type ReasonRequest struct {
	Reason string `json:"reason" binding:"max=500"`
}

// ParseRecordID reads a UUID path parameter.
func ParseRecordID(c *gin.Context, name string) (string, error) {
	raw := c.Param(name)
	id, err := uuid.Parse(raw)
	if err != nil {
		return "", domain.NewValidationError("invalid "+name, map[string]string{name: "uuid"})
	}
	return id.String(), nil
}

// BindOptionalReason binds a ReasonRequest when the request has a body.
// On failure it sends a validation response and returns false.
func BindOptionalReason(c *gin.Context) (string, bool) {
	var req ReasonRequest
	if c.Request.ContentLength == 0 {
		return "", true
	}
	if !BindAndValidate(c, &req) {
		return "", false
	}
	return strings.TrimSpace(req.Reason), true
}

// Upload is a validated file from a multipart request.
type Upload struct {
	File        multipart.File
	ContentType string
	Size        int64
}

// OpenUpload opens the multipart file field and checks its size and type.
// The caller must close Upload.File.
func OpenUpload(c *gin.Context, field string, maxBytes int64) (*Upload, error) {
	if maxBytes <= 0 {
		maxBytes = DefaultMaxUpload
	}
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, maxBytes+1<<20)

	fh, err := c.FormFile(field)
	if err != nil {
		return nil, domain.NewValidationError("file is required", map[string]string{field: "required"})
	}
	if fh.Size > maxBytes {
		return nil, domain.NewValidationError("file too large", map[string]string{field: "max_size"})
	}
	f, err := fh.Open()
	if err != nil {
		return nil, domain.NewAppError(domain.CodeValidation, "cannot read upload", err)
	}

	head := make([]byte, 512)
	n, _ := io.ReadFull(f, head)
	contentType := http.DetectContentType(head[:n])
	if !allowedUploadTypes[contentType] {
		f.Close()
		return nil, domain.NewValidationError("unsupported file type", map[string]string{field: "content_type"})
	}
	if _, err := f.Seek(0, io.SeekStart); err != nil {
		f.Close()
		return nil, domain.NewAppError(domain.CodeValidation, "cannot read upload", err)
	}
	return &Upload{File: f, ContentType: contentType, Size: fh.Size}, nil
}
