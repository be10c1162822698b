package pkg

import (
	"errors"
	"fmt"
	"mime/multipart"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/a89529294/project-assembly-monorepo-sub001/internal/domain"
)

// UploadField is the multipart field carrying an uploaded file.
const UploadField = "file"

// formOverhead is the slack allowed for multipart headers and boundaries.
const formOverhead = 64 << 10

// OpenUpload opens the uploaded file of the request. Bodies larger than limit
// plus form overhead are rejected before they are buffered.
func OpenUpload(c *gin.Context, limit int64) (multipart.File, error) {
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, limit+formOverhead)
	fh, err := c.FormFile(UploadField)
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			return nil, domain.Invalid(fmt.Sprintf("file exceeds %d bytes", limit))
		}
		return nil, domain.Invalid("file is required")
	}
	f, err := fh.Open()
	if err != nil {
		return nil, domain.NewAppError(domain.CodeInternal, "failed to open upload", err)
	}
	return f, nil
}
