package employee

import (
	"github.com/gin-gonic/gin"

	"github.com/a89529294/project-assembly-monorepo-sub001/internal/domain"
	"github.com/a89529294/project-assembly-monorepo-sub001/internal/pkg"
	"github.com/a89529294/project-assembly-monorepo-sub001/internal/storage"
)

// CertificateHandler serves PUT /employees/:id/certificate.
type CertificateHandler struct {
	svc      domain.EmployeeService
	uploader *storage.Uploader
	guard    pkg.Guard
}

// Upload stores the certificate image of an employee, replacing any earlier
// one, and responds with the stored file.
func (h *CertificateHandler) Upload(c *gin.Context) {
	id, err := pkg.ParseID(c)
	if err != nil {
		pkg.Error(c, err)
		return
	}
	ctx := c.Request.Context()
	if _, err := h.svc.Get(ctx, id); err != nil {
		pkg.Error(c, err)
		return
	}

	f, err := pkg.OpenUpload(c, h.uploader.MaxBytes())
	if err != nil {
		pkg.Error(c, err)
		return
	}
	defer f.Close()

	file, err := h.uploader.Save(ctx, storage.EmployeeCertificateKey(id), f)
	if err != nil {
		pkg.Error(c, err)
		return
	}
	if _, err := h.svc.SetCertificate(ctx, id, file.URL); err != nil {
		pkg.Error(c, err)
		return
	}
	h.guard.Changed(Resource)
	pkg.Success(c, file)
}
