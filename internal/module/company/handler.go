package company

import (
	"github.com/gin-gonic/gin"

	"github.com/a89529294/project-assembly-monorepo-sub001/internal/domain"
	"github.com/a89529294/project-assembly-monorepo-sub001/internal/pkg"
	"github.com/a89529294/project-assembly-monorepo-sub001/internal/storage"
)

// CompanyHandler serves /company.
type CompanyHandler struct {
	svc      domain.CompanyService
	uploader *storage.Uploader
	guard    pkg.Guard
}

// Get handles GET /company.
func (h *CompanyHandler) Get(c *gin.Context) {
	co, err := h.svc.Get(c.Request.Context())
	if err != nil {
		pkg.Error(c, err)
		return
	}
	pkg.Success(c, co)
}

// Create handles POST /company.
func (h *CompanyHandler) Create(c *gin.Context) {
	var req CompanyRequest
	if !pkg.BindAndValidate(c, &req) {
		return
	}
	co, err := h.svc.Create(c.Request.Context(), req.toInput())
	if err != nil {
		pkg.Error(c, err)
		return
	}
	h.guard.Changed(Resource)
	pkg.Created(c, co)
}

// Update handles PUT /company.
func (h *CompanyHandler) Update(c *gin.Context) {
	var req CompanyRequest
	if !pkg.BindAndValidate(c, &req) {
		return
	}
	co, err := h.svc.Update(c.Request.Context(), req.toInput())
	if err != nil {
		pkg.Error(c, err)
		return
	}
	h.guard.Changed(Resource)
	pkg.Success(c, co)
}

// UploadLogo handles PUT /company/logo. The profile must exist first.
func (h *CompanyHandler) UploadLogo(c *gin.Context) {
	ctx := c.Request.Context()
	if _, err := h.svc.Get(ctx); err != nil {
		pkg.Error(c, err)
		return
	}
	f, err := pkg.OpenUpload(c, h.uploader.MaxBytes())
	if err != nil {
		pkg.Error(c, err)
		return
	}
	defer f.Close()

	file, err := h.uploader.Save(ctx, storage.CompanyLogoKey(), f)
	if err != nil {
		pkg.Error(c, err)
		return
	}
	if _, err := h.svc.SetLogo(ctx, file.URL); err != nil {
		pkg.Error(c, err)
		return
	}
	h.guard.Changed(Resource)
	pkg.Success(c, file)
}
