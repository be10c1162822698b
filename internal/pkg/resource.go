package pkg

import (
	"github.com/gin-gonic/gin"

	"github.com/a89529294/project-assembly-monorepo-sub001/internal/domain"
	"github.com/a89529294/project-assembly-monorepo-sub001/internal/listview"
)

// CRUDHandler serves the REST surface of a list-backed entity. Req is the
// request body of create and update; Convert turns it into service input.
type CRUDHandler[T, Req, In any] struct {
	Resource string
	Schema   listview.Schema
	Service  domain.CRUDService[T, In]
	Convert  func(*Req) (In, error)
	Guard    Guard
}

// Register mounts the handlers under /<Resource> on r.
func (h *CRUDHandler[T, Req, In]) Register(r gin.IRoutes) {
	if h.Guard == nil {
		h.Guard = Open{}
	}
	base := "/" + h.Resource
	read, write := h.Guard.Read(h.Resource), h.Guard.Write(h.Resource)

	r.GET(base, Chain(read, h.List)...)
	r.GET(base+"/:id", Chain(read, h.Get)...)
	r.POST(base, Chain(write, h.Create)...)
	r.PUT(base+"/:id", Chain(write, h.Update)...)
	r.DELETE(base+"/:id", Chain(write, h.Delete)...)
	r.POST(base+"/bulk-delete", Chain(write, h.BulkDelete)...)
}

// List handles GET /<resource>.
func (h *CRUDHandler[T, Req, In]) List(c *gin.Context) {
	page, err := h.Service.List(c.Request.Context(), ParseQuery(c, h.Schema))
	if err != nil {
		Error(c, err)
		return
	}
	List(c, page)
}

// Get handles GET /<resource>/:id.
func (h *CRUDHandler[T, Req, In]) Get(c *gin.Context) {
	id, err := ParseID(c)
	if err != nil {
		Error(c, err)
		return
	}
	v, err := h.Service.Get(c.Request.Context(), id)
	if err != nil {
		Error(c, err)
		return
	}
	Success(c, v)
}

// Create handles POST /<resource>.
func (h *CRUDHandler[T, Req, In]) Create(c *gin.Context) {
	in, ok := h.bind(c)
	if !ok {
		return
	}
	v, err := h.Service.Create(c.Request.Context(), in)
	if err != nil {
		Error(c, err)
		return
	}
	h.Guard.Changed(h.Resource)
	Created(c, v)
}

// Update handles PUT /<resource>/:id.
func (h *CRUDHandler[T, Req, In]) Update(c *gin.Context) {
	id, err := ParseID(c)
	if err != nil {
		Error(c, err)
		return
	}
	in, ok := h.bind(c)
	if !ok {
		return
	}
	v, err := h.Service.Update(c.Request.Context(), id, in)
	if err != nil {
		Error(c, err)
		return
	}
	h.Guard.Changed(h.Resource)
	Success(c, v)
}

// Delete handles DELETE /<resource>/:id.
func (h *CRUDHandler[T, Req, In]) Delete(c *gin.Context) {
	id, err := ParseID(c)
	if err != nil {
		Error(c, err)
		return
	}
	if err := h.Service.Delete(c.Request.Context(), id); err != nil {
		Error(c, err)
		return
	}
	h.Guard.Changed(h.Resource)
	Success(c, nil)
}

// BulkDelete handles POST /<resource>/bulk-delete.
func (h *CRUDHandler[T, Req, In]) BulkDelete(c *gin.Context) {
	q, sel, ok := BindBulkDelete(c, h.Schema)
	if !ok {
		return
	}
	n, err := h.Service.DeleteSelection(c.Request.Context(), q, sel)
	if err != nil {
		Error(c, err)
		return
	}
	if n > 0 {
		h.Guard.Changed(h.Resource)
	}
	Success(c, gin.H{"deleted": n})
}

func (h *CRUDHandler[T, Req, In]) bind(c *gin.Context) (In, bool) {
	var req Req
	var zero In
	if !BindAndValidate(c, &req) {
		return zero, false
	}
	in, err := h.Convert(&req)
	if err != nil {
		Error(c, err)
		return zero, false
	}
	return in, true
}
