package material

import (
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/a89529294/project-assembly-monorepo-sub001/internal/domain"
	"github.com/a89529294/project-assembly-monorepo-sub001/internal/pkg"
)

// PurchaseHandler serves the purchase history of a material.
type PurchaseHandler struct {
	svc   domain.MaterialService
	guard pkg.Guard
}

// Record handles POST /materials/:id/purchases.
func (h *PurchaseHandler) Record(c *gin.Context) {
	id, err := pkg.ParseID(c)
	if err != nil {
		pkg.Error(c, err)
		return
	}
	var req PurchaseRequest
	if !pkg.BindAndValidate(c, &req) {
		return
	}
	in, err := toPurchaseInput(&req)
	if err != nil {
		pkg.Error(c, err)
		return
	}
	p, err := h.svc.RecordPurchase(c.Request.Context(), id, in)
	if err != nil {
		pkg.Error(c, err)
		return
	}
	h.guard.Changed(Resource)
	pkg.Created(c, p)
}

// List handles GET /materials/:id/purchases?after=<cursor>&limit=<n>.
func (h *PurchaseHandler) List(c *gin.Context) {
	id, err := pkg.ParseID(c)
	if err != nil {
		pkg.Error(c, err)
		return
	}
	limit := 0
	if raw := c.Query("limit"); raw != "" {
		if limit, err = strconv.Atoi(raw); err != nil {
			pkg.Error(c, domain.Invalid("invalid limit: "+raw))
			return
		}
	}
	res, err := h.svc.ListPurchases(c.Request.Context(), id, c.Query("after"), limit)
	if err != nil {
		pkg.Error(c, err)
		return
	}
	pkg.Success(c, res)
}
