package material

import (
	"strings"
	"time"

	"github.com/a89529294/project-assembly-monorepo-sub001/internal/domain"
	"github.com/a89529294/project-assembly-monorepo-sub001/internal/pkg"
)

// MaterialRequest is the body of create and update. Stock is only changed by
// recording purchases.
type MaterialRequest struct {
	Code     string `json:"code" binding:"required,max=32"`
	Name     string `json:"name" binding:"required,max=200"`
	Spec     string `json:"spec" binding:"max=200"`
	Unit     string `json:"unit" binding:"required,max=20"`
	Supplier string `json:"supplier" binding:"max=200"`
}

// PurchaseRequest is the body of POST /materials/:id/purchases.
type PurchaseRequest struct {
	Quantity    float64 `json:"quantity" binding:"required,gt=0"`
	UnitPrice   float64 `json:"unit_price" binding:"gte=0"`
	Supplier    string  `json:"supplier" binding:"max=200"`
	PurchasedAt string  `json:"purchased_at" binding:"omitempty,datetime=2006-01-02"`
}

func toInput(req *MaterialRequest) (domain.MaterialInput, error) {
	return domain.MaterialInput{
		Code:     req.Code,
		Name:     req.Name,
		Spec:     req.Spec,
		Unit:     req.Unit,
		Supplier: req.Supplier,
	}, nil
}

func toPurchaseInput(req *PurchaseRequest) (domain.PurchaseInput, error) {
	at, err := pkg.ParseDate("purchased_at", req.PurchasedAt)
	if err != nil {
		return domain.PurchaseInput{}, err
	}
	in := domain.PurchaseInput{
		Quantity:  req.Quantity,
		UnitPrice: req.UnitPrice,
		Supplier:  strings.TrimSpace(req.Supplier),
	}
	if at != nil {
		in.PurchasedAt = *at
	}
	return in, nil
}

func normalize(in domain.MaterialInput) domain.MaterialInput {
	in.Code = strings.ToUpper(strings.TrimSpace(in.Code))
	in.Name = strings.TrimSpace(in.Name)
	in.Spec = strings.TrimSpace(in.Spec)
	in.Unit = strings.ToLower(strings.TrimSpace(in.Unit))
	in.Supplier = strings.TrimSpace(in.Supplier)
	return in
}

// purchaseTime defaults a missing purchase date to now.
func purchaseTime(t time.Time) time.Time {
	if t.IsZero() {
		return time.Now().UTC()
	}
	return t
}
