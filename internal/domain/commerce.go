package domain

import (
	"context"
	"time"

	"github.com/a89529294/project-assembly-monorepo-sub001/internal/listview"
)

// Customer is a party projects are delivered to.
type Customer struct {
	BaseModel
	Code          string `gorm:"size:32;uniqueIndex;not null" json:"code"`
	Name          string `gorm:"size:200;not null;index" json:"name"`
	ContactPerson string `gorm:"size:100" json:"contact_person"`
	Phone         string `gorm:"size:50" json:"phone"`
	Email         string `gorm:"size:255" json:"email"`
	Address       string `gorm:"size:500" json:"address"`
	TaxID         string `gorm:"size:50" json:"tax_id"`
}

type CustomerInput struct {
	Code          string
	Name          string
	ContactPerson string
	Phone         string
	Email         string
	Address       string
	TaxID         string
}

var CustomerSchema = listview.Schema{
	Sortable:         []string{"id", "code", "name", "created_at"},
	DefaultOrderBy:   "id",
	DefaultDirection: listview.Desc,
	DefaultPageSize:  10,
}

type (
	CustomerRepository = Repository[Customer]
	CustomerService    = CRUDService[Customer, CustomerInput]
)

// Project statuses.
const (
	ProjectPlanning = "planning"
	ProjectActive   = "active"
	ProjectClosed   = "closed"
)

// ValidProjectStatus reports whether s is a known project status.
func ValidProjectStatus(s string) bool {
	switch s {
	case ProjectPlanning, ProjectActive, ProjectClosed:
		return true
	}
	return false
}

type Project struct {
	BaseModel
	Code       string     `gorm:"size:32;uniqueIndex;not null" json:"code"`
	Name       string     `gorm:"size:200;not null;index" json:"name"`
	CustomerID *uint      `gorm:"index" json:"customer_id"`
	Customer   *Customer  `gorm:"constraint:OnDelete:SET NULL" json:"customer,omitempty"`
	Status     string     `gorm:"size:20;not null;default:planning;index" json:"status"`
	StartDate  *time.Time `json:"start_date"`
	EndDate    *time.Time `json:"end_date"`
	Notes      string     `gorm:"size:1000" json:"notes"`
}

type ProjectInput struct {
	Code       string
	Name       string
	CustomerID *uint
	Status     string
	StartDate  *time.Time
	EndDate    *time.Time
	Notes      string
}

var ProjectSchema = listview.Schema{
	Sortable:         []string{"id", "code", "name", "start_date", "created_at"},
	DefaultOrderBy:   "id",
	DefaultDirection: listview.Desc,
	DefaultPageSize:  10,
	Filters:          []string{"customerId", "status"},
}

type (
	ProjectRepository = Repository[Project]
	ProjectService    = CRUDService[Project, ProjectInput]
)

// Material is a stocked item consumed by projects.
type Material struct {
	BaseModel
	Code     string  `gorm:"size:32;uniqueIndex;not null" json:"code"`
	Name     string  `gorm:"size:200;not null;index" json:"name"`
	Spec     string  `gorm:"size:200" json:"spec"`
	Unit     string  `gorm:"size:20;not null" json:"unit"`
	Supplier string  `gorm:"size:200;index" json:"supplier"`
	Stock    float64 `gorm:"not null;default:0" json:"stock"`
}

type MaterialInput struct {
	Code     string
	Name     string
	Spec     string
	Unit     string
	Supplier string
}

var MaterialSchema = listview.Schema{
	Sortable:         []string{"id", "code", "name", "stock", "created_at"},
	DefaultOrderBy:   "id",
	DefaultDirection: listview.Desc,
	DefaultPageSize:  10,
	Filters:          []string{"supplier", "unit"},
}

// Purchase is a received delivery of a material. Recording one raises the
// material's stock by Quantity.
type Purchase struct {
	BaseModel
	MaterialID  uint      `gorm:"not null;index" json:"material_id"`
	Material    *Material `gorm:"constraint:OnDelete:CASCADE" json:"material,omitempty"`
	Quantity    float64   `gorm:"not null" json:"quantity"`
	UnitPrice   float64   `gorm:"not null;default:0" json:"unit_price"`
	Supplier    string    `gorm:"size:200" json:"supplier"`
	PurchasedAt time.Time `gorm:"not null;index" json:"purchased_at"`
}

type PurchaseInput struct {
	Quantity    float64
	UnitPrice   float64
	Supplier    string
	PurchasedAt time.Time
}

type MaterialRepository interface {
	Repository[Material]
	// AddPurchase stores p and raises the stock of its material atomically.
	AddPurchase(ctx context.Context, p *Purchase) error
	// Purchases returns the purchases of a material newest first, starting
	// after the purchase with id after (0 for the first segment).
	Purchases(ctx context.Context, materialID uint, after uint, limit int) ([]Purchase, error)
}

type MaterialService interface {
	CRUDService[Material, MaterialInput]
	RecordPurchase(ctx context.Context, materialID uint, in PurchaseInput) (*Purchase, error)
	// ListPurchases reads the purchase history with cursor pagination.
	ListPurchases(ctx context.Context, materialID uint, cursor string, limit int) (*CursorResult[Purchase], error)
}
