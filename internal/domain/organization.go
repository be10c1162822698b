package domain

import (
	"context"
	"time"

	"github.com/a89529294/project-assembly-monorepo-sub001/internal/listview"
)

// Department is an organizational unit employees belong to.
type Department struct {
	BaseModel
	Code        string `gorm:"size:32;uniqueIndex;not null" json:"code"`
	Name        string `gorm:"size:100;not null" json:"name"`
	Description string `gorm:"size:500" json:"description"`
}

type DepartmentInput struct {
	Code        string
	Name        string
	Description string
}

var DepartmentSchema = listview.Schema{
	Sortable:         []string{"id", "code", "name", "created_at"},
	DefaultOrderBy:   "id",
	DefaultDirection: listview.Desc,
	DefaultPageSize:  10,
}

type (
	DepartmentRepository = Repository[Department]
	DepartmentService    = CRUDService[Department, DepartmentInput]
)

// Employee is a member of staff.
type Employee struct {
	BaseModel
	Number         string      `gorm:"size:32;uniqueIndex;not null" json:"number"`
	Name           string      `gorm:"size:100;not null;index" json:"name"`
	Email          string      `gorm:"size:255" json:"email"`
	Phone          string      `gorm:"size:50" json:"phone"`
	Title          string      `gorm:"size:100" json:"title"`
	DepartmentID   *uint       `gorm:"index" json:"department_id"`
	Department     *Department `gorm:"constraint:OnDelete:SET NULL" json:"department,omitempty"`
	HiredAt        *time.Time  `json:"hired_at"`
	CertificateURL string      `gorm:"size:500" json:"certificate_url"`
}

type EmployeeInput struct {
	Number       string
	Name         string
	Email        string
	Phone        string
	Title        string
	DepartmentID *uint
	HiredAt      *time.Time
}

var EmployeeSchema = listview.Schema{
	Sortable:         []string{"id", "number", "name", "hired_at", "created_at"},
	DefaultOrderBy:   "id",
	DefaultDirection: listview.Desc,
	DefaultPageSize:  10,
	Filters:          []string{"departmentId"},
}

type EmployeeRepository interface {
	Repository[Employee]
	SetCertificate(ctx context.Context, id uint, url string) error
}

type EmployeeService interface {
	CRUDService[Employee, EmployeeInput]
	// SetCertificate records the URL of an uploaded certificate.
	SetCertificate(ctx context.Context, id uint, url string) (*Employee, error)
}

// Company is the singleton profile of the organization running the system.
type Company struct {
	BaseModel
	Name    string `gorm:"size:200;not null" json:"name"`
	TaxID   string `gorm:"size:50" json:"tax_id"`
	Phone   string `gorm:"size:50" json:"phone"`
	Email   string `gorm:"size:255" json:"email"`
	Address string `gorm:"size:500" json:"address"`
	LogoURL string `gorm:"size:500" json:"logo_url"`
}

type CompanyInput struct {
	Name    string
	TaxID   string
	Phone   string
	Email   string
	Address string
}

type CompanyRepository interface {
	// Get returns the single company row.
	Get(ctx context.Context) (*Company, error)
	Create(ctx context.Context, c *Company) error
	Update(ctx context.Context, c *Company) error
}

type CompanyService interface {
	Get(ctx context.Context) (*Company, error)
	// Create fails with CodeAlreadyExists when the profile already exists.
	Create(ctx context.Context, in CompanyInput) (*Company, error)
	Update(ctx context.Context, in CompanyInput) (*Company, error)
	SetLogo(ctx context.Context, url string) (*Company, error)
}
