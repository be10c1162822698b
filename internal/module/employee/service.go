package employee

import (
	"context"

	"github.com/a89529294/project-assembly-monorepo-sub001/internal/domain"
	"github.com/a89529294/project-assembly-monorepo-sub001/internal/listview"
	"github.com/a89529294/project-assembly-monorepo-sub001/internal/pkg"
)

type employeeService struct {
	repo domain.EmployeeRepository
}

// NewEmployeeService creates an EmployeeService with the given repository.
func NewEmployeeService(repo domain.EmployeeRepository) domain.EmployeeService {
	return &employeeService{repo: repo}
}

func (s *employeeService) Create(ctx context.Context, in domain.EmployeeInput) (*domain.Employee, error) {
	in = normalize(in)
	if err := validate(in); err != nil {
		return nil, err
	}
	e := &domain.Employee{}
	apply(e, in)
	if err := s.repo.Create(ctx, e); err != nil {
		return nil, err
	}
	return s.repo.GetByID(ctx, e.ID)
}

func (s *employeeService) Get(ctx context.Context, id uint) (*domain.Employee, error) {
	return s.repo.GetByID(ctx, id)
}

func (s *employeeService) List(ctx context.Context, q listview.Query) (*domain.PageResult[domain.Employee], error) {
	return s.repo.List(ctx, q)
}

func (s *employeeService) Update(ctx context.Context, id uint, in domain.EmployeeInput) (*domain.Employee, error) {
	in = normalize(in)
	if err := validate(in); err != nil {
		return nil, err
	}
	e, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	apply(e, in)
	if err := s.repo.Update(ctx, e); err != nil {
		return nil, err
	}
	return s.repo.GetByID(ctx, id)
}

func (s *employeeService) Delete(ctx context.Context, id uint) error {
	return s.repo.Delete(ctx, id)
}

func (s *employeeService) DeleteSelection(ctx context.Context, q listview.Query, sel listview.Selection) (int64, error) {
	return s.repo.DeleteSelection(ctx, q, sel)
}

func (s *employeeService) SetCertificate(ctx context.Context, id uint, url string) (*domain.Employee, error) {
	if err := s.repo.SetCertificate(ctx, id, url); err != nil {
		return nil, err
	}
	return s.repo.GetByID(ctx, id)
}

func validate(in domain.EmployeeInput) error {
	return pkg.First(
		pkg.RequireText("number", in.Number, 32),
		pkg.RequireText("name", in.Name, 100),
		pkg.OptionalEmail("email", in.Email),
		pkg.OptionalText("phone", in.Phone, 50),
		pkg.OptionalText("title", in.Title, 100),
	)
}

func apply(e *domain.Employee, in domain.EmployeeInput) {
	e.Number = in.Number
	e.Name = in.Name
	e.Email = in.Email
	e.Phone = in.Phone
	e.Title = in.Title
	e.DepartmentID = in.DepartmentID
	e.HiredAt = in.HiredAt
	// the preloaded association would otherwise go stale
	e.Department = nil
}
