package department

import (
	"context"

	"github.com/a89529294/project-assembly-monorepo-sub001/internal/domain"
	"github.com/a89529294/project-assembly-monorepo-sub001/internal/listview"
	"github.com/a89529294/project-assembly-monorepo-sub001/internal/pkg"
)

type departmentService struct {
	repo domain.DepartmentRepository
}

// NewDepartmentService creates a DepartmentService with the given repository.
func NewDepartmentService(repo domain.DepartmentRepository) domain.DepartmentService {
	return &departmentService{repo: repo}
}

func (s *departmentService) Create(ctx context.Context, in domain.DepartmentInput) (*domain.Department, error) {
	in = normalize(in)
	if err := validate(in); err != nil {
		return nil, err
	}
	d := &domain.Department{}
	apply(d, in)
	if err := s.repo.Create(ctx, d); err != nil {
		return nil, err
	}
	return d, nil
}

func (s *departmentService) Get(ctx context.Context, id uint) (*domain.Department, error) {
	return s.repo.GetByID(ctx, id)
}

func (s *departmentService) List(ctx context.Context, q listview.Query) (*domain.PageResult[domain.Department], error) {
	return s.repo.List(ctx, q)
}

func (s *departmentService) Update(ctx context.Context, id uint, in domain.DepartmentInput) (*domain.Department, error) {
	in = normalize(in)
	if err := validate(in); err != nil {
		return nil, err
	}
	d, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	apply(d, in)
	if err := s.repo.Update(ctx, d); err != nil {
		return nil, err
	}
	return d, nil
}

// Delete removes a department. Its employees are kept without a department.
func (s *departmentService) Delete(ctx context.Context, id uint) error {
	return s.repo.Delete(ctx, id)
}

func (s *departmentService) DeleteSelection(ctx context.Context, q listview.Query, sel listview.Selection) (int64, error) {
	return s.repo.DeleteSelection(ctx, q, sel)
}

func validate(in domain.DepartmentInput) error {
	return pkg.First(
		pkg.RequireText("code", in.Code, 32),
		pkg.RequireText("name", in.Name, 100),
		pkg.OptionalText("description", in.Description, 500),
	)
}

func apply(d *domain.Department, in domain.DepartmentInput) {
	d.Code = in.Code
	d.Name = in.Name
	d.Description = in.Description
}
