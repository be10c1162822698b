package project

import (
	"context"

	"github.com/a89529294/project-assembly-monorepo-sub001/internal/domain"
	"github.com/a89529294/project-assembly-monorepo-sub001/internal/listview"
	"github.com/a89529294/project-assembly-monorepo-sub001/internal/pkg"
)

type projectService struct {
	repo domain.ProjectRepository
}

// NewProjectService creates a ProjectService with the given repository.
func NewProjectService(repo domain.ProjectRepository) domain.ProjectService {
	return &projectService{repo: repo}
}

func (s *projectService) Create(ctx context.Context, in domain.ProjectInput) (*domain.Project, error) {
	in = normalize(in)
	if err := validate(in); err != nil {
		return nil, err
	}
	p := &domain.Project{}
	apply(p, in)
	if err := s.repo.Create(ctx, p); err != nil {
		return nil, err
	}
	return s.repo.GetByID(ctx, p.ID)
}

func (s *projectService) Get(ctx context.Context, id uint) (*domain.Project, error) {
	return s.repo.GetByID(ctx, id)
}

func (s *projectService) List(ctx context.Context, q listview.Query) (*domain.PageResult[domain.Project], error) {
	return s.repo.List(ctx, q)
}

func (s *projectService) Update(ctx context.Context, id uint, in domain.ProjectInput) (*domain.Project, error) {
	in = normalize(in)
	if err := validate(in); err != nil {
		return nil, err
	}
	p, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	apply(p, in)
	if err := s.repo.Update(ctx, p); err != nil {
		return nil, err
	}
	return s.repo.GetByID(ctx, id)
}

func (s *projectService) Delete(ctx context.Context, id uint) error {
	return s.repo.Delete(ctx, id)
}

func (s *projectService) DeleteSelection(ctx context.Context, q listview.Query, sel listview.Selection) (int64, error) {
	return s.repo.DeleteSelection(ctx, q, sel)
}

func validate(in domain.ProjectInput) error {
	if err := pkg.First(
		pkg.RequireText("code", in.Code, 32),
		pkg.RequireText("name", in.Name, 200),
		pkg.OptionalText("notes", in.Notes, 1000),
	); err != nil {
		return err
	}
	if !domain.ValidProjectStatus(in.Status) {
		return domain.Invalid("status must be one of planning, active, closed")
	}
	if in.StartDate != nil && in.EndDate != nil && in.EndDate.Before(*in.StartDate) {
		return domain.Invalid("end_date must not be before start_date")
	}
	return nil
}

func apply(p *domain.Project, in domain.ProjectInput) {
	p.Code = in.Code
	p.Name = in.Name
	p.CustomerID = in.CustomerID
	p.Customer = nil
	p.Status = in.Status
	p.StartDate = in.StartDate
	p.EndDate = in.EndDate
	p.Notes = in.Notes
}
