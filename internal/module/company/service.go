package company

import (
	"context"
	"sync"

	"github.com/a89529294/project-assembly-monorepo-sub001/internal/domain"
	"github.com/a89529294/project-assembly-monorepo-sub001/internal/pkg"
)

type companyService struct {
	repo domain.CompanyRepository
	// serializes the exists check of Create with the insert
	mu sync.Mutex
}

// NewCompanyService creates a CompanyService with the given repository.
func NewCompanyService(repo domain.CompanyRepository) domain.CompanyService {
	return &companyService{repo: repo}
}

func (s *companyService) Get(ctx context.Context) (*domain.Company, error) {
	return s.repo.Get(ctx)
}

func (s *companyService) Create(ctx context.Context, in domain.CompanyInput) (*domain.Company, error) {
	in = normalize(in)
	if err := validate(in); err != nil {
		return nil, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	_, err := s.repo.Get(ctx)
	switch {
	case err == nil:
		return nil, domain.NewAppError(domain.CodeAlreadyExists, "company already exists", nil)
	case !domain.IsNotFound(err):
		return nil, err
	}
	c := &domain.Company{}
	apply(c, in)
	if err := s.repo.Create(ctx, c); err != nil {
		return nil, err
	}
	return c, nil
}

func (s *companyService) Update(ctx context.Context, in domain.CompanyInput) (*domain.Company, error) {
	in = normalize(in)
	if err := validate(in); err != nil {
		return nil, err
	}
	c, err := s.repo.Get(ctx)
	if err != nil {
		return nil, err
	}
	apply(c, in)
	if err := s.repo.Update(ctx, c); err != nil {
		return nil, err
	}
	return c, nil
}

func (s *companyService) SetLogo(ctx context.Context, url string) (*domain.Company, error) {
	c, err := s.repo.Get(ctx)
	if err != nil {
		return nil, err
	}
	c.LogoURL = url
	if err := s.repo.Update(ctx, c); err != nil {
		return nil, err
	}
	return c, nil
}

func validate(in domain.CompanyInput) error {
	return pkg.First(
		pkg.RequireText("name", in.Name, 200),
		pkg.OptionalText("tax_id", in.TaxID, 50),
		pkg.OptionalText("phone", in.Phone, 50),
		pkg.OptionalEmail("email", in.Email),
		pkg.OptionalText("address", in.Address, 500),
	)
}

func apply(c *domain.Company, in domain.CompanyInput) {
	c.Name = in.Name
	c.TaxID = in.TaxID
	c.Phone = in.Phone
	c.Email = in.Email
	c.Address = in.Address
}
