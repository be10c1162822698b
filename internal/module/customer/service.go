package customer

import (
	"context"

	"github.com/a89529294/project-assembly-monorepo-sub001/internal/domain"
	"github.com/a89529294/project-assembly-monorepo-sub001/internal/listview"
	"github.com/a89529294/project-assembly-monorepo-sub001/internal/pkg"
)

type customerService struct {
	repo domain.CustomerRepository
}

// NewCustomerService creates a CustomerService with the given repository.
func NewCustomerService(repo domain.CustomerRepository) domain.CustomerService {
	return &customerService{repo: repo}
}

func (s *customerService) Create(ctx context.Context, in domain.CustomerInput) (*domain.Customer, error) {
	in = normalize(in)
	if err := validate(in); err != nil {
		return nil, err
	}
	c := &domain.Customer{}
	apply(c, in)
	if err := s.repo.Create(ctx, c); err != nil {
		return nil, err
	}
	return c, nil
}

func (s *customerService) Get(ctx context.Context, id uint) (*domain.Customer, error) {
	return s.repo.GetByID(ctx, id)
}

func (s *customerService) List(ctx context.Context, q listview.Query) (*domain.PageResult[domain.Customer], error) {
	return s.repo.List(ctx, q)
}

func (s *customerService) Update(ctx context.Context, id uint, in domain.CustomerInput) (*domain.Customer, error) {
	in = normalize(in)
	if err := validate(in); err != nil {
		return nil, err
	}
	c, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	apply(c, in)
	if err := s.repo.Update(ctx, c); err != nil {
		return nil, err
	}
	return c, nil
}

// Delete removes a customer. Its projects are kept without a customer.
func (s *customerService) Delete(ctx context.Context, id uint) error {
	return s.repo.Delete(ctx, id)
}

func (s *customerService) DeleteSelection(ctx context.Context, q listview.Query, sel listview.Selection) (int64, error) {
	return s.repo.DeleteSelection(ctx, q, sel)
}

func validate(in domain.CustomerInput) error {
	return pkg.First(
		pkg.RequireText("code", in.Code, 32),
		pkg.RequireText("name", in.Name, 200),
		pkg.OptionalText("contact_person", in.ContactPerson, 100),
		pkg.OptionalText("phone", in.Phone, 50),
		pkg.OptionalEmail("email", in.Email),
		pkg.OptionalText("address", in.Address, 500),
		pkg.OptionalText("tax_id", in.TaxID, 50),
	)
}

func apply(c *domain.Customer, in domain.CustomerInput) {
	c.Code = in.Code
	c.Name = in.Name
	c.ContactPerson = in.ContactPerson
	c.Phone = in.Phone
	c.Email = in.Email
	c.Address = in.Address
	c.TaxID = in.TaxID
}
