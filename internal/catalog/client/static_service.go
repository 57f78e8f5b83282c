package client

import (
	"context"
	"slices"
	"time"

	"github.com/tair/furniture-storefront/internal/catalog/domain"
)

// StaticService serves built-in sample data so the storefront stays
// demonstrable without a backend. It accepts contact submissions without
// storing them and refuses every admin call.
type StaticService struct {
	CategoryList      []domain.Category
	ProductList       []domain.Product
	SolutionList      []domain.Solution
	CertificationList []domain.Certification
	now               func() time.Time
}

// NewStaticService constructs a StaticService with the sample catalog
func NewStaticService() *StaticService {
	return &StaticService{
		CategoryList: []domain.Category{
			{ID: "1", Name: "Office Furniture", Slug: "office-furniture", Image: "/images/categories/office.jpg"},
			{ID: "2", Name: "School Furniture", Slug: "school-furniture", Image: "/images/categories/school.jpg"},
			{ID: "3", Name: "Laboratory Furniture", Slug: "laboratory-furniture", Image: "/images/categories/lab.jpg"},
		},
		ProductList: []domain.Product{
			{
				ID: "1", Name: "Executive Desk", Slug: "executive-desk", Model: "ED-1800",
				CategoryID: "1", Category: "Office Furniture", Image: "/images/products/executive-desk.jpg", IsActive: true,
				Images: []domain.ProductImage{{ID: "1", URL: "/images/products/executive-desk.jpg", IsPrimary: true}},
			},
			{
				ID: "2", Name: "Ergonomic Chair", Slug: "ergonomic-chair", Model: "EC-200",
				CategoryID: "1", Category: "Office Furniture", Image: "/images/products/ergonomic-chair.jpg", IsActive: true,
				Images: []domain.ProductImage{{ID: "2", URL: "/images/products/ergonomic-chair.jpg", IsPrimary: true}},
			},
			{
				ID: "3", Name: "Student Desk", Slug: "student-desk", Model: "SD-60",
				CategoryID: "2", Category: "School Furniture", Image: "/images/products/student-desk.jpg", IsActive: true,
			},
		},
		SolutionList: []domain.Solution{
			{ID: "1", Title: "Office Fit-Out", Description: "Complete furnishing of open-plan and private offices."},
			{ID: "2", Title: "Classroom Equipment", Description: "Durable furniture for schools and universities."},
		},
		CertificationList: []domain.Certification{
			{ID: "1", Name: "ISO 9001", Issuer: "ISO"},
			{ID: "2", Name: "ISO 14001", Issuer: "ISO"},
		},
		now: time.Now,
	}
}

// Reads return copies so callers may rewrite image URLs in place.

func (s *StaticService) Categories(context.Context) ([]domain.Category, error) {
	return slices.Clone(s.CategoryList), nil
}

func (s *StaticService) Product(_ context.Context, id string) (*domain.Product, error) {
	for i := range s.ProductList {
		if s.ProductList[i].ID == id {
			p := s.ProductList[i]
			p.Images = slices.Clone(p.Images)
			p.Files = slices.Clone(p.Files)
			return &p, nil
		}
	}
	return nil, domain.ErrNotFound
}

func (s *StaticService) ProductImages(ctx context.Context, id string) ([]domain.ProductImage, error) {
	p, err := s.Product(ctx, id)
	if err != nil {
		return nil, err
	}
	return p.Images, nil
}

func (s *StaticService) ProductFiles(ctx context.Context, id string) ([]domain.ProductFile, error) {
	p, err := s.Product(ctx, id)
	if err != nil {
		return nil, err
	}
	return p.Files, nil
}

func (s *StaticService) Solutions(context.Context) ([]domain.Solution, error) {
	return slices.Clone(s.SolutionList), nil
}

func (s *StaticService) Certifications(context.Context) ([]domain.Certification, error) {
	return slices.Clone(s.CertificationList), nil
}

func (s *StaticService) SubmitContact(_ context.Context, form domain.ContactSubmission) (*domain.ContactMessage, error) {
	return &domain.ContactMessage{ContactSubmission: form, Status: domain.ContactNew, CreatedAt: s.now()}, nil
}

func (s *StaticService) Login(context.Context, string, string) (*domain.LoginResult, error) {
	return nil, ErrUnauthorized
}

func (s *StaticService) Profile(context.Context, string) (*domain.AdminUser, error) {
	return nil, ErrUnauthorized
}

func (s *StaticService) ListContacts(context.Context, string, domain.ContactFilter) ([]domain.ContactMessage, error) {
	return nil, ErrUnauthorized
}

func (s *StaticService) UpdateContactStatus(context.Context, string, string, domain.ContactStatus) (*domain.ContactMessage, error) {
	return nil, ErrUnauthorized
}

func (s *StaticService) DeleteContact(context.Context, string, string) error {
	return ErrUnauthorized
}

func (s *StaticService) ContactStats(context.Context, string) (*domain.ContactStats, error) {
	return nil, ErrUnauthorized
}

func (s *StaticService) UnreadCount(context.Context, string) (int, error) {
	return 0, ErrUnauthorized
}

func (s *StaticService) AdminProducts(context.Context, string) ([]domain.Product, error) {
	return nil, ErrUnauthorized
}

func (s *StaticService) CreateProduct(context.Context, string, domain.ProductInput) (*domain.Product, error) {
	return nil, ErrUnauthorized
}

var _ domain.Service = (*StaticService)(nil)
