package domain

import (
	"context"
	"errors"
)

// ErrNotFound is returned when the backend has no such resource
var ErrNotFound = errors.New("catalog: not found")

// PublicService covers the catalog reads and the contact form available to
// every visitor
type PublicService interface {
	Categories(ctx context.Context) ([]Category, error)
	Product(ctx context.Context, id string) (*Product, error)
	ProductImages(ctx context.Context, id string) ([]ProductImage, error)
	ProductFiles(ctx context.Context, id string) ([]ProductFile, error)
	Solutions(ctx context.Context) ([]Solution, error)
	Certifications(ctx context.Context) ([]Certification, error)
	SubmitContact(ctx context.Context, form ContactSubmission) (*ContactMessage, error)
}

// AdminService covers the calls made with an admin bearer token
type AdminService interface {
	Login(ctx context.Context, email, password string) (*LoginResult, error)
	Profile(ctx context.Context, token string) (*AdminUser, error)
	ListContacts(ctx context.Context, token string, filter ContactFilter) ([]ContactMessage, error)
	UpdateContactStatus(ctx context.Context, token, id string, status ContactStatus) (*ContactMessage, error)
	DeleteContact(ctx context.Context, token, id string) error
	ContactStats(ctx context.Context, token string) (*ContactStats, error)
	UnreadCount(ctx context.Context, token string) (int, error)
	AdminProducts(ctx context.Context, token string) ([]Product, error)
	CreateProduct(ctx context.Context, token string, input ProductInput) (*Product, error)
}

// Service is the whole backend API consumed by the storefront
type Service interface {
	PublicService
	AdminService
}
