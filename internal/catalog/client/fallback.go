package client

import (
	"context"

	"github.com/tair/furniture-storefront/internal/catalog/domain"
	"github.com/tair/furniture-storefront/pkg/logger"
)

// FallbackService degrades public catalog reads to sample data when the
// backend is unavailable. Contact submissions and admin calls are never
// faked.
type FallbackService struct {
	domain.Service
	sample domain.PublicService
}

func NewFallbackService(primary domain.Service, sample domain.PublicService) *FallbackService {
	return &FallbackService{Service: primary, sample: sample}
}

func (s *FallbackService) Categories(ctx context.Context) ([]domain.Category, error) {
	return withFallback(ctx, "categories", s.Service.Categories, s.sample.Categories)
}

func (s *FallbackService) Product(ctx context.Context, id string) (*domain.Product, error) {
	return withFallback(ctx, "product",
		func(ctx context.Context) (*domain.Product, error) { return s.Service.Product(ctx, id) },
		func(ctx context.Context) (*domain.Product, error) { return s.sample.Product(ctx, id) })
}

func (s *FallbackService) ProductImages(ctx context.Context, id string) ([]domain.ProductImage, error) {
	return withFallback(ctx, "product_images",
		func(ctx context.Context) ([]domain.ProductImage, error) { return s.Service.ProductImages(ctx, id) },
		func(ctx context.Context) ([]domain.ProductImage, error) { return s.sample.ProductImages(ctx, id) })
}

func (s *FallbackService) ProductFiles(ctx context.Context, id string) ([]domain.ProductFile, error) {
	return withFallback(ctx, "product_files",
		func(ctx context.Context) ([]domain.ProductFile, error) { return s.Service.ProductFiles(ctx, id) },
		func(ctx context.Context) ([]domain.ProductFile, error) { return s.sample.ProductFiles(ctx, id) })
}

func (s *FallbackService) Solutions(ctx context.Context) ([]domain.Solution, error) {
	return withFallback(ctx, "solutions", s.Service.Solutions, s.sample.Solutions)
}

func (s *FallbackService) Certifications(ctx context.Context) ([]domain.Certification, error) {
	return withFallback(ctx, "certifications", s.Service.Certifications, s.sample.Certifications)
}

func withFallback[T any](ctx context.Context, what string, primary, sample func(context.Context) (T, error)) (T, error) {
	out, err := primary(ctx)
	if err == nil || !IsUnavailable(err) {
		return out, err
	}

	logger.Warn(ctx).Err(err).Str("resource", what).Msg("Backend unavailable, serving sample data")
	return sample(ctx)
}

var _ domain.Service = (*FallbackService)(nil)
