package service

import (
	"context"
	"errors"
	"strings"

	"orderservice/pkg/domain/model"
)

var ErrProductNameRequired = errors.New("product name is required")

type ProductService interface {
	ListProducts(ctx context.Context) ([]model.Product, error)
	CreateProduct(ctx context.Context, name string, unitPrice float64) (int64, error)
	UpdateProduct(ctx context.Context, id int64, name string, unitPrice float64) error
	DeleteProduct(ctx context.Context, id int64) error
}

func NewProductService(repo model.ProductRepository) ProductService {
	return &productService{repo: repo}
}

type productService struct {
	repo model.ProductRepository
}

func (s *productService) ListProducts(ctx context.Context) ([]model.Product, error) {
	return s.repo.FindAll(ctx)
}

func (s *productService) CreateProduct(ctx context.Context, name string, unitPrice float64) (int64, error) {
	if strings.TrimSpace(name) == "" {
		return 0, ErrProductNameRequired
	}
	return s.repo.Create(ctx, &model.Product{Name: name, UnitPrice: unitPrice})
}

func (s *productService) UpdateProduct(ctx context.Context, id int64, name string, unitPrice float64) error {
	if strings.TrimSpace(name) == "" {
		return ErrProductNameRequired
	}

	// The store overwrites unconditionally, so existence is checked here
	// to keep not-found semantics.
	if _, err := s.repo.FindByID(ctx, id); err != nil {
		return err
	}

	return s.repo.Update(ctx, &model.Product{ID: id, Name: name, UnitPrice: unitPrice})
}

func (s *productService) DeleteProduct(ctx context.Context, id int64) error {
	affected, err := s.repo.Delete(ctx, id)
	if err != nil {
		return err
	}
	if affected == 0 {
		return model.ErrProductNotFound
	}
	return nil
}
