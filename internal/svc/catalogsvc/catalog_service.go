package catalogsvc

import (
	"bytes"
	"context"
	"fmt"
	"image/png"

	"github.com/mkrupp/storefront/internal/domain"
	"github.com/mkrupp/storefront/internal/infra/logging"
	"github.com/mkrupp/storefront/internal/repo/blob"
)

// CatalogService serves the fixed product grid. Buying only confirms the choice.
type CatalogService struct {
	images   blob.Repository
	products []domain.Product
	log      logging.Logger
}

// NewCatalogService creates a new CatalogService with pictures in the
// "catalog" repository of repoFactory.
func NewCatalogService(ctx context.Context, repoFactory blob.RepositoryFactory, cfg CatalogConfig) (*CatalogService, error) {
	images, err := repoFactory(ctx, "catalog", "png")
	if err != nil {
		return nil, fmt.Errorf("new images repository: %w", err)
	}

	products := make([]domain.Product, 0, cfg.Products)
	for i := range cfg.Products {
		products = append(products, domain.Product{
			ID:    i + 1,
			Title: fmt.Sprintf("Casa %d", i+1),
			Image: images.Path(houseID(i % len(wallColors))),
		})
	}

	return &CatalogService{
		images:   images,
		products: products,
		log:      logging.GetLogger("svc.catalogsvc.catalog_service"),
	}, nil
}

func houseID(i int) domain.BlobID {
	return domain.BlobID(fmt.Sprintf("house%d", i+1))
}

// Products returns the grid in display order.
func (s *CatalogService) Products() []domain.Product {
	return append([]domain.Product(nil), s.products...)
}

// EnsureDemoImages draws the house pictures that do not exist yet.
func (s *CatalogService) EnsureDemoImages(ctx context.Context) (err error) {
	defer func() {
		if err != nil {
			s.log.ErrorContext(ctx, "ensure demo images failed", "error", err)
		} else {
			s.log.DebugContext(ctx, "demo images ensured")
		}
	}()

	for i, wall := range wallColors {
		id := houseID(i)

		if err := s.ensureImage(ctx, id, func() ([]byte, error) {
			var buf bytes.Buffer
			if err := png.Encode(&buf, drawHouse(wall)); err != nil {
				return nil, fmt.Errorf("encode png: %w", err)
			}

			return buf.Bytes(), nil
		}); err != nil {
			return fmt.Errorf("ensure %s: %w", id, err)
		}
	}

	return nil
}

func (s *CatalogService) ensureImage(ctx context.Context, id domain.BlobID, render func() ([]byte, error)) error {
	unlock, err := s.images.Lock(ctx, id, true)
	if err != nil {
		return fmt.Errorf("lock: %w", err)
	}
	defer unlock()

	if s.images.Exists(ctx, id) {
		return nil
	}

	body, err := render()
	if err != nil {
		return err
	}

	if err := s.images.Store(ctx, domain.NewBlob(id, body)); err != nil {
		return fmt.Errorf("store: %w", err)
	}

	return nil
}

// Product returns the product with the given id, or domain.ErrNotFound.
func (s *CatalogService) Product(id int) (domain.Product, error) {
	if id < 1 || id > len(s.products) {
		return domain.Product{}, fmt.Errorf("%w: product %d", domain.ErrNotFound, id)
	}

	return s.products[id-1], nil
}

// Buy returns the confirmation shown after choosing product id. No payment takes place.
func (s *CatalogService) Buy(ctx context.Context, id int) (string, error) {
	product, err := s.Product(id)
	if err != nil {
		return "", err
	}

	s.log.InfoContext(ctx, "product chosen", logging.Group("product", "id", product.ID, "title", product.Title))

	return fmt.Sprintf("You chose %s. No payment was taken.", product.Title), nil
}
