package services

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"storefront/internal/catalog"
	"storefront/internal/domain"
)

type CatalogService struct {
	Source   catalog.Source
	PageSize int
	logger   zerolog.Logger
}

func NewCatalogService(source catalog.Source, pageSize int, logger zerolog.Logger) *CatalogService {
	if pageSize < 1 {
		pageSize = catalog.DefaultPageSize
	}
	return &CatalogService{
		Source:   source,
		PageSize: pageSize,
		logger:   logger.With().Str("tag", "services.CatalogService").Logger(),
	}
}

// Listing is everything the product listing page shows for one set of criteria.
type Listing struct {
	catalog.Result
	Criteria   domain.Criteria
	Categories []string
	Pages      []catalog.PageLink
	StartItem  int
	EndItem    int
}

func (l Listing) HasPrev() bool { return l.Page > 1 }
func (l Listing) HasNext() bool { return l.Page < l.TotalPages }

// Browse fetches products and categories concurrently and applies c.
// Either fetch failing fails the whole listing.
func (s *CatalogService) Browse(ctx context.Context, c domain.Criteria) (Listing, error) {
	var (
		products   []domain.Product
		categories []string
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		products, err = s.Source.FetchAllProducts(gctx)
		return err
	})
	g.Go(func() error {
		var err error
		categories, err = s.Source.FetchCategories(gctx)
		return err
	})
	if err := g.Wait(); err != nil {
		return Listing{}, fmt.Errorf("failed browsing catalog with error=%w", err)
	}

	res := catalog.Apply(products, c, s.PageSize)
	start, end := catalog.PageInfo(res.Page, res.PageSize, res.TotalMatching)
	s.logger.Debug().
		Str("process", "browsing catalog").
		Int("matching", res.TotalMatching).
		Int("page", res.Page).
		Int("pages", res.TotalPages).
		Msg("applied criteria")

	return Listing{
		Result:     res,
		Criteria:   c,
		Categories: categories,
		Pages:      catalog.PageWindow(res.Page, res.TotalPages),
		StartItem:  start,
		EndItem:    end,
	}, nil
}

func (s *CatalogService) GetProduct(ctx context.Context, id int) (domain.Product, error) {
	p, err := s.Source.FetchProductByID(ctx, id)
	if err != nil {
		return domain.Product{}, fmt.Errorf("failed getting product %d with error=%w", id, err)
	}
	return p, nil
}
