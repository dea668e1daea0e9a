package handlers

import (
	"storefront/internal/cart"
	"storefront/internal/catalog"
	"storefront/internal/config"
	"storefront/internal/kv"
	"storefront/internal/metrics"
	"storefront/internal/services"

	"github.com/rs/zerolog"
)

type Deps struct {
	CatalogHandler *CatalogHandler
	FilterHandler  *FilterHandler
	ProductHandler *ProductHandler
	CartHandler    *CartHandler
	APIHandler     *APIHandler

	CartService *services.CartService
}

// NewDeps wires handlers over a catalog source and the session storage.
// The acknowledger is owned by the caller, which stops it on shutdown.
func NewDeps(cfg config.Config, source catalog.Source, storage kv.Store, ack *cart.Acknowledger, m *metrics.Metrics, logger zerolog.Logger) *Deps {
	var rec cart.Recorder
	if m != nil {
		rec = m
	}
	catalogSvc := services.NewCatalogService(source, cfg.PageSize, logger)
	cartSvc := services.NewCartService(storage, source, ack, rec, logger)

	return &Deps{
		CatalogHandler: &CatalogHandler{Catalog: catalogSvc, Cart: cartSvc},
		FilterHandler:  &FilterHandler{Metrics: m, Debounce: cfg.DebounceWindow, Logger: logger},
		ProductHandler: &ProductHandler{Catalog: catalogSvc, Cart: cartSvc},
		CartHandler:    &CartHandler{Cart: cartSvc},
		APIHandler:     &APIHandler{Catalog: catalogSvc, Cart: cartSvc},
		CartService:    cartSvc,
	}
}
