package sync

import (
	"context"
	"errors"
	"fmt"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/ontiuk/eskimo-sync/internal/domain/catalog"
	"github.com/ontiuk/eskimo-sync/internal/domain/shared"
	syncdomain "github.com/ontiuk/eskimo-sync/internal/domain/sync"
)

// SyncProducts pulls the full remote product list and imports every product
// that has no cart mapping yet. Each product's SKU count decides the local
// product type. Local IDs are written back to the remote in batches.
func (s *Service) SyncProducts(ctx context.Context) (*syncdomain.Result, error) {
	return s.withLease(ctx, OpCatalogSync, func(ctx context.Context) (*syncdomain.Result, error) {
		first, err := syncdomain.NewBatchRequest(1, syncdomain.MaxProductRecords, syncdomain.MaxProductRecords)
		if err != nil {
			return nil, err
		}
		return s.importProducts(ctx, first)
	})
}

// SyncModifiedProducts pulls products modified within the watermark window
// and imports new ones or refreshes already-imported ones.
func (s *Service) SyncModifiedProducts(ctx context.Context, unit string, amount int64) (*syncdomain.Result, error) {
	return s.withLease(ctx, OpCatalogSync, func(ctx context.Context) (*syncdomain.Result, error) {
		since, err := syncdomain.Watermark(unit, amount, s.now())
		if err != nil {
			return nil, err
		}
		first, err := syncdomain.NewBatchRequest(1, syncdomain.MaxProductRecords, syncdomain.MaxProductRecords)
		if err != nil {
			return nil, err
		}
		return s.importProducts(ctx, first.WithSince(since))
	})
}

// SyncProductRange pulls one page of products at the given cursor position
// and imports it. Unlike the full sync it never advances past the page.
func (s *Service) SyncProductRange(ctx context.Context, start, count int) (*syncdomain.Result, error) {
	return s.withLease(ctx, OpCatalogSync, func(ctx context.Context) (*syncdomain.Result, error) {
		req, err := syncdomain.NewBatchRequest(start, count, syncdomain.MaxProductRecords)
		if err != nil {
			return nil, err
		}

		page, err := s.gateway.Products(ctx, req)
		if err != nil {
			return nil, err
		}

		result := &syncdomain.Result{}
		var mappings []syncdomain.IdentifierMapping
		for _, rp := range page {
			result.TotalCount++
			localID, err := s.importProduct(ctx, rp, result)
			if err != nil {
				return nil, err
			}
			if localID != "" {
				mappings = append(mappings, syncdomain.IdentifierMapping{EskimoID: rp.ID, WebID: localID})
			}
		}

		if err := s.writeBack.flush(ctx, mappings, s.gateway.UpdateProductCartIDs, result); err != nil {
			return nil, err
		}
		result.Finalize(s.now())
		return result, nil
	})
}

// SyncProduct imports or refreshes a single product by remote identifier.
// PathAll runs the full import flow; the narrow paths refresh only the named
// field subset of an already-imported product and never create one.
func (s *Service) SyncProduct(ctx context.Context, id syncdomain.Ident, path syncdomain.ImportPath) (*syncdomain.Result, error) {
	if path == "" {
		path = syncdomain.PathAll
	}
	if !path.IsValid() {
		return nil, fmt.Errorf("%w: import path %q", syncdomain.ErrValidation, path)
	}

	return s.withLease(ctx, OpCatalogSync, func(ctx context.Context) (*syncdomain.Result, error) {
		rp, err := s.gateway.ProductByID(ctx, id)
		if err != nil {
			return nil, err
		}

		result := &syncdomain.Result{TotalCount: 1}
		if path != syncdomain.PathAll {
			local, err := s.products.FindByEskimoID(ctx, rp.ID)
			if err != nil {
				if errors.Is(err, shared.ErrNotFound) {
					result.Fail(rp.ID.String(), "product not imported")
					result.Finalize(s.now())
					return result, nil
				}
				return nil, err
			}
			if err := s.refreshProduct(ctx, local, *rp, path); err != nil {
				result.Fail(rp.ID.String(), err.Error())
			} else {
				result.ImportedCount++
			}
			result.Finalize(s.now())
			return result, nil
		}

		var mappings []syncdomain.IdentifierMapping
		localID, err := s.importProduct(ctx, *rp, result)
		if err != nil {
			return nil, err
		}
		if localID != "" {
			mappings = append(mappings, syncdomain.IdentifierMapping{EskimoID: rp.ID, WebID: localID})
		}

		if err := s.writeBack.flush(ctx, mappings, s.gateway.UpdateProductCartIDs, result); err != nil {
			return nil, err
		}
		result.Finalize(s.now())
		return result, nil
	})
}

func (s *Service) importProducts(ctx context.Context, first syncdomain.BatchRequest) (*syncdomain.Result, error) {
	result := &syncdomain.Result{}
	var mappings []syncdomain.IdentifierMapping

	err := collectPages(ctx, first, s.gateway.Products, func(page []syncdomain.RemoteProduct) error {
		for _, rp := range page {
			result.TotalCount++
			localID, err := s.importProduct(ctx, rp, result)
			if err != nil {
				return err
			}
			if localID != "" {
				mappings = append(mappings, syncdomain.IdentifierMapping{EskimoID: rp.ID, WebID: localID})
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	if err := s.writeBack.flush(ctx, mappings, s.gateway.UpdateProductCartIDs, result); err != nil {
		return nil, err
	}

	result.Finalize(s.now())
	s.logger.Info("product sync finished",
		zap.Int("total", result.TotalCount),
		zap.Int("imported", result.ImportedCount),
		zap.Int("skipped", result.SkippedCount),
		zap.Int("failed", result.FailedCount),
	)
	return result, nil
}

// importProduct imports or refreshes one remote product. The returned local
// ID is non-empty when a mapping should be written back; business-rule
// failures are recorded on result and never abort the pass.
func (s *Service) importProduct(ctx context.Context, rp syncdomain.RemoteProduct, result *syncdomain.Result) (string, error) {
	existing, err := s.products.FindByEskimoID(ctx, rp.ID)
	if err != nil && !errors.Is(err, shared.ErrNotFound) {
		return "", err
	}

	if existing != nil {
		if err := s.refreshProduct(ctx, existing, rp, syncdomain.PathAll); err != nil {
			result.Fail(rp.ID.String(), err.Error())
			return "", nil
		}
		result.SkippedCount++
		// Re-queue the mapping in case a previous write-back batch failed
		if !rp.Reconciled() {
			return existing.ID, nil
		}
		return "", nil
	}

	if rp.Reconciled() {
		result.SkippedCount++
		return "", nil
	}

	if !rp.CartCategoryConfirmed() {
		s.logger.Warn("product category has no confirmed cart mapping",
			zap.String("eskimo_id", rp.ID.String()),
			zap.String("category_id", rp.CategoryID.String()),
		)
		result.Fail(rp.ID.String(), "category has no confirmed cart mapping")
		return "", nil
	}

	skus, err := s.productSkus(ctx, rp)
	if err != nil {
		return "", err
	}
	agg := syncdomain.ProductAggregate{Product: rp, SKUs: skus}
	if len(agg.SKUs) == 0 {
		result.Fail(rp.ID.String(), syncdomain.ErrNoSkus.Error())
		return "", nil
	}

	category, err := s.categories.FindByEskimoID(ctx, rp.CategoryID)
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			s.logger.Warn("product category not imported",
				zap.String("eskimo_id", rp.ID.String()),
				zap.String("category_id", rp.CategoryID.String()),
			)
			result.Fail(rp.ID.String(), syncdomain.ErrCategoryNotMapped.Error())
			return "", nil
		}
		return "", err
	}

	product, err := catalog.NewProduct(rp.ID, category.ID, rp.Title, rp.ShortDescription, rp.LongDescription)
	if err != nil {
		result.Fail(rp.ID.String(), err.Error())
		return "", nil
	}

	if agg.IsVariable() {
		for _, sku := range agg.SKUs {
			price, regular := skuPrices(sku)
			variant, err := catalog.NewVariant(sku.ProductID, sku.Code, sku.Colour, sku.Size, price, regular, catalog.TaxClassForCode(sku.TaxCodeID), sku.StockAmount)
			if err == nil {
				err = product.AddVariant(variant)
			}
			if err != nil {
				result.Fail(rp.ID.String(), err.Error())
				return "", nil
			}
		}
		// The parent carries the aggregate stock across its variants
		product.Stock = agg.TotalStock()
		product.RebuildAttributes()
	} else {
		sku := agg.SKUs[0]
		price, regular := simplePrices(rp, sku)
		product.SetSimple(sku.Code, price, regular, catalog.TaxClassForCode(sku.TaxCodeID), sku.StockAmount)
		product.SetAttributes(sku.Colour, sku.Size)
	}

	if err := s.products.Save(ctx, product); err != nil {
		if errors.Is(err, shared.ErrAlreadyExists) {
			result.SkippedCount++
			return product.ID, nil
		}
		return "", err
	}

	result.ImportedCount++
	return product.ID, nil
}

// refreshProduct updates an already-imported product from its remote state.
// The path bounds what changes: PathAll rewrites text, pricing, tax, stock
// and attributes, PathCategory re-resolves the category mapping only, and
// the remaining paths touch the matching SKU fields alone.
func (s *Service) refreshProduct(ctx context.Context, local *catalog.Product, rp syncdomain.RemoteProduct, path syncdomain.ImportPath) error {
	if path == syncdomain.PathCategory {
		category, err := s.categories.FindByEskimoID(ctx, rp.CategoryID)
		if err != nil {
			if errors.Is(err, shared.ErrNotFound) {
				return syncdomain.ErrCategoryNotMapped
			}
			return err
		}
		local.CategoryID = category.ID
		local.UpdatedAt = s.now()
		return s.products.Update(ctx, local)
	}

	if path == syncdomain.PathAll {
		if rp.Title != "" {
			local.Title = rp.Title
			local.Slug = catalog.Slugify(rp.Title)
		}
		if rp.ShortDescription != "" {
			local.Excerpt = rp.ShortDescription
		}
		if rp.LongDescription != "" {
			local.Body = rp.LongDescription
		}
	}

	skus, err := s.productSkus(ctx, rp)
	if err != nil {
		return err
	}
	for _, sku := range skus {
		refreshFromSku(local, rp, sku, path)
	}
	if local.Type == catalog.ProductTypeVariable {
		if path.TouchesStock() {
			local.Stock = local.TotalStock()
		}
		if path == syncdomain.PathAll {
			local.RebuildAttributes()
		}
	}

	return s.products.Update(ctx, local)
}

// refreshFromSku applies one remote SKU to the local product, bounded by the
// import path
func refreshFromSku(local *catalog.Product, rp syncdomain.RemoteProduct, sku syncdomain.RemoteSku, path syncdomain.ImportPath) {
	taxClass := catalog.TaxClassForCode(sku.TaxCodeID)

	if local.Type == catalog.ProductTypeSimple && local.SkuCode == sku.Code {
		price, regular := simplePrices(rp, sku)
		if path == syncdomain.PathAll {
			local.SetSimple(sku.Code, price, regular, taxClass, sku.StockAmount)
			local.SetAttributes(sku.Colour, sku.Size)
			return
		}
		if path.TouchesPrice() {
			local.UpdatePrices(price, regular)
		}
		if path.TouchesTax() {
			local.UpdateTaxClass(taxClass)
		}
		if path.TouchesStock() {
			local.UpdateStock(sku.StockAmount)
		}
		return
	}

	v := local.VariantBySku(sku.Code)
	if v == nil {
		return
	}
	price, regular := skuPrices(sku)
	if path == syncdomain.PathAll {
		v.UpdatePricing(price, regular, taxClass, sku.StockAmount)
		return
	}
	if path.TouchesPrice() {
		v.UpdatePrices(price, regular)
	}
	if path.TouchesTax() {
		v.UpdateTaxClass(taxClass)
	}
	if path.TouchesStock() {
		v.UpdateStock(sku.StockAmount)
	}
}

// productSkus returns the product's SKUs, fetching them when not embedded
func (s *Service) productSkus(ctx context.Context, rp syncdomain.RemoteProduct) ([]syncdomain.RemoteSku, error) {
	if len(rp.SKUs) > 0 {
		return rp.SKUs, nil
	}
	skus, err := s.gateway.SkusByProduct(ctx, rp.ID)
	if err != nil {
		if errors.Is(err, syncdomain.ErrNoData) {
			return nil, nil
		}
		return nil, err
	}
	return skus, nil
}

// skuPrices returns (sell, regular) with the unit price filling either gap
func skuPrices(sku syncdomain.RemoteSku) (decimal.Decimal, decimal.Decimal) {
	price := sku.SellPrice
	if price.IsZero() {
		price = sku.UnitPrice
	}
	regular := sku.UnitPrice
	if regular.IsZero() {
		regular = price
	}
	return price, regular
}

// simplePrices returns (sell, regular) for a simple product. The product's
// from_price, when present, overrides the SKU as the regular price.
func simplePrices(rp syncdomain.RemoteProduct, sku syncdomain.RemoteSku) (decimal.Decimal, decimal.Decimal) {
	price, regular := skuPrices(sku)
	if !rp.FromPrice.IsZero() {
		regular = rp.FromPrice
	}
	return price, regular
}

// PushProductMappings re-sends the identifier mapping of every local product
// to the remote system
func (s *Service) PushProductMappings(ctx context.Context) (*syncdomain.Result, error) {
	return s.withLease(ctx, OpCatalogSync, func(ctx context.Context) (*syncdomain.Result, error) {
		return s.writeProductMappings(ctx, false)
	})
}

// ResetProductMappings clears the remote Web_ID of every local product so the
// next full sync treats the whole catalog as unreconciled
func (s *Service) ResetProductMappings(ctx context.Context) (*syncdomain.Result, error) {
	return s.withLease(ctx, OpCatalogSync, func(ctx context.Context) (*syncdomain.Result, error) {
		return s.writeProductMappings(ctx, true)
	})
}

func (s *Service) writeProductMappings(ctx context.Context, reset bool) (*syncdomain.Result, error) {
	result := &syncdomain.Result{}
	mappings, err := collectMappings(ctx, func(ctx context.Context, offset, limit int) ([]syncdomain.IdentifierMapping, int64, error) {
		rows, total, err := s.products.FindAll(ctx, offset, limit)
		if err != nil {
			return nil, 0, err
		}
		out := make([]syncdomain.IdentifierMapping, 0, len(rows))
		for _, p := range rows {
			out = append(out, syncdomain.IdentifierMapping{EskimoID: p.EskimoID, WebID: mappingWebID(p.ID, reset)})
		}
		return out, total, nil
	})
	if err != nil {
		return nil, err
	}

	result.TotalCount = len(mappings)
	if err := s.writeBack.flush(ctx, mappings, s.gateway.UpdateProductCartIDs, result); err != nil {
		return nil, err
	}
	result.ImportedCount = result.TotalCount - result.FailedCount
	result.Finalize(s.now())
	return result, nil
}

// SyncSkuRange pulls one page of SKUs at the given cursor position and
// refreshes the local products and variants carrying them
func (s *Service) SyncSkuRange(ctx context.Context, start, count int) (*syncdomain.Result, error) {
	return s.withLease(ctx, OpCatalogSync, func(ctx context.Context) (*syncdomain.Result, error) {
		req, err := syncdomain.NewBatchRequest(start, count, syncdomain.MaxSkuRecords)
		if err != nil {
			return nil, err
		}

		page, err := s.gateway.Skus(ctx, req)
		if err != nil {
			return nil, err
		}

		result := &syncdomain.Result{}
		for _, sku := range page {
			result.TotalCount++
			if err := s.applySku(ctx, sku, result); err != nil {
				return nil, err
			}
		}
		result.Finalize(s.now())
		return result, nil
	})
}

// SyncSkus pulls SKUs modified within the watermark window and refreshes the
// price, tax class and stock of the local variant or simple product carrying
// each SKU code. SKUs unknown locally are counted as skipped.
func (s *Service) SyncSkus(ctx context.Context, unit string, amount int64) (*syncdomain.Result, error) {
	return s.withLease(ctx, OpCatalogSync, func(ctx context.Context) (*syncdomain.Result, error) {
		since, err := syncdomain.Watermark(unit, amount, s.now())
		if err != nil {
			return nil, err
		}
		first, err := syncdomain.NewBatchRequest(1, syncdomain.MaxSkuRecords, syncdomain.MaxSkuRecords)
		if err != nil {
			return nil, err
		}

		result := &syncdomain.Result{}
		err = collectPages(ctx, first.WithSince(since), s.gateway.Skus, func(page []syncdomain.RemoteSku) error {
			for _, sku := range page {
				result.TotalCount++
				if err := s.applySku(ctx, sku, result); err != nil {
					return err
				}
			}
			return nil
		})
		if err != nil {
			return nil, err
		}

		result.Finalize(s.now())
		s.logger.Info("sku sync finished",
			zap.Int("total", result.TotalCount),
			zap.Int("updated", result.ImportedCount),
			zap.Int("skipped", result.SkippedCount),
			zap.Int("failed", result.FailedCount),
		)
		return result, nil
	})
}

func (s *Service) applySku(ctx context.Context, sku syncdomain.RemoteSku, result *syncdomain.Result) error {
	price, regular := skuPrices(sku)
	taxClass := catalog.TaxClassForCode(sku.TaxCodeID)

	variant, err := s.variants.FindBySkuCode(ctx, sku.Code)
	if err == nil {
		variant.UpdatePricing(price, regular, taxClass, sku.StockAmount)
		if err := s.variants.Update(ctx, variant); err != nil {
			return err
		}
		result.ImportedCount++
		return nil
	}
	if !errors.Is(err, shared.ErrNotFound) {
		return err
	}

	product, err := s.products.FindBySkuCode(ctx, sku.Code)
	if err == nil && product.Type == catalog.ProductTypeSimple {
		product.SetSimple(sku.Code, price, regular, taxClass, sku.StockAmount)
		if err := s.products.Update(ctx, product); err != nil {
			return err
		}
		result.ImportedCount++
		return nil
	}
	if err != nil && !errors.Is(err, shared.ErrNotFound) {
		return err
	}

	result.SkippedCount++
	return nil
}
