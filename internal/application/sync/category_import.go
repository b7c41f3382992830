package sync

import (
	"context"
	"errors"

	"go.uber.org/zap"

	"github.com/ontiuk/eskimo-sync/internal/domain/catalog"
	"github.com/ontiuk/eskimo-sync/internal/domain/shared"
	syncdomain "github.com/ontiuk/eskimo-sync/internal/domain/sync"
)

// SyncCategories pulls the full remote category tree and imports every
// product-namespace category that has no cart mapping yet. Parents import
// before children; a category whose parent cannot be resolved is still
// imported, as a top-level orphan, and logged as anomalous. Local IDs of
// imported categories are written back to the remote in batches.
func (s *Service) SyncCategories(ctx context.Context) (*syncdomain.Result, error) {
	return s.withLease(ctx, OpCatalogSync, func(ctx context.Context) (*syncdomain.Result, error) {
		return s.syncCategories(ctx, false)
	})
}

// SyncNewCategories imports only categories absent from the local store. It
// never touches or re-queues categories a previous run already created.
func (s *Service) SyncNewCategories(ctx context.Context) (*syncdomain.Result, error) {
	return s.withLease(ctx, OpCatalogSync, func(ctx context.Context) (*syncdomain.Result, error) {
		return s.syncCategories(ctx, true)
	})
}

func (s *Service) syncCategories(ctx context.Context, newOnly bool) (*syncdomain.Result, error) {
	first, err := syncdomain.NewBatchRequest(1, syncdomain.MaxCategoryRecords, syncdomain.MaxCategoryRecords)
	if err != nil {
		return nil, err
	}

	var remote []syncdomain.RemoteCategory
	err = collectPages(ctx, first, s.gateway.Categories, func(page []syncdomain.RemoteCategory) error {
		remote = append(remote, page...)
		return nil
	})
	if err != nil {
		return nil, err
	}

	result := &syncdomain.Result{}
	var pending []syncdomain.RemoteCategory
	for _, rc := range remote {
		if !rc.ID.InProductNamespace() {
			continue
		}
		result.TotalCount++
		if rc.Reconciled() {
			result.SkippedCount++
			continue
		}
		pending = append(pending, rc)
	}

	var mappings []syncdomain.IdentifierMapping
	imported := make(map[syncdomain.Ident]string)

	// Multiple passes: each pass imports every category whose parent is
	// already local, so parents always land before their children.
	for len(pending) > 0 {
		var deferred []syncdomain.RemoteCategory
		progress := false

		for _, rc := range pending {
			parentLocalID, ok, err := s.resolveParent(ctx, rc, imported)
			if err != nil {
				return nil, err
			}
			if !ok {
				deferred = append(deferred, rc)
				continue
			}

			localID, created, err := s.importCategory(ctx, rc, parentLocalID, result)
			if err != nil {
				return nil, err
			}
			if localID != "" {
				imported[rc.ID] = localID
				if created || !newOnly {
					mappings = append(mappings, syncdomain.IdentifierMapping{EskimoID: rc.ID, WebID: localID})
				}
			}
			progress = true
		}

		if !progress {
			// Unresolvable parents: import the stragglers as top-level
			// orphans so the catalog still carries them, and flag each one.
			for _, rc := range deferred {
				s.logger.Warn("category parent not resolvable, importing as top level",
					zap.String("eskimo_id", rc.ID.String()),
					zap.String("parent_id", rc.ParentID.String()),
				)
				localID, created, err := s.importCategory(ctx, rc, "", result)
				if err != nil {
					return nil, err
				}
				if localID != "" {
					imported[rc.ID] = localID
					if created || !newOnly {
						mappings = append(mappings, syncdomain.IdentifierMapping{EskimoID: rc.ID, WebID: localID})
					}
				}
			}
			break
		}
		pending = deferred
	}

	if err := s.writeBack.flush(ctx, mappings, s.gateway.UpdateCategoryCartIDs, result); err != nil {
		return nil, err
	}

	result.Finalize(s.now())
	s.logger.Info("category sync finished",
		zap.Int("total", result.TotalCount),
		zap.Int("imported", result.ImportedCount),
		zap.Int("skipped", result.SkippedCount),
		zap.Int("failed", result.FailedCount),
	)
	return result, nil
}

// resolveParent returns the local ID of the category's parent, "" for a root
// category. ok is false when the parent is not local yet.
func (s *Service) resolveParent(ctx context.Context, rc syncdomain.RemoteCategory, imported map[syncdomain.Ident]string) (string, bool, error) {
	if !rc.IsChild() {
		return "", true, nil
	}
	if localID, ok := imported[rc.ParentID]; ok {
		return localID, true, nil
	}
	parent, err := s.categories.FindByEskimoID(ctx, rc.ParentID)
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			return "", false, nil
		}
		return "", false, err
	}
	return parent.ID, true, nil
}

// importCategory creates the local category. An already-local category is
// skipped but its ID is still returned so a full sync can re-queue the mapping
// when a previous write-back never reached the remote.
func (s *Service) importCategory(ctx context.Context, rc syncdomain.RemoteCategory, parentLocalID string, result *syncdomain.Result) (string, bool, error) {
	existing, err := s.categories.FindByEskimoID(ctx, rc.ID)
	if err == nil {
		result.SkippedCount++
		return existing.ID, false, nil
	}
	if !errors.Is(err, shared.ErrNotFound) {
		return "", false, err
	}

	category, err := catalog.NewCategory(rc.ID, rc.ShortDescription, rc.LongDescription, parentLocalID)
	if err != nil {
		result.Fail(rc.ID.String(), err.Error())
		return "", false, nil
	}
	if err := s.categories.Save(ctx, category); err != nil {
		if errors.Is(err, shared.ErrAlreadyExists) {
			result.SkippedCount++
			return category.ID, false, nil
		}
		return "", false, err
	}

	result.ImportedCount++
	return category.ID, true, nil
}

// SyncChildCategories imports the direct children of one remote category.
// The parent must already be local.
func (s *Service) SyncChildCategories(ctx context.Context, parentID syncdomain.Ident) (*syncdomain.Result, error) {
	return s.withLease(ctx, OpCatalogSync, func(ctx context.Context) (*syncdomain.Result, error) {
		parent, err := s.categories.FindByEskimoID(ctx, parentID)
		if err != nil {
			return nil, err
		}

		children, err := s.gateway.ChildCategories(ctx, parentID)
		if err != nil {
			return nil, err
		}

		result := &syncdomain.Result{}
		var mappings []syncdomain.IdentifierMapping
		for _, rc := range children {
			if !rc.ID.InProductNamespace() {
				continue
			}
			result.TotalCount++
			if rc.Reconciled() {
				result.SkippedCount++
				continue
			}
			localID, _, err := s.importCategory(ctx, rc, parent.ID, result)
			if err != nil {
				return nil, err
			}
			if localID != "" {
				mappings = append(mappings, syncdomain.IdentifierMapping{EskimoID: rc.ID, WebID: localID})
			}
		}

		if err := s.writeBack.flush(ctx, mappings, s.gateway.UpdateCategoryCartIDs, result); err != nil {
			return nil, err
		}
		result.Finalize(s.now())
		return result, nil
	})
}

// SyncCategory imports a single remote category by identifier. The category
// must belong to the product namespace; a category whose parent is not local
// imports as a top-level orphan.
func (s *Service) SyncCategory(ctx context.Context, id syncdomain.Ident) (*syncdomain.Result, error) {
	return s.withLease(ctx, OpCatalogSync, func(ctx context.Context) (*syncdomain.Result, error) {
		rc, err := s.gateway.CategoryByID(ctx, id)
		if err != nil {
			return nil, err
		}

		result := &syncdomain.Result{TotalCount: 1}
		if !rc.ID.InProductNamespace() {
			result.Fail(rc.ID.String(), "category outside the product namespace")
			result.Finalize(s.now())
			return result, nil
		}
		if rc.Reconciled() {
			result.SkippedCount++
			result.Finalize(s.now())
			return result, nil
		}

		parentLocalID, ok, err := s.resolveParent(ctx, *rc, nil)
		if err != nil {
			return nil, err
		}
		if !ok {
			s.logger.Warn("category parent not resolvable, importing as top level",
				zap.String("eskimo_id", rc.ID.String()),
				zap.String("parent_id", rc.ParentID.String()),
			)
			parentLocalID = ""
		}

		localID, _, err := s.importCategory(ctx, *rc, parentLocalID, result)
		if err != nil {
			return nil, err
		}
		var mappings []syncdomain.IdentifierMapping
		if localID != "" {
			mappings = append(mappings, syncdomain.IdentifierMapping{EskimoID: rc.ID, WebID: localID})
		}
		if err := s.writeBack.flush(ctx, mappings, s.gateway.UpdateCategoryCartIDs, result); err != nil {
			return nil, err
		}
		result.Finalize(s.now())
		return result, nil
	})
}

// PushCategoryMappings re-sends the identifier mapping of every local
// category to the remote system. Used to heal the remote after lost
// write-back batches.
func (s *Service) PushCategoryMappings(ctx context.Context) (*syncdomain.Result, error) {
	return s.withLease(ctx, OpCatalogSync, func(ctx context.Context) (*syncdomain.Result, error) {
		return s.writeCategoryMappings(ctx, false)
	})
}

// ResetCategoryMappings clears the remote Web_ID of every local category so
// the next full sync treats the whole tree as unreconciled.
func (s *Service) ResetCategoryMappings(ctx context.Context) (*syncdomain.Result, error) {
	return s.withLease(ctx, OpCatalogSync, func(ctx context.Context) (*syncdomain.Result, error) {
		return s.writeCategoryMappings(ctx, true)
	})
}

func (s *Service) writeCategoryMappings(ctx context.Context, reset bool) (*syncdomain.Result, error) {
	result := &syncdomain.Result{}
	mappings, err := collectMappings(ctx, func(ctx context.Context, offset, limit int) ([]syncdomain.IdentifierMapping, int64, error) {
		rows, total, err := s.categories.FindAll(ctx, offset, limit)
		if err != nil {
			return nil, 0, err
		}
		out := make([]syncdomain.IdentifierMapping, 0, len(rows))
		for _, c := range rows {
			out = append(out, syncdomain.IdentifierMapping{EskimoID: c.EskimoID, WebID: mappingWebID(c.ID, reset)})
		}
		return out, total, nil
	})
	if err != nil {
		return nil, err
	}

	result.TotalCount = len(mappings)
	if err := s.writeBack.flush(ctx, mappings, s.gateway.UpdateCategoryCartIDs, result); err != nil {
		return nil, err
	}
	result.ImportedCount = result.TotalCount - result.FailedCount
	result.Finalize(s.now())
	return result, nil
}
