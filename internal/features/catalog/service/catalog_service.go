package service

import (
	"context"
	"fmt"
	"strings"

	"order-tracker/internal/features/catalog/domain"
	"order-tracker/internal/features/catalog/ports"
)

// CatalogServiceImpl implements ports.CatalogService.
type CatalogServiceImpl struct {
	identity ports.IdentityVerifier
	allow    ports.AllowList
	store    ports.RecordStore
}

// NewCatalogService creates a new CatalogServiceImpl.
func NewCatalogService(identity ports.IdentityVerifier, allow ports.AllowList, store ports.RecordStore) *CatalogServiceImpl {
	return &CatalogServiceImpl{
		identity: identity,
		allow:    allow,
		store:    store,
	}
}

// Authorize resolves the caller and checks the allow-list.
func (s *CatalogServiceImpl) Authorize(ctx context.Context, authorization string) (*domain.User, error) {
	user, err := s.identity.Verify(ctx, authorization)
	if err != nil {
		return nil, fmt.Errorf("service: failed to verify identity: %w", err)
	}
	if user == nil || strings.TrimSpace(user.Email) == "" {
		return nil, domain.ErrUnauthorized
	}

	allowed, err := s.allow.IsAllowed(ctx, user.Email)
	if err != nil {
		return nil, fmt.Errorf("service: failed to check allow-list: %w", err)
	}
	if !allowed {
		return nil, domain.ErrForbidden
	}

	return user, nil
}

// ListRecords returns every catalog record in its flattened form.
func (s *CatalogServiceImpl) ListRecords(ctx context.Context) ([]domain.Record, error) {
	raws, err := s.ListRawRecords(ctx)
	if err != nil {
		return nil, err
	}
	return domain.FromRawList(raws), nil
}

// ListRawRecords returns every catalog record as stored.
func (s *CatalogServiceImpl) ListRawRecords(ctx context.Context) ([]domain.RawRecord, error) {
	if missing := s.store.MissingConfig(); len(missing) > 0 {
		return nil, fmt.Errorf("%w: %s", domain.ErrNotConfigured, strings.Join(missing, ", "))
	}
	return s.store.List(ctx)
}

// CreateRecord adds a record.
func (s *CatalogServiceImpl) CreateRecord(ctx context.Context, in domain.RecordInput) error {
	return s.store.Create(ctx, in.Fields())
}

// UpdateRecord rewrites the record named by in.ID.
func (s *CatalogServiceImpl) UpdateRecord(ctx context.Context, in domain.RecordInput) error {
	if strings.TrimSpace(in.ID) == "" {
		return domain.ErrMissingRecordID
	}
	return s.store.Update(ctx, in.ID, in.Fields())
}

// DeleteRecord removes a record.
func (s *CatalogServiceImpl) DeleteRecord(ctx context.Context, id string) error {
	if strings.TrimSpace(id) == "" {
		return domain.ErrMissingRecordID
	}
	return s.store.Delete(ctx, id)
}
