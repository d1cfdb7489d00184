package ports

import (
	"context"

	"order-tracker/internal/features/catalog/domain"
)

// CatalogService defines the primary port for catalog administration.
type CatalogService interface {
	// Authorize resolves the caller from the Authorization header and checks the allow-list.
	Authorize(ctx context.Context, authorization string) (*domain.User, error)
	ListRecords(ctx context.Context) ([]domain.Record, error)
	ListRawRecords(ctx context.Context) ([]domain.RawRecord, error)
	CreateRecord(ctx context.Context, in domain.RecordInput) error
	UpdateRecord(ctx context.Context, in domain.RecordInput) error
	DeleteRecord(ctx context.Context, id string) error
}

// RecordStore defines the secondary port for the catalog table.
type RecordStore interface {
	List(ctx context.Context) ([]domain.RawRecord, error)
	Create(ctx context.Context, fields map[string]any) error
	Update(ctx context.Context, id string, fields map[string]any) error
	Delete(ctx context.Context, id string) error
	// MissingConfig lists the unset settings the store needs.
	MissingConfig() []string
}

// AllowList decides which emails may administer the catalog.
type AllowList interface {
	IsAllowed(ctx context.Context, email string) (bool, error)
}

// IdentityVerifier resolves a bearer token into a user. A nil user means unauthenticated.
type IdentityVerifier interface {
	Verify(ctx context.Context, authorization string) (*domain.User, error)
}
