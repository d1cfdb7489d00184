package service

import (
	"context"
	"errors"
	"testing"

	"order-tracker/internal/features/catalog/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

// MockIdentityVerifier is a mock implementation of ports.IdentityVerifier.
type MockIdentityVerifier struct {
	mock.Mock
}

func (m *MockIdentityVerifier) Verify(ctx context.Context, authorization string) (*domain.User, error) {
	args := m.Called(ctx, authorization)
	user, _ := args.Get(0).(*domain.User)
	return user, args.Error(1)
}

// MockAllowList is a mock implementation of ports.AllowList.
type MockAllowList struct {
	mock.Mock
}

func (m *MockAllowList) IsAllowed(ctx context.Context, email string) (bool, error) {
	args := m.Called(ctx, email)
	return args.Bool(0), args.Error(1)
}

// MockRecordStore is a mock implementation of ports.RecordStore.
type MockRecordStore struct {
	mock.Mock
}

func (m *MockRecordStore) List(ctx context.Context) ([]domain.RawRecord, error) {
	args := m.Called(ctx)
	records, _ := args.Get(0).([]domain.RawRecord)
	return records, args.Error(1)
}

func (m *MockRecordStore) Create(ctx context.Context, fields map[string]any) error {
	return m.Called(ctx, fields).Error(0)
}

func (m *MockRecordStore) Update(ctx context.Context, id string, fields map[string]any) error {
	return m.Called(ctx, id, fields).Error(0)
}

func (m *MockRecordStore) Delete(ctx context.Context, id string) error {
	return m.Called(ctx, id).Error(0)
}

func (m *MockRecordStore) MissingConfig() []string {
	missing, _ := m.Called().Get(0).([]string)
	return missing
}

func newService() (*CatalogServiceImpl, *MockIdentityVerifier, *MockAllowList, *MockRecordStore) {
	identity := new(MockIdentityVerifier)
	allow := new(MockAllowList)
	store := new(MockRecordStore)
	return NewCatalogService(identity, allow, store), identity, allow, store
}

func TestCatalogService_Authorize(t *testing.T) {
	ctx := context.Background()

	t.Run("Allowed", func(t *testing.T) {
		svc, identity, allow, _ := newService()
		identity.On("Verify", ctx, "Bearer t").Return(&domain.User{Email: "ops@stash.example.com"}, nil).Once()
		allow.On("IsAllowed", ctx, "ops@stash.example.com").Return(true, nil).Once()

		user, err := svc.Authorize(ctx, "Bearer t")

		require.NoError(t, err)
		assert.Equal(t, "ops@stash.example.com", user.Email)
		allow.AssertExpectations(t)
	})

	t.Run("NoUser", func(t *testing.T) {
		svc, identity, allow, _ := newService()
		identity.On("Verify", ctx, "").Return(nil, nil).Once()

		_, err := svc.Authorize(ctx, "")

		assert.ErrorIs(t, err, domain.ErrUnauthorized)
		allow.AssertNotCalled(t, "IsAllowed", mock.Anything, mock.Anything)
	})

	t.Run("NoEmail", func(t *testing.T) {
		svc, identity, _, _ := newService()
		identity.On("Verify", ctx, "Bearer t").Return(&domain.User{}, nil).Once()

		_, err := svc.Authorize(ctx, "Bearer t")

		assert.ErrorIs(t, err, domain.ErrUnauthorized)
	})

	t.Run("NotAllowed", func(t *testing.T) {
		svc, identity, allow, _ := newService()
		identity.On("Verify", ctx, "Bearer t").Return(&domain.User{Email: "guest@stash.example.com"}, nil).Once()
		allow.On("IsAllowed", ctx, "guest@stash.example.com").Return(false, nil).Once()

		_, err := svc.Authorize(ctx, "Bearer t")

		assert.ErrorIs(t, err, domain.ErrForbidden)
	})

	t.Run("AllowListError", func(t *testing.T) {
		svc, identity, allow, _ := newService()
		identity.On("Verify", ctx, "Bearer t").Return(&domain.User{Email: "ops@stash.example.com"}, nil).Once()
		allow.On("IsAllowed", ctx, "ops@stash.example.com").Return(false, errors.New("timeout")).Once()

		_, err := svc.Authorize(ctx, "Bearer t")

		require.Error(t, err)
		assert.NotErrorIs(t, err, domain.ErrForbidden)
	})
}

func TestCatalogService_ListRecords(t *testing.T) {
	ctx := context.Background()

	t.Run("Success", func(t *testing.T) {
		svc, _, _, store := newService()
		store.On("MissingConfig").Return([]string(nil))
		store.On("List", ctx).Return([]domain.RawRecord{
			{ID: "rec1", Fields: map[string]any{"Album Name": "Uno", "Gender": []any{"Rock", "Pop"}}},
		}, nil).Once()

		records, err := svc.ListRecords(ctx)

		require.NoError(t, err)
		assert.Equal(t, []domain.Record{{ID: "rec1", Album: "Uno", Gender: "Rock, Pop"}}, records)
	})

	t.Run("NotConfigured", func(t *testing.T) {
		svc, _, _, store := newService()
		store.On("MissingConfig").Return([]string{"AIRTABLE_TOKEN"})

		_, err := svc.ListRawRecords(ctx)

		assert.ErrorIs(t, err, domain.ErrNotConfigured)
		assert.ErrorContains(t, err, "AIRTABLE_TOKEN")
		store.AssertNotCalled(t, "List", mock.Anything)
	})

	t.Run("StoreError", func(t *testing.T) {
		svc, _, _, store := newService()
		store.On("MissingConfig").Return([]string(nil))
		store.On("List", ctx).Return(nil, errors.New("upstream")).Once()

		_, err := svc.ListRecords(ctx)

		assert.EqualError(t, err, "upstream")
	})
}

func TestCatalogService_Writes(t *testing.T) {
	ctx := context.Background()
	in := domain.RecordInput{ID: "rec7", Album: "Uno", Artist: "A", Year: "1999"}

	t.Run("Create", func(t *testing.T) {
		svc, _, _, store := newService()
		store.On("Create", ctx, in.Fields()).Return(nil).Once()

		assert.NoError(t, svc.CreateRecord(ctx, in))
		store.AssertExpectations(t)
	})

	t.Run("Update", func(t *testing.T) {
		svc, _, _, store := newService()
		store.On("Update", ctx, "rec7", in.Fields()).Return(nil).Once()

		assert.NoError(t, svc.UpdateRecord(ctx, in))
		store.AssertExpectations(t)
	})

	t.Run("Delete", func(t *testing.T) {
		svc, _, _, store := newService()
		store.On("Delete", ctx, "rec7").Return(nil).Once()

		assert.NoError(t, svc.DeleteRecord(ctx, "rec7"))
		store.AssertExpectations(t)
	})

	t.Run("MissingID", func(t *testing.T) {
		svc, _, _, store := newService()

		assert.ErrorIs(t, svc.UpdateRecord(ctx, domain.RecordInput{Album: "Uno"}), domain.ErrMissingRecordID)
		assert.ErrorIs(t, svc.DeleteRecord(ctx, " "), domain.ErrMissingRecordID)
		store.AssertNotCalled(t, "Update", mock.Anything, mock.Anything, mock.Anything)
		store.AssertNotCalled(t, "Delete", mock.Anything, mock.Anything)
	})
}
