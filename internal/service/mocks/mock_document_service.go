package mocks

import (
	"context"
	"io"

	"docindex/internal/model"
	"docindex/internal/storage"

	"github.com/stretchr/testify/mock"
)

type MockDocumentService struct {
	mock.Mock
}

func (m *MockDocumentService) Create(ctx context.Context, in model.CreateDocumentInput, user model.UserContext) (*model.Document, error) {
	args := m.Called(ctx, in, user)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Document), args.Error(1)
}

func (m *MockDocumentService) Update(ctx context.Context, id string, in model.UpdateDocumentInput, user model.UserContext) (*model.Document, error) {
	args := m.Called(ctx, id, in, user)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Document), args.Error(1)
}

func (m *MockDocumentService) Delete(ctx context.Context, id string, user model.UserContext) error {
	args := m.Called(ctx, id, user)
	return args.Error(0)
}

func (m *MockDocumentService) Get(ctx context.Context, id string, user model.UserContext) (*model.Document, error) {
	args := m.Called(ctx, id, user)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Document), args.Error(1)
}

func (m *MockDocumentService) GetContent(ctx context.Context, id string, user model.UserContext) (io.ReadCloser, storage.ObjectInfo, error) {
	args := m.Called(ctx, id, user)
	rc, _ := args.Get(0).(io.ReadCloser)
	return rc, args.Get(1).(storage.ObjectInfo), args.Error(2)
}

func (m *MockDocumentService) ContentURL(ctx context.Context, id string, user model.UserContext) (string, error) {
	args := m.Called(ctx, id, user)
	return args.String(0), args.Error(1)
}

type MockSearchService struct {
	mock.Mock
}

func (m *MockSearchService) SearchMetadata(ctx context.Context, req model.SearchRequest, user model.UserContext) (*model.SearchResult, error) {
	args := m.Called(ctx, req, user)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.SearchResult), args.Error(1)
}

func (m *MockSearchService) SearchSemantic(ctx context.Context, req model.SemanticRequest, user model.UserContext) (*model.SemanticResult, error) {
	args := m.Called(ctx, req, user)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.SemanticResult), args.Error(1)
}
