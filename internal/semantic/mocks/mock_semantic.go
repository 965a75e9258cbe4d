package mocks

import (
	"context"

	"docindex/internal/model"
	"docindex/internal/semantic"

	"github.com/stretchr/testify/mock"
)

type MockRetriever struct {
	mock.Mock
}

func (m *MockRetriever) Retrieve(ctx context.Context, query string, limit int, filter semantic.Filter) ([]semantic.Result, error) {
	args := m.Called(ctx, query, limit, filter)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]semantic.Result), args.Error(1)
}

type MockIndexer struct {
	mock.Mock
}

func (m *MockIndexer) Index(ctx context.Context, doc *model.Document, passage string) error {
	args := m.Called(ctx, doc, passage)
	return args.Error(0)
}

func (m *MockIndexer) Reindex(ctx context.Context, doc *model.Document) error {
	args := m.Called(ctx, doc)
	return args.Error(0)
}

func (m *MockIndexer) Remove(ctx context.Context, documentID string) error {
	args := m.Called(ctx, documentID)
	return args.Error(0)
}
