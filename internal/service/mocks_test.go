package service_test

import (
	"context"

	"github.com/stretchr/testify/mock"

	"github.com/ndlano/taxonomy-typegen/pkg/model"
)

// MockDatabase is a mock implementation of the database.Database interface
type MockDatabase struct {
	mock.Mock
}

func (m *MockDatabase) Record(ctx context.Context, run *model.Run) error {
	args := m.Called(ctx, run)
	return args.Error(0)
}

func (m *MockDatabase) Latest(ctx context.Context) (*model.Run, error) {
	args := m.Called(ctx)
	run, _ := args.Get(0).(*model.Run)
	return run, args.Error(1)
}

func (m *MockDatabase) List(ctx context.Context, cursor string, limit int) ([]*model.Run, string, error) {
	args := m.Called(ctx, cursor, limit)
	runs, _ := args.Get(0).([]*model.Run)
	return runs, args.String(1), args.Error(2)
}

func (m *MockDatabase) GetByID(ctx context.Context, id string) (*model.Run, error) {
	args := m.Called(ctx, id)
	run, _ := args.Get(0).(*model.Run)
	return run, args.Error(1)
}

func (m *MockDatabase) Close() error {
	args := m.Called()
	return args.Error(0)
}

// MockGeneratorService is a mock implementation of the Generator interface
type MockGeneratorService struct {
	mock.Mock
}

func (m *MockGeneratorService) Generate(ctx context.Context) (*model.RunResult, error) {
	args := m.Called(ctx)
	result, _ := args.Get(0).(*model.RunResult)
	return result, args.Error(1)
}
