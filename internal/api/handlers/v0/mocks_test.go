package v0_test

import (
	"context"

	"github.com/stretchr/testify/mock"

	"github.com/ndlano/taxonomy-typegen/internal/service"
	"github.com/ndlano/taxonomy-typegen/pkg/model"
)

// MockGeneratorService is a mock implementation of the GeneratorService interface
type MockGeneratorService struct {
	mock.Mock
}

func (m *MockGeneratorService) Generate(ctx context.Context) (*model.RunResult, error) {
	args := m.Called(ctx)
	result, _ := args.Get(0).(*model.RunResult)
	return result, args.Error(1)
}

func (m *MockGeneratorService) Validate(ctx context.Context) (*service.ValidationReport, error) {
	args := m.Called(ctx)
	report, _ := args.Get(0).(*service.ValidationReport)
	return report, args.Error(1)
}

func (m *MockGeneratorService) List(ctx context.Context, cursor string, limit int) ([]*model.Run, string, error) {
	args := m.Called(ctx, cursor, limit)
	runs, _ := args.Get(0).([]*model.Run)
	return runs, args.String(1), args.Error(2)
}

func (m *MockGeneratorService) GetByID(ctx context.Context, id string) (*model.Run, error) {
	args := m.Called(ctx, id)
	run, _ := args.Get(0).(*model.Run)
	return run, args.Error(1)
}

func (m *MockGeneratorService) Artifact(name string) ([]byte, error) {
	args := m.Called(name)
	data, _ := args.Get(0).([]byte)
	return data, args.Error(1)
}

func (m *MockGeneratorService) SourceDocument(ctx context.Context) ([]byte, error) {
	args := m.Called(ctx)
	data, _ := args.Get(0).([]byte)
	return data, args.Error(1)
}
