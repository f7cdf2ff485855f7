// Package mocks provides mock implementations for testing the qbatch job system.
//
// This package uses go.uber.org/mock (gomock) to generate type-safe mocks for our repository interfaces.
// The mocks are generated using go:generate directives and provide a fluent API for setting up test expectations.
//
// To regenerate mocks after interface changes, run:
//
//	go generate ./internal/mocks
//
// Usage in tests:
//
//	ctrl := gomock.NewController(t)
//	defer ctrl.Finish()
//	mockRepo := mocks.NewMockJobSetRepository(ctrl)
//	mockRepo.EXPECT().Save(gomock.Any(), gomock.Any()).Return(nil)
package mocks

// Generate mock for JobSetRepository interface from internal/core package.
// This creates MockJobSetRepository with methods for all JobSetRepository interface methods:
// Save, GetByID, GetByName, List, Delete
//go:generate go run go.uber.org/mock/mockgen -package=mocks -destination=jobset_repository_mock.go github.com/qbatch/qbatch/internal/core JobSetRepository

// Generate mock for CacheRepository interface from internal/core package.
// This creates MockCacheRepository with methods for all CacheRepository interface methods:
// Set, Get, Delete, Health
//go:generate go run go.uber.org/mock/mockgen -package=mocks -destination=cache_repository_mock.go github.com/qbatch/qbatch/internal/core CacheRepository
