package services_test

import (
	"context"
	"testing"

	"washcenter-backend/store"

	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func openStore(t *testing.T) *store.PebbleStore {
	t.Helper()
	s, err := store.OpenPebbleInMemory()
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func str(s string) *string { return &s }

func num(v float64) *float64 { return &v }

type mockPublisher struct {
	mock.Mock
}

func (m *mockPublisher) Publish(ctx context.Context, key string, payload any) error {
	args := m.Called(ctx, key, payload)
	return args.Error(0)
}

func (m *mockPublisher) Close() error {
	return m.Called().Error(0)
}
