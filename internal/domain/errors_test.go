package domain_test

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"

	"isuumo/internal/domain"
)

func TestError_IsMatchesByKind(t *testing.T) {
	err := domain.ErrInvalidBucketID.Withf("priceRangeId %d not in catalog", 99)
	wrapped := fmt.Errorf("compile: %w", err)

	assert.ErrorIs(t, wrapped, domain.ErrInvalidBucketID)
	assert.NotErrorIs(t, wrapped, domain.ErrInvalidPagination)
	assert.Equal(t, domain.KindInvalidBucketID, domain.KindOf(wrapped))
	assert.Equal(t, "priceRangeId 99 not in catalog", err.Error())
}

func TestError_WrapKeepsCause(t *testing.T) {
	cause := errors.New("dial tcp: connection refused")
	err := domain.ErrStoreUnavailable.Wrap(cause)

	assert.ErrorIs(t, err, cause)
	assert.ErrorIs(t, err, domain.ErrStoreUnavailable)
	assert.True(t, domain.IsRetryable(err))
	assert.False(t, domain.IsRetryable(domain.ErrOutOfStock))
	assert.False(t, domain.IsRetryable(cause))
}

func TestKind_HTTPStatus(t *testing.T) {
	tests := []struct {
		err    *domain.Error
		status int
		client bool
	}{
		{domain.ErrInvalidBucketID, http.StatusBadRequest, true},
		{domain.ErrInvalidPagination, http.StatusBadRequest, true},
		{domain.ErrEmptySearchCondition, http.StatusBadRequest, true},
		{domain.ErrEmptyRegion, http.StatusBadRequest, true},
		{domain.ErrInvalidItem, http.StatusBadRequest, true},
		{domain.ErrItemNotFound, http.StatusNotFound, true},
		{domain.ErrOutOfStock, http.StatusNotFound, true},
		{domain.ErrStoreUnavailable, http.StatusServiceUnavailable, false},
	}
	for _, tt := range tests {
		t.Run(string(tt.err.Kind), func(t *testing.T) {
			assert.Equal(t, tt.status, tt.err.Kind.HTTPStatus())
			assert.Equal(t, tt.client, tt.err.Client())
		})
	}
}
