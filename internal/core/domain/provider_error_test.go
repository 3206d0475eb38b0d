package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClassifyStatus_Authentication(t *testing.T) {
	perr := ClassifyStatus(401, "")
	require.NotNil(t, perr)
	assert.Equal(t, ErrorTypeAuthentication, perr.ErrorType)
	assert.True(t, perr.Retryable)
	assert.Equal(t, 0, perr.CooldownSeconds)
	assert.Equal(t, 401, perr.StatusCode)
}

func TestClassifyStatus_Authorization(t *testing.T) {
	perr := ClassifyStatus(403, "")
	require.NotNil(t, perr)
	assert.Equal(t, ErrorTypeAuthorization, perr.ErrorType)
	assert.False(t, perr.Retryable)
}

func TestClassifyStatus_RateLimit(t *testing.T) {
	perr := ClassifyStatus(429, "")
	require.NotNil(t, perr)
	assert.Equal(t, ErrorTypeRateLimit, perr.ErrorType)
	assert.True(t, perr.Retryable)
	assert.Equal(t, 60, perr.CooldownSeconds)
}

func TestClassifyStatus_ServerError(t *testing.T) {
	for _, status := range []int{500, 502, 599} {
		perr := ClassifyStatus(status, "upstream exploded")
		require.NotNil(t, perr, "status %d", status)
		assert.Equal(t, ErrorTypeServer, perr.ErrorType)
		assert.True(t, perr.Retryable)
		assert.Equal(t, 10, perr.CooldownSeconds)
		assert.Contains(t, perr.Message, "upstream exploded")
	}
}

func TestClassifyStatus_Unclassified(t *testing.T) {
	assert.Nil(t, ClassifyStatus(200, ""))
	assert.Nil(t, ClassifyStatus(404, ""))
	assert.Nil(t, ClassifyStatus(400, ""))
}

func TestProviderError_Error(t *testing.T) {
	perr := ClassifyStatus(429, "")
	assert.Contains(t, perr.Error(), "rate_limit")
	assert.Contains(t, perr.Error(), "429")
}
