package repository_test

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"

	"bookingflow/internal/domain"
	"bookingflow/internal/repository/postgres"
)

func TestContinuation_RoundTrip(t *testing.T) {
	id := uuid.New()
	createdAt := time.Date(2026, 8, 15, 9, 30, 0, 123456789, time.UTC)

	token := postgres.EncodeContinuation(createdAt, id)
	gotTime, gotID, err := postgres.DecodeContinuation(token)

	assert.NoError(t, err)
	assert.True(t, gotTime.Equal(createdAt))
	assert.Equal(t, id, gotID)
}

func TestContinuation_TokenIsOpaque(t *testing.T) {
	token := postgres.EncodeContinuation(time.Now().UTC(), uuid.New())
	assert.NotContains(t, token, "{")
	assert.NotContains(t, token, "=")
}

func TestContinuation_MalformedTokensRejected(t *testing.T) {
	cases := map[string]string{
		"not base64":  "%%%not-base64%%%",
		"not json":    "bm90IGpzb24",
		"zero id":     postgres.EncodeContinuation(time.Now().UTC(), uuid.Nil),
		"empty token": "",
	}
	for name, token := range cases {
		_, _, err := postgres.DecodeContinuation(token)
		assert.ErrorIs(t, err, domain.ErrInvalidContinuation, name)
	}
}

func TestContinuation_TieBreakPositionPreserved(t *testing.T) {
	// Two records sharing a created_at timestamp must resume from the exact
	// (created_at, id) pair, not from the timestamp alone.
	createdAt := time.Date(2026, 8, 15, 9, 30, 0, 0, time.UTC)
	first := uuid.New()
	second := uuid.New()

	_, gotFirst, err := postgres.DecodeContinuation(postgres.EncodeContinuation(createdAt, first))
	assert.NoError(t, err)
	_, gotSecond, err := postgres.DecodeContinuation(postgres.EncodeContinuation(createdAt, second))
	assert.NoError(t, err)

	assert.Equal(t, first, gotFirst)
	assert.Equal(t, second, gotSecond)
	assert.NotEqual(t, gotFirst, gotSecond)
}
