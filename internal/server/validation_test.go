package server

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/RaphScript0/mini-engine/pkg/problem"
)

func TestValidateIngestBatch(t *testing.T) {
	valid := []documentPayload{{ID: "a", Text: "x"}}

	t.Run("empty batch", func(t *testing.T) {
		err := validateIngestBatch(&ingestRequest{})
		require.NotNil(t, err)
		assert.Equal(t, problem.CodeUnprocessableEntity, err.code)
	})

	t.Run("oversize batch", func(t *testing.T) {
		docs := make([]documentPayload, maxBatchSize+1)
		err := validateIngestBatch(&ingestRequest{Documents: docs})
		require.NotNil(t, err)
		assert.Equal(t, problem.CodeUnprocessableEntity, err.code)
	})

	t.Run("unknown onDuplicate", func(t *testing.T) {
		err := validateIngestBatch(&ingestRequest{
			Documents: valid,
			Options:   &ingestOptions{OnDuplicate: "upsert"},
		})
		require.NotNil(t, err)
		assert.Equal(t, problem.CodeInvalidArgument, err.code)
	})

	t.Run("valid", func(t *testing.T) {
		assert.Nil(t, validateIngestBatch(&ingestRequest{Documents: valid}))
		assert.Nil(t, validateIngestBatch(&ingestRequest{
			Documents: valid,
			Options:   &ingestOptions{OnDuplicate: onDuplicateReplace},
		}))
	})
}

func TestValidateDocument(t *testing.T) {
	assert.Empty(t, validateDocument(documentPayload{ID: "a", Text: "hello"}))
	assert.NotEmpty(t, validateDocument(documentPayload{Text: "no id"}))
	assert.NotEmpty(t, validateDocument(documentPayload{ID: "a"}))
	assert.NotEmpty(t, validateDocument(documentPayload{
		ID:   strings.Repeat("x", maxIDLength+1),
		Text: "ok",
	}))
	assert.NotEmpty(t, validateDocument(documentPayload{
		ID:   "a",
		Text: strings.Repeat("y", maxTextBytes+1),
	}))

	// Boundary values are accepted.
	assert.Empty(t, validateDocument(documentPayload{
		ID:   strings.Repeat("x", maxIDLength),
		Text: strings.Repeat("y", maxTextBytes),
	}))
}

func TestValidateSearch(t *testing.T) {
	k := func(v int) *int { return &v }

	assert.Nil(t, validateSearch(&searchRequest{Query: "x"}, 100))
	assert.Nil(t, validateSearch(&searchRequest{Query: "x", TopK: k(1)}, 100))
	assert.Nil(t, validateSearch(&searchRequest{Query: "x", TopK: k(100)}, 100))
	assert.Nil(t, validateSearch(&searchRequest{Query: "x", Mode: modePrefix}, 100))

	require.NotNil(t, validateSearch(&searchRequest{TopK: k(0)}, 100))
	require.NotNil(t, validateSearch(&searchRequest{TopK: k(101)}, 100))

	err := validateSearch(&searchRequest{Mode: "regex"}, 100)
	require.NotNil(t, err)
	assert.Equal(t, problem.CodeInvalidArgument, err.code)
}
