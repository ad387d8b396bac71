package common

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestContextValues(t *testing.T) {
	ctx := context.Background()
	assert.Empty(t, RunIDFromContext(ctx))
	assert.Empty(t, DocumentFromContext(ctx))

	ctx = WithDocument(WithRunID(ctx, "run-1"), "a.pdf")
	assert.Equal(t, "run-1", RunIDFromContext(ctx))
	assert.Equal(t, "a.pdf", DocumentFromContext(ctx))
}
