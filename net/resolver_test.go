package net

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestResolverResolveLocalhostIPv4(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	r := Resolver{}
	eps, err := r.Resolve(ctx, "localhost", "80")
	require.NoError(t, err)
	require.NotEmpty(t, eps)

	for _, ep := range eps {
		assert.True(t, ep.Addr.Is4())
		assert.Equal(t, uint16(80), ep.Port)
	}
}

func TestResolverResolveInvalidPort(t *testing.T) {
	r := Resolver{}
	_, err := r.Resolve(context.Background(), "localhost", "not-a-port")
	assert.Error(t, err)
}
