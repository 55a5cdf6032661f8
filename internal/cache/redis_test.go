package cache

import (
	"context"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConnect(t *testing.T) {
	mr, err := miniredis.Run()
	require.NoError(t, err)
	defer mr.Close()

	for _, addr := range []string{mr.Addr(), "redis://" + mr.Addr() + "/0"} {
		client, err := Connect(context.Background(), addr)
		require.NoError(t, err, addr)
		assert.NoError(t, client.Set(context.Background(), "k", "v", 0).Err())
		_ = client.Close()
	}
}

func TestConnect_Errors(t *testing.T) {
	_, err := Connect(context.Background(), "redis://%zz")
	assert.Error(t, err)

	mr, err := miniredis.Run()
	require.NoError(t, err)
	addr := mr.Addr()
	mr.Close()

	_, err = Connect(context.Background(), addr)
	assert.Error(t, err)
}
