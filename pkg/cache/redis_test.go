package cache

import (
	"context"
	"strconv"
	"strings"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/require"

	"github.com/ebhath/ebhath-api/pkg/config"
)

func TestNewRedisPingsServer(t *testing.T) {
	srv := miniredis.RunT(t)
	host, portRaw, found := strings.Cut(srv.Addr(), ":")
	require.True(t, found)
	port, err := strconv.Atoi(portRaw)
	require.NoError(t, err)

	client, err := NewRedis(context.Background(), config.RedisConfig{Host: host, Port: port})
	require.NoError(t, err)
	defer client.Close()

	require.NoError(t, client.Set(context.Background(), "k", "v", 0).Err())
	srv.CheckGet(t, "k", "v")
}

func TestNewRedisUnreachable(t *testing.T) {
	srv := miniredis.RunT(t)
	host, portRaw, _ := strings.Cut(srv.Addr(), ":")
	port, _ := strconv.Atoi(portRaw)
	srv.Close()

	_, err := NewRedis(context.Background(), config.RedisConfig{Host: host, Port: port})
	require.Error(t, err)
}
