package api

import (
	"context"
	"fmt"
	"io"
	"net"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ssargent/minfmt/pkg/codec"
)

func TestServer_Addr(t *testing.T) {
	server := NewServer(codec.NewDocumentCodec(), nil, ServerConfig{Bind: "127.0.0.1", Port: 8090}, nil, nil)
	assert.Equal(t, "127.0.0.1:8090", server.Addr())
}

func TestServer_ServeAndShutdown(t *testing.T) {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)

	server := NewServer(codec.NewDocumentCodec(), nil, ServerConfig{APIKey: testAPIKey}, NewMetrics(), nil)
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- server.Serve(ctx, ln) }()

	req, err := http.NewRequest("GET", fmt.Sprintf("http://%s/api/v1/health", ln.Addr()), nil)
	require.NoError(t, err)
	req.Header.Set("X-API-Key", testAPIKey)

	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	body, _ := io.ReadAll(resp.Body)
	resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, string(body), "healthy")

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("server did not shut down")
	}
}

func TestServerFactory(t *testing.T) {
	starter := NewServerFactory().CreateServerStarter(nil)
	require.NotNil(t, starter)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	err := starter.StartServer(ctx, codec.NewDocumentCodec(), nil, ServerConfig{Bind: "127.0.0.1", Port: 0})
	assert.NoError(t, err)
}
