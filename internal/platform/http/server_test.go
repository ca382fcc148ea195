package http

import (
	"context"
	"errors"
	"net"
	"net/http"
	"strconv"
	"testing"
	"time"

	"countryfx/internal/config"

	"github.com/stretchr/testify/require"
)

func TestStart_ShutsDownOnContextCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() {
		done <- Start(ctx, config.HTTPServer{Port: "0"}, http.NotFoundHandler())
	}()

	time.Sleep(50 * time.Millisecond)
	cancel()

	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("server did not shut down")
	}
}

func TestStart_ListenError(t *testing.T) {
	err := Start(context.Background(), config.HTTPServer{Port: "not-a-port"}, http.NotFoundHandler())
	require.Error(t, err)
}

func TestStart_ReadHeaderTimeoutFromConfig(t *testing.T) {
	l, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	port := l.Addr().(*net.TCPAddr).Port
	require.NoError(t, l.Close())

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	cfg := config.HTTPServer{Port: strconv.Itoa(port), ReadHeaderTimeoutSeconds: 1, ShutdownTimeoutSeconds: 1}
	go func() { _ = Start(ctx, cfg, http.NotFoundHandler()) }()

	var conn net.Conn
	require.Eventually(t, func() bool {
		c, dialErr := net.Dial("tcp", "127.0.0.1:"+strconv.Itoa(port))
		if dialErr != nil {
			return false
		}
		conn = c
		return true
	}, 2*time.Second, 20*time.Millisecond)
	defer conn.Close()

	// headers are never finished, so the server has to drop the connection
	_, err = conn.Write([]byte("GET / HTTP/1.1\r\nHost: localhost\r\n"))
	require.NoError(t, err)

	started := time.Now()
	require.NoError(t, conn.SetReadDeadline(started.Add(5*time.Second)))
	buf := make([]byte, 512)
	for err == nil {
		_, err = conn.Read(buf)
	}
	var netErr net.Error
	if ok := errors.As(err, &netErr); ok && netErr.Timeout() {
		t.Fatal("connection was still open after the configured header timeout")
	}
	require.Less(t, time.Since(started), 4*time.Second)
}
