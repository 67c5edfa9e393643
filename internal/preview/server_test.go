package preview

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func startTestServer(t *testing.T, root string) string {
	t.Helper()
	// Derive a high port from the process id rather than using a fixed
	// one, so concurrent test processes are unlikely to collide.
	port := 37000 + (os.Getpid() % 1000)
	srv := NewServer("127.0.0.1", port, root, zerolog.Nop())
	require.NoError(t, srv.Start())
	t.Cleanup(func() {
		ctx, cancel := context.WithTimeout(context.Background(), time.Second)
		defer cancel()
		_ = srv.httpServer.Shutdown(ctx)
	})

	addr := fmt.Sprintf("http://127.0.0.1:%d", port)
	require.Eventually(t, func() bool {
		resp, err := http.Get(addr + "/healthz")
		if err != nil {
			return false
		}
		resp.Body.Close()
		return resp.StatusCode == http.StatusOK
	}, 2*time.Second, 20*time.Millisecond)
	return addr
}

func TestServer_ServesFilesAndHealthz(t *testing.T) {
	root := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(root, "combined_transcripts.html"), []byte("<html>hi</html>"), 0o644))

	addr := startTestServer(t, root)

	resp, err := http.Get(addr + "/combined_transcripts.html")
	require.NoError(t, err)
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "<html>hi</html>", string(body))
}

func TestServer_DirectoryWithoutIndexReturns404(t *testing.T) {
	root := t.TempDir()
	require.NoError(t, os.Mkdir(filepath.Join(root, "empty-project"), 0o755))

	addr := startTestServer(t, root)

	resp, err := http.Get(addr + "/empty-project/")
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}
