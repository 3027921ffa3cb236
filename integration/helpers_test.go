//go:build integration

package integration

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"

	"github.com/meigma/roarchive/internal/testutil"
)

const webRoot = "/usr/share/nginx/html"

var (
	serverOnce sync.Once
	serverURL  string
	serverErr  error
)

// getServer returns the base URL of the shared nginx server, starting the
// container if needed. The server publishes the tileset fixture below /data.
func getServer(tb testing.TB) string {
	tb.Helper()

	if os.Getenv("SKIP_DOCKER_TESTS") == "1" {
		tb.Skip("SKIP_DOCKER_TESTS is set")
	}

	serverOnce.Do(func() {
		dir, err := os.MkdirTemp("", "roarchive-integration-")
		if err != nil {
			serverErr = err
			return
		}
		serverURL, serverErr = startServerContainer(context.Background(), dir)
	})

	if serverErr != nil {
		tb.Fatalf("start nginx container: %v", serverErr)
	}
	return serverURL
}

// startServerContainer starts nginx serving the tileset fixture and returns
// its base URL.
func startServerContainer(ctx context.Context, dir string) (string, error) {
	var files []testcontainers.ContainerFile
	for _, f := range testutil.Tileset() {
		if strings.HasSuffix(f.Path, "/") {
			continue
		}
		host := filepath.Join(dir, filepath.FromSlash(f.Path))
		if err := os.MkdirAll(filepath.Dir(host), 0o755); err != nil {
			return "", err
		}
		if err := os.WriteFile(host, []byte(f.Data), 0o644); err != nil {
			return "", err
		}
		files = append(files, testcontainers.ContainerFile{
			HostFilePath:      host,
			ContainerFilePath: webRoot + "/" + f.Path,
			FileMode:          0o644,
		})
	}

	req := testcontainers.ContainerRequest{
		Image:        "nginx:alpine",
		ExposedPorts: []string{"80/tcp"},
		Files:        files,
		WaitingFor:   wait.ForHTTP("/README").WithPort("80/tcp").WithStatusCodeMatcher(isOKStatus),
	}

	container, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: req,
		Started:          true,
	})
	if err != nil {
		return "", fmt.Errorf("start nginx container: %w", err)
	}

	// Container cleanup is handled by the testcontainers Reaper.

	host, err := container.Host(ctx)
	if err != nil {
		return "", fmt.Errorf("resolve nginx host: %w", err)
	}
	port, err := container.MappedPort(ctx, "80/tcp")
	if err != nil {
		return "", fmt.Errorf("resolve nginx port: %w", err)
	}
	return fmt.Sprintf("http://%s:%s", host, port.Port()), nil
}

func isOKStatus(status int) bool {
	return status >= 200 && status < 300
}
