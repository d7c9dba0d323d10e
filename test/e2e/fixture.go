package e2e

import (
	"net/http/httptest"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/abelbrown/stockroom/internal/devapi"
)

const fixtureToken = "e2e-token"

// buildStockroom builds the stockroom binary into a temp dir.
func buildStockroom(t *testing.T) string {
	t.Helper()
	binPath := filepath.Join(t.TempDir(), "stockroom")

	rootDir, err := os.Getwd()
	if err != nil {
		t.Fatal(err)
	}
	// test/e2e -> module root
	rootDir = filepath.Join(rootDir, "..", "..")

	cmd := exec.Command("go", "build", "-o", binPath, "./cmd/stockroom")
	cmd.Dir = rootDir
	if out, err := cmd.CombinedOutput(); err != nil {
		t.Fatalf("build failed: %v\n%s", err, out)
	}
	return binPath
}

// fixtureEnv starts the fixture API and returns the environment a stockroom
// process needs to talk to it with an isolated data directory.
func fixtureEnv(t *testing.T) (*devapi.Server, []string) {
	t.Helper()
	s := devapi.New(fixtureToken)
	srv := httptest.NewServer(s.Handler())
	t.Cleanup(srv.Close)

	home := t.TempDir()
	env := append(os.Environ(),
		"HOME="+home,
		"STOCKROOM_DATA_DIR="+filepath.Join(home, ".stockroom"),
		"STOCKROOM_API_URL="+srv.URL+devapi.BasePath,
		"STOCKROOM_EXPORT_DIR="+filepath.Join(home, "exports"),
	)
	return s, env
}

// login signs the fixture user in through the binary.
func login(t *testing.T, bin string, env []string, role string) {
	t.Helper()
	cmd := exec.Command(bin, "login", "--token", fixtureToken, "--name", "Ada", "--email", "ada@stockroom.test", "--role", role)
	cmd.Env = env
	cmd.Dir = t.TempDir()
	if out, err := cmd.CombinedOutput(); err != nil {
		t.Fatalf("login failed: %v\n%s", err, out)
	}
}

func readSnapshot(f *os.File) string {
	if err := f.SetReadDeadline(time.Now().Add(50 * time.Millisecond)); err != nil {
		return ""
	}
	out := make([]byte, 0, 8192)
	buf := make([]byte, 4096)
	for {
		n, err := f.Read(buf)
		if n > 0 {
			out = append(out, buf[:n]...)
		}
		if err != nil {
			break
		}
	}
	return string(out)
}

func logTail(t *testing.T, env []string) {
	t.Helper()
	for _, kv := range env {
		if dir, ok := strings.CutPrefix(kv, "STOCKROOM_DATA_DIR="); ok {
			matches, _ := filepath.Glob(filepath.Join(dir, "logs", "*.log"))
			for _, m := range matches {
				if data, err := os.ReadFile(m); err == nil {
					t.Logf("%s:\n%s", filepath.Base(m), data)
				}
			}
		}
	}
}
