package app

import (
	"bytes"
	"os"
	"sync"
	"testing"

	"github.com/specialistvlad/shaderbuild/internal/config"
	"github.com/specialistvlad/shaderbuild/internal/provision"
)

// SafeBuffer is a thread-safe buffer for capturing log output in tests.
type SafeBuffer struct {
	b  bytes.Buffer
	mu sync.Mutex
}

func (b *SafeBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.b.Write(p)
}

func (b *SafeBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.b.String()
}

// SetupAppTest creates a new app instance for system testing. The process
// environment is hidden from compiler resolution.
func SetupAppTest(t *testing.T, appConfig *Config) (*App, *SafeBuffer) {
	t.Helper()

	logBuffer := &SafeBuffer{}
	appConfig.LogLevel = "debug"
	testApp := NewApp(logBuffer, appConfig)
	testApp.lookupEnv = func(string) (string, bool) { return "", false }

	t.Cleanup(func() {
		if os.Getenv("SHADERBUILD_TEST_LOGS") == "true" {
			t.Logf("--- Full Log Output for %s ---\n%s", t.Name(), logBuffer.String())
		}
	})

	return testApp, logBuffer
}

// WithLookupEnv replaces the environment seen by compiler resolution.
func (a *App) WithLookupEnv(fn config.LookupEnvFunc) *App {
	a.lookupEnv = fn
	return a
}

// WithToolRunner replaces how meson and ninja are started.
func (a *App) WithToolRunner(fn provision.RunFunc) *App {
	a.runTool = fn
	return a
}
