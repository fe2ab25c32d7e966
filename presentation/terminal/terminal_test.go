package terminal

import (
	"bytes"
	"context"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"e2e_locators/application/suites"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// isolate runs the test from an empty directory with short waits
func isolate(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	t.Chdir(dir)
	t.Setenv("E2E_CONFIG", "")
	t.Setenv("E2E_WAIT_TIMEOUT", "300ms")
	t.Setenv("E2E_EXPECT_TIMEOUT", "300ms")
	t.Setenv("E2E_POLL_INTERVAL", "10ms")
	return dir
}

func execute(ctx context.Context, args ...string) (string, error) {
	var out, errOut bytes.Buffer
	cmd := NewRootCommand(&out, &errOut)
	cmd.SetArgs(args)
	err := cmd.ExecuteContext(ctx)
	return out.String(), err
}

func fixtureServer(t *testing.T) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(suites.FixtureHandler())
	t.Cleanup(srv.Close)
	return srv
}

func TestRunAgainstBundledPages(t *testing.T) {
	for _, backend := range []string{"json", "sqlite"} {
		t.Run(backend, func(t *testing.T) {
			dir := isolate(t)
			ctx := context.Background()
			common := []string{"--engine", "static", "--log-level", "error", "--report-backend", backend}

			out, err := execute(ctx, append([]string{"run", "--fixtures", "--parallel", "2"}, common...)...)
			require.NoError(t, err, out)
			for _, name := range []string{
				suites.InputFieldsName,
				suites.LocatorExamplesName,
				suites.RoleInteractionName,
				suites.CombinedLocatorsName,
			} {
				assert.Contains(t, out, name)
			}
			assert.Contains(t, out, "4 passed")
			assert.Contains(t, out, "0 failed")

			_, err = os.Stat(filepath.Join(dir, ".e2e", "reports"))
			require.NoError(t, err)

			out, err = execute(ctx, append([]string{"history"}, common...)...)
			require.NoError(t, err)
			assert.Contains(t, out, "static")
			assert.NotContains(t, out, "No runs recorded")
		})
	}
}

func TestRunReportsFailure(t *testing.T) {
	isolate(t)
	srv := fixtureServer(t)

	out, err := execute(context.Background(),
		"run", suites.InputFieldsName,
		"--engine", "static", "--log-level", "panic",
		"--sample-url", srv.URL,
		"--edit-url", srv.URL+"/roles",
	)
	require.ErrorIs(t, err, ErrRunFailed)
	assert.Contains(t, out, "1 failed")
	assert.Contains(t, out, suites.InputFieldsName)
}

func TestRunRejectsUnknownProcedure(t *testing.T) {
	isolate(t)
	_, err := execute(context.Background(), "run", "nope", "--engine", "static", "--fixtures")
	require.Error(t, err)
	assert.Contains(t, err.Error(), `unknown procedure "nope"`)
}

func TestRunRejectsUnknownEngine(t *testing.T) {
	isolate(t)
	_, err := execute(context.Background(), "run", "--engine", "lynx", "--fixtures")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "lynx")
}

func TestHistoryEmpty(t *testing.T) {
	isolate(t)
	out, err := execute(context.Background(), "history")
	require.NoError(t, err)
	assert.Contains(t, out, "No runs recorded")
}

func TestList(t *testing.T) {
	isolate(t)
	ctx := context.Background()

	out, err := execute(ctx, "list", "--plain")
	require.NoError(t, err)
	assert.Contains(t, out, "| `"+suites.RoleInteractionName+"` |")
	assert.Contains(t, out, "# Procedures")

	out, err = execute(ctx, "list")
	require.NoError(t, err)
	assert.Contains(t, out, "Procedures")
}

func TestLocate(t *testing.T) {
	isolate(t)
	srv := fixtureServer(t)
	ctx := context.Background()

	out, err := execute(ctx, "locate", "--engine", "static",
		"--url", srv.URL+"/roles",
		"--selector", `role=button[name="Submit"]`)
	require.NoError(t, err)
	assert.Contains(t, out, "1 match")
	assert.Contains(t, out, "Submit")

	out, err = execute(ctx, "locate", "--engine", "static",
		"--url", srv.URL+"/combined",
		"--within", "form[name=formContainer]",
		"--selector", "role=button")
	require.NoError(t, err)
	assert.Contains(t, out, "1 match")

	out, err = execute(ctx, "locate", "--engine", "static",
		"--url", srv.URL+"/roles",
		"--selector", "#does-not-exist")
	require.NoError(t, err)
	assert.Contains(t, out, "0 matches")
}

func TestLocateErrors(t *testing.T) {
	isolate(t)
	ctx := context.Background()

	_, err := execute(ctx, "locate", "--engine", "static", "--selector", "#x")
	assert.Error(t, err, "url is required")

	_, err = execute(ctx, "locate", "--engine", "static", "--url", "http://127.0.0.1:1", "--selector", "role=")
	assert.Error(t, err, "empty role")
}

func TestSchedule(t *testing.T) {
	isolate(t)

	_, err := execute(context.Background(), "schedule", "--engine", "static")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no cron schedule")

	_, err = execute(context.Background(), "schedule", "--engine", "static", "--cron", "every tuesday")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid cron schedule")

	_, err = execute(context.Background(), "schedule", "nope", "--cron", "@hourly")
	require.Error(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = execute(ctx, "schedule", "--engine", "static", "--cron", "@hourly", "--log-level", "error")
	assert.NoError(t, err, "returns once the context is done")
}

func TestInvalidLogLevel(t *testing.T) {
	isolate(t)
	_, err := execute(context.Background(), "list", "--log-level", "loud")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid log level")
}
