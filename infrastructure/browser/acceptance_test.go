//go:build acceptance

package browser_test

import (
	"context"
	"net/http/httptest"
	"os"
	"testing"
	"time"

	"e2e_locators/application/facade"
	"e2e_locators/application/runner"
	"e2e_locators/application/suites"
	"e2e_locators/domain/entities"
	"e2e_locators/infrastructure/browser"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestSuitesInBrowsers runs the bundled procedures in every real engine.
// Set E2E_ACCEPTANCE_ENGINES to a subset, e.g. "playwright", and
// HEADLESS=false to watch.
func TestSuitesInBrowsers(t *testing.T) {
	srv := httptest.NewServer(suites.FixtureHandler())
	defer srv.Close()

	engines := []string{"playwright", "chromedp", "selenium"}
	if only := os.Getenv("E2E_ACCEPTANCE_ENGINES"); only != "" {
		engines = []string{only}
	}

	for _, name := range engines {
		t.Run(name, func(t *testing.T) {
			logger := logrus.New()
			logger.SetLevel(logrus.WarnLevel)

			factory, err := browser.NewFactory(name, browser.Options{
				Headless: os.Getenv("HEADLESS") != "false",
			}, logger)
			require.NoError(t, err, "failed to start %s", name)
			defer factory.Close()

			r := runner.NewRunner(factory, runner.Options{
				Parallel: 2,
				Timeout:  time.Minute,
				Page:     facade.Options{WaitTimeout: 3 * time.Second, ExpectTimeout: 3 * time.Second},
			}, logger)

			report := r.Run(context.Background(), suites.Catalog(suites.FixtureTargets(srv.URL)))
			for _, res := range report.Results {
				assert.Equal(t, entities.ResultPassed, res.Status, "%s: %s", res.Name, res.Error)
			}
		})
	}
}
