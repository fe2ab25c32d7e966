package suites

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"e2e_locators/application/facade"
	"e2e_locators/application/runner"
	"e2e_locators/domain/entities"
	"e2e_locators/infrastructure/htmldoc"

	"github.com/sirupsen/logrus"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newRunner(t *testing.T) (*runner.Runner, *test.Hook) {
	t.Helper()
	logger, hook := test.NewNullLogger()
	logger.SetLevel(logrus.DebugLevel)
	factory := htmldoc.NewFactory(5*time.Second, logger)
	opts := runner.Options{
		Parallel: 4,
		Page: facade.Options{
			WaitTimeout:   200 * time.Millisecond,
			ExpectTimeout: 200 * time.Millisecond,
			PollInterval:  10 * time.Millisecond,
		},
	}
	return runner.NewRunner(factory, opts, logger), hook
}

func TestCatalogAgainstFixtures(t *testing.T) {
	srv := httptest.NewServer(FixtureHandler())
	defer srv.Close()

	r, hook := newRunner(t)
	report := r.Run(context.Background(), Catalog(FixtureTargets(srv.URL)))

	require.Len(t, report.Results, 4)
	for _, res := range report.Results {
		assert.Equal(t, entities.ResultPassed, res.Status, "%s: %s", res.Name, res.Error)
	}
	assert.True(t, report.Passed())

	observed := map[string]interface{}{}
	for _, entry := range hook.AllEntries() {
		for k, v := range entry.Data {
			observed[entry.Message+"/"+k] = v
		}
	}
	assert.Equal(t, "ortonikc", observed["Text value/value"])
	assert.Equal(t, false, observed["Is the input field enabled?/enabled"])
	assert.Equal(t, true, observed["Is the text element read-only?/readonly"])
	assert.Equal(t, "Confirm text is readonly", observed["Confirm text/text"])
}

func TestInputFieldsReportsAssertionFailure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		page, _ := fixtureFS.ReadFile("fixtures/edit.html")
		// the readonly field became writable
		_, _ = w.Write([]byte(strings.Replace(string(page), ` readonly>`, `>`, 1)))
	}))
	defer srv.Close()

	r, _ := newRunner(t)
	report := r.Run(context.Background(), []runner.Procedure{
		{Name: InputFieldsName, Run: InputFields(srv.URL)},
	})

	res := report.Results[0]
	assert.Equal(t, entities.ResultFailed, res.Status)
	assert.Contains(t, res.Error, entities.ErrAssertionFailed.Error())
	assert.Contains(t, res.Error, "readonly")
}

func TestMissingTarget(t *testing.T) {
	r, _ := newRunner(t)
	report := r.Run(context.Background(), Catalog(Targets{}))
	for _, res := range report.Results {
		assert.Equal(t, entities.ResultFailed, res.Status)
		assert.Contains(t, res.Error, "no target URL")
	}
}

func TestFixtureHandler(t *testing.T) {
	srv := httptest.NewServer(FixtureHandler())
	defer srv.Close()

	for _, path := range []string{"/edit", "/roles.html", "/combined", "/locators"} {
		resp, err := http.Get(srv.URL + path)
		require.NoError(t, err)
		resp.Body.Close()
		assert.Equal(t, http.StatusOK, resp.StatusCode, path)
	}
	for _, path := range []string{"/", "/nope", "/fixtures/edit"} {
		resp, err := http.Get(srv.URL + path)
		require.NoError(t, err)
		resp.Body.Close()
		assert.Equal(t, http.StatusNotFound, resp.StatusCode, path)
	}
}

func TestCatalogNames(t *testing.T) {
	var names []string
	for _, p := range Catalog(DefaultTargets()) {
		names = append(names, p.Name)
		assert.NotEmpty(t, p.Description)
	}
	assert.Equal(t, []string{InputFieldsName, LocatorExamplesName, RoleInteractionName, CombinedLocatorsName}, names)
}
