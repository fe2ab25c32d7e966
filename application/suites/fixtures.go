package suites

import (
	"embed"
	"io/fs"
	"net/http"
	"strings"
)

//go:embed fixtures/*.html
var fixtureFS embed.FS

// FixtureHandler serves the bundled sample pages under /edit, /locators,
// /roles and /combined.
func FixtureHandler() http.Handler {
	pages, _ := fs.Sub(fixtureFS, "fixtures")
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		name := strings.Trim(r.URL.Path, "/")
		if name == "" || strings.Contains(name, "/") {
			http.NotFound(w, r)
			return
		}
		body, err := fs.ReadFile(pages, strings.TrimSuffix(name, ".html")+".html")
		if err != nil {
			http.NotFound(w, r)
			return
		}
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		_, _ = w.Write(body)
	})
}

// FixtureTargets points every procedure at the bundled pages served from base
func FixtureTargets(base string) Targets {
	base = strings.TrimRight(base, "/")
	return Targets{
		Edit:     base + "/edit",
		Locators: base + "/locators",
		Roles:    base + "/roles",
		Combined: base + "/combined",
	}
}
