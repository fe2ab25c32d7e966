// Package suites holds the end-to-end procedures shipped with the tool:
// input field handling, general locators, role-based interaction and
// combined locator strategies.
package suites

import (
	"context"
	"fmt"

	"e2e_locators/application/facade"
	"e2e_locators/application/runner"
	"e2e_locators/domain/entities"

	"github.com/sirupsen/logrus"
)

const (
	InputFieldsName       = "input-fields"
	LocatorExamplesName   = "locator-examples"
	RoleInteractionName   = "role-based-interaction"
	CombinedLocatorsName  = "combined-locator-strategies"
	DefaultEditURL        = "https://letcode.in/edit"
	fullscreenWidth       = 1920
	fullscreenHeight      = 1080
	expectedFullName      = "Tom Smith"
	expectedUsernameInput = "myusername"
)

// Targets are the page URLs the procedures navigate to
type Targets struct {
	Edit     string `yaml:"edit"`
	Locators string `yaml:"locators"`
	Roles    string `yaml:"roles"`
	Combined string `yaml:"combined"`
}

// Catalog returns every procedure bound to targets
func Catalog(t Targets) []runner.Procedure {
	return []runner.Procedure{
		{
			Name:        InputFieldsName,
			Description: "Fill, append, read, clear and inspect text inputs",
			Run:         InputFields(t.Edit),
		},
		{
			Name:        LocatorExamplesName,
			Description: "Locate elements by id, name, XPath, class, tag and attribute",
			Run:         LocatorExamples(t.Locators),
		},
		{
			Name:        RoleInteractionName,
			Description: "Interact with elements found by ARIA role and accessible name",
			Run:         RoleBasedInteraction(t.Roles),
		},
		{
			Name:        CombinedLocatorsName,
			Description: "Scope role queries inside CSS, attribute and XPath matches",
			Run:         CombinedLocatorStrategies(t.Combined),
		},
	}
}

func navigate(ctx context.Context, s *runner.Session, url string) error {
	if url == "" {
		return fmt.Errorf("no target URL configured")
	}
	return s.Page.Navigate(ctx, url)
}

func byID(id string) entities.Selector {
	return entities.XPath(fmt.Sprintf(`//input[@id=%q]`, id))
}

// InputFields works through the text inputs of an edit page
func InputFields(url string) func(ctx context.Context, s *runner.Session) error {
	return func(ctx context.Context, s *runner.Session) error {
		page := s.Page
		if err := navigate(ctx, s, url); err != nil {
			return err
		}
		if err := page.SetViewport(ctx, fullscreenWidth, fullscreenHeight); err != nil {
			return err
		}

		fullName := page.Locator(byID("fullName"))
		if err := fullName.Fill(ctx, expectedFullName); err != nil {
			return err
		}
		if err := facade.Expect(fullName).ToHaveValue(ctx, expectedFullName); err != nil {
			return err
		}

		join := page.Locator(byID("join"))
		if err := join.Fill(ctx, "Hello, World!"); err != nil {
			return err
		}
		if err := join.Press(ctx, "Tab"); err != nil {
			return err
		}

		value, err := page.Locator(byID("getMe")).InputValue(ctx)
		if err != nil {
			return err
		}
		s.Logger.WithField("value", value).Info("Text value")

		clearMe := page.Locator(byID("clearMe"))
		if err := clearMe.Clear(ctx); err != nil {
			return err
		}
		if err := facade.Expect(clearMe).ToHaveValue(ctx, ""); err != nil {
			return err
		}

		noEdit := page.Locator(byID("noEdit"))
		disabled, err := noEdit.IsDisabled(ctx)
		if err != nil {
			return err
		}
		s.Logger.WithField("enabled", !disabled).Info("Is the input field enabled?")
		if err := facade.Expect(noEdit).ToBeDisabled(ctx); err != nil {
			return err
		}

		dontWrite := page.Locator(byID("dontwrite"))
		_, readOnly, err := dontWrite.GetAttribute(ctx, "readonly")
		if err != nil {
			return err
		}
		s.Logger.WithField("readonly", readOnly).Info("Is the text element read-only?")
		if err := facade.Expect(dontWrite).ToHaveAttribute(ctx, "readonly"); err != nil {
			return err
		}

		confirm, err := page.Locator(entities.Text("Confirm text is readonly")).TextContent(ctx)
		if err != nil {
			return err
		}
		s.Logger.WithField("text", confirm).Info("Confirm text")

		return s.Observe(ctx)
	}
}

// LocatorExamples resolves elements with the general selector kinds
func LocatorExamples(url string) func(ctx context.Context, s *runner.Session) error {
	return func(ctx context.Context, s *runner.Session) error {
		page := s.Page
		if err := navigate(ctx, s, url); err != nil {
			return err
		}

		visible := []*facade.Locator{
			page.Locator(entities.CSS("#elementId")),
			page.Locator(entities.Attr("name", "elementName")),
			page.Locator(entities.XPath(`//input[@name="q"]`)),
			page.Locator(entities.CSS("p.className")),
			page.Locator(entities.TagAttr("input", "type", "submit")),
		}
		for _, loc := range visible {
			if err := facade.Expect(loc).ToBeVisible(ctx); err != nil {
				return err
			}
		}

		// a bare tag selector matches every input on the page; clicking
		// requires a single match, so the tag query is scoped to the search form
		inputs, err := page.Locator(entities.CSS("input")).Count(ctx)
		if err != nil {
			return err
		}
		s.Logger.WithField("count", inputs).Info("Inputs on page")
		if err := page.Locator(entities.CSS("#search")).Locator(entities.CSS("input")).Click(ctx); err != nil {
			return err
		}

		banner := page.Locator(entities.CSS("button.className")).GetByText("Banner")
		if err := facade.Expect(banner).ToBeVisible(ctx); err != nil {
			return err
		}

		editable := page.Locator(entities.CSS("div#elementId"))
		if err := editable.Fill(ctx, "Test option1"); err != nil {
			return err
		}
		return facade.Expect(editable).ToHaveText(ctx, "Test option1")
	}
}

// ariaRoles are looked up and counted without interaction
var ariaRoles = []string{
	"alert", "combobox", "document", "feed", "form", "grid", "gridcell",
	"list", "listbox", "listitem", "log", "main", "marquee", "math", "menu",
	"menubar", "menuitem", "menuitemcheckbox", "menuitemradio", "navigation",
	"note", "option", "progressbar", "radio", "radiogroup", "region", "row",
	"rowgroup", "rowheader", "scrollbar", "search", "searchbox", "separator",
	"slider", "spinbutton", "status", "switch", "tab", "tablist", "tabpanel",
	"timer", "toolbar", "tooltip", "tree", "treegrid", "treeitem",
}

// RoleBasedInteraction interacts with elements located by ARIA role
func RoleBasedInteraction(url string) func(ctx context.Context, s *runner.Session) error {
	return func(ctx context.Context, s *runner.Session) error {
		page := s.Page
		if err := navigate(ctx, s, url); err != nil {
			return err
		}

		if err := page.GetByRole("button", entities.WithName("Submit")).Click(ctx); err != nil {
			return err
		}
		if err := page.GetByRole("link", entities.WithName("Learn more")).Click(ctx); err != nil {
			return err
		}

		subscribe := page.GetByRole("checkbox", entities.WithName("Subscribe"))
		if err := subscribe.Check(ctx); err != nil {
			return err
		}
		if err := facade.Expect(subscribe).ToBeChecked(ctx); err != nil {
			return err
		}

		if err := facade.Expect(page.GetByRole("dialog", entities.WithName("Confirmation"))).ToHaveCount(ctx, 1); err != nil {
			return err
		}
		if err := facade.Expect(page.GetByRole("heading", entities.WithLevel(1), entities.WithName("Welcome"))).ToBeVisible(ctx); err != nil {
			return err
		}

		username := page.GetByRole("textbox", entities.WithName("Username"))
		if err := username.Fill(ctx, expectedUsernameInput); err != nil {
			return err
		}
		if err := facade.Expect(username).ToHaveValue(ctx, expectedUsernameInput); err != nil {
			return err
		}

		for _, role := range ariaRoles {
			n, err := page.GetByRole(role).Count(ctx)
			if err != nil {
				return err
			}
			s.Logger.WithFields(logrus.Fields{"role": role, "count": n}).Debug("role lookup")
		}
		return nil
	}
}

// CombinedLocatorStrategies scopes role queries inside other locators
func CombinedLocatorStrategies(url string) func(ctx context.Context, s *runner.Session) error {
	return func(ctx context.Context, s *runner.Session) error {
		page := s.Page
		if err := navigate(ctx, s, url); err != nil {
			return err
		}

		heading := page.Locator(entities.CSS("#main-content")).GetByRole("heading", entities.WithName("Main Content"))
		textbox := page.Locator(entities.Attr("name", "formContainer")).GetByRole("textbox")
		learnMore := page.Locator(entities.XPath(`//section[@id="features"]`)).GetByRole("button", entities.WithName("Learn More"))
		home := page.Locator(entities.CSS(".menu")).GetByRole("link", entities.WithName("Home"))
		submit := page.Locator(entities.CSS("form")).GetByRole("button", entities.WithName("Submit"))

		if err := submit.Click(ctx); err != nil {
			return err
		}
		if err := heading.ScrollIntoView(ctx); err != nil {
			return err
		}
		if err := home.Click(ctx); err != nil {
			return err
		}

		if err := facade.Expect(heading).ToBeVisible(ctx); err != nil {
			return err
		}
		if err := facade.Expect(textbox).ToBeEnabled(ctx); err != nil {
			return err
		}
		return facade.Expect(learnMore).ToBeVisible(ctx)
	}
}

// DefaultTargets points the input field procedure at the public letcode
// edit page. The sample procedures have no public page and stay unset.
func DefaultTargets() Targets {
	return Targets{Edit: DefaultEditURL}
}
