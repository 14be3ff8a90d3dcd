package doctor

import (
	"fmt"

	"github.com/floorper/floorper/internal/browser"
)

// BrowserCheck reports the browsers floorper can back up.
type BrowserCheck struct {
	loc *browser.Locator
}

var _ Check = (*BrowserCheck)(nil)

// NewBrowserCheck creates a browser detection check.
func NewBrowserCheck(loc *browser.Locator) *BrowserCheck {
	return &BrowserCheck{loc: loc}
}

// Name returns the unique identifier for this check.
func (c *BrowserCheck) Name() string {
	return "browser-detection"
}

// Category returns the grouping for this check.
func (c *BrowserCheck) Category() string {
	return "browsers"
}

// Run executes the browser detection check and returns its result.
func (c *BrowserCheck) Run() *CheckResult {
	found := c.loc.Detect()

	browsers := make(map[string]any, len(found))
	for _, inst := range found {
		profiles, err := c.loc.Profiles(inst.Browser.ID)
		info := map[string]any{"root": inst.Root}
		if err == nil {
			info["profiles"] = len(profiles)
		}
		browsers[inst.Browser.ID] = info
	}

	details := map[string]any{
		"browsers": browsers,
		"detected": len(found),
		"known":    len(browser.Known()),
	}

	if len(found) == 0 {
		return &CheckResult{
			Name:     c.Name(),
			Category: c.Category(),
			Status:   SeverityWarning,
			Message:  "no supported browsers detected",
			Details:  details,
			FixHint:  "pass a profile directory explicitly with: floorper backup create --path <dir>",
		}
	}

	return &CheckResult{
		Name:     c.Name(),
		Category: c.Category(),
		Status:   SeverityPass,
		Message:  fmt.Sprintf("%d browser(s) detected", len(found)),
		Details:  details,
	}
}
