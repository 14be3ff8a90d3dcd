package browser

import (
	"log/slog"
	"os"
	"path/filepath"
	"regexp"
	"runtime"
	"slices"
	"strings"

	"github.com/floorper/floorper/internal/errors"
	"github.com/floorper/floorper/internal/paths"
)

// ErrProfileNotFound indicates no profile of the requested name exists.
var ErrProfileNotFound = errors.New("profile not found")

// Installation is a browser whose profile root exists on this machine.
type Installation struct {
	Browser Browser
	Root    string
}

// Profile is a single browser profile directory.
type Profile struct {
	BrowserID string `json:"browser_id"`
	Name      string `json:"name"`
	Path      string `json:"path"`
}

// Locator finds browsers and their profiles by probing well-known paths.
// It never reads browser databases.
type Locator struct {
	home     string
	goos     string
	browsers []Browser
	logger   *slog.Logger
}

// LocatorOption configures a Locator.
type LocatorOption func(*Locator)

// WithHome overrides the home directory profile roots are resolved against.
func WithHome(home string) LocatorOption {
	return func(l *Locator) { l.home = home }
}

// WithGOOS selects the per-OS path table. Defaults to runtime.GOOS.
func WithGOOS(goos string) LocatorOption {
	return func(l *Locator) { l.goos = goos }
}

// WithLogger sets the logger for probing diagnostics.
func WithLogger(logger *slog.Logger) LocatorOption {
	return func(l *Locator) {
		if logger != nil {
			l.logger = logger
		}
	}
}

// NewLocator creates a Locator over the built-in browser table.
func NewLocator(opts ...LocatorOption) *Locator {
	l := &Locator{
		home:     paths.Home(),
		goos:     runtime.GOOS,
		browsers: known,
		logger:   slog.Default(),
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// Lookup returns the browser with the given ID.
func (l *Locator) Lookup(id string) (Browser, error) {
	id = normalizeID(id)
	for _, b := range l.browsers {
		if b.ID == id {
			return b, nil
		}
	}
	return Browser{}, errors.Wrapf(errors.ErrUnknownBrowser, "%q (known: %s)", id, strings.Join(IDs(), ", "))
}

// Detect returns the browsers with an existing profile root, in table order.
func (l *Locator) Detect() []Installation {
	var found []Installation
	for _, b := range l.browsers {
		if root := l.root(b); root != "" {
			found = append(found, Installation{Browser: b, Root: root})
		}
	}
	return found
}

// root returns the first existing profile root of b, or "".
func (l *Locator) root(b Browser) string {
	if l.home == "" {
		return ""
	}
	for _, r := range b.Roots(l.home, l.goos) {
		if dirExists(r) {
			return r
		}
	}
	return ""
}

// Profiles lists the profiles of the browser with the given ID, sorted by
// name. A known browser that is not installed has no profiles.
func (l *Locator) Profiles(id string) ([]Profile, error) {
	b, err := l.Lookup(id)
	if err != nil {
		return nil, err
	}

	root := l.root(b)
	if root == "" {
		l.logger.Debug("browser not installed", "browser", b.ID)
		return []Profile{}, nil
	}

	entries, err := os.ReadDir(root)
	if err != nil {
		return nil, errors.Wrapf(err, "reading %s profiles", b.Name)
	}

	profiles := make([]Profile, 0, len(entries))
	for _, e := range entries {
		if !e.IsDir() {
			continue
		}
		dir := filepath.Join(root, e.Name())

		var name string
		switch b.Family {
		case FamilyFirefox:
			name = firefoxProfileName(dir, e.Name())
		case FamilyChromium:
			name = chromiumProfileName(dir, e.Name())
		}
		if name == "" {
			continue
		}

		profiles = append(profiles, Profile{BrowserID: b.ID, Name: name, Path: dir})
	}

	slices.SortFunc(profiles, func(a, b Profile) int {
		return strings.Compare(a.Name, b.Name)
	})
	return profiles, nil
}

// Find returns the profile of browser id named name. The name matches
// either the profile name or its directory name.
func (l *Locator) Find(id, name string) (Profile, error) {
	profiles, err := l.Profiles(id)
	if err != nil {
		return Profile{}, err
	}
	for _, p := range profiles {
		if p.Name == name || filepath.Base(p.Path) == name {
			return p, nil
		}
	}
	return Profile{}, errors.Wrapf(ErrProfileNotFound, "%s profile %q", id, name)
}

// firefoxMarkers identify a Gecko profile directory.
var firefoxMarkers = []string{"prefs.js", "times.json"}

// firefoxProfileName derives the name of a Gecko profile directory
// ("abcd1234.default-release" -> "default-release"), or "" if dir is not a
// profile.
func firefoxProfileName(dir, base string) string {
	if !hasAny(dir, firefoxMarkers) {
		return ""
	}
	if _, after, ok := strings.Cut(base, "."); ok && after != "" {
		return after
	}
	return base
}

var chromiumProfileDir = regexp.MustCompile(`^(Default|Profile \d+)$`)

// chromiumProfileName returns base if dir is a Chromium profile, else "".
func chromiumProfileName(dir, base string) string {
	if !chromiumProfileDir.MatchString(base) || !hasAny(dir, []string{"Preferences"}) {
		return ""
	}
	return base
}

func hasAny(dir string, names []string) bool {
	for _, n := range names {
		if _, err := os.Stat(filepath.Join(dir, n)); err == nil {
			return true
		}
	}
	return false
}

// dirExists returns true if the path exists and is a directory.
func dirExists(path string) bool {
	info, err := os.Stat(path)
	if err != nil {
		return false
	}
	return info.IsDir()
}
