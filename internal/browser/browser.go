package browser

import (
	"path/filepath"
	"slices"
	"strings"
)

// Family groups browsers that share a profile layout.
type Family string

const (
	// FamilyFirefox covers Gecko-based browsers: one directory per profile
	// under the profile root, each holding prefs.js.
	FamilyFirefox Family = "firefox"

	// FamilyChromium covers Chromium-based browsers: a "User Data" root
	// holding Default and "Profile N" directories.
	FamilyChromium Family = "chromium"
)

// Browser describes a known browser and where it keeps its profiles.
type Browser struct {
	// ID is the stable identifier used in archive names (firefox, chrome, ...).
	ID string

	// Name is the display name.
	Name string

	// Family determines how profiles are discovered under a root.
	Family Family

	// roots maps GOOS to profile roots relative to the home directory,
	// slash-separated.
	roots map[string][]string
}

// Roots returns the candidate profile roots of b on goos, rooted at home.
func (b Browser) Roots(home, goos string) []string {
	rel := b.roots[goos]
	if len(rel) == 0 && goos != "windows" && goos != "darwin" {
		// BSDs and other unixes share the Linux layout.
		rel = b.roots["linux"]
	}

	out := make([]string, 0, len(rel))
	for _, r := range rel {
		out = append(out, filepath.Join(home, filepath.FromSlash(r)))
	}
	return out
}

func firefoxRoots(win, linux, mac string) map[string][]string {
	return map[string][]string{
		"windows": {"AppData/Roaming/" + win + "/Profiles"},
		"linux":   {linux},
		"darwin":  {"Library/Application Support/" + mac + "/Profiles"},
	}
}

func chromiumRoots(win, linux, mac string) map[string][]string {
	return map[string][]string{
		"windows": {win},
		"linux":   {".config/" + linux},
		"darwin":  {"Library/Application Support/" + mac},
	}
}

// known is the built-in browser table, in display order.
var known = []Browser{
	{ID: "firefox", Name: "Mozilla Firefox", Family: FamilyFirefox, roots: firefoxRoots("Mozilla/Firefox", ".mozilla/firefox", "Firefox")},
	{ID: "floorp", Name: "Floorp", Family: FamilyFirefox, roots: firefoxRoots("Floorp", ".floorp", "Floorp")},
	{ID: "librewolf", Name: "LibreWolf", Family: FamilyFirefox, roots: firefoxRoots("LibreWolf", ".librewolf", "LibreWolf")},
	{ID: "waterfox", Name: "Waterfox", Family: FamilyFirefox, roots: firefoxRoots("Waterfox", ".waterfox", "Waterfox")},
	{ID: "chrome", Name: "Google Chrome", Family: FamilyChromium, roots: chromiumRoots("AppData/Local/Google/Chrome/User Data", "google-chrome", "Google/Chrome")},
	{ID: "chromium", Name: "Chromium", Family: FamilyChromium, roots: chromiumRoots("AppData/Local/Chromium/User Data", "chromium", "Chromium")},
	{ID: "edge", Name: "Microsoft Edge", Family: FamilyChromium, roots: chromiumRoots("AppData/Local/Microsoft/Edge/User Data", "microsoft-edge", "Microsoft Edge")},
	{ID: "brave", Name: "Brave", Family: FamilyChromium, roots: chromiumRoots("AppData/Local/BraveSoftware/Brave-Browser/User Data", "BraveSoftware/Brave-Browser", "BraveSoftware/Brave-Browser")},
	{ID: "vivaldi", Name: "Vivaldi", Family: FamilyChromium, roots: chromiumRoots("AppData/Local/Vivaldi/User Data", "vivaldi", "Vivaldi")},
	{ID: "opera", Name: "Opera", Family: FamilyChromium, roots: chromiumRoots("AppData/Roaming/Opera Software/Opera Stable", "opera", "com.operasoftware.Opera")},
}

// Known returns the built-in browser table.
func Known() []Browser {
	return slices.Clone(known)
}

// IDs returns the identifiers of all known browsers.
func IDs() []string {
	ids := make([]string, 0, len(known))
	for _, b := range known {
		ids = append(ids, b.ID)
	}
	return ids
}

// normalizeID folds user input onto a table ID.
func normalizeID(id string) string {
	return strings.ToLower(strings.TrimSpace(id))
}
