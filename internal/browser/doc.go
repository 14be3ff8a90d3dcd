// Package browser locates installed web browsers and their profile
// directories.
//
// Detection is path probing only: a browser counts as installed when one
// of its per-OS profile roots exists under the home directory. Gecko
// profiles are directories holding prefs.js or times.json; Chromium
// profiles are the Default and "Profile N" directories holding a
// Preferences file.
//
//	loc := browser.NewLocator()
//	for _, inst := range loc.Detect() {
//	    profiles, _ := loc.Profiles(inst.Browser.ID)
//	    ...
//	}
package browser
