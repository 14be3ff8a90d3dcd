package backup

import (
	"encoding/json"
	"path/filepath"
	"slices"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/floorper/floorper/internal/errors"
)

func TestSafeJoin(t *testing.T) {
	root := filepath.Join(string(filepath.Separator), "target")

	tests := []struct {
		rel     string
		want    string
		wantErr bool
	}{
		{rel: "prefs.js", want: filepath.Join(root, "prefs.js")},
		{rel: "a/b/c.txt", want: filepath.Join(root, "a", "b", "c.txt")},
		{rel: "a/../b.txt", want: filepath.Join(root, "b.txt")},
		{rel: "./x", want: filepath.Join(root, "x")},
		{rel: "", wantErr: true},
		{rel: ".", wantErr: true},
		{rel: "..", wantErr: true},
		{rel: "../etc/passwd", wantErr: true},
		{rel: "a/../../x", wantErr: true},
		{rel: "/etc/passwd", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.rel, func(t *testing.T) {
			got, err := safeJoin(root, tt.rel)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestSanitizeName(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"default-release", "default-release"},
		{`a<b>c:d"e/f\g|h?i*j`, "a_b_c_d_e_f_g_h_i_j"},
		{"tab\there", "tab_here"},
		{"  padded  ", "padded"},
		{"", "unnamed"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, sanitizeName(tt.in), "sanitizeName(%q)", tt.in)
	}

	long := strings.Repeat("x", 150)
	got := sanitizeName(long)
	assert.Len(t, []rune(got), maxNameComponent)
	assert.True(t, strings.HasSuffix(got, "..."))
}

func TestArchiveName(t *testing.T) {
	assert.Equal(t, "firefox_default_20260301_142233.zip", ArchiveName("firefox", "default", "20260301_142233", 0))
	assert.Equal(t, "firefox_default_20260301_142233-3.zip", ArchiveName("firefox", "default", "20260301_142233", 3))
	assert.Equal(t, "chrome_Profile _1_20260301_142233.zip", ArchiveName("chrome", "Profile /1", "20260301_142233", 0))
}

func TestCompareArchiveNames(t *testing.T) {
	names := []string{
		"firefox_default_20260301_142233.zip",
		"firefox_default_20260301_142233-1.zip",
		"firefox_default_20260301_142233-10.zip",
		"chrome_default_20260301_142233.zip",
		"firefox_default_20260301_142233-2.zip",
	}
	slices.SortFunc(names, compareArchiveNames)
	assert.Equal(t, []string{
		"chrome_default_20260301_142233.zip",
		"firefox_default_20260301_142233-10.zip",
		"firefox_default_20260301_142233-2.zip",
		"firefox_default_20260301_142233-1.zip",
		"firefox_default_20260301_142233.zip",
	}, names)
}

func TestSplitAttempt(t *testing.T) {
	tests := []struct {
		in   string
		stem string
		n    int
	}{
		{"firefox_default_20260301_142233.zip", "firefox_default_20260301_142233", 0},
		{"firefox_default_20260301_142233-7.zip", "firefox_default_20260301_142233", 7},
		{"firefox_my-profile_20260301_142233.zip", "firefox_my-profile_20260301_142233", 0},
		{"firefox_default_20260301_142233-.zip", "firefox_default_20260301_142233-", 0},
	}
	for _, tt := range tests {
		stem, n := splitAttempt(tt.in)
		assert.Equal(t, tt.stem, stem, tt.in)
		assert.Equal(t, tt.n, n, tt.in)
	}
}

func TestFileEntry_JSONKeys(t *testing.T) {
	data, err := json.Marshal(FileEntry{Path: "places.sqlite", Size: 4, Hash: "ab"})
	require.NoError(t, err)
	assert.JSONEq(t, `{"path":"places.sqlite","size":4,"hash":"ab"}`, string(data))

	var e FileEntry
	require.NoError(t, json.Unmarshal([]byte(`{"relative_path":"prefs.js","size":1,"hash":"cd"}`), &e))
	assert.Equal(t, "prefs.js", e.Path)
}

func TestIsExcluded(t *testing.T) {
	excluded := []string{"cache", "Cache", "cache2", "startupCache", "parent.lock", "lock", "lockfile", "x.tmp", "Temp", "sessionstore.temp"}
	for _, name := range excluded {
		assert.True(t, IsExcluded(name), name)
	}

	kept := []string{"places.sqlite", "prefs.js", "bookmarks.json", "Login Data"}
	for _, name := range kept {
		assert.False(t, IsExcluded(name), name)
	}
}

func TestFileOutcome_MarshalJSON(t *testing.T) {
	data, err := json.Marshal(FileOutcome{Path: "a.txt", Err: errors.New("permission denied")})
	require.NoError(t, err)
	assert.JSONEq(t, `{"path":"a.txt","error":"permission denied"}`, string(data))

	data, err = json.Marshal(FileOutcome{Path: "b.txt"})
	require.NoError(t, err)
	assert.JSONEq(t, `{"path":"b.txt"}`, string(data))
}

func TestMetadata_CreatedTime(t *testing.T) {
	tests := []struct {
		createdAt string
		ok        bool
	}{
		{"2026-03-01T14:22:33Z", true},
		{"2026-03-01T14:22:33+01:00", true},
		{"2026-03-01T14:22:33.123456", true},
		{"2026-03-01T14:22:33", true},
		{"yesterday", false},
		{"", false},
	}
	for _, tt := range tests {
		md := Metadata{CreatedAt: tt.createdAt}
		got, ok := md.CreatedTime()
		assert.Equal(t, tt.ok, ok, tt.createdAt)
		if ok {
			assert.Equal(t, 2026, got.Year(), tt.createdAt)
		}
	}
}

func TestHashReader(t *testing.T) {
	sum, n, err := hashReader(strings.NewReader(""))
	require.NoError(t, err)
	assert.Zero(t, n)
	assert.Equal(t, "e3b0c44298fc1c149afbf4c8996fb92427ae41e4649b934ca495991b7852b855", sum)

	big := strings.Repeat("a", 3*hashChunkSize+17)
	_, n, err = hashReader(strings.NewReader(big))
	require.NoError(t, err)
	assert.EqualValues(t, len(big), n)
}
