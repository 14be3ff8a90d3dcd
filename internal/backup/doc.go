// Package backup creates and restores browser profile backups.
//
// A backup is a single ZIP archive in the backup root (by default
// ~/.floorper/backups) named after the browser, the profile and the
// second it was taken:
//
//	firefox_default-release_20260301_142233.zip
//	├── metadata.json
//	└── profile/
//	    ├── places.sqlite
//	    └── bookmarkbackups/...
//
// metadata.json records every archived file with its size and SHA-256,
// plus the source path the profile was read from. Lock files, caches and
// temp files are left out (see [IsExcluded]).
//
// # Creating Backups
//
//	mgr := backup.NewManager(backup.WithBackupDir(dir))
//	res, err := mgr.Create("~/.mozilla/firefox/abcd.default", "firefox", "default")
//
// Files that cannot be read are reported in [CreateResult.Skipped] rather
// than failing the backup. Archives are written to a temp file and renamed
// into place, so a reader never sees a half-written archive. Two backups
// of the same profile in the same second get a "-1", "-2", ... suffix.
//
// # Verifying and Restoring
//
// [Manager.Verify] checks that every file in the metadata is present in
// the archive. [WithStrictVerify] additionally re-hashes each file.
// [Manager.Restore] verifies first and refuses invalid archives:
//
//	res, err := mgr.Restore(path, "", false) // overwrite the original location
//	res, err := mgr.Restore(path, dst, true) // merge into dst, keeping existing files
//
// Only files recorded in the metadata are written. Other bodies under
// profile/ are counted in [RestoreResult.Ignored] and left in the archive,
// unlike older floorper releases, which extracted every profile/ entry.
// Entries that would escape the target directory are rejected, and a
// symlink already at a destination is replaced rather than followed.
// A [Safeguard] can snapshot a target once before it is overwritten.
//
// # Retention
//
// [Manager.Prune] keeps the newest N archives of every browser profile
// and deletes the rest. The default retention is [DefaultRetentionCount].
package backup
