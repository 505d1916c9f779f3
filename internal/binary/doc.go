// Package binary stages, unpacks and installs the suntheme executable.
//
// # Pipeline
//
// Manager.Run drives one bootstrapper run, strictly in sequence:
//
//  1. detect platform: host OS/arch to a platform.Target (fails before any network call)
//  2. locate release:  release.Locator resolves the archive URL
//  3. download:        the archive is fetched into a private Staging directory
//  4. verify:          optional SHA256 check when the release publishes checksums
//  5. extract:         Extractor unpacks the tar.gz and finds the executable
//  6. install:         Installer moves it into the install directory atomically
//
// Every failure is wrapped in a StageError naming the stage. The Staging
// directory is removed on every exit path.
//
// # Installation
//
// The executable is copied to a temporary name inside the install directory
// and renamed over the final path, so the previous version stays intact until
// the rename. If the directory is not writable, the same copy-and-rename runs
// once through an Elevator (sudo, doas or osascript). A declined or failed
// elevation surfaces as PermissionDeniedError carrying the target path.
//
// # Security Model
//
//   - Archive entries with absolute paths or ".." components are rejected
//   - Symlinks, hardlinks and device entries are skipped
//   - Extracted entries are size-bounded
//   - No signature verification is performed; integrity relies on the
//     transport and, when published, SHA256 checksums
package binary
