// Package shell tells the user how to put the install directory on PATH.
//
// The bootstrapper never edits shell profiles. After a successful install it
// checks whether the install directory is already on PATH and, if not,
// prints the line to add for the user's shell.
//
// # Shell Detection
//
// Shell detection tries, in order:
//  1. $SHELL environment variable (most reliable)
//  2. Parent process name (fallback, via gopsutil)
//
// Unknown shells get POSIX instructions for ~/.profile.
package shell
