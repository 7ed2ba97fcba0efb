//go:build windows

package walker

import "os"

// setPlatformIdentity is a no-op on platforms lacking a meaningful inode;
// the Scanner falls back to its size/mtime/path dedupe key in that case.
func setPlatformIdentity(path string, info os.FileInfo, c *Candidate) {}
