//go:build !windows

package walker

import (
	"fmt"
	"os"
	"syscall"
)

// setPlatformIdentity fills in the inode/device fields from the platform's
// stat_t when available, producing the "dev:ino" key the Scanner's dedupe
// and cache-lookup logic keys on.
func setPlatformIdentity(path string, info os.FileInfo, c *Candidate) {
	stat, ok := info.Sys().(*syscall.Stat_t)
	if !ok {
		return
	}
	c.Inode = uint64(stat.Ino)
	c.Device = uint64(stat.Dev)
	c.InodeKey = fmt.Sprintf("%d:%d", c.Device, c.Inode)
}
