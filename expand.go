package qrsdetect

import (
	"os/user"
	"path/filepath"
	"strings"
)

// ExpandHome expands a leading ~ to the current user's home directory. Via
// https://stackoverflow.com/a/17617721/199475
func ExpandHome(path string) string {
	if path != "~" && !strings.HasPrefix(path, "~/") {
		return path
	}

	usr, err := user.Current()
	if err != nil {
		return path
	}

	if path == "~" {
		return usr.HomeDir
	}

	// HasPrefix rather than Contains so /something/~/something/ is left alone
	return filepath.Join(usr.HomeDir, path[2:])
}
