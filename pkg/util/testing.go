package util

import (
	"flag"
	"os"
	"path/filepath"
)

func IsTestMode() bool {
	return flag.Lookup("test.v") != nil
}

// RandomTempDir returns a unique, not yet existing directory path under the system temp dir
func RandomTempDir(prefix string) string {
	return filepath.Join(os.TempDir(), prefix+"-"+NewULID().String())
}
