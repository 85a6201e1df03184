package testutil

import (
	"os"
	"testing"
)

// RequireHostFile skips the test if the given host file does not exist.
// Tests that read real OS databases (/etc/protocols, /etc/services) only
// run where those files are present; minimal containers often lack them.
func RequireHostFile(t *testing.T, path string) {
	t.Helper()
	if _, err := os.Stat(path); err != nil {
		t.Skipf("Skipping test: requires host file %s", path)
	}
}
