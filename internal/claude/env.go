package claude

import (
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"sync"
)

var (
	tmpDirOnce sync.Once
	tmpDir     string
)

// CleanTmpDir returns a dedicated TMPDIR for CLI invocations, creating it on
// first use. Editor socket files in the shared temp dir crash the CLI when
// --settings is passed.
func CleanTmpDir() string {
	tmpDirOnce.Do(func() {
		tmpDir = filepath.Join(os.TempDir(), "foresight-claude")
		_ = os.MkdirAll(tmpDir, 0o755)
	})
	return tmpDir
}

// SetCleanEnv copies the current environment into cmd with TMPDIR replaced.
func SetCleanEnv(cmd *exec.Cmd) {
	dir := CleanTmpDir()
	env := os.Environ()
	out := make([]string, 0, len(env)+1)
	for _, kv := range env {
		if strings.HasPrefix(kv, "TMPDIR=") {
			continue
		}
		out = append(out, kv)
	}
	cmd.Env = append(out, "TMPDIR="+dir)
}
