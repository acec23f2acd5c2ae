package browser

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/shirou/gopsutil/v4/process"
)

// ErrProfileInUse is returned when another process already runs Chrome with
// the requested user-data directory
var ErrProfileInUse = errors.New("chrome profile is in use by another process")

// CheckProfileFree fails with ErrProfileInUse if a running process was started
// with --user-data-dir pointing at dir
func CheckProfileFree(ctx context.Context, dir string) error {
	procs, err := process.ProcessesWithContext(ctx)
	if err != nil {
		return fmt.Errorf("listing processes: %w", err)
	}

	self := int32(os.Getpid())
	for _, p := range procs {
		if p.Pid == self {
			continue
		}
		args, err := p.CmdlineSliceWithContext(ctx)
		if err != nil {
			continue
		}
		if usesProfile(args, dir) {
			return fmt.Errorf("%w: pid %d uses %s", ErrProfileInUse, p.Pid, dir)
		}
	}
	return nil
}

// usesProfile reports whether a command line passes dir as --user-data-dir
func usesProfile(args []string, dir string) bool {
	want := filepath.Clean(dir)
	for i, arg := range args {
		var value string
		switch {
		case strings.HasPrefix(arg, "--user-data-dir="):
			value = strings.TrimPrefix(arg, "--user-data-dir=")
		case arg == "--user-data-dir" && i+1 < len(args):
			value = args[i+1]
		default:
			continue
		}
		value = strings.Trim(value, `"'`)
		if value != "" && filepath.Clean(value) == want {
			return true
		}
	}
	return false
}
