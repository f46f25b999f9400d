package common

import (
	"os"
	"path/filepath"
)

const EnvConfig = "MLPIPE_CONFIG"

type CommonFlags struct {
	Config string `flag:"config" metavar:"PATH" help:"path to mlpipe config file"`
}

// DefaultCommonFlags detects default values of common flags.
//
// The config file is, in order of priority,
//
// - environmental variable MLPIPE_CONFIG
//
// - mlpipe.yaml found first from the directory "from" up to the root
//
// When nothing is found, it is "mlpipe.yaml" in "from".
func DefaultCommonFlags(from string) (CommonFlags, error) {
	if c := os.Getenv(EnvConfig); c != "" {
		return CommonFlags{Config: c}, nil
	}

	from, err := filepath.Abs(from)
	if err != nil {
		return CommonFlags{}, err
	}

	for searchpath := from; ; {
		candidate := filepath.Join(searchpath, "mlpipe.yaml")
		if s, err := os.Stat(candidate); err == nil && s.Mode().IsRegular() {
			return CommonFlags{Config: candidate}, nil
		}

		next := filepath.Dir(searchpath)
		if next == searchpath {
			break
		}
		searchpath = next
	}
	return CommonFlags{Config: filepath.Join(from, "mlpipe.yaml")}, nil
}
