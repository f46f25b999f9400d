package kubeutil_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/opst/mlpipe/pkg/kubeutil"
)

func TestFindKubeconfig(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("HOME", dir)

	fromEnv := filepath.Join(dir, "env-kubeconfig")
	fromArg := filepath.Join(dir, "arg-kubeconfig")
	for _, f := range []string{fromEnv, fromArg} {
		if err := os.WriteFile(f, []byte("apiVersion: v1\nkind: Config\n"), 0o600); err != nil {
			t.Fatal(err)
		}
	}

	t.Run("when nothing is found, it is empty", func(t *testing.T) {
		t.Setenv("KUBECONFIG", "")
		if actual := kubeutil.FindKubeconfig(filepath.Join(dir, "missing")); actual != "" {
			t.Errorf("unexpected kubeconfig: %s", actual)
		}
	})

	t.Run("KUBECONFIG is used", func(t *testing.T) {
		t.Setenv("KUBECONFIG", fromEnv)
		if actual := kubeutil.FindKubeconfig(); actual != fromEnv {
			t.Errorf("unexpected kubeconfig: %s", actual)
		}
	})

	t.Run("search path has priority", func(t *testing.T) {
		t.Setenv("KUBECONFIG", fromEnv)
		if actual := kubeutil.FindKubeconfig("", fromArg); actual != fromArg {
			t.Errorf("unexpected kubeconfig: %s", actual)
		}
	})

	t.Run("directory is not a kubeconfig", func(t *testing.T) {
		t.Setenv("KUBECONFIG", dir)
		if actual := kubeutil.FindKubeconfig(); actual != "" {
			t.Errorf("unexpected kubeconfig: %s", actual)
		}
	})
}
