package engine

import (
	"context"
	"fmt"
	"os/exec"
)

// PackageLister lists installed python packages.
type PackageLister interface {
	// ListPackages returns newline-delimited "name==version".
	ListPackages(ctx context.Context) (string, error)
}

// PipFreeze lists packages with `pip freeze --local`.
type PipFreeze struct {
	// python interpreter. "python" when empty.
	Python string
}

func (p PipFreeze) ListPackages(ctx context.Context) (string, error) {
	python := p.Python
	if python == "" {
		python = "python"
	}
	out, err := exec.CommandContext(ctx, python, "-m", "pip", "freeze", "--local").Output()
	if err != nil {
		return "", fmt.Errorf("cannot list installed packages: %w", err)
	}
	return string(out), nil
}

// PackageList is a fixed package list.
type PackageList string

func (p PackageList) ListPackages(context.Context) (string, error) {
	return string(p), nil
}
