package airflow

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"k8s.io/client-go/util/homedir"
)

const Engine = "airflow"

var ErrNotReady = errors.New("airflow is not ready")

type Config struct {
	// AIRFLOW_HOME. When empty, environmental variable AIRFLOW_HOME or ~/airflow is used.
	Home string
}

type Handler struct {
	home string
}

func New(conf Config) *Handler {
	return &Handler{home: Home(conf)}
}

// Home decides AIRFLOW_HOME.
func Home(conf Config) string {
	if conf.Home != "" {
		return conf.Home
	}
	if h := os.Getenv("AIRFLOW_HOME"); h != "" {
		return h
	}
	return filepath.Join(homedir.HomeDir(), "airflow")
}

func (h *Handler) Engine() string {
	return Engine
}

func (h *Handler) Home() string {
	return h.home
}

// Check verifies AIRFLOW_HOME has the "dags" directory.
func (h *Handler) Check(context.Context) error {
	dags := filepath.Join(h.home, "dags")
	s, err := os.Stat(dags)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrNotReady, err)
	}
	if !s.IsDir() {
		return fmt.Errorf("%w: %s is not a directory", ErrNotReady, dags)
	}
	return nil
}
