package kubeflow

import (
	"context"
	"errors"
	"fmt"

	"github.com/opst/mlpipe/pkg/kubeutil"
	kubeerr "k8s.io/apimachinery/pkg/api/errors"
	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"
	"k8s.io/client-go/kubernetes"
)

const (
	Engine = "kubeflow"

	DefaultNamespace = "kubeflow"

	// name of the service of Kubeflow Pipelines API server.
	PipelineService = "ml-pipeline"
)

var ErrNotReady = errors.New("kubeflow pipelines is not ready")

type Config struct {
	Namespace  string
	Kubeconfig string
}

type Handler struct {
	namespace string
	connect   func() (kubernetes.Interface, error)
}

type Option func(*Handler) *Handler

// WithClientset makes the handler use the clientset, instead of connecting to the cluster.
func WithClientset(clientset kubernetes.Interface) Option {
	return func(h *Handler) *Handler {
		h.connect = func() (kubernetes.Interface, error) { return clientset, nil }
		return h
	}
}

// New creates a handler. It does not connect to the cluster until Check.
func New(conf Config, options ...Option) *Handler {
	ns := conf.Namespace
	if ns == "" {
		ns = DefaultNamespace
	}
	h := &Handler{
		namespace: ns,
		connect: func() (kubernetes.Interface, error) {
			return kubeutil.ConnectToK8s(conf.Kubeconfig)
		},
	}
	for _, opt := range options {
		h = opt(h)
	}
	return h
}

func (h *Handler) Engine() string {
	return Engine
}

func (h *Handler) Namespace() string {
	return h.namespace
}

// Check verifies the Kubeflow Pipelines service is in the namespace.
func (h *Handler) Check(ctx context.Context) error {
	clientset, err := h.connect()
	if err != nil {
		return fmt.Errorf("%w: cannot connect to kubernetes: %w", ErrNotReady, err)
	}

	_, err = clientset.CoreV1().Services(h.namespace).Get(ctx, PipelineService, metav1.GetOptions{})
	if kubeerr.IsNotFound(err) {
		return fmt.Errorf("%w: service %s is not found in namespace %s", ErrNotReady, PipelineService, h.namespace)
	} else if err != nil {
		return err
	}
	return nil
}
