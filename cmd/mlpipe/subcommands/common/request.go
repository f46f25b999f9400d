package common

import (
	"fmt"
	"io"
	"os"

	"github.com/opst/mlpipe/pkg/api/types/executions"
	"gopkg.in/yaml.v3"
)

// ReadRequest reads an execution request in yaml from path.
//
// When path is "-", it reads stdin.
func ReadRequest(stdin io.Reader, path string) (executions.Request, error) {
	var r io.Reader = stdin
	if path != "-" {
		f, err := os.Open(path)
		if err != nil {
			return executions.Request{}, err
		}
		defer f.Close()
		r = f
	}

	req := executions.Request{}
	if err := yaml.NewDecoder(r).Decode(&req); err != nil {
		if err == io.EOF {
			return executions.Request{}, fmt.Errorf("request is empty: %s", path)
		}
		return executions.Request{}, fmt.Errorf("%w: broken request: %s", err, path)
	}
	return req, nil
}
