package jsrt

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/evanw/esbuild/pkg/api"
)

// Compile strips TypeScript syntax from src. Top-level declarations stay
// global, so handlers defined in the source are reachable by Func and
// BindFunc after evaluation.
func Compile(src string, typescript bool) (string, error) {
	loader := api.LoaderJS
	if typescript {
		loader = api.LoaderTS
	}
	result := api.Transform(src, api.TransformOptions{
		Loader: loader,
		Target: api.ES2020,
	})
	if len(result.Errors) > 0 {
		msgs := make([]string, len(result.Errors))
		for i, m := range result.Errors {
			if m.Location != nil {
				msgs[i] = fmt.Sprintf("%d:%d: %s", m.Location.Line, m.Location.Column, m.Text)
			} else {
				msgs[i] = m.Text
			}
		}
		return "", fmt.Errorf("compiling script: %s", strings.Join(msgs, "; "))
	}
	return string(result.Code), nil
}

// LoadFile compiles and evaluates the script at path. Files ending in .ts
// are treated as TypeScript.
func (r *Runtime) LoadFile(path string) error {
	src, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	code, err := Compile(string(src), filepath.Ext(path) == ".ts")
	if err != nil {
		return fmt.Errorf("%s: %w", path, err)
	}
	_, err = r.Eval(code)
	return err
}
