package cli

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/fatih/color"
	"github.com/nlxtools/trainconf/internal/runconfig"
)

type Finding struct {
	Code    string `json:"code"`
	Field   string `json:"field,omitempty"`
	Message string `json:"message"`
}

// Result is the machine-readable outcome of one validate/predict-check call.
type Result struct {
	OK         bool      `json:"ok"`
	Permissive bool      `json:"permissive"`
	Target     string    `json:"target"` // train|predict
	Path       string    `json:"path"`
	Errors     []Finding `json:"errors,omitempty"`
}

func buildResult(target, path string, permissive bool, err error) Result {
	res := Result{OK: err == nil, Permissive: permissive, Target: target, Path: path}
	if err != nil {
		res.Errors = append(res.Errors, Finding{
			Code:    errorCodeOrIO(err),
			Field:   runconfig.ErrorField(err),
			Message: err.Error(),
		})
	}
	return res
}

func errorCodeOrIO(err error) string {
	if code := runconfig.ErrorCode(err); code != "" {
		return code
	}
	return "CFG_E_IO"
}

func emitResult(res Result) error {
	if jsonOut {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		if err := enc.Encode(res); err != nil {
			return err
		}
	} else if res.OK {
		color.Green("ok: %s", res.Path)
	} else {
		for _, f := range res.Errors {
			if f.Field != "" {
				color.Red("%s: %s: %s", f.Code, f.Field, f.Message)
			} else {
				color.Red("%s: %s", f.Code, f.Message)
			}
		}
	}
	if !res.OK {
		return &exitError{code: 1, err: fmt.Errorf("configuration rejected: %s", res.Path)}
	}
	return nil
}
