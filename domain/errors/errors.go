// Package errors provides the error taxonomy of the program loader.
// All error types support error unwrapping via errors.As() and errors.Is().
package errors

import (
	stdErrors "errors"
	"fmt"
	"io/fs"
	"net/http"
	"time"

	"github.com/nthnn/ura/domain/entities"
)

// ErrEntryPointNotFound is wrapped by an ExecutionError when the instance
// does not export the configured entry point.
var ErrEntryPointNotFound = stdErrors.New("entry point not exported")

// ErrorDetail is an alias to entities.ErrorDetail for convenience.
type ErrorDetail = entities.ErrorDetail

// DetailedError is implemented by error types that can convert themselves
// to a structured ErrorDetail.
type DetailedError interface {
	error
	ToErrorDetail() *entities.ErrorDetail
}

// StagedError is implemented by the errors of the load pipeline.
type StagedError interface {
	error
	Stage() entities.Stage
}

// ToErrorDetail converts a Go error to our structured ErrorDetail.
func ToErrorDetail(err error) *entities.ErrorDetail {
	if err == nil {
		return nil
	}

	var e *entities.ErrorDetail
	if stdErrors.As(err, &e) {
		return e
	}

	var de DetailedError
	if stdErrors.As(err, &de) {
		return de.ToErrorDetail()
	}

	return &entities.ErrorDetail{
		Message: err.Error(),
		Type:    "internal",
	}
}

// StageOf reports the pipeline stage an error came from.
func StageOf(err error) (entities.Stage, bool) {
	var se StagedError
	if stdErrors.As(err, &se) {
		return se.Stage(), true
	}
	return 0, false
}

// RequestError is returned when a LoadRequest fails validation.
// Nothing is fetched for such a request.
type RequestError struct {
	Err  error
	Name string
}

func (e *RequestError) Error() string {
	return fmt.Sprintf("invalid load request %q: %v", e.Name, e.Err)
}

func (e *RequestError) Unwrap() error {
	return e.Err
}

// Stage implements StagedError.
func (e *RequestError) Stage() entities.Stage {
	return entities.StageValidate
}

// ToErrorDetail implements DetailedError.
func (e *RequestError) ToErrorDetail() *entities.ErrorDetail {
	return &entities.ErrorDetail{Message: e.Error(), Type: "request", Code: "invalid_name", Stage: e.Stage().String()}
}

// RetrievalError represents a failure to fetch the binary resource.
type RetrievalError struct {
	Err  error
	Name string
	Path string
}

func (e *RetrievalError) Error() string {
	return fmt.Sprintf("retrieve %s: %v", e.Path, e.Err)
}

func (e *RetrievalError) Unwrap() error {
	return e.Err
}

// Stage implements StagedError.
func (e *RetrievalError) Stage() entities.Stage {
	return entities.StageFetch
}

// NotFound reports whether the resource does not exist at the source.
func (e *RetrievalError) NotFound() bool {
	if stdErrors.Is(e.Err, fs.ErrNotExist) {
		return true
	}
	var he *HTTPError
	return stdErrors.As(e.Err, &he) && he.StatusCode == http.StatusNotFound
}

// Timeout reports whether the fetch timed out.
func (e *RetrievalError) Timeout() bool {
	var t interface{ Timeout() bool }
	return stdErrors.As(e.Err, &t) && t.Timeout()
}

// ToErrorDetail implements DetailedError.
func (e *RetrievalError) ToErrorDetail() *entities.ErrorDetail {
	detail := &entities.ErrorDetail{
		Message:    e.Error(),
		Type:       "retrieval",
		Stage:      e.Stage().String(),
		IsNotFound: e.NotFound(),
		IsTimeout:  e.Timeout(),
	}
	var he *HTTPError
	if stdErrors.As(e.Err, &he) && he.StatusCode > 0 {
		detail.Code = fmt.Sprintf("http_%d", he.StatusCode)
	}
	return detail
}

// CompilationError represents a malformed or unsupported binary.
type CompilationError struct {
	Err  error
	Name string
}

func (e *CompilationError) Error() string {
	return fmt.Sprintf("compile %s: %v", e.Name, e.Err)
}

func (e *CompilationError) Unwrap() error {
	return e.Err
}

// Stage implements StagedError.
func (e *CompilationError) Stage() entities.Stage {
	return entities.StageCompile
}

// ToErrorDetail implements DetailedError.
func (e *CompilationError) ToErrorDetail() *entities.ErrorDetail {
	return &entities.ErrorDetail{Message: e.Error(), Type: "compilation", Stage: e.Stage().String()}
}

// InstantiationError represents a failure to bind a compiled module,
// typically because an import is not provided by the bridge.
type InstantiationError struct {
	Err      error
	Name     string
	Instance string
}

func (e *InstantiationError) Error() string {
	return fmt.Sprintf("instantiate %s: %v", e.Name, e.Err)
}

func (e *InstantiationError) Unwrap() error {
	return e.Err
}

// Stage implements StagedError.
func (e *InstantiationError) Stage() entities.Stage {
	return entities.StageInstantiate
}

// ToErrorDetail implements DetailedError.
func (e *InstantiationError) ToErrorDetail() *entities.ErrorDetail {
	return &entities.ErrorDetail{Message: e.Error(), Type: "instantiation", Code: e.Instance, Stage: e.Stage().String()}
}

// ExecutionError represents a failure inside the entry point: a missing
// export, a trap, or a non-zero exit code.
type ExecutionError struct {
	Err        error
	Name       string
	EntryPoint string
	ExitCode   uint32
	Exited     bool
}

func (e *ExecutionError) Error() string {
	if e.Exited && e.Err == nil {
		return fmt.Sprintf("run %s: %s exited with code %d", e.Name, e.EntryPoint, e.ExitCode)
	}
	return fmt.Sprintf("run %s: %s: %v", e.Name, e.EntryPoint, e.Err)
}

func (e *ExecutionError) Unwrap() error {
	return e.Err
}

// Stage implements StagedError.
func (e *ExecutionError) Stage() entities.Stage {
	return entities.StageRun
}

// ToErrorDetail implements DetailedError.
func (e *ExecutionError) ToErrorDetail() *entities.ErrorDetail {
	detail := &entities.ErrorDetail{Message: e.Error(), Type: "execution", Stage: e.Stage().String()}
	switch {
	case e.Exited:
		detail.Code = fmt.Sprintf("exit_%d", e.ExitCode)
	case stdErrors.Is(e.Err, ErrEntryPointNotFound):
		detail.Code = "no_entry_point"
	}
	return detail
}

// ConfigError represents a configuration validation error.
type ConfigError struct {
	Err   error
	Field string
}

func (e *ConfigError) Error() string {
	if e.Field != "" {
		return fmt.Sprintf("config validation failed for field '%s': %v", e.Field, e.Err)
	}
	return fmt.Sprintf("config validation failed: %v", e.Err)
}

func (e *ConfigError) Unwrap() error {
	return e.Err
}

// ToErrorDetail implements DetailedError.
func (e *ConfigError) ToErrorDetail() *entities.ErrorDetail {
	return &entities.ErrorDetail{Message: e.Error(), Type: "config", Code: e.Field}
}

// TimeoutError represents a timeout during an operation.
type TimeoutError struct {
	Operation string
	Target    string
	Duration  time.Duration
}

func (e *TimeoutError) Error() string {
	if e.Target != "" {
		return fmt.Sprintf("%s timeout after %v (target: %s)", e.Operation, e.Duration, e.Target)
	}
	return fmt.Sprintf("%s timeout after %v", e.Operation, e.Duration)
}

func (e *TimeoutError) Timeout() bool {
	return true
}

// ToErrorDetail implements DetailedError.
func (e *TimeoutError) ToErrorDetail() *entities.ErrorDetail {
	return &entities.ErrorDetail{Message: e.Error(), Type: "timeout", Code: e.Operation, IsTimeout: true}
}

// HTTPError represents an HTTP request failure.
type HTTPError struct {
	Err        error
	Method     string
	URL        string
	StatusCode int
}

func (e *HTTPError) Error() string {
	if e.StatusCode > 0 && e.Err == nil {
		return fmt.Sprintf("http %s %s failed with status %d", e.Method, e.URL, e.StatusCode)
	}
	if e.StatusCode > 0 {
		return fmt.Sprintf("http %s %s failed with status %d: %v", e.Method, e.URL, e.StatusCode, e.Err)
	}
	return fmt.Sprintf("http %s %s failed: %v", e.Method, e.URL, e.Err)
}

func (e *HTTPError) Unwrap() error {
	return e.Err
}

func (e *HTTPError) Timeout() bool {
	if t, ok := e.Err.(interface{ Timeout() bool }); ok {
		return t.Timeout()
	}
	return false
}

// ToErrorDetail implements DetailedError.
func (e *HTTPError) ToErrorDetail() *entities.ErrorDetail {
	detail := &entities.ErrorDetail{Message: e.Error(), Type: "network", Code: fmt.Sprintf("http_%d", e.StatusCode)}
	if e.Timeout() {
		detail.Type = "timeout"
		detail.IsTimeout = true
	}
	return detail
}

// SizeLimitError is returned when a binary exceeds the configured maximum.
type SizeLimitError struct {
	Path  string
	Size  int64
	Limit int64
}

func (e *SizeLimitError) Error() string {
	if e.Size < 0 {
		return fmt.Sprintf("%s exceeds the %d byte limit", e.Path, e.Limit)
	}
	return fmt.Sprintf("%s is %d bytes, limit is %d bytes", e.Path, e.Size, e.Limit)
}

// ToErrorDetail implements DetailedError.
func (e *SizeLimitError) ToErrorDetail() *entities.ErrorDetail {
	return &entities.ErrorDetail{Message: e.Error(), Type: "internal", Code: "size_limit"}
}
