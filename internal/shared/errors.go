package shared

import "fmt"

var (
	ErrNotImplemented = fmt.Errorf("not implemented")

	// Configuration errors
	ErrMissingConfig = fmt.Errorf("configuration not found")
	ErrInvalidConfig = fmt.Errorf("invalid configuration")

	// Remote source errors
	ErrNetwork            = fmt.Errorf("network request failed")
	ErrServiceUnavailable = fmt.Errorf("service unavailable")
	ErrProjectNotFound    = fmt.Errorf("project not found")

	// Pipeline errors
	ErrArchiveDecode     = fmt.Errorf("archive decode failed")
	ErrMissingEntryPoint = fmt.Errorf("no index.html entry point")
	ErrMissingManifest   = fmt.Errorf("no package.json manifest")
	ErrRender            = fmt.Errorf("preview render failed")
	ErrRunInFlight       = fmt.Errorf("run already in flight")

	// Input validation errors
	ErrInvalidInput    = fmt.Errorf("invalid input")
	ErrMissingArgument = fmt.Errorf("missing required argument")
	ErrInvalidArgument = fmt.Errorf("invalid argument")
	ErrInvalidFlag     = fmt.Errorf("invalid flag value")
)
