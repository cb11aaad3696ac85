// Package errors provides coded, actionable errors for the fsroute CLI.
//
// Library packages return plain wrapped errors. The CLI converts the ones
// a user can act on into an *Error carrying a code, a short message, an
// explanation and a hint, and prints it with Format.
//
// # Error Codes
//
//   - E1xx: configuration (missing file, bad YAML, missing folder key)
//   - E2xx: routing (missing root, unsupported framework, strict failures)
//   - E3xx: CLI and server
//
// # Usage
//
//	err := errors.New("E103").
//	    WithLocation("watcher_config.yaml").
//	    WithDetail("no stream_folder key")
//
//	errors.PrintError(err)
//	// ERROR E103: Route folder not configured
//	//
//	//   watcher_config.yaml
//	//
//	//   no stream_folder key
//	//
//	//   Hint: Add e.g. http_folder: app/routes/http to the config file
package errors
