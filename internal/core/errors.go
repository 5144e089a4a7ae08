package core

import "fmt"

// The error kinds below partition every failure the generator can hit.
// ConfigError aborts before introspection begins. ConnectivityError
// aborts the entire run after the pool is drained. SchemaError is
// table-local: the offending table is logged and skipped.
// RelationshipAnalysisError never fails the run; callers see Unknown
// for the affected pair. CodeGenerationError wraps emitter failures.

// ConfigError reports a missing or invalid connection string, provider
// or output path.
type ConfigError struct {
	Msg string
	Err error
}

func (e *ConfigError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("config: %s: %v", e.Msg, e.Err)
	}
	return "config: " + e.Msg
}

func (e *ConfigError) Unwrap() error { return e.Err }

// ConnectivityError reports pool exhaustion, a connection open failure
// or a catalog query failure. Table is empty when the failure is not
// tied to one table.
type ConnectivityError struct {
	Table string
	Err   error
}

func (e *ConnectivityError) Error() string {
	if e.Table != "" {
		return fmt.Sprintf("connectivity: table %s: %v", e.Table, e.Err)
	}
	return fmt.Sprintf("connectivity: %v", e.Err)
}

func (e *ConnectivityError) Unwrap() error { return e.Err }

// SchemaError reports a catalog row that violates a model invariant.
type SchemaError struct {
	Table string
	Err   error
}

func (e *SchemaError) Error() string {
	if e.Table != "" {
		return fmt.Sprintf("schema: table %s: %v", e.Table, e.Err)
	}
	return fmt.Sprintf("schema: %v", e.Err)
}

func (e *SchemaError) Unwrap() error { return e.Err }

// RelationshipAnalysisError wraps an internal fault in the analyzer.
type RelationshipAnalysisError struct {
	Source string
	Target string
	Err    error
}

func (e *RelationshipAnalysisError) Error() string {
	return fmt.Sprintf("relationship analysis: %s -> %s: %v", e.Source, e.Target, e.Err)
}

func (e *RelationshipAnalysisError) Unwrap() error { return e.Err }

// CodeGenerationError wraps a failure from the source emitter.
type CodeGenerationError struct {
	Table string
	Err   error
}

func (e *CodeGenerationError) Error() string {
	if e.Table != "" {
		return fmt.Sprintf("code generation: table %s: %v", e.Table, e.Err)
	}
	return fmt.Sprintf("code generation: %v", e.Err)
}

func (e *CodeGenerationError) Unwrap() error { return e.Err }
