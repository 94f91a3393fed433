package domain

import (
	"errors"
	"fmt"
)

// The error taxonomy separates fatal, whole-run failures (ConfigError,
// IndexError, SerializationError) from per-file failures (FileReadError,
// ParseError) that are collected and surfaced in the scan summary while the
// scan continues.

// ConfigError reports invalid configuration: a bad root path, bad flags, or
// an unusable config file. It is fatal and raised before any scanning.
type ConfigError struct {
	Reason string
	Err    error
}

func (e *ConfigError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("config error: %s: %v", e.Reason, e.Err)
	}
	return fmt.Sprintf("config error: %s", e.Reason)
}

func (e *ConfigError) Unwrap() error { return e.Err }

// FileReadError reports a file that could not be read (permission denied,
// vanished between walk and read). It is recorded per file; the scan
// continues.
type FileReadError struct {
	Path string
	Err  error
}

func (e *FileReadError) Error() string {
	return fmt.Sprintf("read %s: %v", e.Path, e.Err)
}

func (e *FileReadError) Unwrap() error { return e.Err }

// ParseError reports a file whose surface declarations could not be fully
// extracted. The file still yields a partial FileRecord; the scan continues.
type ParseError struct {
	Path  string
	Cause string
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("parse %s: %s", e.Path, e.Cause)
}

// IndexError reports a broken Snapshot invariant (duplicate path, dangling
// record reference). It is fatal: the completeness guarantee is already
// lost and any output would be unreliable.
type IndexError struct {
	Reason string
}

func (e *IndexError) Error() string {
	return fmt.Sprintf("index error: %s", e.Reason)
}

// SerializationError reports a failure writing or parsing the persisted
// index format. Fatal.
type SerializationError struct {
	Path string
	Line int
	Err  error
}

func (e *SerializationError) Error() string {
	switch {
	case e.Line > 0:
		return fmt.Sprintf("index file %s:%d: %v", e.Path, e.Line, e.Err)
	case e.Path != "":
		return fmt.Sprintf("index file %s: %v", e.Path, e.Err)
	default:
		return fmt.Sprintf("serialization error: %v", e.Err)
	}
}

func (e *SerializationError) Unwrap() error { return e.Err }

// IsFatal reports whether err belongs to the fatal part of the taxonomy.
// Per-file errors are non-fatal by definition.
func IsFatal(err error) bool {
	var cfg *ConfigError
	var idx *IndexError
	var ser *SerializationError
	return errors.As(err, &cfg) || errors.As(err, &idx) || errors.As(err, &ser)
}
