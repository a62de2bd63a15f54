// Unified error handling for the Ahmes Go migration
//
// Copyright (C) 2026  Ahmes Migration Team
//
// This file may be distributed under the terms of the GNU GPLv3 license.

package errors

import (
	"fmt"
)

// ErrorCode represents the category of error
type ErrorCode string

const (
	// Configuration errors
	ErrConfigSection    ErrorCode = "CONFIG_SECTION"
	ErrConfigOption     ErrorCode = "CONFIG_OPTION"
	ErrConfigValidation ErrorCode = "CONFIG_VALIDATION"
	ErrConfigType       ErrorCode = "CONFIG_TYPE"

	// Unit errors
	ErrUnitParse    ErrorCode = "UNIT_PARSE"
	ErrUnitMismatch ErrorCode = "UNIT_MISMATCH"

	// Geometry errors
	ErrGeometryShape ErrorCode = "GEOMETRY_SHAPE"

	// Script emission errors
	ErrEmit     ErrorCode = "EMIT"
	ErrEmitOpen ErrorCode = "EMIT_OPEN"
	ErrEmitIO   ErrorCode = "EMIT_IO"

	// Upload transport errors
	ErrSerial        ErrorCode = "SERIAL"
	ErrSerialTimeout ErrorCode = "SERIAL_TIMEOUT"

	// Monitor server errors
	ErrMonitor ErrorCode = "MONITOR"
)

// HostError is the unified error type for the host toolchain
type HostError struct {
	// Code is the error category
	Code ErrorCode

	// Message is a human-readable error description
	Message string

	// Section is the config section or context
	Section string

	// Option is the config option name (if applicable)
	Option string

	// Err wraps the underlying error
	Err error

	// Context provides additional context
	Context map[string]interface{}
}

// Error implements the error interface
func (e *HostError) Error() string {
	if e.Option != "" {
		return fmt.Sprintf("[%s:%s] %s", e.Code, e.Option, e.Message)
	}
	if e.Section != "" {
		return fmt.Sprintf("[%s:%s] %s", e.Code, e.Section, e.Message)
	}
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

// Unwrap returns the underlying error
func (e *HostError) Unwrap() error {
	return e.Err
}

// SetSection sets the context section
func (e *HostError) SetSection(section string) *HostError {
	e.Section = section
	return e
}

// SetOption sets the config option
func (e *HostError) SetOption(option string) *HostError {
	e.Option = option
	return e
}

// SetContext adds additional context
func (e *HostError) SetContext(key string, value interface{}) *HostError {
	if e.Context == nil {
		e.Context = make(map[string]interface{})
	}
	e.Context[key] = value
	return e
}

// Wrap wraps an existing error with additional context
func Wrap(err error, code ErrorCode, message string) *HostError {
	return &HostError{
		Code:    code,
		Message: message,
		Err:     err,
	}
}

// New creates a new HostError
func New(code ErrorCode, message string) *HostError {
	return &HostError{
		Code:    code,
		Message: message,
	}
}

// Config errors

// ConfigSectionError creates an error for a missing config section
func ConfigSectionError(section string) *HostError {
	return New(ErrConfigSection, fmt.Sprintf("section '%s' not found", section)).
		SetSection(section)
}

// ConfigOptionError creates an error for a missing config option
func ConfigOptionError(section, option string) *HostError {
	return New(ErrConfigOption, fmt.Sprintf("option '%s' not found in section '%s'", option, section)).
		SetSection(section).
		SetOption(option)
}

// ConfigValidationError creates an error for config validation failure
func ConfigValidationError(section, option string, reason string) *HostError {
	return New(ErrConfigValidation, fmt.Sprintf("option '%s' in section '%s': %s", option, section, reason)).
		SetSection(section).
		SetOption(option)
}

// ConfigTypeError creates an error for config type conversion failure
func ConfigTypeError(section, option, value string, targetType string, err error) *HostError {
	return Wrap(err, ErrConfigType, fmt.Sprintf("option '%s' in section '%s': failed to parse '%s' as %s", option, section, value, targetType)).
		SetSection(section).
		SetOption(option)
}

// Unit errors

// UnitParseError creates an error for an unparseable quantity string
func UnitParseError(value string, reason string) *HostError {
	return New(ErrUnitParse, fmt.Sprintf("failed to parse quantity '%s': %s", value, reason))
}

// UnitMismatchError creates an error for a quantity of the wrong physical dimension
func UnitMismatchError(value string, wantDimension string) *HostError {
	return New(ErrUnitMismatch, fmt.Sprintf("quantity '%s' does not have dimension %s", value, wantDimension))
}

// Geometry errors

// GeometryShapeError creates an error for structurally invalid geometry
func GeometryShapeError(message string) *HostError {
	return New(ErrGeometryShape, message)
}

// Emission errors

// EmitError creates a general script emission error
func EmitError(message string) *HostError {
	return New(ErrEmit, message)
}

// EmitOpenError creates an error for failing to open a script output file
func EmitOpenError(path string, err error) *HostError {
	return Wrap(err, ErrEmitOpen, fmt.Sprintf("failed to open script file '%s'", path)).
		SetContext("path", path)
}

// EmitIOError creates an error for a write failure during script emission.
// The partially written file is left in place; callers must discard it.
func EmitIOError(path string, err error) *HostError {
	return Wrap(err, ErrEmitIO, fmt.Sprintf("write failed on script file '%s'", path)).
		SetContext("path", path)
}

// Serial errors

// SerialError creates a general upload transport error
func SerialError(message string) *HostError {
	return New(ErrSerial, message)
}

// SerialTimeoutError creates an error for a transport timeout
func SerialTimeoutError(device string) *HostError {
	return New(ErrSerialTimeout, fmt.Sprintf("timed out talking to '%s'", device)).
		SetContext("device", device)
}

// Monitor errors

// MonitorError creates a monitor server error
func MonitorError(message string) *HostError {
	return New(ErrMonitor, message)
}

// Is checks if error matches given error code
func Is(err error, code ErrorCode) bool {
	if hostErr, ok := err.(*HostError); ok {
		return hostErr.Code == code
	}
	return false
}

// IsConfig checks if error is a config error
func IsConfig(err error) bool {
	return Is(err, ErrConfigSection) ||
		Is(err, ErrConfigOption) ||
		Is(err, ErrConfigValidation) ||
		Is(err, ErrConfigType)
}

// IsUnit checks if error is a unit error
func IsUnit(err error) bool {
	return Is(err, ErrUnitParse) || Is(err, ErrUnitMismatch)
}

// IsEmit checks if error is a script emission error
func IsEmit(err error) bool {
	return Is(err, ErrEmit) || Is(err, ErrEmitOpen) || Is(err, ErrEmitIO)
}
