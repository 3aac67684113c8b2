// Package errors provides the structured error type shared by the ban
// packages: a machine-readable code, a human message, a retryable flag and
// an optional wrapped cause.
package errors
