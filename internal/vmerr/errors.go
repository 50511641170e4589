// Package vmerr defines the node's error taxonomy: a closed set of
// deterministic error codes shared by the mempool, executor, and block
// importer, plus the problem+JSON payload used to surface them (spec §6–§7).
package vmerr

import (
	"errors"
	"fmt"
)

// Code is a stable, wire-visible error code. New codes are always appended;
// existing codes are never renumbered or reused.
type Code int

const (
	// Admission errors (§4.5.1) — never fatal, never touch state.
	Oversize Code = iota
	FeeTooLow
	WrongChainId
	Banned
	QuotaExceeded

	// Execution errors (§4.4) — rolled back per-tx, tx omitted from the block.
	InsufficientBalance
	Revert

	// Block-level errors (§4.4, §7) — fatal for the whole block.
	BadRoot
	DuplicateNonce
	BadParent

	// VM/runtime catch-all, kept distinct from Revert for receipts that
	// abort before producing structured revert data.
	VMRevert
)

var codeNames = map[Code]string{
	Oversize:             "OVERSIZE",
	FeeTooLow:            "FEE_TOO_LOW",
	WrongChainId:         "WRONG_CHAIN_ID",
	Banned:               "BANNED",
	QuotaExceeded:        "QUOTA_EXCEEDED",
	InsufficientBalance:  "INSUFFICIENT_BALANCE",
	Revert:               "REVERT",
	BadRoot:              "BAD_ROOT",
	DuplicateNonce:       "DUPLICATE_NONCE",
	BadParent:            "BAD_PARENT",
	VMRevert:             "VM_REVERT",
}

// String returns the stable upper-snake-case title used in problem
// documents, e.g. "FEE_TOO_LOW".
func (c Code) String() string {
	if name, ok := codeNames[c]; ok {
		return name
	}
	return "UNKNOWN"
}

// deterministicCodes are errors every honest node must agree on: block-level
// faults and reverts. Everything else (local admission policy) may differ
// node to node depending on local configuration and mempool state.
var deterministicCodes = map[Code]bool{
	InsufficientBalance: true,
	Revert:              true,
	BadRoot:             true,
	DuplicateNonce:      true,
	BadParent:           true,
	VMRevert:            true,
}

// Error is a structured, coded error carrying enough context to build a
// problem+JSON document without re-deriving it at the call site.
type Error struct {
	Code    Code
	Detail  string
	Context map[string]any
}

func (e *Error) Error() string {
	if e.Detail == "" {
		return e.Code.String()
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Detail)
}

// Deterministic reports whether every honest node must agree on this error.
func (e *Error) Deterministic() bool {
	return deterministicCodes[e.Code]
}

// New builds an *Error with the given code, detail message, and optional
// context fields (supplied as alternating key/value pairs).
func New(code Code, detail string, kv ...any) *Error {
	e := &Error{Code: code, Detail: detail}
	if len(kv) > 0 {
		e.Context = make(map[string]any, len(kv)/2)
		for i := 0; i+1 < len(kv); i += 2 {
			key, ok := kv[i].(string)
			if !ok {
				continue
			}
			e.Context[key] = kv[i+1]
		}
	}
	return e
}

// As reports whether err is (or wraps) a *vmerr.Error with the given code.
func As(err error, code Code) bool {
	var ve *Error
	return errors.As(err, &ve) && ve.Code == code
}
