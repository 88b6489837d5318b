package services

import (
	"errors"
	"fmt"
)

var (
	ErrMalformedDocument   = errors.New("malformed document")
	ErrModelUnavailable    = errors.New("model unavailable")
	ErrModelTimeout        = errors.New("model timeout")
	ErrModelRefusal        = errors.New("model refused to answer")
	ErrUnparseableAnalysis = errors.New("unparseable analysis")
)

// Pipeline stage names, used in StageError and in log fields.
const (
	StageExtract = "extract"
	StageInvoke  = "invoke"
	StageParse   = "parse"
	StagePersist = "persist"
)

// StageError records which pipeline stage failed for which upload.
type StageError struct {
	Stage    string
	FileName string
	Err      error
}

func (e *StageError) Error() string {
	return fmt.Sprintf("%s stage failed for %q: %v", e.Stage, e.FileName, e.Err)
}

func (e *StageError) Unwrap() error {
	return e.Err
}
