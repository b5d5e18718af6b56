package errcodes

import (
	"sort"
	"strings"
)

const (
	LocationBody   = "body"
	LocationParams = "params"
	LocationQuery  = "query"
	LocationFile   = "file"
)

// FieldError describes the rule a single request field violated.
type FieldError struct {
	Value    string `json:"value"`
	Message  string `json:"msg"`
	Param    string `json:"param"`
	Rule     string `json:"rule"`
	Location string `json:"location"`
}

// ValidationErrors maps a request field to the first rule it violated. It is
// rendered as a 422 with an "errors" object keyed by field.
type ValidationErrors map[string]*FieldError

func (errs ValidationErrors) Error() string {
	fields := make([]string, 0, len(errs))
	for field := range errs {
		fields = append(fields, field)
	}
	sort.Strings(fields)

	msgs := make([]string, 0, len(fields))
	for _, field := range fields {
		msgs = append(msgs, errs[field].Message)
	}
	return strings.Join(msgs, "; ")
}

// Add records fe unless its field already has a violation.
func (errs ValidationErrors) Add(fe *FieldError) {
	if _, ok := errs[fe.Param]; ok {
		return
	}
	errs[fe.Param] = fe
}

func (errs ValidationErrors) Has(field string) bool {
	_, ok := errs[field]
	return ok
}

// Merge adds every violation in other that isn't already recorded.
func (errs ValidationErrors) Merge(other ValidationErrors) {
	for _, fe := range other {
		errs.Add(fe)
	}
}

// ErrOrNil returns errs as an error, or nil when there are no violations.
func (errs ValidationErrors) ErrOrNil() error {
	if len(errs) == 0 {
		return nil
	}
	return errs
}
