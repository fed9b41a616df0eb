package mibc

import (
	"encoding/json"
	"fmt"
	"slices"
)

// Status is the fate of one module in a compilation run.
type Status int

const (
	// StatusUnprocessed marks a module that was built but not written
	// because the run aborted on failures.
	StatusUnprocessed Status = iota
	// StatusCompiled marks a module generated and written.
	StatusCompiled
	// StatusUntouched marks a module with an up to date artifact, a
	// built-in module, or a dependency excluded from generation.
	StatusUntouched
	// StatusBorrowed marks a failed module replaced by a pre-built
	// artifact.
	StatusBorrowed
	// StatusFailed marks a module that could not be parsed, resolved,
	// generated or written, and was not borrowed.
	StatusFailed
	// StatusMissing marks a module no source provider had.
	StatusMissing
)

var statusNames = [...]string{
	StatusUnprocessed: "unprocessed",
	StatusCompiled:    "compiled",
	StatusUntouched:   "untouched",
	StatusBorrowed:    "borrowed",
	StatusFailed:      "failed",
	StatusMissing:     "missing",
}

func (s Status) String() string {
	if int(s) < len(statusNames) {
		return statusNames[s]
	}
	return fmt.Sprintf("Status(%d)", int(s))
}

func (s Status) MarshalText() ([]byte, error) { return []byte(s.String()), nil }

// Outcome is the result for one module.
type Outcome struct {
	Name   string `json:"name"`
	Status Status `json:"status"`
	// Alias is the name the module was requested under when it differs
	// from the name it declares.
	Alias string `json:"alias,omitempty"`
	// Path is where the source or borrowed artifact was read from.
	Path string `json:"path,omitempty"`
	// File is where the artifact was written.
	File string   `json:"file,omitempty"`
	Info *MibInfo `json:"info,omitempty"`
	Err  error    `json:"-"`
}

func (o *Outcome) MarshalJSON() ([]byte, error) {
	type plain Outcome
	out := struct {
		*plain
		Error string `json:"error,omitempty"`
	}{plain: (*plain)(o)}
	if o.Err != nil {
		out.Error = o.Err.Error()
	}
	return json.Marshal(out)
}

func (o *Outcome) String() string {
	if o.Err != nil {
		return fmt.Sprintf("%s: %s (%v)", o.Name, o.Status, o.Err)
	}
	return fmt.Sprintf("%s: %s", o.Name, o.Status)
}

// Results holds the outcome of every module reached by a run, in the
// order the modules were first decided.
type Results struct {
	Order    []string            `json:"order"`
	Outcomes map[string]*Outcome `json:"outcomes"`
	// Aliases maps requested names to the module names their sources
	// declared.
	Aliases     map[string]string `json:"aliases,omitempty"`
	Diagnostics []Diagnostic      `json:"diagnostics,omitempty"`
}

func newResults() *Results {
	return &Results{
		Outcomes: make(map[string]*Outcome),
		Aliases:  make(map[string]string),
	}
}

// Get returns the outcome for a module or requested name, or nil.
func (r *Results) Get(name string) *Outcome {
	if o, ok := r.Outcomes[name]; ok {
		return o
	}
	return r.Outcomes[r.Aliases[name]]
}

// Status returns the status of a module, and false if the run never
// reached it.
func (r *Results) Status(name string) (Status, bool) {
	o := r.Get(name)
	if o == nil {
		return 0, false
	}
	return o.Status, true
}

// HasFailures reports whether any module failed or was missing.
func (r *Results) HasFailures() bool {
	for _, o := range r.Outcomes {
		if o.Status == StatusFailed || o.Status == StatusMissing {
			return true
		}
	}
	return false
}

// Count returns the number of modules with status s.
func (r *Results) Count(s Status) int {
	n := 0
	for _, o := range r.Outcomes {
		if o.Status == s {
			n++
		}
	}
	return n
}

// Named returns the names with status s in outcome order.
func (r *Results) Named(s Status) []string {
	var out []string
	for _, name := range r.Order {
		if r.Outcomes[name].Status == s {
			out = append(out, name)
		}
	}
	return out
}

// All returns every outcome in order.
func (r *Results) All() []*Outcome {
	out := make([]*Outcome, len(r.Order))
	for i, name := range r.Order {
		out[i] = r.Outcomes[name]
	}
	return out
}

// set records or refines the outcome of a module.
func (r *Results) set(o *Outcome) {
	if _, ok := r.Outcomes[o.Name]; !ok {
		r.Order = append(r.Order, o.Name)
	}
	r.Outcomes[o.Name] = o
}

// drop forgets the outcome of a module.
func (r *Results) drop(name string) {
	delete(r.Outcomes, name)
	r.Order = slices.DeleteFunc(r.Order, func(n string) bool { return n == name })
}

// infos returns the MibInfo of every module with one of the given
// statuses.
func (r *Results) infos(statuses ...Status) []*MibInfo {
	var out []*MibInfo
	for _, o := range r.All() {
		if o.Info != nil && slices.Contains(statuses, o.Status) {
			out = append(out, o.Info)
		}
	}
	return out
}
