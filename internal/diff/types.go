package diff

import "fmt"

// Differences classifies which of the compared versions hold equal content.
type Differences string

const (
	DiffInitial         Differences = "INITIAL"
	DiffAllDifferent    Differences = "ALL_DIFFERENT"
	DiffBaseLocalSame   Differences = "BASE_LOCAL_SAME"
	DiffBaseRemoteSame  Differences = "BASE_REMOTE_SAME"
	DiffLocalRemoteSame Differences = "LOCAL_REMOTE_SAME"
	DiffAllSame         Differences = "ALL_SAME"
)

// Action is the resolution chosen for a single diff item. The zero value is
// ActionDefault.
type Action string

const (
	ActionDefault      Action = ""
	ActionRevertToBase Action = "REVERT_TO_BASE"
	ActionApplyLocal   Action = "APPLY_LOCAL"
	ActionApplyRemote  Action = "APPLY_REMOTE"
)

const defaultName = "DEFAULT"

func (a Action) String() string {
	if a == ActionDefault {
		return defaultName
	}
	return string(a)
}

func (a Action) MarshalText() ([]byte, error) {
	return []byte(a.String()), nil
}

func (a *Action) UnmarshalText(text []byte) error {
	switch s := Action(text); s {
	case defaultName, ActionDefault:
		*a = ActionDefault
	case ActionRevertToBase, ActionApplyLocal, ActionApplyRemote:
		*a = s
	default:
		return fmt.Errorf("unknown action %q", text)
	}
	return nil
}

// Item is one hunk of a two-way diff. Line starts are 0-based indices into the
// unnormalized files; a zero count on one side marks a pure insertion or
// deletion.
type Item struct {
	LocalStart  int    `json:"local_start" yaml:"local_start"`
	LocalCount  int    `json:"local_count" yaml:"local_count"`
	RemoteStart int    `json:"remote_start" yaml:"remote_start"`
	RemoteCount int    `json:"remote_count" yaml:"remote_count"`
	Action      Action `json:"action" yaml:"action"`
}

// Item3 is one block of a three-way diff. Differences is never DiffAllSame or
// DiffInitial: unchanged regions are implied by the gaps between items.
type Item3 struct {
	BaseStart   int         `json:"base_start" yaml:"base_start"`
	BaseCount   int         `json:"base_count" yaml:"base_count"`
	LocalStart  int         `json:"local_start" yaml:"local_start"`
	LocalCount  int         `json:"local_count" yaml:"local_count"`
	RemoteStart int         `json:"remote_start" yaml:"remote_start"`
	RemoteCount int         `json:"remote_count" yaml:"remote_count"`
	Differences Differences `json:"differences" yaml:"differences"`
	Action      Action      `json:"action" yaml:"action"`
}

// IsConflict reports whether local and remote changed this block differently.
func (it Item3) IsConflict() bool {
	return it.Differences == DiffAllDifferent
}

// Resolved reports whether the block can be merged without further input.
func (it Item3) Resolved() bool {
	return !it.IsConflict() || it.Action != ActionDefault
}

// Result is the outcome of a two-way comparison.
type Result struct {
	Items []Item `json:"items" yaml:"items"`

	// LocalEOL and RemoteEOL record whether each file ends with a newline.
	LocalEOL  bool `json:"local_eol" yaml:"local_eol"`
	RemoteEOL bool `json:"remote_eol" yaml:"remote_eol"`

	// EOLAction decides the trailing newline when no hunk reaches the end
	// of local.
	EOLAction Action `json:"eol_action" yaml:"eol_action"`
}

func (r *Result) Differences() Differences {
	if len(r.Items) == 0 {
		return DiffAllSame
	}
	return DiffAllDifferent
}

// NewlineDiffers reports a difference in trailing newline only.
func (r *Result) NewlineDiffers() bool {
	return r.LocalEOL != r.RemoteEOL
}

// Result3 is the outcome of a three-way comparison.
type Result3 struct {
	Items []Item3 `json:"items" yaml:"items"`

	BaseEOL   bool `json:"base_eol" yaml:"base_eol"`
	LocalEOL  bool `json:"local_eol" yaml:"local_eol"`
	RemoteEOL bool `json:"remote_eol" yaml:"remote_eol"`
}

// Differences summarizes the items at file level. A single class shared by
// every item carries over; any mix means all three files differ.
func (r *Result3) Differences() Differences {
	if len(r.Items) == 0 {
		return DiffAllSame
	}

	d := r.Items[0].Differences
	for _, it := range r.Items[1:] {
		if it.Differences != d {
			return DiffAllDifferent
		}
	}
	return d
}

// Conflicts returns the number of AllDifferent items.
func (r *Result3) Conflicts() int {
	n := 0
	for _, it := range r.Items {
		if it.IsConflict() {
			n++
		}
	}
	return n
}

// Unresolved returns the number of conflicting items still on ActionDefault.
func (r *Result3) Unresolved() int {
	n := 0
	for _, it := range r.Items {
		if !it.Resolved() {
			n++
		}
	}
	return n
}
