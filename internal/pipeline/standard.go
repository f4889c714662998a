package pipeline

import (
	"dirmerge/internal/conflict"
	"dirmerge/internal/diff"
)

// Settings configures the standard processors.
type Settings struct {
	Filter       FilterConfig
	IgnoreBinary bool
	Diff         diff.Options
	Strategy     conflict.Strategy
	Merge        MergeConfig
}

// Standard builds the default processor set. chooser and history are
// optional.
func Standard(s Settings, chooser Chooser, history HistoryStore, runID string) ([]Processor, error) {
	filter, err := NewFilterProcessor(s.Filter)
	if err != nil {
		return nil, err
	}

	procs := []Processor{
		filter,
		NewBinaryProcessor(s.IgnoreBinary),
		DirectoryProcessor{},
		HashProcessor{},
		NewContentProcessor(s.Diff),
		ConflictProcessor{},
		NewAutoResolveProcessor(s.Strategy),
		NewMergeProcessor(s.Merge),
	}

	if chooser != nil {
		procs = append(procs, NewInteractiveProcessor(chooser))
	}
	if history != nil {
		procs = append(procs, NewHistoryProcessor(history, runID))
	}

	return procs, nil
}
