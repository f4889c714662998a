package diff

import (
	"errors"
	"fmt"
)

var ErrUnresolved = errors.New("unresolved conflict")

// Merge applies two-way actions to local. ActionDefault keeps the local lines.
func Merge(local, remote []string, items []Item) []string {
	out := make([]string, 0, len(local))

	pos := 0
	for _, it := range items {
		out = append(out, local[pos:it.LocalStart]...)
		if it.Action == ActionApplyRemote {
			out = append(out, remote[it.RemoteStart:it.RemoteStart+it.RemoteCount]...)
		} else {
			out = append(out, local[it.LocalStart:it.LocalStart+it.LocalCount]...)
		}
		pos = it.LocalStart + it.LocalCount
	}

	return append(out, local[pos:]...)
}

// MergedEOL picks the trailing newline of the merged two-way result. A last
// hunk reaching the end of local decides it; otherwise EOLAction does. Only
// ActionApplyRemote selects the remote flag.
func (r *Result) MergedEOL(localLines int) bool {
	action := r.EOLAction
	if n := len(r.Items); n > 0 {
		last := r.Items[n-1]
		if last.LocalStart+last.LocalCount == localLines {
			action = last.Action
		}
	}

	if action == ActionApplyRemote {
		return r.RemoteEOL
	}
	return r.LocalEOL
}

// Effective resolves ActionDefault for blocks that need no decision.
func (it Item3) Effective() Action {
	if it.Action != ActionDefault {
		return it.Action
	}

	switch it.Differences {
	case DiffBaseRemoteSame, DiffLocalRemoteSame:
		return ActionApplyLocal
	case DiffBaseLocalSame:
		return ActionApplyRemote
	default:
		return ActionDefault
	}
}

// Merge3 builds the merged content. Unchanged regions are copied from local.
func Merge3(base, local, remote []string, items []Item3) ([]string, error) {
	out := make([]string, 0, len(local))

	pos := 0
	for _, it := range items {
		out = append(out, local[pos:it.LocalStart]...)

		switch it.Effective() {
		case ActionRevertToBase:
			out = append(out, base[it.BaseStart:it.BaseStart+it.BaseCount]...)
		case ActionApplyLocal:
			out = append(out, local[it.LocalStart:it.LocalStart+it.LocalCount]...)
		case ActionApplyRemote:
			out = append(out, remote[it.RemoteStart:it.RemoteStart+it.RemoteCount]...)
		default:
			return nil, fmt.Errorf("base line %d: %w", it.BaseStart+1, ErrUnresolved)
		}

		pos = it.LocalStart + it.LocalCount
	}

	return append(out, local[pos:]...), nil
}

// MergedEOL takes the trailing newline from whichever side changed it.
func (r *Result3) MergedEOL() bool {
	if r.BaseEOL == r.LocalEOL {
		return r.RemoteEOL
	}
	return r.LocalEOL
}
