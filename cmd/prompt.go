package cmd

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strings"

	"dirmerge/internal/diff"
	"dirmerge/internal/model"
	"dirmerge/internal/pipeline"
)

// promptChooser asks on a terminal how to resolve each conflict.
type promptChooser struct {
	in  *bufio.Reader
	out io.Writer
}

func newPromptChooser(in io.Reader, out io.Writer) *promptChooser {
	return &promptChooser{in: bufio.NewReader(in), out: out}
}

func (p *promptChooser) Choose(ctx context.Context, t *model.Tree, n *model.Node, item int) (diff.Action, error) {
	if err := ctx.Err(); err != nil {
		return diff.ActionDefault, err
	}

	if item < 0 {
		fmt.Fprintf(p.out, "\nconflict in %s (present on %s)\n", n.Path, n.Location)
	} else if err := p.show(t, n, n.ThreeWay.Items[item]); err != nil {
		return diff.ActionDefault, err
	}

	for {
		fmt.Fprint(p.out, "[l]ocal, [r]emote, [b]ase, [s]kip, [q]uit? ")

		answer, err := p.in.ReadString('\n')
		if err != nil && answer == "" {
			return diff.ActionDefault, pipeline.ErrAborted
		}

		switch strings.ToLower(strings.TrimSpace(answer)) {
		case "l", "local":
			return diff.ActionApplyLocal, nil
		case "r", "remote":
			return diff.ActionApplyRemote, nil
		case "b", "base":
			return diff.ActionRevertToBase, nil
		case "s", "skip":
			return diff.ActionDefault, nil
		case "q", "quit":
			return diff.ActionDefault, pipeline.ErrAborted
		}
	}
}

func (p *promptChooser) show(t *model.Tree, n *model.Node, it diff.Item3) error {
	fmt.Fprintf(p.out, "\nconflict in %s at base line %d\n", n.Path, it.BaseStart+1)

	sections := []struct {
		role  model.Role
		start int
		count int
	}{
		{model.Local, it.LocalStart, it.LocalCount},
		{model.Base, it.BaseStart, it.BaseCount},
		{model.Remote, it.RemoteStart, it.RemoteCount},
	}

	for _, s := range sections {
		var lines []string
		if n.Location.Has(s.role) {
			var err error
			if lines, err = readLines(t.AbsPath(n, s.role)); err != nil {
				return err
			}
		}

		fmt.Fprintf(p.out, "--- %s\n", s.role)
		for _, line := range lines[s.start : s.start+s.count] {
			fmt.Fprintf(p.out, "  %s\n", line)
		}
	}

	return nil
}
