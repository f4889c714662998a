package cmd

import (
	"context"
	"fmt"
	"io"
	"sort"

	"dirmerge/internal/crawler"
	"dirmerge/internal/db"
	"dirmerge/internal/diff"
	"dirmerge/internal/model"
	"dirmerge/internal/pipeline"
	"dirmerge/internal/repository"

	"github.com/samber/lo"
)

// roots turns <local> <remote> and an optional base into crawl roots.
func roots(args []string, base string) (model.Mode, [model.NumRoles]string) {
	var r [model.NumRoles]string
	r[model.Local], r[model.Remote] = args[0], args[1]

	if base == "" {
		return model.TwoWay, r
	}
	r[model.Base] = base
	return model.ThreeWay, r
}

// openHistory opens the history store, or returns nil when db_path is empty.
func openHistory() (*repository.HistoryRepository, func(), error) {
	if cfg.DBPath == "" {
		return nil, func() {}, nil
	}

	gdb, err := db.Open(cfg.DBPath)
	if err != nil {
		return nil, nil, err
	}

	return repository.NewHistoryRepository(gdb), func() { _ = db.Close(gdb) }, nil
}

// analyze crawls the roots and runs every stage but Merge.
func analyze(ctx context.Context, mode model.Mode, r [model.NumRoles]string, chooser pipeline.Chooser) (*model.Tree, error) {
	tree, err := crawler.Crawl(ctx, mode, r, cfg.Workers)
	if err != nil {
		return nil, err
	}

	procs, err := pipeline.Standard(cfg.Settings(), chooser, nil, "")
	if err != nil {
		return nil, err
	}
	p, err := pipeline.New(cfg.Workers, procs...)
	if err != nil {
		return nil, err
	}

	if err := p.RunStages(ctx, tree, pipeline.PreProcess, pipeline.Diff, pipeline.InteractiveResolve); err != nil {
		return tree, err
	}
	return tree, nil
}

func printSummary(w io.Writer, tree *model.Tree) {
	summary := tree.Summary()
	statuses := lo.Keys(summary)
	sort.Slice(statuses, func(i, j int) bool { return statuses[i] < statuses[j] })

	fmt.Fprintf(w, "%s compare of %d files\n", tree.Mode, lo.Sum(lo.Values(summary)))
	for _, s := range statuses {
		fmt.Fprintf(w, "  %-14s %d\n", s, summary[s])
	}
}

func printFiles(w io.Writer, tree *model.Tree, all bool) {
	for _, n := range tree.FileNodes() {
		if !all && (n.Status == model.StatusIgnored || n.Differences == diff.DiffAllSame) {
			continue
		}

		line := fmt.Sprintf("%-14s %-18s %-18s %s", n.Status, n.Differences, n.Location, n.Path)
		if left := n.Unresolved(); left > 0 {
			line += fmt.Sprintf(" (%d unresolved)", left)
		}
		if n.Err != nil {
			line += fmt.Sprintf(" (%v)", n.Err)
		}
		fmt.Fprintln(w, line)
	}
}
