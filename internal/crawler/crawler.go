package crawler

import (
	"context"
	"errors"
	"os"
	"path"
	"path/filepath"
	"runtime"
	"time"

	"dirmerge/internal/logger"
	"dirmerge/internal/model"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

var errNotDirectory = errors.New("not a directory")

// scanned is the crawl result for one name before it is placed in the tree.
type scanned struct {
	name    string
	loc     model.Location
	entries [model.NumRoles]*model.Entry
	dirs    []*scanned
	files   []*scanned
}

type crawler struct {
	roots [model.NumRoles]string
	g     *errgroup.Group
}

// Crawl walks the roots enabled by mode in lock-step and returns the merged
// tree. A root or subdirectory that cannot be read aborts the crawl with a
// *model.NotFoundError.
func Crawl(ctx context.Context, mode model.Mode, roots [model.NumRoles]string, workers int) (*model.Tree, error) {
	started := time.Now()

	if workers <= 0 {
		workers = runtime.NumCPU()
	}

	var rootEntries [model.NumRoles]*model.Entry
	for _, r := range model.Roles {
		if !mode.Roots().Has(r) {
			continue
		}

		abs, err := filepath.Abs(roots[r])
		if err != nil {
			return nil, &model.NotFoundError{Role: r, Kind: model.KindDirectory, Path: roots[r], Err: err}
		}
		roots[r] = abs

		info, err := os.Stat(abs)
		if err != nil {
			return nil, &model.NotFoundError{Role: r, Kind: model.KindDirectory, Path: abs, Err: err}
		}
		if !info.IsDir() {
			return nil, &model.NotFoundError{Role: r, Kind: model.KindDirectory, Path: abs, Err: errNotDirectory}
		}
		rootEntries[r] = &model.Entry{Size: info.Size(), ModTime: info.ModTime()}
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)

	c := &crawler{roots: roots, g: g}
	root := &scanned{loc: mode.Roots()}

	g.Go(func() error {
		return c.scan(gctx, "", root)
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	t := model.NewTree(mode, roots)
	t.Root().Entries = rootEntries
	build(t, 0, root)

	logger.Log.Info("crawl finished",
		zap.String("mode", mode.String()),
		zap.Int("nodes", t.Len()),
		zap.Duration("elapsed", time.Since(started)))

	return t, nil
}

func (c *crawler) scan(ctx context.Context, rel string, s *scanned) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	var lists [model.NumRoles][]os.DirEntry
	for _, r := range model.Roles {
		if !s.loc.Has(r) {
			continue
		}

		dir := filepath.Join(c.roots[r], filepath.FromSlash(rel))
		entries, err := os.ReadDir(dir)
		if err != nil {
			return &model.NotFoundError{Role: r, Kind: model.KindDirectory, Path: dir, Err: err}
		}
		lists[r] = entries
	}

	if err := c.join(rel, s, lists); err != nil {
		return err
	}

	for _, d := range s.dirs {
		sub := path.Join(rel, d.name)
		task := func() error {
			return c.scan(ctx, sub, d)
		}
		if !c.g.TryGo(task) {
			if err := task(); err != nil {
				return err
			}
		}
	}

	return nil
}

// join merges the name-sorted listings of every root into one child per
// distinct name and kind.
func (c *crawler) join(rel string, s *scanned, lists [model.NumRoles][]os.DirEntry) error {
	var idx [model.NumRoles]int

	for {
		name, found := "", false
		for _, r := range model.Roles {
			if idx[r] < len(lists[r]) {
				if n := lists[r][idx[r]].Name(); !found || n < name {
					name, found = n, true
				}
			}
		}
		if !found {
			return nil
		}

		dir := &scanned{name: name}
		file := &scanned{name: name}

		for _, r := range model.Roles {
			if idx[r] >= len(lists[r]) || lists[r][idx[r]].Name() != name {
				continue
			}

			e := lists[r][idx[r]]
			idx[r]++

			target, kind := file, model.KindFile
			if e.IsDir() {
				target, kind = dir, model.KindDirectory
			}

			info, err := e.Info()
			if err != nil {
				full := filepath.Join(c.roots[r], filepath.FromSlash(path.Join(rel, name)))
				return &model.NotFoundError{Role: r, Kind: kind, Path: full, Err: err}
			}

			target.loc |= r.Location()
			target.entries[r] = &model.Entry{Size: info.Size(), ModTime: info.ModTime()}
		}

		if dir.loc != 0 {
			s.dirs = append(s.dirs, dir)
		}
		if file.loc != 0 {
			s.files = append(s.files, file)
		}
	}
}

func build(t *model.Tree, parent model.NodeID, s *scanned) {
	for _, f := range s.files {
		t.AddFile(parent, f.name, f.loc, f.entries)
	}
	for _, d := range s.dirs {
		id := t.AddDir(parent, d.name, d.loc, d.entries)
		build(t, id, d)
	}
}
