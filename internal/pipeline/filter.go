package pipeline

import (
	"context"
	"fmt"
	"path/filepath"
	"regexp"
	"strings"

	"dirmerge/internal/logger"
	"dirmerge/internal/model"

	"go.uber.org/zap"
)

type FilterConfig struct {
	IgnoreList  []string `mapstructure:"ignore_list"`
	IgnoreRegex string   `mapstructure:"ignore_regex"`
}

// FilterProcessor ignores nodes by name glob or by a regex on the relative
// path. Ignoring a directory ignores everything below it.
type FilterProcessor struct {
	ignoreList []string
	re         *regexp.Regexp
}

func NewFilterProcessor(cfg FilterConfig) (*FilterProcessor, error) {
	f := &FilterProcessor{ignoreList: cfg.IgnoreList}

	for _, pattern := range cfg.IgnoreList {
		if _, err := filepath.Match(pattern, ""); err != nil {
			return nil, fmt.Errorf("invalid ignore pattern %q: %w", pattern, err)
		}
	}

	if cfg.IgnoreRegex != "" {
		re, err := regexp.Compile(cfg.IgnoreRegex)
		if err != nil {
			return nil, fmt.Errorf("invalid ignore regex: %w", err)
		}
		f.re = re
	}

	return f, nil
}

func (f *FilterProcessor) Info() Info {
	return Info{Name: "filter", Stage: PreProcess, Modes: model.MaskAll, Priority: 10}
}

func (f *FilterProcessor) CheckStatus(n *model.Node) bool {
	return DefaultCheck(n) && n.Parent != model.NoNode
}

func (f *FilterProcessor) Process(_ context.Context, t *model.Tree, n *model.Node) error {
	if !f.ShouldIgnore(n.Path) {
		return nil
	}

	n.SetStatus(model.StatusIgnored)
	if n.IsDir {
		t.Subtree(n.ID, func(c *model.Node) {
			c.SetStatus(model.StatusIgnored)
		})
	}

	logger.Log.Debug("ignored",
		zap.String("path", n.Path),
		zap.Bool("dir", n.IsDir))
	return nil
}

// ShouldIgnore matches a slash separated relative path.
func (f *FilterProcessor) ShouldIgnore(path string) bool {
	if f.re != nil && f.re.MatchString(path) {
		return true
	}

	for _, part := range strings.Split(path, "/") {
		for _, pattern := range f.ignoreList {
			if matched, err := filepath.Match(pattern, part); err == nil && matched {
				return true
			}
		}
	}

	return false
}
