package cmd

import (
	"fmt"

	"dirmerge/internal/model"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

var (
	compareBase string
	compareYAML bool
	compareAll  bool
)

type reportFile struct {
	Path        string `yaml:"path"`
	Location    string `yaml:"location"`
	Status      string `yaml:"status"`
	Differences string `yaml:"differences"`
	FileType    string `yaml:"file_type,omitempty"`
	Unresolved  int    `yaml:"unresolved,omitempty"`
	Error       string `yaml:"error,omitempty"`
	Items       any    `yaml:"items,omitempty"`
}

type report struct {
	Mode    string               `yaml:"mode"`
	Roots   map[string]string    `yaml:"roots"`
	Summary map[model.Status]int `yaml:"summary"`
	Files   []reportFile         `yaml:"files"`
}

func buildReport(tree *model.Tree) report {
	rep := report{
		Mode:    tree.Mode.String(),
		Roots:   map[string]string{},
		Summary: tree.Summary(),
	}
	for _, r := range model.Roles {
		if tree.Mode.Roots().Has(r) {
			rep.Roots[r.String()] = tree.Roots[r]
		}
	}

	for _, n := range tree.FileNodes() {
		f := reportFile{
			Path:        n.Path,
			Location:    n.Location.String(),
			Status:      string(n.Status),
			Differences: string(n.Differences),
			FileType:    string(n.FileType),
			Unresolved:  n.Unresolved(),
		}
		if n.Err != nil {
			f.Error = n.Err.Error()
		}
		switch {
		case n.TwoWay != nil && len(n.TwoWay.Items) > 0:
			f.Items = n.TwoWay.Items
		case n.ThreeWay != nil && len(n.ThreeWay.Items) > 0:
			f.Items = n.ThreeWay.Items
		}
		rep.Files = append(rep.Files, f)
	}

	return rep
}

var compareCmd = &cobra.Command{
	Use:   "compare <local> <remote>",
	Short: "Compare directory trees without touching them",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		mode, r := roots(args, compareBase)

		tree, err := analyze(cmd.Context(), mode, r, nil)
		if err != nil {
			return err
		}

		out := cmd.OutOrStdout()
		if compareYAML {
			enc := yaml.NewEncoder(out)
			enc.SetIndent(2)
			if err := enc.Encode(buildReport(tree)); err != nil {
				return fmt.Errorf("failed to encode report: %w", err)
			}
			return enc.Close()
		}

		printFiles(out, tree, compareAll)
		printSummary(out, tree)
		return nil
	},
}

func init() {
	compareCmd.Flags().StringVar(&compareBase, "base", "", "common ancestor directory for a three-way compare")
	compareCmd.Flags().BoolVar(&compareYAML, "yaml", false, "print a YAML report")
	compareCmd.Flags().BoolVar(&compareAll, "all", false, "list unchanged and ignored files too")
	rootCmd.AddCommand(compareCmd)
}
