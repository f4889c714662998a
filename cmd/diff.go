package cmd

import (
	"fmt"
	"io"
	"os"

	"dirmerge/internal/diff"
	"dirmerge/internal/filediff"

	"github.com/spf13/cobra"
)

var diffBase string

var diffCmd = &cobra.Command{
	Use:   "diff <local> <remote>",
	Short: "Diff two files, or three with --base",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		local, remote := args[0], args[1]
		out := cmd.OutOrStdout()

		if diffBase == "" {
			res, err := filediff.Compare(cfg.Diff, local, remote)
			if err != nil {
				return err
			}
			return printDiff(out, res, local, remote)
		}

		res, err := filediff.Compare3(cfg.Diff, diffBase, local, remote)
		if err != nil {
			return err
		}
		return printDiff3(out, res, diffBase, local, remote)
	},
}

func readLines(path string) ([]string, error) {
	if path == "" {
		return nil, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	lines, _ := diff.SplitLines(data)
	return lines, nil
}

func printDiff(w io.Writer, res *diff.Result, local, remote string) error {
	l, err := readLines(local)
	if err != nil {
		return err
	}
	r, err := readLines(remote)
	if err != nil {
		return err
	}

	for _, it := range res.Items {
		fmt.Fprintf(w, "@@ -%d,%d +%d,%d @@\n", it.LocalStart+1, it.LocalCount, it.RemoteStart+1, it.RemoteCount)
		for _, line := range l[it.LocalStart : it.LocalStart+it.LocalCount] {
			fmt.Fprintf(w, "-%s\n", line)
		}
		for _, line := range r[it.RemoteStart : it.RemoteStart+it.RemoteCount] {
			fmt.Fprintf(w, "+%s\n", line)
		}
	}
	if res.NewlineDiffers() {
		fmt.Fprintln(w, `\ trailing newline differs`)
	}

	return nil
}

func printDiff3(w io.Writer, res *diff.Result3, base, local, remote string) error {
	b, err := readLines(base)
	if err != nil {
		return err
	}
	l, err := readLines(local)
	if err != nil {
		return err
	}
	r, err := readLines(remote)
	if err != nil {
		return err
	}

	for _, it := range res.Items {
		fmt.Fprintf(w, "==== %s base %d,%d local %d,%d remote %d,%d\n", it.Differences,
			it.BaseStart+1, it.BaseCount, it.LocalStart+1, it.LocalCount, it.RemoteStart+1, it.RemoteCount)

		fmt.Fprintln(w, "<<<<<<< local")
		for _, line := range l[it.LocalStart : it.LocalStart+it.LocalCount] {
			fmt.Fprintln(w, line)
		}
		fmt.Fprintln(w, "||||||| base")
		for _, line := range b[it.BaseStart : it.BaseStart+it.BaseCount] {
			fmt.Fprintln(w, line)
		}
		fmt.Fprintln(w, "=======")
		for _, line := range r[it.RemoteStart : it.RemoteStart+it.RemoteCount] {
			fmt.Fprintln(w, line)
		}
		fmt.Fprintln(w, ">>>>>>> remote")
	}

	fmt.Fprintf(w, "%d blocks, %d conflicts\n", len(res.Items), res.Conflicts())
	return nil
}

func init() {
	diffCmd.Flags().StringVar(&diffBase, "base", "", "common ancestor for a three-way diff")
	rootCmd.AddCommand(diffCmd)
}
