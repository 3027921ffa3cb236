// Command roarchive lists and reads files in directories, tar and zip
// archives, and HTTP-served trees.
package main

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/meigma/roarchive"
	"github.com/meigma/roarchive/cache/disk"
)

var (
	flagHint       []string // value of --hint flag
	flagInlineHint string   // value of --inline-hint flag
	flagMIME       string   // value of --mime flag
	flagFileLimit  int      // value of --file-limit flag
	flagRangeReads bool     // value of --range-reads flag
	flagCacheDir   string   // value of --cache-dir flag
	flagVerbose    bool     // value of --verbose flag
	flagOutput     string   // value of cat --output flag
	flagGunzip     bool     // value of cat --gunzip flag
	flagZstd       bool     // value of cat --zstd flag
)

var rootCmd = &cobra.Command{
	Use:          "roarchive",
	Short:        "Read files from directories, tar and zip archives and HTTP trees",
	SilenceUsage: true,
}

var lsCmd = &cobra.Command{
	Use:   "ls ARCHIVE",
	Short: "list files below the archive root",
	Args:  cobra.ExactArgs(1),
	RunE:  doList,
}

var catCmd = &cobra.Command{
	Use:   "cat ARCHIVE PATH",
	Short: "write a file to stdout or to --output",
	Args:  cobra.ExactArgs(2),
	RunE:  doCat,
}

var findCmd = &cobra.Command{
	Use:   "find ARCHIVE NAME",
	Short: "print the path of the only file named NAME",
	Args:  cobra.ExactArgs(2),
	RunE:  doFind,
}

var infoCmd = &cobra.Command{
	Use:   "info ARCHIVE",
	Short: "print the container type and resolved root",
	Args:  cobra.ExactArgs(1),
	RunE:  doInfo,
}

func init() {
	flags := rootCmd.PersistentFlags()
	flags.StringSliceVar(&flagHint, "hint", nil, "root marker file names, best first")
	flags.StringVar(&flagInlineHint, "inline-hint", "", "separator splitting a hint off the archive path")
	flags.StringVar(&flagMIME, "mime", "", "container type, skips detection (e.g. application/x-tar)")
	flags.IntVar(&flagFileLimit, "file-limit", 0, "maximum number of files in the container (0 = unlimited)")
	flags.BoolVar(&flagRangeReads, "range-reads", false, "read HTTP files with range requests")
	flags.StringVar(&flagCacheDir, "cache-dir", "", "cache HTTP files in this directory")
	flags.BoolVar(&flagVerbose, "verbose", false, "verbose logging")

	catCmd.Flags().StringVarP(&flagOutput, "output", "o", "", "write to this file instead of stdout")
	catCmd.Flags().BoolVar(&flagGunzip, "gunzip", false, "decode gzip content")
	catCmd.Flags().BoolVar(&flagZstd, "zstd", false, "decode zstd content")

	rootCmd.SilenceErrors = true
	rootCmd.AddCommand(lsCmd, catCmd, findCmd, infoCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		slog.Error("roarchive failed", "err", err)
		os.Exit(1)
	}
}

func newLogger() *slog.Logger {
	level := slog.LevelInfo
	if flagVerbose {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
	slog.SetDefault(logger)
	return logger
}

func openArchive(path string) (*roarchive.RoArchive, error) {
	opts := []roarchive.Option{
		roarchive.WithLogger(newLogger()),
		roarchive.WithHint(flagHint...),
		roarchive.WithInlineHint(flagInlineHint),
		roarchive.WithMIME(flagMIME),
		roarchive.WithFileLimit(flagFileLimit),
		roarchive.WithRangeReads(flagRangeReads),
	}
	if flagCacheDir != "" {
		c, err := disk.New(flagCacheDir)
		if err != nil {
			return nil, fmt.Errorf("open cache: %w", err)
		}
		opts = append(opts, roarchive.WithCache(c))
	}
	return roarchive.Open(path, opts...)
}

func doList(cmd *cobra.Command, args []string) error {
	a, err := openArchive(args[0])
	if err != nil {
		return err
	}
	defer a.Close()

	paths, err := a.List()
	if errors.Is(err, errors.ErrUnsupported) {
		return fmt.Errorf("%s archives cannot be listed", a.Type())
	}
	if err != nil {
		return err
	}
	out := cmd.OutOrStdout()
	for _, p := range paths {
		fmt.Fprintln(out, p)
	}
	return nil
}

func doCat(cmd *cobra.Command, args []string) error {
	a, err := openArchive(args[0])
	if err != nil {
		return err
	}
	defer a.Close()

	var filters []roarchive.Filter
	if flagGunzip {
		filters = append(filters, roarchive.GzipFilter)
	}
	if flagZstd {
		filters = append(filters, roarchive.ZstdFilter)
	}
	s, err := a.IStream(args[1], filters...)
	if err != nil {
		return err
	}
	defer s.Close()

	if flagOutput != "" {
		return roarchive.CopyFile(s, flagOutput)
	}
	_, err = io.Copy(cmd.OutOrStdout(), s)
	return err
}

func doFind(cmd *cobra.Command, args []string) error {
	a, err := openArchive(args[0])
	if err != nil {
		return err
	}
	defer a.Close()

	p, err := a.FindFile(args[1])
	if err != nil {
		return err
	}
	fmt.Fprintln(cmd.OutOrStdout(), p)
	return nil
}

func doInfo(cmd *cobra.Command, args []string) error {
	a, err := openArchive(args[0])
	if err != nil {
		return err
	}
	defer a.Close()

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "path:  %s\n", a.Path())
	fmt.Fprintf(out, "type:  %s\n", a.Type())
	fmt.Fprintf(out, "root:  %s\n", rootOrDot(a.Root()))
	if used, ok := a.UsedHint(); ok {
		fmt.Fprintf(out, "hint:  %s\n", used)
	}
	return nil
}

func rootOrDot(root string) string {
	if strings.TrimSpace(root) == "" {
		return "."
	}
	return root
}
