package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/covtools/covprep/internal/branch"
	"github.com/covtools/covprep/internal/domain"
	"github.com/covtools/covprep/internal/normalize"
	"github.com/covtools/covprep/internal/store"
	"github.com/covtools/covprep/internal/usecase/prep"
)

// ErrVersionRequested indicates the user requested the CLI version and no further work should be done.
var ErrVersionRequested = errors.New("version requested")

// branchEnvVar is the CI variable carrying the branch ref under build.
const branchEnvVar = "BUILD_SOURCEBRANCH"

// CoveragePreparer defines the dependency required to run the coverage commands.
type CoveragePreparer interface {
	Normalize(ctx context.Context, req prep.Request) (domain.RunSummary, error)
	Check(ctx context.Context, inputPath, prefix string) (normalize.ValidationReport, error)
	ListRuns(ctx context.Context, limit int) ([]store.Run, error)
}

// BranchResolver detects the branch ref when neither flag nor environment
// supplies one.
type BranchResolver interface {
	CurrentRef(ctx context.Context) (string, error)
}

// Arguments encapsulates IO writers injected from the host process.
type Arguments struct {
	OutWriter io.Writer
	ErrWriter io.Writer
}

// Defaults holds configuration-derived default values for flags.
type Defaults struct {
	ReportPath string
	Prefix     string
	Backup     bool
	OutputDir  string
	Target     string
}

// Dependencies captures the collaborators for the CLI.
type Dependencies struct {
	Preparer       CoveragePreparer
	Classifier     *branch.Classifier
	BranchResolver BranchResolver
	Args           Arguments
	Defaults       Defaults
	Version        string
}

// NewRootCommand constructs the root Cobra command.
func NewRootCommand(deps Dependencies) *cobra.Command {
	versionString := deps.Version
	if versionString == "" {
		versionString = "v0.0.0"
	}
	if deps.Classifier == nil {
		deps.Classifier = branch.NewClassifier()
	}

	root := &cobra.Command{
		Use:   "covprep",
		Short: "Prepare coverage reports for static analysis",
	}
	root.SilenceUsage = true
	root.SilenceErrors = true

	outWriter := deps.Args.OutWriter
	if outWriter == nil {
		outWriter = os.Stdout
	}
	errWriter := deps.Args.ErrWriter
	if errWriter == nil {
		errWriter = os.Stderr
	}
	root.SetOut(outWriter)
	root.SetErr(errWriter)

	root.AddCommand(normalizeCommand(deps))
	root.AddCommand(checkCommand(deps))
	root.AddCommand(propsCommand(deps))
	root.AddCommand(historyCommand(deps))

	var showVersion bool
	root.PersistentFlags().BoolVarP(&showVersion, "version", "v", false, "Show version and exit")
	versionHandler := func(cmd *cobra.Command, args []string) error {
		if showVersion {
			_, _ = fmt.Fprintln(cmd.OutOrStdout(), versionString)
			return ErrVersionRequested
		}
		return nil
	}
	root.PersistentPreRunE = versionHandler
	root.PreRunE = versionHandler
	root.RunE = func(cmd *cobra.Command, args []string) error {
		if err := versionHandler(cmd, args); err != nil {
			return err
		}
		return cmd.Help()
	}

	return root
}

func normalizeCommand(deps Dependencies) *cobra.Command {
	var prefix string
	var outputPath string
	var inPlace bool
	var backup bool
	var check bool
	var branchRef string
	var reportDir string

	cmd := &cobra.Command{
		Use:   "normalize [file]",
		Short: "Rewrite coverage source paths under the analyzer's source root",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			inputPath := deps.Defaults.ReportPath
			if len(args) > 0 {
				inputPath = args[0]
			}

			if outputPath != "" && inPlace {
				return fmt.Errorf("--output and --in-place are mutually exclusive")
			}
			if outputPath == "" && !inPlace {
				return fmt.Errorf("specify --output or --in-place")
			}

			ref := resolveBranchRef(ctx, branchRef, deps.BranchResolver)

			summary, err := deps.Preparer.Normalize(ctx, prep.Request{
				InputPath:    inputPath,
				OutputPath:   outputPath,
				Prefix:       prefix,
				Backup:       backup,
				Check:        check,
				BranchRef:    ref,
				TargetBranch: deps.Defaults.Target,
				OutputDir:    reportDir,
			})
			if err != nil {
				return describeError(err)
			}

			fmt.Fprintf(cmd.OutOrStdout(), "%s: %d source files, %d rewritten\n",
				summary.OutputPath, summary.SourceFiles, summary.Rewritten)
			return nil
		},
	}

	cmd.Flags().StringVar(&prefix, "prefix", deps.Defaults.Prefix, "Path prefix expected by the analyzer")
	cmd.Flags().StringVarP(&outputPath, "output", "o", "", "Write the rewritten report to this path")
	cmd.Flags().BoolVar(&inPlace, "in-place", false, "Rewrite the input file atomically")
	cmd.Flags().BoolVar(&backup, "backup", deps.Defaults.Backup, "Keep a .bak copy on in-place rewrites")
	cmd.Flags().BoolVar(&check, "check", false, "Validate prefixes after the rewrite")
	cmd.Flags().StringVar(&branchRef, "branch", "", "Branch ref under build (default: $"+branchEnvVar+" or git HEAD)")
	cmd.Flags().StringVar(&reportDir, "report-dir", deps.Defaults.OutputDir, "Directory for run reports (empty disables)")

	return cmd
}

func checkCommand(deps Dependencies) *cobra.Command {
	var prefix string
	var strict bool

	cmd := &cobra.Command{
		Use:   "check [file]",
		Short: "Verify that every coverage source path carries the prefix",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			inputPath := deps.Defaults.ReportPath
			if len(args) > 0 {
				inputPath = args[0]
			}

			report, err := deps.Preparer.Check(cmd.Context(), inputPath, prefix)
			if err != nil {
				return describeError(err)
			}

			if report.Mismatch == nil {
				fmt.Fprintf(cmd.OutOrStdout(), "%s: %d source files, all under %s/\n",
					inputPath, report.SourceFiles, prefix)
				return nil
			}

			fmt.Fprintf(cmd.OutOrStdout(), "%s: %v\n", inputPath, report.Mismatch)
			if strict {
				return report.Mismatch
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&prefix, "prefix", deps.Defaults.Prefix, "Path prefix expected by the analyzer")
	cmd.Flags().BoolVar(&strict, "strict", false, "Exit non-zero on prefix mismatches")

	return cmd
}

func propsCommand(deps Dependencies) *cobra.Command {
	var branchRef string
	var target string

	cmd := &cobra.Command{
		Use:   "props",
		Short: "Print analysis properties for the branch under build",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			ref := resolveBranchRef(ctx, branchRef, deps.BranchResolver)
			if ref == "" {
				return fmt.Errorf("branch not specified; pass --branch, set %s, or run inside a repository", branchEnvVar)
			}

			props := deps.Classifier.AnalysisProperties(ref, target)

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "category=%s\n", props.Category)
			fmt.Fprintf(out, "branch=%s\n", props.BranchName)
			if props.PullRequestID != "" {
				fmt.Fprintf(out, "pullRequest=%s\n", props.PullRequestID)
			}
			if props.TargetBranch != "" {
				fmt.Fprintf(out, "target=%s\n", props.TargetBranch)
			}
			fmt.Fprintf(out, "newCodeOnly=%t\n", props.NewCodeOnly)
			fmt.Fprintf(out, "enforceGate=%t\n", props.EnforceGate)
			return nil
		},
	}

	cmd.Flags().StringVar(&branchRef, "branch", "", "Branch ref under build (default: $"+branchEnvVar+" or git HEAD)")
	cmd.Flags().StringVar(&target, "target", deps.Defaults.Target, "Reference branch for New Code analysis")

	return cmd
}

func historyCommand(deps Dependencies) *cobra.Command {
	var limit int

	cmd := &cobra.Command{
		Use:   "history",
		Short: "List recent normalization runs",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			runs, err := deps.Preparer.ListRuns(cmd.Context(), limit)
			if err != nil {
				return err
			}
			if len(runs) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "no runs recorded")
				return nil
			}

			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(w, "RUN\tTIME\tBRANCH\tFILES\tREWRITTEN")
			for _, run := range runs {
				fmt.Fprintf(w, "%s\t%s\t%s\t%d\t%d\n",
					run.RunID,
					run.Timestamp.Format("2006-01-02 15:04:05"),
					run.BranchRef,
					run.SourceFiles,
					run.Rewritten,
				)
			}
			return w.Flush()
		},
	}

	cmd.Flags().IntVar(&limit, "limit", 20, "Maximum number of runs to show")

	return cmd
}

// resolveBranchRef picks the branch ref: explicit flag, then the CI
// environment variable, then git detection. Empty when none is available.
func resolveBranchRef(ctx context.Context, flagValue string, resolver BranchResolver) string {
	if flagValue != "" {
		return flagValue
	}
	if env := os.Getenv(branchEnvVar); env != "" {
		return env
	}
	if resolver != nil {
		if ref, err := resolver.CurrentRef(ctx); err == nil {
			return ref
		}
	}
	return ""
}

// describeError prepends context for known error types; unknown errors
// pass through unchanged.
func describeError(err error) error {
	var malformed *normalize.MalformedInputError
	if errors.As(err, &malformed) {
		return fmt.Errorf("coverage report is malformed: %w", err)
	}
	return err
}
