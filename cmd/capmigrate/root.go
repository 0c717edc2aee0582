package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/mitchellh/go-homedir"
	"github.com/spf13/cobra"

	"github.com/conn-castle/capmigrate/internal/config"
	"github.com/conn-castle/capmigrate/internal/diffpreview"
	"github.com/conn-castle/capmigrate/internal/logger"
	"github.com/conn-castle/capmigrate/internal/messages"
	"github.com/conn-castle/capmigrate/internal/migrate"
	"github.com/conn-castle/capmigrate/internal/prompt"
	"github.com/conn-castle/capmigrate/internal/report"
	"github.com/conn-castle/capmigrate/internal/steps"
	"github.com/conn-castle/capmigrate/internal/terminal"
)

var (
	getwd        = os.Getwd
	isTerminal   = terminal.IsInteractive
	confirmFunc  = func(title string) (bool, error) { return prompt.NewConfirmer().Confirm(title) }
	runMigration = migrate.Run
)

type rootFlags struct {
	dir         string
	to          string
	configPath  string
	dryRun      bool
	yes         bool
	skipInstall bool
	json        bool
	diffLines   int
	noColor     bool
	verbose     bool
}

func newRootCmd() *cobra.Command {
	var flags rootFlags
	cmd := &cobra.Command{
		Use:           messages.RootUse,
		Short:         messages.RootShort,
		Long:          messages.RootLong,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runMigrate(cmd, flags)
		},
	}
	cmd.AddCommand(newStepsCmd(), newVersionCmd())

	f := cmd.Flags()
	f.StringVarP(&flags.dir, "dir", "C", "", messages.FlagDir)
	f.StringVar(&flags.to, "to", "", messages.FlagTo)
	f.StringVar(&flags.configPath, "config", "", messages.FlagConfig)
	f.BoolVar(&flags.dryRun, "dry-run", false, messages.FlagDryRun)
	f.BoolVarP(&flags.yes, "yes", "y", false, messages.FlagYes)
	f.BoolVar(&flags.skipInstall, "skip-install", false, messages.FlagSkipInstall)
	f.BoolVar(&flags.json, "json", false, messages.FlagJSON)
	f.IntVar(&flags.diffLines, "diff-lines", diffpreview.DefaultMaxLines, messages.FlagDiffLines)
	f.BoolVar(&flags.noColor, "no-color", false, messages.FlagNoColor)
	f.BoolVarP(&flags.verbose, "verbose", "v", false, messages.FlagVerbose)
	return cmd
}

func runMigrate(cmd *cobra.Command, flags rootFlags) error {
	dir, err := resolveDir(flags.dir)
	if err != nil {
		return err
	}
	cfg, err := loadConfig(dir, flags.configPath)
	if err != nil {
		return err
	}
	table, err := steps.Default()
	if err != nil {
		return err
	}
	step, err := migrate.ResolveStep(table, flags.to, cfg)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	logOut := out
	if flags.json {
		logOut = cmd.ErrOrStderr()
	}
	log := newLogger(logOut, flags)

	if !flags.yes && !flags.dryRun && isTerminal() {
		ok, err := confirmFunc(fmt.Sprintf(messages.ConfirmMigrationFmt, filepath.Base(dir), step.Name))
		if err != nil {
			return err
		}
		if !ok {
			_, err := fmt.Fprintln(out, messages.MigrationCancelled)
			return err
		}
	}

	res, runErr := runMigration(cmd.Context(), migrate.Options{
		Dir:           dir,
		Step:          step,
		Config:        cfg,
		DryRun:        flags.dryRun,
		SkipInstall:   flags.skipInstall,
		Log:           log,
		CommandOutput: logOut,
	})

	if flags.json {
		if err := writeJSONReport(out, res.Report); err != nil {
			return err
		}
	} else {
		if flags.dryRun && runErr == nil {
			if err := diffpreview.Write(out, diffpreview.Build(dir, res.Changes, flags.diffLines)); err != nil {
				return err
			}
		}
		if err := writeIssues(out, res.Report); err != nil {
			return err
		}
	}
	return runErr
}

// resolveDir expands ~ and returns the absolute project directory.
func resolveDir(flagDir string) (string, error) {
	dir := flagDir
	if dir == "" {
		cwd, err := getwd()
		if err != nil {
			return "", err
		}
		dir = cwd
	}
	expanded, err := homedir.Expand(dir)
	if err != nil {
		return "", fmt.Errorf(messages.ExpandPathFailedFmt, dir, err)
	}
	abs, err := filepath.Abs(expanded)
	if err != nil {
		return "", fmt.Errorf(messages.ResolveDirFailedFmt, dir, err)
	}
	return abs, nil
}

func loadConfig(dir string, flagPath string) (*config.Config, error) {
	if flagPath == "" {
		return config.Discover(dir)
	}
	path, err := homedir.Expand(flagPath)
	if err != nil {
		return nil, fmt.Errorf(messages.ExpandPathFailedFmt, flagPath, err)
	}
	return config.Load(path)
}

func newLogger(out io.Writer, flags rootFlags) *logger.Logger {
	opts := logger.Options{MinLevel: logger.LevelInfo}
	if flags.verbose {
		opts.MinLevel = logger.LevelDebug
	}
	if flags.noColor {
		disabled := false
		opts.Color = &disabled
	}
	return logger.New(out, opts)
}

func writeJSONReport(out io.Writer, rep report.Report) error {
	encoder := json.NewEncoder(out)
	encoder.SetIndent("", "  ")
	return encoder.Encode(rep)
}

func writeIssues(out io.Writer, rep report.Report) error {
	if !rep.HasIssues() {
		return nil
	}
	if _, err := fmt.Fprintln(out, messages.ReportIssuesHeader); err != nil {
		return err
	}
	for _, issue := range rep.Issues {
		if _, err := fmt.Fprintf(out, messages.ReportIssueLineFmt, issue.Kind, issue.Message); err != nil {
			return err
		}
	}
	return nil
}
