package messages

// CLI messages for user-facing commands and prompts.
const (
	// RootUse is the CLI command name.
	RootUse = "capmigrate"
	// RootShort is the short description for the root command.
	RootShort = "Migrate a Capacitor plugin project to a new major version"
	RootLong  = "capmigrate rewrites package.json, native build scripts, wrapper properties and iOS project files\n" +
		"of a Capacitor plugin to the target major version. Values already newer than the target are never lowered."

	// VersionCommitFmt formats the commit hash for version display.
	VersionCommitFmt = "commit %s"
	VersionBuildFmt  = "built %s"
	VersionFullFmt   = "%s (%s)"
	VersionTemplate  = "{{.Version}}\n"
	VersionUse       = "version"
	VersionShort     = "Print the capmigrate version"

	FlagDir         = "Plugin project directory (defaults to the working directory)"
	FlagTo          = "Migration target id (see `capmigrate steps`); defaults to the config target or the newest step"
	FlagConfig      = "Path to a .capmigrate.toml or .capmigrate.yaml file (defaults to the one in the project directory)"
	FlagDryRun      = "Show the changes as unified diffs without writing files or running commands"
	FlagYes         = "Do not ask for confirmation"
	FlagSkipInstall = "Skip deleting installed packages and re-running the package manager"
	FlagJSON        = "Write the migration report as JSON to stdout (logs go to stderr)"
	FlagDiffLines   = "Maximum diff lines shown per file in --dry-run output"
	FlagNoColor     = "Disable colored log output"
	FlagVerbose     = "Log every change, including values that were already up to date"

	// StepsUse is the steps command name.
	StepsUse       = "steps"
	StepsShort     = "List the available migration targets"
	StepsHeaderFmt = "%-4s %-14s %-10s %s\n"
	StepsLatestTag = " (latest)"

	ConfirmMigrationFmt  = "Migrate %s to %s?"
	ConfirmRequiresInput = "migration confirmation requires an interactive terminal; re-run with --yes"
	MigrationCancelled   = "Migration cancelled."
	ConfirmAffirmative   = "Yes"
	ConfirmNegative      = "No"

	DryRunHeader        = "Dry run: no files were written and no commands were run."
	DryRunNoChanges     = "  - (no file changes)"
	DryRunRemovedFmt    = "--- %s (removed)\n"
	DryRunRenamedFmt    = "--- %s -> %s (renamed)\n"
	DryRunTruncatedFmt  = "... (truncated to %d lines; rerun with --diff-lines <n> to see more)"
	ReportIssuesHeader  = "Manual follow-up needed:"
	ReportIssueLineFmt  = "  - [%s] %s\n"
	FatalErrorOutputFmt = "ERR: %v\n"

	ExpandPathFailedFmt = "expand path %s: %w"
	ResolveDirFailedFmt = "resolve project directory %s: %w"
)
