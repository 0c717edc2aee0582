package messages

// Manifest update messages.
const (
	ManifestReadFailedFmt  = "read %s: %w"
	ManifestInvalidFmt     = "parse %s: %w"
	ManifestNotObject      = "manifest root must be a JSON object"
	ManifestWriteFailedFmt = "write %s: %w"
	ManifestUpdating       = "Updating package.json"

	ManifestDependencySetFmt     = "Set %s %s = %s."
	ManifestDependencyCurrentFmt = "%s %s already %s"
	ManifestVersionBumpFmt       = "Set version %s -> %s."
	ManifestRollupRenamedFmt     = "Renamed %s to %s."
	ManifestPrettierScriptFmt    = "Added --plugin=prettier-plugin-java to the prettier script in %s."
	ManifestPrettierIgnoreFmt    = "Removed entries covered by .gitignore from %s."
	ManifestPrettierIgnoreRmFmt  = "Removed %s: every entry is covered by .gitignore."
	ManifestUnchangedFmt         = "%s already up to date"
)

// Dependency refresh messages.
const (
	DepsRemovedFmt      = "Removed %s."
	DepsRunningFmt      = "Running %s"
	DepsInstallFailed   = "%s failed, please, install the dependencies using your package manager of choice"
	DepsInstallErrorFmt = "%s: %v"
	DepsSkipped         = "Skipping dependency reinstall."
)

// Android update messages.
const (
	AndroidUpdating        = "Updating Android files"
	AndroidNoSource        = "package.json has no capacitor.android.src; skipping Android updates."
	AndroidMissingDirFmt   = "Android directory %s not found; skipping Android updates."
	AndroidDisabledFmt     = "Android updates disabled in %s."
	AndroidWrapperUpdating = "Updating gradle files"
	AndroidWrapperFailed   = "regenerate gradle wrapper"
	AndroidWrapperRanFmt   = "Ran %s %s in %s."
	AndroidBuildGradle     = "Updating build.gradle"

	AndroidSetFmt          = "Set %s = %s."
	AndroidKeptNewerFmt    = "Kept %s = %s (not older than %s)."
	AndroidIncomparableFmt = "Left %s = %s unchanged: not comparable with %s."
	AndroidRewriteFmt      = "Applied %s to %s."
	AndroidNamespaceFmt    = "Moved namespace %s from %s to %s."
	AndroidNoGradleVersion = "No gradle_version in the step; skipping the wrapper upgrade."
	AndroidJavaVersionFmt  = "JavaVersion.VERSION_%d"
	AndroidScriptCurrent   = "%s already up to date"
)

// Names of the structural build script rewrites, used in AndroidRewriteFmt.
const (
	RewriteAssignSpacing  = "assignment spacing cleanup"
	RewriteCompileSdk     = "compileSdkVersion -> compileSdk rename"
	RewritePropertySyntax = "property assignment syntax"
	RewriteKotlinOptions  = "kotlinOptions -> compilerOptions migration"
	RewriteKotlinVersion  = "kotlin_version lookup"
	RewriteKotlinStdlib   = "kotlin-stdlib version"
)

// iOS update messages.
const (
	IOSUpdating          = "Updating iOS files"
	IOSNoSource          = "package.json has no capacitor.ios.src; skipping iOS updates."
	IOSMissingDirFmt     = "iOS directory %s not found; skipping iOS updates."
	IOSDisabledFmt       = "iOS updates disabled in %s."
	IOSPodspecNotFound   = "Unable to find a podspec in package.json files or the project root."
	IOSPodspecFmt        = "Set s.ios.deployment_target = '%s' in %s."
	IOSPodspecCurrentFmt = "%s does not target iOS %s; left unchanged."
	IOSGlobFailedFmt     = "Unable to expand files entry %q: %v"
)

// Orchestration messages.
const (
	MigrateStartFmt          = "Migrating %s to %s (core %s)"
	MigrateDoneFmt           = "Plugin migrated to %s!"
	MigrateDoneWithIssuesFmt = "Plugin migrated to %s with %d issue(s) that need manual follow-up."
	MigratePanicFmt          = "unexpected failure: %v"
	MigrateFatalFmt          = "%s: %v"
	MigrateDirRequired       = "project directory is required"
	MigrateStageManifest     = "manifest"
	MigrateStageDeps         = "dependencies"
	MigrateStageAndroid      = "android"
	MigrateStageIOS          = "ios"
)
