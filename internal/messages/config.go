package messages

// Config and step table messages.
const (
	ConfigReadFailedFmt         = "failed to read config %s: %w"
	ConfigInvalidFmt            = "invalid config %s: %w"
	ConfigUnsupportedFormatFmt  = "unsupported config format %q for %s (expected .toml, .yaml or .yml)"
	ConfigInstallCommandEmpty   = "config %s: install_command must not be empty when set"
	ConfigWrapperModeInvalidFmt = "config %s: android.wrapper_mode must be %q or %q, got %q"
	ConfigVariableNameEmptyFmt  = "config %s: variables must not contain an empty name"
	ConfigVariableTypeFmt       = "config %s: variable %s must be an integer or a version string, got %T"
	ConfigLockFileInvalidFmt    = "config %s: lock_files entry %q must be a relative path inside the project"

	StepsReadFailedFmt       = "read step table %s: %w"
	StepsDecodeFailedFmt     = "decode step table %s: %w"
	StepsIDRequiredFmt       = "step table %s: id is required"
	StepsIDInvalidFmt        = "step table %s: id %q is not a version: %w"
	StepsDuplicateIDFmt      = "step table: duplicate id %q (%s and %s)"
	StepsCoreVersionRequired = "step table %s: core_version is required"
	StepsVariableTypeFmt     = "step table %s: variable %s must be an integer or a version string, got %T"
	StepsUnknownTargetFmt    = "unknown migration target %q (available: %s)"
	StepsEmpty               = "step table is empty"
	StepsWrapperModeFmt      = "step table %s: android.wrapper_mode must be %q or %q, got %q"
)
