package messages

// System messages for file and process operations.
const (
	FileNotFoundFmt     = "Unable to find %s."
	FileUnreadableFmt   = "Unable to read %s. Verify it is not already open. %v"
	FileWriteFailedFmt  = "Unable to write %s: %v"
	FileRemoveFailedFmt = "Unable to remove %s: %v"
	FileRenameFailedFmt = "Unable to rename %s to %s: %v"
	MarkerNotFoundFmt   = "Unable to find %q in %s. Try updating it manually"
	PatchFailedFmt      = "Unable to update %q in %s: %v. Try updating it manually"

	PatchEmptyMarker          = "patch markers must not be empty"
	PatchEndMarkerNotFoundFmt = "end marker %q not found after %q at offset %d"
	PatchUnbalancedBlockFmt   = "block starting at line %d containing %q never closes"

	// AtomicCreateTempFmt wraps temp file creation failures.
	AtomicCreateTempFmt = "create temp file for %s: %w"
	AtomicWriteTempFmt  = "write temp file for %s: %w"
	AtomicSyncTempFmt   = "sync temp file for %s: %w"
	AtomicCloseTempFmt  = "close temp file for %s: %w"
	AtomicChmodTempFmt  = "chmod temp file for %s: %w"
	AtomicRenameFmt     = "replace %s: %w"

	CommandFailedFmt       = "%s %s: %w"
	CommandFailedOutputFmt = "%s %s: %w\n%s"
	CommandDryRunFmt       = "[dry-run] would run in %s: %s %s"
)

// Patch outcome messages.
const (
	PatchUnchangedFmt    = "%s already up to date at %q"
	PatchUpdatedFmt      = "Updated %s: %q -> %q"
	PatchRemovedBlockFmt = "Removed block %q from %s"
	PatchMarkerAbsentFmt = "%q not present in %s; nothing to change"
)
