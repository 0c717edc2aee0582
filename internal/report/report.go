// Package report records what a migration run changed and what it could not do.
package report

import (
	"fmt"

	"github.com/conn-castle/capmigrate/internal/logger"
)

// Kind classifies a recoverable problem hit during a run.
type Kind string

const (
	// KindMissingFile means a file the step expected does not exist.
	KindMissingFile Kind = "missing_file"
	// KindUnreadableFile means a file exists but could not be read or written.
	KindUnreadableFile Kind = "unreadable_file"
	// KindMarkerNotFound means a file lacks the text a patch anchors on.
	KindMarkerNotFound Kind = "marker_not_found"
	// KindCommandFailed means an external command failed and the run continued.
	KindCommandFailed Kind = "command_failed"
	// KindFatal means the run stopped.
	KindFatal Kind = "fatal"
)

// Status describes the outcome of a single change.
type Status string

const (
	// StatusApplied means the change mutated the project.
	StatusApplied Status = "applied"
	// StatusNoop means the change ran but the project already matched.
	StatusNoop Status = "no_op"
	// StatusSkipped means the change did not run.
	StatusSkipped Status = "skipped"
)

// Entry is one change record.
type Entry struct {
	Stage  string `json:"stage"`
	Path   string `json:"path,omitempty"`
	Status Status `json:"status"`
	Detail string `json:"detail,omitempty"`
}

// Issue is one recoverable problem.
type Issue struct {
	Kind    Kind   `json:"kind"`
	Path    string `json:"path,omitempty"`
	Message string `json:"message"`
}

// Report is the structured result of a run.
type Report struct {
	Target  string  `json:"target"`
	Dir     string  `json:"dir"`
	DryRun  bool    `json:"dry_run"`
	Entries []Entry `json:"entries"`
	Issues  []Issue `json:"issues"`
	Fatal   string  `json:"fatal,omitempty"`
}

// ExitCode maps the report to the process exit status.
func (r Report) ExitCode() int {
	if r.Fatal != "" {
		return 1
	}
	return 0
}

// HasIssues reports whether any recoverable problem was recorded.
func (r Report) HasIssues() bool {
	return len(r.Issues) > 0
}

// Recorder logs and records outcomes while a run progresses.
type Recorder struct {
	log    *logger.Logger
	stage  string
	report *Report
}

// NewRecorder returns a Recorder that appends to rep and logs through log.
func NewRecorder(log *logger.Logger, rep *Report) *Recorder {
	if log == nil {
		log = logger.Discard()
	}
	if rep == nil {
		rep = &Report{}
	}
	if rep.Entries == nil {
		rep.Entries = []Entry{}
	}
	if rep.Issues == nil {
		rep.Issues = []Issue{}
	}
	return &Recorder{log: log, report: rep}
}

// Stage returns a Recorder sharing the same report that tags entries with stage.
func (r *Recorder) Stage(stage string) *Recorder {
	return &Recorder{log: r.log, stage: stage, report: r.report}
}

// Log returns the underlying logger.
func (r *Recorder) Log() *logger.Logger {
	return r.log
}

// Applied records a change that mutated the project and logs it at info level.
func (r *Recorder) Applied(path string, format string, args ...any) {
	detail := fmt.Sprintf(format, args...)
	r.report.Entries = append(r.report.Entries, Entry{Stage: r.stage, Path: path, Status: StatusApplied, Detail: detail})
	r.log.Infof("%s", detail)
}

// Noop records a change that found nothing to do.
func (r *Recorder) Noop(path string, format string, args ...any) {
	detail := fmt.Sprintf(format, args...)
	r.report.Entries = append(r.report.Entries, Entry{Stage: r.stage, Path: path, Status: StatusNoop, Detail: detail})
	r.log.Debugf("%s", detail)
}

// Skipped records a change that did not run.
func (r *Recorder) Skipped(path string, format string, args ...any) {
	detail := fmt.Sprintf(format, args...)
	r.report.Entries = append(r.report.Entries, Entry{Stage: r.stage, Path: path, Status: StatusSkipped, Detail: detail})
	r.log.Debugf("%s", detail)
}

// Warn records a recoverable issue and logs it as a warning.
func (r *Recorder) Warn(kind Kind, path string, format string, args ...any) {
	msg := fmt.Sprintf(format, args...)
	r.report.Issues = append(r.report.Issues, Issue{Kind: kind, Path: path, Message: msg})
	r.log.Warnf("%s", msg)
}

// Fail records the fatal error that stopped the run and logs it as an error.
func (r *Recorder) Fail(err error) {
	if err == nil {
		return
	}
	r.report.Fatal = err.Error()
	r.log.Errorf("%v", err)
}
