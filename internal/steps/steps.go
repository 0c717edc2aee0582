// Package steps holds the migration step table: one record per target
// framework major version, consumed by a single shared migration engine.
package steps

import (
	"bytes"
	"embed"
	"errors"
	"fmt"
	"io/fs"
	"math"
	"path"
	"sort"
	"strconv"
	"strings"

	"github.com/Masterminds/semver/v3"
	"github.com/pelletier/go-toml/v2"

	"github.com/conn-castle/capmigrate/internal/messages"
)

//go:embed data/*.toml
var embedded embed.FS

// Wrapper modes for the Gradle wrapper upgrade.
const (
	WrapperModeCommand    = "command"
	WrapperModeProperties = "properties"
)

// Step is one migration target.
type Step struct {
	ID                  string        `toml:"id"`
	Name                string        `toml:"name"`
	CoreVersion         string        `toml:"core_version"`
	SwiftPMVersion      string        `toml:"swift_pm_version"`
	ManifestVersionFrom string        `toml:"manifest_version_from"`
	ManifestVersionTo   string        `toml:"manifest_version_to"`
	Packages            []PackageRule `toml:"packages"`
	Prettier            Prettier      `toml:"prettier"`
	RenameRollupConfig  bool          `toml:"rename_rollup_config"`
	Android             Android       `toml:"android"`
	IOS                 IOS           `toml:"ios"`

	version *semver.Version
	source  string
}

// PackageRule pins one npm package in the manifest.
type PackageRule struct {
	Name    string `toml:"name"`
	Version string `toml:"version"`
	// Requires names a devDependency that must be present for the rule to apply.
	Requires string `toml:"requires"`
	// Add sets the package even when the manifest does not list it yet.
	Add bool `toml:"add"`
	// Sections defaults to devDependencies.
	Sections []string `toml:"sections"`
}

// Prettier controls the prettier-plugin-java script and ignore file cleanup.
type Prettier struct {
	Enabled  bool   `toml:"enabled"`
	Requires string `toml:"requires"`
}

// Android holds the Gradle side of a step.
type Android struct {
	GradleVersion           string            `toml:"gradle_version"`
	WrapperMode             string            `toml:"wrapper_mode"`
	JavaVersion             int               `toml:"java_version"`
	KotlinVersion           string            `toml:"kotlin_version"`
	Classpaths              map[string]string `toml:"classpaths"`
	RawVariables            map[string]any    `toml:"variables"`
	NormalizePropertySyntax bool              `toml:"normalize_property_syntax"`
	MigrateKotlinOptions    bool              `toml:"migrate_kotlin_options"`
	RenameCompileSdkVersion bool              `toml:"rename_compile_sdk_version"`
	RelocateNamespace       bool              `toml:"relocate_namespace"`
	RemoveBlocks            []string          `toml:"remove_blocks"`

	variables []Variable
}

// IOS holds the Xcode and CocoaPods side of a step.
type IOS struct {
	DeploymentTarget         string `toml:"deployment_target"`
	PreviousDeploymentTarget string `toml:"previous_deployment_target"`
	SPMPlatform              string `toml:"spm_platform"`
}

// Variable is one entry of the Gradle variable floor table.
type Variable struct {
	Name  string
	Value string
	// Numeric variables are compared as integers and sit at the end of the line.
	Numeric bool
}

// Classpath is one gated classpath coordinate.
type Classpath struct {
	Coordinate string
	Version    string
}

// Version returns the parsed step id.
func (s Step) Version() *semver.Version {
	return s.version
}

// Source returns the file the step was loaded from.
func (s Step) Source() string {
	return s.source
}

// Variables returns the variable floor table sorted by name.
func (a Android) Variables() []Variable {
	return append([]Variable(nil), a.variables...)
}

// SortedClasspaths returns the classpath table sorted by coordinate.
func (a Android) SortedClasspaths() []Classpath {
	out := make([]Classpath, 0, len(a.Classpaths))
	for coord, version := range a.Classpaths {
		out = append(out, Classpath{Coordinate: coord, Version: version})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Coordinate < out[j].Coordinate })
	return out
}

// WithVariables returns a copy of a whose floor table has overrides merged in.
func (a Android) WithVariables(overrides []Variable) Android {
	byName := make(map[string]Variable, len(a.variables)+len(overrides))
	for _, v := range a.variables {
		byName[v.Name] = v
	}
	for _, v := range overrides {
		byName[v.Name] = v
	}
	merged := make([]Variable, 0, len(byName))
	for _, v := range byName {
		merged = append(merged, v)
	}
	sort.Slice(merged, func(i, j int) bool { return merged[i].Name < merged[j].Name })
	a.variables = merged
	return a
}

// NewVariable converts a decoded TOML or YAML value into a Variable.
// Whole numbers become numeric floors; strings are version values.
func NewVariable(name string, value any) (Variable, error) {
	switch v := value.(type) {
	case string:
		return Variable{Name: name, Value: v}, nil
	case int:
		return Variable{Name: name, Value: strconv.Itoa(v), Numeric: true}, nil
	case int64:
		return Variable{Name: name, Value: strconv.FormatInt(v, 10), Numeric: true}, nil
	case uint64:
		return Variable{Name: name, Value: strconv.FormatUint(v, 10), Numeric: true}, nil
	case float64:
		if v == math.Trunc(v) && !math.IsInf(v, 0) {
			return Variable{Name: name, Value: strconv.FormatInt(int64(v), 10), Numeric: true}, nil
		}
	}
	return Variable{}, errInvalidVariable
}

var errInvalidVariable = errors.New("invalid variable value")

// Table is the sorted migration step table.
type Table struct {
	steps []Step
}

// Default returns the table compiled into the binary.
func Default() (*Table, error) {
	sub, err := fs.Sub(embedded, "data")
	if err != nil {
		return nil, err
	}
	return Load(sub)
}

// Load reads every *.toml file at the root of fsys as one step.
func Load(fsys fs.FS) (*Table, error) {
	names, err := fs.Glob(fsys, "*.toml")
	if err != nil {
		return nil, err
	}
	steps := make([]Step, 0, len(names))
	seen := make(map[string]string, len(names))
	for _, name := range names {
		data, err := fs.ReadFile(fsys, name)
		if err != nil {
			return nil, fmt.Errorf(messages.StepsReadFailedFmt, name, err)
		}
		step, err := Parse(data, path.Base(name))
		if err != nil {
			return nil, err
		}
		key := step.version.String()
		if prev, ok := seen[key]; ok {
			return nil, fmt.Errorf(messages.StepsDuplicateIDFmt, step.ID, prev, name)
		}
		seen[key] = name
		steps = append(steps, step)
	}
	if len(steps) == 0 {
		return nil, errors.New(messages.StepsEmpty)
	}
	sort.Slice(steps, func(i, j int) bool { return steps[i].version.LessThan(steps[j].version) })
	return &Table{steps: steps}, nil
}

// Parse decodes and validates one step record. Unknown keys are rejected.
func Parse(data []byte, source string) (Step, error) {
	var step Step
	decoder := toml.NewDecoder(bytes.NewReader(data))
	decoder.DisallowUnknownFields()
	if err := decoder.Decode(&step); err != nil {
		return Step{}, fmt.Errorf(messages.StepsDecodeFailedFmt, source, err)
	}
	step.source = source
	if err := step.validate(); err != nil {
		return Step{}, err
	}
	return step, nil
}

func (s *Step) validate() error {
	if strings.TrimSpace(s.ID) == "" {
		return fmt.Errorf(messages.StepsIDRequiredFmt, s.source)
	}
	v, err := semver.NewVersion(s.ID)
	if err != nil {
		return fmt.Errorf(messages.StepsIDInvalidFmt, s.source, s.ID, err)
	}
	s.version = v
	if strings.TrimSpace(s.CoreVersion) == "" {
		return fmt.Errorf(messages.StepsCoreVersionRequired, s.source)
	}
	switch s.Android.WrapperMode {
	case "":
		s.Android.WrapperMode = WrapperModeCommand
	case WrapperModeCommand, WrapperModeProperties:
	default:
		return fmt.Errorf(messages.StepsWrapperModeFmt, s.source, WrapperModeCommand, WrapperModeProperties, s.Android.WrapperMode)
	}
	for i := range s.Packages {
		if len(s.Packages[i].Sections) == 0 {
			s.Packages[i].Sections = []string{"devDependencies"}
		}
	}
	vars := make([]Variable, 0, len(s.Android.RawVariables))
	for name, raw := range s.Android.RawVariables {
		v, err := NewVariable(name, raw)
		if err != nil {
			return fmt.Errorf(messages.StepsVariableTypeFmt, s.source, name, raw)
		}
		vars = append(vars, v)
	}
	sort.Slice(vars, func(i, j int) bool { return vars[i].Name < vars[j].Name })
	s.Android.variables = vars
	return nil
}

// Steps returns the table in ascending target order.
func (t *Table) Steps() []Step {
	return append([]Step(nil), t.steps...)
}

// IDs returns the step ids in ascending order.
func (t *Table) IDs() []string {
	ids := make([]string, 0, len(t.steps))
	for _, s := range t.steps {
		ids = append(ids, s.ID)
	}
	return ids
}

// Latest returns the newest step.
func (t *Table) Latest() Step {
	return t.steps[len(t.steps)-1]
}

// Lookup returns the step for id. "8", "v8" and "8.0" all name the same step.
func (t *Table) Lookup(id string) (Step, error) {
	want, err := semver.NewVersion(strings.TrimSpace(id))
	if err == nil {
		for _, s := range t.steps {
			if s.version.Equal(want) {
				return s, nil
			}
		}
	}
	return Step{}, fmt.Errorf(messages.StepsUnknownTargetFmt, id, strings.Join(t.IDs(), ", "))
}
