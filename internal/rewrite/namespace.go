package rewrite

import (
	"regexp"

	"github.com/conn-castle/capmigrate/internal/patch"
)

var (
	manifestPackageRE = regexp.MustCompile(`\s+package\s*=\s*"([^"]+)"`)
	gradleNamespaceRE = regexp.MustCompile(`(?m)^\s*namespace\b`)
	androidOpenRE     = regexp.MustCompile(`(?m)^\s*android\s*\{`)
)

// RelocateNamespace moves the package attribute of an AndroidManifest.xml
// into a `namespace` declaration on the first line of the Gradle `android`
// block.
//
// It reports false and returns both inputs unchanged when the Gradle script
// already declares a namespace, the manifest has no package attribute, or
// the script has no android block.
func RelocateNamespace(manifestXML string, gradle string) (newManifest string, newGradle string, applied bool) {
	if gradleNamespaceRE.MatchString(gradle) {
		return manifestXML, gradle, false
	}
	pm := manifestPackageRE.FindStringSubmatchIndex(manifestXML)
	if pm == nil {
		return manifestXML, gradle, false
	}
	open := androidOpenRE.FindStringIndex(gradle)
	if open == nil {
		return manifestXML, gradle, false
	}
	pkg := manifestXML[pm[2]:pm[3]]
	declaration := patch.LineEnding(gradle) + `    namespace "` + pkg + `"`

	newGradle = gradle[:open[1]] + declaration + gradle[open[1]:]
	newManifest = manifestXML[:pm[0]] + manifestXML[pm[1]:]
	return newManifest, newGradle, true
}

// NamespaceOf returns the package declared by an AndroidManifest.xml.
func NamespaceOf(manifestXML string) (string, bool) {
	pm := manifestPackageRE.FindStringSubmatch(manifestXML)
	if pm == nil {
		return "", false
	}
	return pm[1], true
}
