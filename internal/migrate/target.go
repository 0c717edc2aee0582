package migrate

import (
	"github.com/conn-castle/capmigrate/internal/config"
	"github.com/conn-castle/capmigrate/internal/steps"
)

// ResolveStep picks the step named by target, then the config target, then
// the newest step in table.
func ResolveStep(table *steps.Table, target string, cfg *config.Config) (steps.Step, error) {
	if target == "" && cfg != nil {
		target = cfg.Target
	}
	if target == "" {
		return table.Latest(), nil
	}
	return table.Lookup(target)
}
