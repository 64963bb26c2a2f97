package fees

import (
	_ "embed"
	"fmt"

	log "github.com/sirupsen/logrus"
	"gopkg.in/yaml.v3"

	"ratehub/internal/schema"
)

//go:embed port_fees.yaml
var embeddedFeeTable []byte

// DefaultMultiplier applies when a container type code is not in the table.
const DefaultMultiplier = 1.8

type feeTableFile struct {
	Default     schema.PortFeeProfile   `yaml:"default"`
	Ports       []schema.PortFeeProfile `yaml:"ports"`
	Multipliers map[string]float64      `yaml:"multipliers"`
}

// Table holds the static port fee reference data. Immutable after startup.
type Table struct {
	defaultProfile schema.PortFeeProfile
	profiles       map[string]schema.PortFeeProfile
	multipliers    map[string]float64
}

// NewTable loads the embedded reference table.
func NewTable() (*Table, error) {
	var file feeTableFile
	if err := yaml.Unmarshal(embeddedFeeTable, &file); err != nil {
		return nil, fmt.Errorf("failed to parse embedded port fee table: %w", err)
	}
	table := &Table{
		defaultProfile: file.Default,
		profiles:       make(map[string]schema.PortFeeProfile, len(file.Ports)),
		multipliers:    file.Multipliers,
	}
	for _, profile := range file.Ports {
		table.profiles[profile.Code] = profile
	}
	return table, nil
}

// Merge overrides embedded entries with externally sourced rows. Called once
// during wiring, before the table is shared.
func (t *Table) Merge(profiles []schema.PortFeeProfile) {
	for _, profile := range profiles {
		if profile.Code == "" {
			continue
		}
		t.profiles[profile.Code] = profile
	}
	log.Infof("Port fee table holds %d profiles after merge", len(t.profiles))
}

// ProfileFor resolves a port code, falling back to the default profile for
// unknown codes rather than failing.
func (t *Table) ProfileFor(portCode string) (schema.PortFeeProfile, bool) {
	if profile, ok := t.profiles[portCode]; ok {
		return profile, true
	}
	unknown := t.defaultProfile
	unknown.Code = portCode
	return unknown, false
}

// MultiplierFor resolves a container type multiplier, defaulting for
// unrecognized codes.
func (t *Table) MultiplierFor(containerType string) (float64, bool) {
	if multiplier, ok := t.multipliers[containerType]; ok {
		return multiplier, true
	}
	return DefaultMultiplier, false
}
