package aoi

import (
	_ "embed"
	"strings"
	"sync"

	"github.com/goccy/go-yaml"

	"github.com/SilviaTerra/BiometricsBits/pkg/errors"
)

//go:embed states.yaml
var statesYAML []byte

// State is one entry in the embedded state registry.
type State struct {
	// Abbr is the two-letter postal abbreviation.
	Abbr string `yaml:"abbr"`

	// FIPS is the two-digit state FIPS code used by boundary shapefiles.
	FIPS string `yaml:"fips"`

	// Name is the full state name.
	Name string `yaml:"name"`
}

var (
	statesOnce sync.Once
	statesByID map[string]State
	statesErr  error
)

func loadStates() {
	var entries []State
	if err := yaml.Unmarshal(statesYAML, &entries); err != nil {
		statesErr = errors.WrapParse("yaml", "states.yaml", err)
		return
	}
	statesByID = make(map[string]State, len(entries))
	for _, s := range entries {
		statesByID[s.Abbr] = s
	}
}

// LookupState resolves a two-letter state abbreviation against the
// embedded registry.
func LookupState(abbr string) (State, error) {
	statesOnce.Do(loadStates)
	if statesErr != nil {
		return State{}, statesErr
	}

	s, ok := statesByID[strings.ToUpper(strings.TrimSpace(abbr))]
	if !ok {
		return State{}, errors.NewNotFoundError("state", abbr)
	}
	return s, nil
}

// States returns all registry entries.
func States() ([]State, error) {
	statesOnce.Do(loadStates)
	if statesErr != nil {
		return nil, statesErr
	}

	out := make([]State, 0, len(statesByID))
	for _, s := range statesByID {
		out = append(out, s)
	}
	return out, nil
}
