// Package locations holds the static table of Brazilian states and the
// cities offered for each one in the location step.
package locations

import (
	_ "embed"
	"fmt"
	"strings"

	"golang.org/x/text/cases"
	"gopkg.in/yaml.v3"
)

//go:embed brazil.yaml
var brazilYAML []byte

// State is a federative unit with its reference city list.
type State struct {
	Code   string   `yaml:"code" json:"code"`
	Name   string   `yaml:"name" json:"name"`
	Cities []string `yaml:"cities" json:"-"`
}

// Table answers state and city lookups. It is immutable after construction
// and safe for concurrent use.
type Table struct {
	states []State
	byCode map[string]int
	byName map[string]int
}

type document struct {
	States []State `yaml:"states"`
}

// Brazil loads the embedded reference table.
func Brazil() (*Table, error) {
	return Parse(brazilYAML)
}

// MustBrazil is Brazil for package initialisation and tests.
func MustBrazil() *Table {
	t, err := Brazil()
	if err != nil {
		panic(err)
	}
	return t
}

// Parse builds a table from YAML with a top-level "states" list.
func Parse(data []byte) (*Table, error) {
	var doc document
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("parse locations: %w", err)
	}

	t := &Table{
		states: make([]State, 0, len(doc.States)),
		byCode: make(map[string]int, len(doc.States)),
		byName: make(map[string]int, len(doc.States)),
	}
	for _, s := range doc.States {
		code := strings.ToUpper(strings.TrimSpace(s.Code))
		if code == "" || strings.TrimSpace(s.Name) == "" {
			return nil, fmt.Errorf("parse locations: state without code or name")
		}
		if _, dup := t.byCode[code]; dup {
			return nil, fmt.Errorf("parse locations: duplicate state %s", code)
		}
		s.Code = code
		t.byCode[code] = len(t.states)
		t.byName[foldKey(s.Name)] = len(t.states)
		t.states = append(t.states, s)
	}
	return t, nil
}

// States returns every state in table order. Cities are not included.
func (t *Table) States() []State {
	out := make([]State, len(t.states))
	for i, s := range t.states {
		out[i] = State{Code: s.Code, Name: s.Name}
	}
	return out
}

// Lookup finds a state by its two-letter code.
func (t *Table) Lookup(code string) (State, bool) {
	i, ok := t.byCode[strings.ToUpper(strings.TrimSpace(code))]
	if !ok {
		return State{}, false
	}
	return t.states[i], true
}

// CitiesOf returns a copy of the city list for code, or an empty list when
// the code is unknown or empty.
func (t *Table) CitiesOf(code string) []string {
	s, ok := t.Lookup(code)
	if !ok {
		return []string{}
	}
	return append([]string(nil), s.Cities...)
}

// StateByName matches a full state name case-insensitively, as returned by
// reverse geocoding ("são paulo" finds SP).
func (t *Table) StateByName(name string) (State, bool) {
	i, ok := t.byName[foldKey(name)]
	if !ok {
		return State{}, false
	}
	return t.states[i], true
}

// MatchCity returns the reference spelling of city within the given state.
func (t *Table) MatchCity(code, city string) (string, bool) {
	if strings.TrimSpace(city) == "" {
		return "", false
	}
	s, ok := t.Lookup(code)
	if !ok {
		return "", false
	}
	want := foldKey(city)
	for _, c := range s.Cities {
		if foldKey(c) == want {
			return c, true
		}
	}
	return "", false
}

// foldKey applies Unicode case folding. A Caser carries state, so each call
// gets its own.
func foldKey(s string) string {
	return cases.Fold().String(strings.TrimSpace(s))
}
