// Package regions holds the static state/city reference data used to
// validate report locations and resolve escalation targets. The dataset is
// embedded and treated as immutable for the process lifetime.
package regions

import (
	"embed"
	"encoding/json"
	"fmt"
	"sort"
	"strings"
)

//go:embed locations.json
var locationsFS embed.FS

// State is one administrative state with its cities.
type State struct {
	Name   string   `json:"name"`
	Code   string   `json:"code"`
	Cities []string `json:"cities"`
}

// StateRef is the lightweight state listing returned to clients.
type StateRef struct {
	Name string `json:"name"`
	Code string `json:"code"`
}

// CityRef is one city search hit with its state.
type CityRef struct {
	City  string `json:"city"`
	State string `json:"state"`
}

// Directory answers state/city validation and enumeration queries.
type Directory struct {
	states []State
}

type locationsFile struct {
	States []State `json:"states"`
}

// Load parses the embedded locations dataset.
func Load() (*Directory, error) {
	data, err := locationsFS.ReadFile("locations.json")
	if err != nil {
		return nil, fmt.Errorf("failed to read locations data: %w", err)
	}

	var file locationsFile
	if err := json.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("failed to parse locations data: %w", err)
	}
	if len(file.States) == 0 {
		return nil, fmt.Errorf("locations data contains no states")
	}

	return &Directory{states: file.States}, nil
}

// States returns all states, name-sorted.
func (d *Directory) States() []StateRef {
	refs := make([]StateRef, 0, len(d.states))
	for _, s := range d.states {
		refs = append(refs, StateRef{Name: s.Name, Code: s.Code})
	}
	sort.Slice(refs, func(i, j int) bool { return refs[i].Name < refs[j].Name })
	return refs
}

// CitiesInState returns the cities of the named state, or nil if the state
// is unknown. Matching is case-insensitive.
func (d *Directory) CitiesInState(stateName string) []string {
	state := d.findState(stateName)
	if state == nil {
		return nil
	}
	cities := make([]string, len(state.Cities))
	copy(cities, state.Cities)
	return cities
}

// ValidateState reports whether the named state exists.
func (d *Directory) ValidateState(stateName string) bool {
	return d.findState(stateName) != nil
}

// ValidateCity reports whether the named city exists, optionally scoped to
// a state.
func (d *Directory) ValidateCity(cityName, stateName string) bool {
	if stateName != "" {
		state := d.findState(stateName)
		if state == nil {
			return false
		}
		return containsFold(state.Cities, cityName)
	}
	for _, s := range d.states {
		if containsFold(s.Cities, cityName) {
			return true
		}
	}
	return false
}

// NormalizeState returns the canonical capitalization of the state name, or
// the input unchanged if unknown.
func (d *Directory) NormalizeState(stateName string) string {
	if state := d.findState(stateName); state != nil {
		return state.Name
	}
	return stateName
}

// NormalizeCity returns the canonical capitalization of the city name,
// optionally scoped to a state, or the input unchanged if unknown.
func (d *Directory) NormalizeCity(cityName, stateName string) string {
	if stateName != "" {
		state := d.findState(stateName)
		if state == nil {
			return cityName
		}
		if c := findFold(state.Cities, cityName); c != "" {
			return c
		}
		return cityName
	}
	for _, s := range d.states {
		if c := findFold(s.Cities, cityName); c != "" {
			return c
		}
	}
	return cityName
}

// SearchStates returns up to 10 states matching the query by prefix,
// substring or small edit distance. An empty query returns all states.
func (d *Directory) SearchStates(query string) []StateRef {
	query = strings.ToLower(strings.TrimSpace(query))
	if query == "" {
		return d.States()
	}

	var refs []StateRef
	for _, s := range d.states {
		name := strings.ToLower(s.Name)
		code := strings.ToLower(s.Code)
		if name == query || code == query ||
			strings.Contains(name, query) ||
			levenshtein(name, query) <= 2 {
			refs = append(refs, StateRef{Name: s.Name, Code: s.Code})
		}
	}
	if len(refs) > 10 {
		refs = refs[:10]
	}
	return refs
}

// SearchCities returns up to 20 cities matching the query, optionally
// scoped to a state.
func (d *Directory) SearchCities(query, stateName string) []CityRef {
	query = strings.ToLower(strings.TrimSpace(query))
	if query == "" {
		if stateName != "" {
			var refs []CityRef
			for _, city := range d.CitiesInState(stateName) {
				refs = append(refs, CityRef{City: city, State: d.NormalizeState(stateName)})
			}
			return refs
		}
		return nil
	}

	statesToSearch := d.states
	if stateName != "" {
		state := d.findState(stateName)
		if state == nil {
			return nil
		}
		statesToSearch = []State{*state}
	}

	var refs []CityRef
	for _, s := range statesToSearch {
		for _, city := range s.Cities {
			lower := strings.ToLower(city)
			if strings.Contains(lower, query) || levenshtein(lower, query) <= 2 {
				refs = append(refs, CityRef{City: city, State: s.Name})
			}
		}
	}
	if len(refs) > 20 {
		refs = refs[:20]
	}
	return refs
}

func (d *Directory) findState(stateName string) *State {
	for i := range d.states {
		if strings.EqualFold(d.states[i].Name, stateName) {
			return &d.states[i]
		}
	}
	return nil
}

func containsFold(values []string, target string) bool {
	return findFold(values, target) != ""
}

func findFold(values []string, target string) string {
	for _, v := range values {
		if strings.EqualFold(v, target) {
			return v
		}
	}
	return ""
}

// levenshtein computes the edit distance used for fuzzy search.
func levenshtein(a, b string) int {
	if a == b {
		return 0
	}
	ra, rb := []rune(a), []rune(b)

	prev := make([]int, len(rb)+1)
	curr := make([]int, len(rb)+1)
	for j := 0; j <= len(rb); j++ {
		prev[j] = j
	}
	for i := 1; i <= len(ra); i++ {
		curr[0] = i
		for j := 1; j <= len(rb); j++ {
			cost := 1
			if ra[i-1] == rb[j-1] {
				cost = 0
			}
			curr[j] = min(prev[j-1]+cost, min(curr[j-1]+1, prev[j]+1))
		}
		prev, curr = curr, prev
	}
	return prev[len(rb)]
}

func min(a, b int) int {
	if a < b {
		return a
	}
	return b
}
