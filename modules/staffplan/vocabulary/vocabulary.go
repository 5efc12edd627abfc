// Package vocabulary holds the fixed naming tables of the staffing-plan
// workbook: the three track vocabularies, track colors and sheet names.
package vocabulary

import (
	_ "embed"
	"fmt"
	"strings"
	"sync"

	"gopkg.in/yaml.v3"
)

//go:embed vocabulary.yaml
var embedded []byte

// Context selects which vocabulary a raw track label is resolved against.
type Context int

const (
	SheetTitles Context = iota
	MainPlan
	Contracts
)

func (c Context) String() string {
	switch c {
	case SheetTitles:
		return "sheet_titles"
	case MainPlan:
		return "main_plan"
	case Contracts:
		return "contracts"
	default:
		return fmt.Sprintf("context(%d)", int(c))
	}
}

type Entry struct {
	Label string `yaml:"label"`
	Key   string `yaml:"key"`
}

// Table is an ordered label → canonical key mapping.
type Table struct {
	entries []Entry
}

func (t Table) Entries() []Entry {
	return append([]Entry(nil), t.entries...)
}

// Exact matches label against the table verbatim, then with surrounding
// whitespace trimmed on both sides.
func (t Table) Exact(label string) (string, bool) {
	for _, e := range t.entries {
		if e.Label == label {
			return e.Key, true
		}
	}
	trimmed := strings.TrimSpace(label)
	for _, e := range t.entries {
		if strings.TrimSpace(e.Label) == trimmed {
			return e.Key, true
		}
	}
	return "", false
}

// Contains returns the key of the first entry, in declared order, whose
// label occurs in text.
func (t Table) Contains(text string) (string, bool) {
	if text == "" {
		return "", false
	}
	for _, e := range t.entries {
		if strings.Contains(text, e.Label) {
			return e.Key, true
		}
	}
	return "", false
}

type Sheets struct {
	MainPlan       string `yaml:"main_plan"`
	Cameras        string `yaml:"cameras"`
	Contracts      string `yaml:"contracts"`
	FinancialCosts string `yaml:"financial_costs"`
}

type Vocabulary struct {
	tables          map[Context]Table
	colors          map[string]string
	fallbackColor   string
	skipTrackSheets map[string]struct{}

	Sheets       Sheets
	SentinelName string
	SignedPhrase string
}

type document struct {
	SheetTitles     []Entry           `yaml:"sheet_titles"`
	MainPlan        []Entry           `yaml:"main_plan"`
	Contracts       []Entry           `yaml:"contracts"`
	Colors          map[string]string `yaml:"colors"`
	FallbackColor   string            `yaml:"fallback_color"`
	SkipTrackSheets []string          `yaml:"skip_track_sheets"`
	Sheets          Sheets            `yaml:"sheets"`
	SentinelName    string            `yaml:"sentinel_name"`
	SignedPhrase    string            `yaml:"signed_phrase"`
}

var defaultVocabulary = sync.OnceValue(func() *Vocabulary {
	v, err := Parse(embedded)
	if err != nil {
		panic(fmt.Sprintf("vocabulary: %v", err))
	}
	return v
})

// Default returns the vocabulary compiled into the binary.
func Default() *Vocabulary {
	return defaultVocabulary()
}

func Parse(data []byte) (*Vocabulary, error) {
	var doc document
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("parse vocabulary: %w", err)
	}
	for name, entries := range map[string][]Entry{
		"sheet_titles": doc.SheetTitles,
		"main_plan":    doc.MainPlan,
		"contracts":    doc.Contracts,
	} {
		seen := make(map[string]struct{}, len(entries))
		for i, e := range entries {
			if strings.TrimSpace(e.Label) == "" || strings.TrimSpace(e.Key) == "" {
				return nil, fmt.Errorf("%s[%d]: label and key are required", name, i)
			}
			if _, ok := seen[e.Label]; ok {
				return nil, fmt.Errorf("%s[%d]: duplicate label %q", name, i, e.Label)
			}
			seen[e.Label] = struct{}{}
		}
	}
	if doc.FallbackColor == "" {
		return nil, fmt.Errorf("fallback_color is required")
	}
	if doc.Sheets.MainPlan == "" || doc.Sheets.Contracts == "" || doc.Sheets.FinancialCosts == "" {
		return nil, fmt.Errorf("sheets: main_plan, contracts and financial_costs are required")
	}

	skip := make(map[string]struct{}, len(doc.SkipTrackSheets))
	for _, k := range doc.SkipTrackSheets {
		skip[k] = struct{}{}
	}
	return &Vocabulary{
		tables: map[Context]Table{
			SheetTitles: {entries: doc.SheetTitles},
			MainPlan:    {entries: doc.MainPlan},
			Contracts:   {entries: doc.Contracts},
		},
		colors:          doc.Colors,
		fallbackColor:   doc.FallbackColor,
		skipTrackSheets: skip,
		Sheets:          doc.Sheets,
		SentinelName:    doc.SentinelName,
		SignedPhrase:    doc.SignedPhrase,
	}, nil
}

func (v *Vocabulary) Table(c Context) Table {
	return v.tables[c]
}

// Match resolves raw against the vocabulary of c. Main-plan labels are
// matched by containment, the others exactly.
func (v *Vocabulary) Match(c Context, raw string) (string, bool) {
	if c == MainPlan {
		return v.Table(c).Contains(raw)
	}
	return v.Table(c).Exact(raw)
}

// Keys is the union of canonical keys in first-seen order across sheet
// titles, main plan and contracts.
func (v *Vocabulary) Keys() []string {
	var keys []string
	seen := map[string]struct{}{}
	for _, c := range []Context{SheetTitles, MainPlan, Contracts} {
		for _, e := range v.tables[c].entries {
			if _, ok := seen[e.Key]; ok {
				continue
			}
			seen[e.Key] = struct{}{}
			keys = append(keys, e.Key)
		}
	}
	return keys
}

func (v *Vocabulary) Color(key string) string {
	if c, ok := v.colors[key]; ok && c != "" {
		return c
	}
	return v.fallbackColor
}

// NativeName is the first label that maps to key, searching sheet titles
// before the other vocabularies. It falls back to key itself.
func (v *Vocabulary) NativeName(key string) string {
	for _, c := range []Context{SheetTitles, MainPlan, Contracts} {
		for _, e := range v.tables[c].entries {
			if e.Key == key {
				return e.Label
			}
		}
	}
	return key
}

// TrackSheets lists the sheet titles read with the regular track sheet layout.
func (v *Vocabulary) TrackSheets() []Entry {
	var out []Entry
	for _, e := range v.tables[SheetTitles].entries {
		if _, skip := v.skipTrackSheets[e.Key]; skip {
			continue
		}
		out = append(out, e)
	}
	return out
}
