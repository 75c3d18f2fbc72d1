// Package extractor pulls identity fields out of recognized card text with an ordered
// table of labelled and positional strategies.
package extractor

import (
	"github.com/anime-shed/cccd-inspector-go/pkg/models"
)

// Side is the face of the card a text came from.
type Side int

const (
	SideFront Side = iota
	SideBack
)

func (s Side) String() string {
	if s == SideBack {
		return "back"
	}
	return "front"
}

// Result is a partial record plus the strategy that produced each field.
type Result struct {
	Fields  models.Fields
	Sources map[models.FieldName]string
}

// Extractor runs a strategy table over a document.
type Extractor struct {
	front []Strategy
	back  []Strategy
}

// New returns an extractor using the default strategy tables.
func New() *Extractor {
	return &Extractor{front: FrontStrategies, back: BackStrategies}
}

// NewWithStrategies returns an extractor with custom tables, in precedence order.
func NewWithStrategies(front, back []Strategy) *Extractor {
	return &Extractor{front: front, back: back}
}

// Extract runs every strategy for side in order. The first strategy to produce a value
// for a field wins and later strategies for that field are skipped.
func (e *Extractor) Extract(text string, side Side) Result {
	strategies := e.front
	if side == SideBack {
		strategies = e.back
	}
	return Run(NewDocument(text), strategies)
}

// Run applies strategies to doc.
func Run(doc *Document, strategies []Strategy) Result {
	res := Result{Sources: make(map[models.FieldName]string)}
	for _, s := range strategies {
		if res.Fields.Has(s.Field) {
			continue
		}
		if v, ok := s.Extract(doc); ok && v != "" {
			res.Fields.Set(s.Field, v)
			res.Sources[s.Field] = s.Name
		}
	}
	return res
}

// ExtractNumber is the number-only flow. It looks for a 12-digit run, then for adjacent
// runs whose concatenation is exactly 12 digits, then for the first 12 digits of the
// text. No other field is attempted.
func ExtractNumber(text string) (string, bool) {
	runs := digitRun.FindAllString(NewDocument(text).Clean, -1)
	for _, r := range runs {
		if len(r) == 12 {
			return r, true
		}
	}
	for i := range runs {
		combined := ""
		for j := i; j < len(runs); j++ {
			combined += runs[j]
			if len(combined) == 12 {
				return combined, true
			}
			if len(combined) > 12 {
				break
			}
		}
	}
	all := ""
	for _, r := range runs {
		all += r
	}
	if len(all) >= 12 {
		return all[:12], true
	}
	return "", false
}
