package club

import (
	"strings"

	"github.com/cockroachdb/errors"
)

// Code is a canonical age-category identifier.
type Code string

const (
	StarsiZaciA Code = "starsi-zaci-a"
	StarsiZaciB Code = "starsi-zaci-b"
	MladsiZaciA Code = "mladsi-zaci-a"
	MladsiZaciB Code = "mladsi-zaci-b"
)

// ErrUnknownCategory is returned by ParseCode for codes outside the table.
var ErrUnknownCategory = errors.New("unknown category")

// Category is one row of the classification table.
type Category struct {
	Code    Code
	Name    string
	Aliases []string
}

// Categories is in priority order. The "B" groups come first because the
// "A" groups also own the bare league names and shared short codes ("lsž",
// "lmž") that a "B" label contains as well.
var Categories = []Category{
	{
		Code: StarsiZaciB,
		Name: "Starší žáci B",
		Aliases: []string{
			`starších žáků "b"`, "starších žáků b", `starsich zaku "b"`, "starsich zaku b",
			"starší žáci b", "starsi zaci b", "lsž b", "lsz b", "lsžb", "8. tříd", "8. trid",
		},
	},
	{
		Code: StarsiZaciA,
		Name: "Starší žáci A",
		Aliases: []string{
			`starších žáků "a"`, "starších žáků a", `starsich zaku "a"`, "starsich zaku a",
			"starší žáci a", "starsi zaci a", "lsž a", "lsz a", "lsža",
			"starších žáků", "starsich zaku", "starší žáci", "starsi zaci", "lsž", "lsz", "9. tříd", "9. trid",
		},
	},
	{
		Code: MladsiZaciB,
		Name: "Mladší žáci B",
		Aliases: []string{
			`mladších žáků "b"`, "mladších žáků b", `mladsich zaku "b"`, "mladsich zaku b",
			"mladší žáci b", "mladsi zaci b", "lmž b", "lmz b", "lmžb", "6. tříd", "6. trid",
		},
	},
	{
		Code: MladsiZaciA,
		Name: "Mladší žáci A",
		Aliases: []string{
			`mladších žáků "a"`, "mladších žáků a", `mladsich zaku "a"`, "mladsich zaku a",
			"mladší žáci a", "mladsi zaci a", "lmž a", "lmz a", "lmža",
			"mladších žáků", "mladsich zaku", "mladší žáci", "mladsi zaci", "lmž", "lmz", "7. tříd", "7. trid",
		},
	},
}

// Classifier maps free-text league labels to categories.
type Classifier struct {
	categories []Category
}

// NewClassifier uses Categories when no table is given.
func NewClassifier(categories ...Category) *Classifier {
	if len(categories) == 0 {
		categories = Categories
	}
	normalized := make([]Category, len(categories))
	for i, c := range categories {
		aliases := make([]string, 0, len(c.Aliases))
		for _, a := range c.Aliases {
			if a = Normalize(a); a != "" {
				aliases = append(aliases, a)
			}
		}
		normalized[i] = Category{Code: c.Code, Name: c.Name, Aliases: aliases}
	}
	return &Classifier{categories: normalized}
}

// Classify returns the first category, in table order, owning an alias that
// the lowercased text contains.
func (c *Classifier) Classify(text string) (Category, bool) {
	normalized := Normalize(text)
	if normalized == "" {
		return Category{}, false
	}
	for _, cat := range c.categories {
		if containsAny(normalized, cat.Aliases) {
			return cat, true
		}
	}
	return Category{}, false
}

// Lookup returns the table entry for a code.
func (c *Classifier) Lookup(code Code) (Category, bool) {
	for _, cat := range c.categories {
		if cat.Code == code {
			return cat, true
		}
	}
	return Category{}, false
}

// ParseCode validates a request-supplied category code. Empty input yields
// the empty code and no error.
func ParseCode(s string) (Code, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	if s == "" {
		return "", nil
	}
	for _, cat := range Categories {
		if string(cat.Code) == s {
			return cat.Code, nil
		}
	}
	return "", errors.Wrapf(ErrUnknownCategory, "%q", s)
}

// Codes lists every known code in table order.
func Codes() []Code {
	out := make([]Code, len(Categories))
	for i, c := range Categories {
		out[i] = c.Code
	}
	return out
}
