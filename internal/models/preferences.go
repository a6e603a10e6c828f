package models

import (
	"math"
	"strconv"
	"strings"
)

// Well-known preference keys. Rule conditions match against these (and any
// other key the caller supplies).
const (
	PrefCategory       = "category"
	PrefCategoryID     = "category_id"
	PrefBudget         = "budget"
	PrefUsageType      = "usage_type"
	PrefPreferredBrand = "preferred_brand"
	PrefNotes          = "additional_notes"
)

// UsageTypes is the vocabulary offered to end users.
var UsageTypes = []string{"gaming", "work", "study", "general", "creative"}

// Preferences is the per-request fact set supplied by the end user.
type Preferences map[string]string

// Clone returns an independent copy.
func (p Preferences) Clone() Preferences {
	out := make(Preferences, len(p))
	for k, v := range p {
		out[k] = v
	}
	return out
}

func (p Preferences) Get(key string) (string, bool) {
	v, ok := p[key]
	if !ok {
		return "", false
	}
	v = strings.TrimSpace(v)
	return v, v != ""
}

// Budget returns the budget when it parses as a positive finite number.
func (p Preferences) Budget() (float64, bool) {
	raw, ok := p.Get(PrefBudget)
	if !ok {
		return 0, false
	}
	budget, err := strconv.ParseFloat(raw, 64)
	if err != nil || math.IsNaN(budget) || math.IsInf(budget, 0) || budget <= 0 {
		return 0, false
	}
	return budget, true
}

// CategoryID returns the explicit category id, if present and numeric.
func (p Preferences) CategoryID() (int64, bool) {
	raw, ok := p.Get(PrefCategoryID)
	if !ok {
		return 0, false
	}
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		return 0, false
	}
	return id, true
}

func (p Preferences) Category() string {
	v, _ := p.Get(PrefCategory)
	return v
}

// UsageType is lower-cased; empty when not supplied.
func (p Preferences) UsageType() string {
	v, _ := p.Get(PrefUsageType)
	return strings.ToLower(v)
}

// PreferredBrand treats "Any" as no preference.
func (p Preferences) PreferredBrand() string {
	v, _ := p.Get(PrefPreferredBrand)
	if strings.EqualFold(v, "any") {
		return ""
	}
	return v
}
