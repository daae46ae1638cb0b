package state

import "fmt"

// DataSource selects which backends feed the displayed list.
type DataSource string

const (
	SourceAll       DataSource = "all"
	SourceExternal  DataSource = "api"
	SourceLocal     DataSource = "local"
	SourceAlternate DataSource = "go"
)

// DataSources lists every mode in display order.
var DataSources = []DataSource{SourceAll, SourceExternal, SourceLocal, SourceAlternate}

func (d DataSource) Valid() bool {
	switch d {
	case SourceAll, SourceExternal, SourceLocal, SourceAlternate:
		return true
	}
	return false
}

// ParseDataSource accepts the mode names used on the command line.
func ParseDataSource(s string) (DataSource, error) {
	d := DataSource(s)
	if !d.Valid() {
		return "", fmt.Errorf("unknown data source %q (want all, api, local or go)", s)
	}
	return d, nil
}

// SourcePlan says which record sets a mode (re)fetches and which it drops.
type SourcePlan struct {
	LoadExternal  bool
	LoadLocal     bool
	LoadAlternate bool

	ClearExternal  bool
	ClearLocal     bool
	ClearAlternate bool
}

// PlanFor returns the fixed plan for a mode. Unknown modes get the zero plan.
func PlanFor(d DataSource) SourcePlan {
	switch d {
	case SourceAll:
		return SourcePlan{LoadExternal: true, LoadLocal: true, ClearAlternate: true}
	case SourceExternal:
		return SourcePlan{LoadExternal: true, ClearLocal: true, ClearAlternate: true}
	case SourceLocal:
		return SourcePlan{LoadLocal: true, ClearExternal: true, ClearAlternate: true}
	case SourceAlternate:
		return SourcePlan{LoadAlternate: true, ClearExternal: true, ClearLocal: true}
	}
	return SourcePlan{}
}
