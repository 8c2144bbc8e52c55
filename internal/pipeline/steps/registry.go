// Package steps defines the ordered phases a search job moves through.
package steps

import "sort"

// Phase names a stage of a search job.
type Phase string

// Search job phases, in execution order.
const (
	Starting          Phase = "starting"
	Fetching          Phase = "fetching"
	Filtering         Phase = "filtering"
	ExtractingContent Phase = "extracting-content"
	ExtractingCities  Phase = "extracting-cities"
	Complete          Phase = "complete"
)

// Definition describes a phase.
type Definition struct {
	Phase       Phase
	Order       int
	Description string
}

// Registry holds every phase definition.
var Registry = map[Phase]Definition{
	Starting:          {Phase: Starting, Order: 0, Description: "Job accepted"},
	Fetching:          {Phase: Fetching, Order: 1, Description: "Querying news sources"},
	Filtering:         {Phase: Filtering, Order: 2, Description: "Removing off-topic articles"},
	ExtractingContent: {Phase: ExtractingContent, Order: 3, Description: "Fetching missing article text"},
	ExtractingCities:  {Phase: ExtractingCities, Order: 4, Description: "Geolocating and classifying articles"},
	Complete:          {Phase: Complete, Order: 5, Description: "Results ready"},
}

// Ordered returns all phases in execution order.
func Ordered() []Phase {
	out := make([]Phase, 0, len(Registry))
	for p := range Registry {
		out = append(out, p)
	}
	sort.Slice(out, func(i, j int) bool { return Registry[out[i]].Order < Registry[out[j]].Order })
	return out
}

// Advances reports whether moving from one phase to another keeps progress
// moving forward. Staying in the same phase counts as advancing; unknown
// phases never do.
func Advances(from, to Phase) bool {
	f, ok := Registry[from]
	if !ok {
		return false
	}
	t, ok := Registry[to]
	if !ok {
		return false
	}
	return t.Order >= f.Order
}
