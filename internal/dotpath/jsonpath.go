package dotpath

import (
	"slices"

	"github.com/theory/jsonpath/spec"

	"github.com/jacoelho/dq/internal/document"
)

// evalJSONPath runs an RFC 9535 query with each frontier node as the query
// root and maps the normalized paths it reports back onto Locations. The
// query sees plain Go maps, so its results are put back into document order.
func evalJSONPath(_ *Evaluator, seg Segment, frontier Results) (Results, error) {
	s, ok := seg.(JSONPath)
	if !ok {
		return nil, segmentMismatch(KindJSONPath, seg)
	}
	query, err := s.compiled()
	if err != nil {
		return nil, nil
	}

	type ranked struct {
		result Result
		rank   []int
	}

	var out Results
	for _, r := range frontier {
		located := query.SelectLocated(document.Plain(r.Value))
		matches := make([]ranked, 0, len(located))

		for _, node := range located {
			loc := r.Location
			value := r.Value
			rank := make([]int, 0, len(node.Path))
			found := true
			for _, sel := range node.Path {
				var elem Elem
				switch step := sel.(type) {
				case spec.Name:
					rank = append(rank, entryPosition(value, string(step)))
					value, elem, found = lookupKey(value, string(step))
				case spec.Index:
					value, elem, found = lookupIndex(value, int(step))
					rank = append(rank, elem.Index)
				default:
					found = false
				}
				if !found {
					break
				}
				loc = loc.with(elem)
			}
			if !found {
				value = node.Node
			}
			matches = append(matches, ranked{result: Result{Location: loc, Value: value}, rank: rank})
		}

		slices.SortStableFunc(matches, func(a, b ranked) int {
			return slices.Compare(a.rank, b.rank)
		})
		for _, m := range matches {
			out = append(out, m.result)
		}
	}
	return out, nil
}

// entryPosition returns the traversal position of key in mapping v, or -1.
func entryPosition(v any, key string) int {
	entries, _ := document.Entries(v)
	return slices.IndexFunc(entries, func(e document.Entry) bool { return e.Key == key })
}
