package router

import "sort"

// Table maps route paths to the routes bound there.
type Table map[string]Route

// Diff lists what changed between two tables. Each list is sorted by path.
type Diff struct {
	Added   []Route
	Removed []Route

	// Changed holds the new version of routes whose module or module
	// revision differs.
	Changed []Route
}

// Empty reports whether the diff has no entries.
func (d Diff) Empty() bool {
	return len(d.Added) == 0 && len(d.Removed) == 0 && len(d.Changed) == 0
}

// Len returns the total number of entries.
func (d Diff) Len() int {
	return len(d.Added) + len(d.Removed) + len(d.Changed)
}

// Diff compares t with next by route path.
func (t Table) Diff(next Table) Diff {
	var d Diff
	for path, route := range next {
		prev, ok := t[path]
		switch {
		case !ok:
			d.Added = append(d.Added, route)
		case prev.Module != route.Module || prev.Revision != route.Revision:
			d.Changed = append(d.Changed, route)
		}
	}
	for path, route := range t {
		if _, ok := next[path]; !ok {
			d.Removed = append(d.Removed, route)
		}
	}
	sortRoutes(d.Added)
	sortRoutes(d.Removed)
	sortRoutes(d.Changed)
	return d
}

// Routes returns the routes sorted by path.
func (t Table) Routes() []Route {
	routes := make([]Route, 0, len(t))
	for _, r := range t {
		routes = append(routes, r)
	}
	sortRoutes(routes)
	return routes
}

// Clone returns a shallow copy of t.
func (t Table) Clone() Table {
	out := make(Table, len(t))
	for k, v := range t {
		out[k] = v
	}
	return out
}

func sortRoutes(routes []Route) {
	sort.Slice(routes, func(i, j int) bool {
		return routes[i].Path < routes[j].Path
	})
}
