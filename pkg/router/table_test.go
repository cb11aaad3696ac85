package router

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestTableDiff(t *testing.T) {
	prev := Table{
		"/keep":    {Path: "/keep", Module: "r.keep", Revision: 1},
		"/bumped":  {Path: "/bumped", Module: "r.bumped", Revision: 2},
		"/moved":   {Path: "/moved", Module: "r.moved", Revision: 3},
		"/removed": {Path: "/removed", Module: "r.removed", Revision: 4},
	}
	next := Table{
		"/keep":   {Path: "/keep", Module: "r.keep", Revision: 1},
		"/bumped": {Path: "/bumped", Module: "r.bumped", Revision: 9},
		"/moved":  {Path: "/moved", Module: "r.moved.index", Revision: 3},
		"/b":      {Path: "/b", Module: "r.b", Revision: 5},
		"/a":      {Path: "/a", Module: "r.a", Revision: 6},
	}

	d := prev.Diff(next)

	assert.Equal(t, []string{"/a", "/b"}, paths(d.Added))
	assert.Equal(t, []string{"/removed"}, paths(d.Removed))
	assert.Equal(t, []string{"/bumped", "/moved"}, paths(d.Changed))
	assert.Equal(t, uint64(9), d.Changed[0].Revision, "changed holds the new route")
	assert.Equal(t, 5, d.Len())
	assert.False(t, d.Empty())
}

func TestTableDiffIdentical(t *testing.T) {
	tbl := Table{"/a": {Path: "/a", Module: "r.a", Revision: 1}}
	assert.True(t, tbl.Diff(tbl.Clone()).Empty())
	assert.True(t, Table{}.Diff(Table{}).Empty())
}

func TestTableRoutesSorted(t *testing.T) {
	tbl := Table{
		"/z": {Path: "/z"},
		"/":  {Path: "/"},
		"/m": {Path: "/m"},
	}
	assert.Equal(t, []string{"/", "/m", "/z"}, paths(tbl.Routes()))
}

func paths(routes []Route) []string {
	out := make([]string, 0, len(routes))
	for _, r := range routes {
		out = append(out, r.Path)
	}
	return out
}
