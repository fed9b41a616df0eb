package codegen

import (
	"slices"

	"github.com/golangsnmp/mibc/internal/resolver"
)

// Index maps OIDs to the modules that define them. It is merged
// incrementally: compiling a module replaces its earlier entries.
type Index struct {
	Meta       IndexMeta           `json:"meta" yaml:"meta"`
	Identity   map[string][]string `json:"identity" yaml:"identity"`
	Enterprise map[string][]string `json:"enterprise" yaml:"enterprise"`
	Compliance map[string][]string `json:"compliance" yaml:"compliance"`
	// Oids holds the shortest OID prefixes that identify each set of
	// defining modules.
	Oids map[string][]string `json:"oids" yaml:"oids"`
}

type IndexMeta struct {
	Comments []string `json:"comments,omitempty" yaml:"comments,omitempty"`
}

func NewIndex() *Index {
	return &Index{
		Identity:   make(map[string][]string),
		Enterprise: make(map[string][]string),
		Compliance: make(map[string][]string),
		Oids:       make(map[string][]string),
	}
}

// Merge adds infos to the index, dropping whatever the index held for
// the same modules before.
func (idx *Index) Merge(infos []*resolver.MibInfo, comments []string) {
	names := make(map[string]bool, len(infos))
	for _, info := range infos {
		names[info.Name] = true
	}
	for _, m := range idx.maps() {
		if *m == nil {
			*m = make(map[string][]string)
		}
		forget(*m, names)
	}

	for _, info := range infos {
		if len(info.Oid) > 0 {
			add(idx.Identity, info.Oid.String(), info.Name)
		}
		if len(info.Enterprise) > 0 {
			add(idx.Enterprise, info.Enterprise.String(), info.Name)
		}
		for _, oid := range info.Compliance {
			add(idx.Compliance, oid, info.Name)
		}
		for _, oid := range info.Oids {
			add(idx.Oids, oid, info.Name)
		}
	}
	idx.Oids = uniquePrefixes(idx.Oids)
	if comments != nil {
		idx.Meta.Comments = comments
	}
}

func (idx *Index) maps() []*map[string][]string {
	return []*map[string][]string{&idx.Identity, &idx.Enterprise, &idx.Compliance, &idx.Oids}
}

func add(m map[string][]string, key, name string) {
	mods := m[key]
	if i, found := slices.BinarySearch(mods, name); !found {
		m[key] = slices.Insert(mods, i, name)
	}
}

func forget(m map[string][]string, names map[string]bool) {
	for key, mods := range m {
		mods = slices.DeleteFunc(mods, func(n string) bool { return names[n] })
		if len(mods) == 0 {
			delete(m, key)
		} else {
			m[key] = mods
		}
	}
}

// uniquePrefixes drops OIDs whose modules are already covered by a
// shorter prefix.
func uniquePrefixes(oids map[string][]string) map[string][]string {
	type entry struct {
		oid  resolver.Oid
		text string
	}
	entries := make([]entry, 0, len(oids))
	for text := range oids {
		oid, err := resolver.ParseOid(text)
		if err != nil {
			continue
		}
		entries = append(entries, entry{oid, text})
	}
	slices.SortFunc(entries, func(a, b entry) int {
		if c := len(a.oid) - len(b.oid); c != 0 {
			return c
		}
		return slices.Compare(a.oid, b.oid)
	})

	out := make(map[string][]string)
	var kept []entry
	for _, e := range entries {
		covered := slices.ContainsFunc(kept, func(k entry) bool {
			return e.oid.HasPrefix(k.oid) && superset(out[k.text], oids[e.text])
		})
		if !covered {
			kept = append(kept, e)
			out[e.text] = oids[e.text]
		}
	}
	return out
}

func superset(have, want []string) bool {
	for _, w := range want {
		if !slices.Contains(have, w) {
			return false
		}
	}
	return true
}
