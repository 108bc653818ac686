package toolconf

import "sync"

// Provenance records which source last set each path of a loaded configuration.
type Provenance struct {
	Fields []FieldProvenance
}

// FieldProvenance describes where a path's value came from.
type FieldProvenance struct {
	Path       string // Dump path (e.g., "toolbox[request].tool[math].class")
	SourceName string // Source identifier (e.g., "file:tools.yaml")
}

// Source returns the source that set path.
func (p *Provenance) Source(path string) (string, bool) {
	if p == nil {
		return "", false
	}
	for _, f := range p.Fields {
		if f.Path == path {
			return f.SourceName, true
		}
	}
	return "", false
}

var provenanceStore sync.Map

// GetProvenance returns provenance metadata for a configuration returned by
// Loader.Load or Loader.Merge. Thread-safe.
func GetProvenance(cfg *FactoryConfiguration) (*Provenance, bool) {
	if cfg == nil {
		return nil, false
	}

	value, ok := provenanceStore.Load(cfg)
	if !ok {
		return nil, false
	}

	prov, ok := value.(*Provenance)
	return prov, ok
}

func storeProvenance(cfg *FactoryConfiguration, prov *Provenance) {
	if cfg != nil && prov != nil {
		provenanceStore.Store(cfg, prov)
	}
}

func deleteProvenance(cfg *FactoryConfiguration) {
	if cfg != nil {
		provenanceStore.Delete(cfg)
	}
}

// tracker accumulates the last source seen for every path while merging.
type tracker map[string]string

func (t tracker) record(cfg *FactoryConfiguration, sourceName string) {
	for _, e := range flatten(cfg) {
		t[e.path] = sourceName
	}
}

// provenance keeps only the paths still present in merged, in dump order.
// A replaced tool drops paths set by earlier sources.
func (t tracker) provenance(merged *FactoryConfiguration) *Provenance {
	prov := &Provenance{}
	for _, e := range flatten(merged) {
		if name, ok := t[e.path]; ok {
			prov.Fields = append(prov.Fields, FieldProvenance{Path: e.path, SourceName: name})
		}
	}
	return prov
}
