package layers

// MemoryProvider is a headless provider backed by a map, used by tests and by
// callers that build features in code.
type MemoryProvider map[string][]Feature

func (m MemoryProvider) Features(layer string) ([]Feature, error) {
	fs := m[layer]
	out := make([]Feature, len(fs))
	copy(out, fs)
	for i := range out {
		if out[i].Fid == 0 {
			out[i].Fid = i + 1
		}
	}
	return out, nil
}
