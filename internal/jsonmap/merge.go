// Package jsonmap implements patch semantics for JSON-shaped maps.
//
// A patch is applied key by key: nested maps merge recursively, scalars
// and lists replace, and an explicit null deletes the key at that level.
// The null-delete rule holds at every depth, so a nested patch like
// {"secrets": {"token": null}} removes only that one secret.
package jsonmap

// Merge applies patch to base and returns the result. Neither input is
// mutated. A nil base is treated as an empty map.
func Merge(base, patch map[string]any) map[string]any {
	out := make(map[string]any, len(base)+len(patch))
	for k, v := range base {
		out[k] = v
	}
	for k, v := range patch {
		if v == nil {
			delete(out, k)
			continue
		}
		pm, ok := v.(map[string]any)
		if !ok {
			out[k] = v
			continue
		}
		bm, _ := out[k].(map[string]any)
		out[k] = Merge(bm, pm)
	}
	return out
}
