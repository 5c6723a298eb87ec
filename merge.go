package reactive

// mergeWire composes two JSON-shaped wire values, keeping everything the
// strong side sets while filling gaps from the weak side. Objects merge
// recursively; every other kind is replaced wholesale by the strong side.
func mergeWire(strong, weak any) any {
	if strong == nil {
		return cloneWire(weak)
	}
	strongMap, strongOK := strong.(map[string]any)
	weakMap, weakOK := weak.(map[string]any)
	if !strongOK || !weakOK {
		return cloneWire(strong)
	}

	merged := make(map[string]any, len(weakMap)+len(strongMap))
	for key, value := range weakMap {
		merged[key] = cloneWire(value)
	}
	for key, value := range strongMap {
		if existing, ok := merged[key]; ok {
			merged[key] = mergeWire(value, existing)
			continue
		}
		merged[key] = cloneWire(value)
	}
	return merged
}

// cloneWire deep-copies a JSON-shaped value so merged results never alias
// stored state.
func cloneWire(value any) any {
	switch typed := value.(type) {
	case map[string]any:
		out := make(map[string]any, len(typed))
		for key, entry := range typed {
			out[key] = cloneWire(entry)
		}
		return out
	case []any:
		out := make([]any, len(typed))
		for i, entry := range typed {
			out[i] = cloneWire(entry)
		}
		return out
	default:
		return typed
	}
}
