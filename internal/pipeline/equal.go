package pipeline

import "reflect"

// structuralEqual implements the change-detect stage's structural equality
// check: deep, value-based comparison rather than pointer identity, since
// payloads are typically maps/structs rebuilt on every call.
func structuralEqual(a, b any) bool {
	return reflect.DeepEqual(a, b)
}
