// If you are AI: This file provides the single hashing scheme shared by
// callers that need to turn a resource name (e.g. a topic name) into a
// deterministic, small integer without any coordination — used by the
// control package's TCP loopback fallback to pick a well-known port per
// topic. Package ipc holds cross-cutting helpers shared by the shm, sem,
// and control backends; it has no state and no behavior of its own.
package ipc

import "hash/fnv"

// KeyForName derives a deterministic, non-negative integer from a resource
// name. Collisions are not handled specially: they are astronomically
// unlikely for the small number of named resources a single host's topics
// produce, and a collision would surface as a bind failure or a shape/size
// mismatch on attach, not silent corruption.
func KeyForName(name string) int {
	h := fnv.New32a()
	_, _ = h.Write([]byte(name))
	return int(h.Sum32() & 0x7fffffff)
}
