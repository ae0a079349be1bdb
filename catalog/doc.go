// Package catalog holds the fixed mapping from worker archetypes to the
// capability tags they are known to provide.
//
// The catalog is leaf data: it is seeded once at construction, is read-only
// afterwards and has no failure modes. The discovery engine uses it to
// compute capability gaps as a plain set difference and to show the
// reasoning service a closed vocabulary of archetypes, so the model cannot
// invent roles that the factory would later reject.
package catalog
