// Package domain contains the vocabulary entities and the pure rules that govern
// them: word normalization, the bounded encounter ring, and the hit-point state
// machine that moves an entry between the active set and the mastered registry.
//
// Nothing here touches storage or the clock. Day numbers and timestamps are
// always passed in by the caller.
package domain
