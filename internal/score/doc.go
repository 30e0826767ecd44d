// Package score turns collected intelligence signals into a threat
// score. The engine is pure: it does no I/O and depends only on the
// signal values handed to it, so every tier boundary is directly
// testable.
//
// Each target kind has its own additive tier table. A signal that was
// never collected contributes nothing and is excluded from the
// confidence calculation, which reports the fraction of relevant
// signal sources that were actually present.
package score
