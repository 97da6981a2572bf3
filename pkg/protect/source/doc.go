// Package source builds protect rules from declarative YAML
// configuration and hot-reloads them when the file changes.
//
// Engines are immutable, so a reload produces a fresh rule set for the
// caller to swap in (typically by constructing a new engine or holding
// the current one behind an atomic pointer); in-flight Protect calls
// finish against the rules they started with.
package source
