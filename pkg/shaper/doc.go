/*
Package shaper prepares Arabic-script text for renderers without a shaping
engine.

A logical-order string runs through a fixed pipeline:

  - Combine fuses mark sequences into precomposed letters that Unicode
    normalization leaves alone,
  - Join replaces every joinable letter by its contextual presentation form,
  - Ligature substitutes the obligatory LAM+ALEF ligatures,
  - Reorder turns logical order into left-to-right drawing order,
  - Mirror swaps paired brackets and comparators for the reversed text.

[Shape] applies all stages after NFKC normalization. Each stage is exported
and can be used on its own. All functions are pure and safe for concurrent
use; the lookup tables are built at package initialization and never
modified afterwards.
*/
package shaper

import (
	"github.com/npillmayer/schuko/tracing"
)

// tracer writes to trace with key 'arshape.shaper'
func tracer() tracing.Trace {
	return tracing.Select("arshape.shaper")
}
