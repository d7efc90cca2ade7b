// Package translation provides the LLM-backed translation providers used
// by the reference backend. Providers answer in JSON, and their output is
// stripped of markup before it reaches a page. Results can be cached in
// memory and a secondary provider can serve as fallback.
package translation
