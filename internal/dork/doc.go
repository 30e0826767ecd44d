// Package dork holds the curated search query templates and the logic
// to select and render them for a target.
//
// A template is a search engine query pattern with placeholders, tagged
// with a category, an investigative objective, and a priority. Priority
// filtering is inclusive: asking for medium-priority templates also
// returns the high-priority ones, because a narrower investigation
// should never silently drop the most valuable queries. Rendering
// substitutes the target values into the placeholders; placeholders
// with no value render as empty strings.
package dork
