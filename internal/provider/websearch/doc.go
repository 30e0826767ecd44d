// Package websearch implements the web search provider client against
// the Custom Search JSON API.
//
// The API caps each request at 10 results and reports the estimated
// total match count as a decimal string, not a number; Response keeps
// the string form and exposes a parsed accessor. Optional search
// refinements (site restriction, file type, date window) are sent only
// when set, because the API treats an empty parameter differently from
// an absent one.
package websearch
