// Package extractors converts raw document bytes into plain text.
//
// Each format lives in its own sub-package implementing
// driven.Extractor; the Registry selects by declared MIME type with a
// priority tiebreak and degrades to a best-effort byte decode when no
// extractor matches or the matched one fails. Extraction never loses a
// document: the worst case is lower-fidelity text, not an error.
package extractors
