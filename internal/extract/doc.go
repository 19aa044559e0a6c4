// Package extract finds identifier codes in recognized text.
//
// Recognized text is first normalized: glyphs the engine confuses with
// digits or separators are replaced (O and o become 0; bars, brackets and
// slashes become "-"). The ordered code patterns are then tried in turn and
// the first pattern that matches anywhere decides the candidate.
//
// Codes whose raw match is 13 characters long are regrouped into the
// canonical AA-BBBBBB-CC-D form; all other codes are kept as matched.
package extract
