package formula

import "regexp"

// variableToken matches a single cell reference ("B7") or a range reference
// ("A1_C3", with "_" as the separator). The range alternative is listed
// first so it wins at any position where both could start, though in
// practice the underscore glues the two endpoints into one \w run, so a bare
// single-cell match can never begin inside a range token's boundary.
var variableToken = regexp.MustCompile(`\b[A-Z]+[0-9]+_[A-Z]+[0-9]+\b|\b[A-Z]+[0-9]+\b`)

// extractVariables yields every textual variable reference in src, each
// either a single cell or a range token, deduplicated and in first-seen
// order. Order is never semantically significant to recomputation, but a
// stable order keeps behavior deterministic and tests readable.
func extractVariables(src string) []string {
	matches := variableToken.FindAllString(src, -1)
	seen := make(map[string]struct{}, len(matches))
	out := make([]string, 0, len(matches))
	for _, m := range matches {
		if _, ok := seen[m]; ok {
			continue
		}
		seen[m] = struct{}{}
		out = append(out, m)
	}
	return out
}
