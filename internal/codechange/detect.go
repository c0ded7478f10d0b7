// Package codechange classifies a before/after code pair into short tags.
//
// Detection is heuristic: each predicate is a regular expression over raw
// text, not a parser. Callers only depend on Classify and FormatDiff.
package codechange

import "regexp"

var (
	functionDefs = []*regexp.Regexp{
		regexp.MustCompile(`def\s+(\w+)\s*\(`),
		regexp.MustCompile(`func\s+(?:\([^)]*\)\s*)?(\w+)\s*[\[(]`),
		regexp.MustCompile(`function\s+(\w+)\s*\(`),
	}
	classDefs = []*regexp.Regexp{
		regexp.MustCompile(`class\s+(\w+)`),
		regexp.MustCompile(`type\s+(\w+)\s+(?:struct|interface)\b`),
	}
	importRe   = regexp.MustCompile(`import\s+\w+|from\s+\w+\s+import|import\s*\(|import\s+"|require\(`)
	apiRe      = regexp.MustCompile(`(?i)api|endpoint|route|request|response`)
	databaseRe = regexp.MustCompile(`(?i)database|db|sql|query|table|model`)
	uiRe       = regexp.MustCompile(`(?i)ui|component|render|display|button|form|input`)
	fileNameRe = regexp.MustCompile("['\"`]([^'\"`]*\\.(?:py|js|ts|jsx|tsx|html|css|json|md|go))['\"`]")
)

func matchAny(res []*regexp.Regexp, code string) bool {
	for _, re := range res {
		if re.MatchString(code) {
			return true
		}
	}
	return false
}

// ContainsFunction reports whether code defines a function.
func ContainsFunction(code string) bool { return matchAny(functionDefs, code) }

// ContainsClass reports whether code defines a class or named struct/interface type.
func ContainsClass(code string) bool { return matchAny(classDefs, code) }

// ContainsImport reports whether code has an import-style statement.
func ContainsImport(code string) bool { return importRe.MatchString(code) }

// ContainsAPI reports API vocabulary, case-insensitively.
func ContainsAPI(code string) bool { return apiRe.MatchString(code) }

// ContainsDatabase reports database vocabulary, case-insensitively.
func ContainsDatabase(code string) bool { return databaseRe.MatchString(code) }

// ContainsUI reports UI vocabulary, case-insensitively.
func ContainsUI(code string) bool { return uiRe.MatchString(code) }

// FunctionNames returns the names of every function definition in code, in
// source order across the supported syntaxes.
func FunctionNames(code string) []string {
	return submatches(functionDefs, code)
}

// ClassNames returns the names of every class or struct/interface definition.
func ClassNames(code string) []string {
	return submatches(classDefs, code)
}

// FileNames returns quoted file names with a known source or doc extension.
func FileNames(code string) []string {
	return submatches([]*regexp.Regexp{fileNameRe}, code)
}

func submatches(res []*regexp.Regexp, code string) []string {
	var out []string
	for _, re := range res {
		for _, m := range re.FindAllStringSubmatch(code, -1) {
			out = append(out, m[1])
		}
	}
	return out
}
