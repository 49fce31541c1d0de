// Package language normalizes configured language values into the BCP-47
// style tags the AI service expects. Users write "portuguese", "por", or
// "pt-br" in the config; the pipeline speaks "pt" and "pt-BR".
package language

import "strings"

type entry struct {
	code2   string
	code3   string
	alt3    string
	display string
	word    string
}

var languages = []entry{
	{"en", "eng", "", "English", "english"},
	{"es", "spa", "", "Spanish", "spanish"},
	{"fr", "fra", "fre", "French", "french"},
	{"de", "deu", "ger", "German", "german"},
	{"it", "ita", "", "Italian", "italian"},
	{"pt", "por", "", "Portuguese", "portuguese"},
	{"ja", "jpn", "", "Japanese", "japanese"},
	{"ko", "kor", "", "Korean", "korean"},
	{"zh", "zho", "chi", "Chinese", "chinese"},
	{"ru", "rus", "", "Russian", "russian"},
	{"ar", "ara", "", "Arabic", "arabic"},
	{"hi", "hin", "", "Hindi", "hindi"},
	{"nl", "nld", "dut", "Dutch", "dutch"},
	{"pl", "pol", "", "Polish", "polish"},
	{"sv", "swe", "", "Swedish", "swedish"},
	{"da", "dan", "", "Danish", "danish"},
	{"no", "nor", "", "Norwegian", "norwegian"},
	{"fi", "fin", "", "Finnish", "finnish"},
}

var byAlias = func() map[string]*entry {
	index := make(map[string]*entry, len(languages)*3)
	for i := range languages {
		e := &languages[i]
		index[e.code2] = e
		index[e.code3] = e
		if e.alt3 != "" {
			index[e.alt3] = e
		}
		index[e.word] = e
	}
	return index
}()

// Normalize canonicalizes a configured language value. Full names and
// three-letter codes map to their two-letter form; a region subtag is kept
// and uppercased ("pt-br" becomes "pt-BR"). Unrecognized values pass through
// lowercased so the remote service can still try them.
func Normalize(value string) string {
	value = strings.ToLower(strings.TrimSpace(value))
	if value == "" {
		return ""
	}
	base, region, hasRegion := strings.Cut(strings.ReplaceAll(value, "_", "-"), "-")
	if e, ok := byAlias[base]; ok {
		base = e.code2
	}
	if !hasRegion {
		return base
	}
	return base + "-" + strings.ToUpper(region)
}

// DisplayName returns a human-readable name for a normalized tag, keeping
// the region as a suffix. Unrecognized bases are uppercased verbatim.
func DisplayName(tag string) string {
	normalized := Normalize(tag)
	if normalized == "" {
		return "Unknown"
	}
	base, region, hasRegion := strings.Cut(normalized, "-")
	name := strings.ToUpper(base)
	if e, ok := byAlias[base]; ok {
		name = e.display
	}
	if hasRegion {
		return name + " (" + region + ")"
	}
	return name
}
