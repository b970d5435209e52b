package output

import (
	"regexp"
	"sync"

	"github.com/arthur-debert/repatch/pkg/output/styles"
)

var (
	tagMu       sync.Mutex
	tagPatterns = map[string]*regexp.Regexp{}
)

func tagPattern(name string) *regexp.Regexp {
	tagMu.Lock()
	defer tagMu.Unlock()
	if re, ok := tagPatterns[name]; ok {
		return re
	}
	re := regexp.MustCompile(`(?s)<` + regexp.QuoteMeta(name) + `>(.*?)</` + regexp.QuoteMeta(name) + `>`)
	tagPatterns[name] = re
	return re
}

// ExpandTags replaces <Name>text</Name> with text rendered in the Name style.
// Tags that are not registered styles are left alone, so angle brackets in
// file content survive. Tags do not nest.
func ExpandTags(text string) string {
	result := text
	for _, name := range styles.Names() {
		style := styles.GetStyle(name)
		pattern := tagPattern(name)
		result = pattern.ReplaceAllStringFunc(result, func(match string) string {
			submatch := pattern.FindStringSubmatch(match)
			if len(submatch) != 2 {
				return match
			}
			return style.Render(submatch[1])
		})
	}
	return result
}

// StripTags removes registered style tags, keeping their content
func StripTags(text string) string {
	result := text
	for _, name := range styles.Names() {
		result = tagPattern(name).ReplaceAllString(result, "${1}")
	}
	return result
}
