package docpub

import (
	"bufio"
	"regexp"
	"strings"
)

// DocumentMeta carries metadata extracted from (or overriding) the source.
type DocumentMeta struct {
	Title       string
	Description string
	ModifyDate  string
}

// descriptionPattern matches the authoring convention for page descriptions:
// an HTML comment of the form <!-- description: ... --> near the top of the
// Markdown source.
var descriptionPattern = regexp.MustCompile(`description:\s*(.*?)\s*-->`)

// ExtractTitle returns the text of the first level-1 ATX heading, or "-"
// when the document has none.
func ExtractTitle(markdown string) string {
	scanner := bufio.NewScanner(strings.NewReader(markdown))
	for scanner.Scan() {
		line := scanner.Text()
		if strings.HasPrefix(line, "# ") {
			return strings.TrimSpace(strings.TrimPrefix(line, "# "))
		}
	}
	return "-"
}

// ExtractDescription returns the description from the first
// <!-- description: ... --> comment line, or "-" when absent.
func ExtractDescription(markdown string) string {
	scanner := bufio.NewScanner(strings.NewReader(markdown))
	for scanner.Scan() {
		line := scanner.Text()
		if !strings.HasPrefix(line, "<!--") || !strings.Contains(line, "description:") {
			continue
		}
		if m := descriptionPattern.FindStringSubmatch(line); m != nil {
			desc := strings.TrimSpace(m[1])
			if desc != "" {
				return desc
			}
		}
	}
	return "-"
}
