package chunks

import "strings"

// Filter keeps the chunks containing any of keywords, ignoring case.
func Filter(chunks []string, keywords []string) []string {
	lowered := make([]string, 0, len(keywords))
	for _, keyword := range keywords {
		if keyword == "" {
			continue
		}
		lowered = append(lowered, strings.ToLower(keyword))
	}
	ret := []string{}
	if len(lowered) == 0 {
		return ret
	}
	for _, chunk := range chunks {
		lower := strings.ToLower(chunk)
		for _, keyword := range lowered {
			if strings.Contains(lower, keyword) {
				ret = append(ret, chunk)
				break
			}
		}
	}
	return ret
}
