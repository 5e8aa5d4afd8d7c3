package matching

import (
	"regexp"
	"strings"
)

const contentsPath = "$.contents"

var arrayIndex = regexp.MustCompile(`\[\d+\]`)

// matchingRules maps a contents path to the regex it must satisfy. An empty
// regex marks a path whose value is matched by type and is not compared.
type matchingRules map[string]string

// getContentsMatchingRules collects the rules that apply to the message
// contents. It understands v2 style rules ( "$.contents.data.id": { "regex": "<exp>" } ),
// which older pacts also write with a "$.body" prefix, and v3 style rules
// ( "content": { "$.data.id": { "matchers": [...] } } ).
func getContentsMatchingRules(definition map[string]interface{}) matchingRules {
	rules := matchingRules{}
	raw, ok := definition["matchingRules"].(map[string]interface{})
	if !ok {
		return rules
	}

	for k, v := range raw {
		switch {
		case strings.HasPrefix(k, contentsPath):
			rules[k] = getRegex(v)
		case strings.HasPrefix(k, "$.body"):
			rules[contentsPath+strings.TrimPrefix(k, "$.body")] = getRegex(v)
		case k == "content" || k == "body":
			properties, ok := v.(map[string]interface{})
			if !ok {
				continue
			}
			for property, rule := range properties {
				path := strings.TrimPrefix(strings.TrimPrefix(property, "$"), ".")
				if path == "" {
					rules[contentsPath] = getRegex(rule)
					continue
				}
				if !strings.HasPrefix(path, "[") {
					path = "." + path
				}
				rules[contentsPath+path] = getRegex(rule)
			}
		}
	}
	return rules
}

func getRegex(rule interface{}) string {
	val, ok := rule.(map[string]interface{})
	if !ok {
		return ""
	}
	if regex, ok := val["regex"].(string); ok {
		return regex
	}

	matchers, ok := val["matchers"].([]interface{})
	if !ok {
		return ""
	}
	for _, matcher := range matchers {
		m, ok := matcher.(map[string]interface{})
		if !ok {
			continue
		}
		if match, _ := m["match"].(string); match != "regex" {
			continue
		}
		if regex, ok := m["regex"].(string); ok {
			return regex
		}
	}
	return ""
}

// lookup reports whether path is governed by a matching rule, either its own
// or one of an enclosing object or array. Only a rule on path itself yields a
// regex.
func (r matchingRules) lookup(path string) (string, bool) {
	wildcard := arrayIndex.ReplaceAllString(path, "[*]")
	for _, candidate := range []string{path, wildcard} {
		if regex, ok := r[candidate]; ok {
			return regex, true
		}
	}

	for rulePath := range r {
		for _, candidate := range []string{path, wildcard} {
			if strings.HasPrefix(candidate, rulePath+".") || strings.HasPrefix(candidate, rulePath+"[") {
				return "", true
			}
		}
	}
	return "", false
}
