// Package matching holds the default content matcher used to decide whether a
// message produced by the provider satisfies a pact interaction.
package matching

import (
	"encoding/json"
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/PaesslerAG/jsonpath"
	"github.com/form3tech-oss/pact-message-verifier/internal/app/verifier"
	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"
)

// MismatchError lists every way a produced message differs from the
// expected one.
type MismatchError struct {
	Violations []string
}

func (e *MismatchError) Error() string {
	return "message does not match:\n" + strings.Join(e.Violations, "\n")
}

// Matcher compares produced messages with pact interactions. Every leaf of
// the expected contents becomes an equality constraint unless a matching
// rule covers it; arrays must also have the expected length.
type Matcher struct{}

func New() *Matcher {
	return &Matcher{}
}

func (m *Matcher) Match(expected verifier.Interaction, actual verifier.Message) error {
	definition := map[string]interface{}{}
	if len(expected.Raw) > 0 {
		if err := json.Unmarshal(expected.Raw, &definition); err != nil {
			return errors.Wrap(err, "unable to parse interaction definition")
		}
	}

	if len(expected.Contents) == 0 {
		log.Infof("'%s' has no expected contents, nothing to match", expected.Description)
		return nil
	}

	var expectedContents interface{}
	if err := json.Unmarshal(expected.Contents, &expectedContents); err != nil {
		return errors.Wrap(err, "unable to parse expected contents")
	}

	actualContents, err := normalise(actual.Contents)
	if err != nil {
		return errors.Wrap(err, "unable to read produced message contents")
	}
	document := map[string]interface{}{"contents": actualContents}

	rules := getContentsMatchingRules(definition)
	constraints := addConstraints(contentsPath, `$["contents"]`, rules, expectedContents, nil)

	violations := make([]string, 0)
	for _, c := range constraints {
		val, err := jsonpath.Get(c.Query, document)
		if err != nil {
			violations = append(violations, fmt.Sprintf("no value at path '%s'", c.Path))
			continue
		}
		if err := c.check(val); err != nil {
			violations = append(violations, err.Error())
		}
	}
	violations = append(violations, matchMetadata(expected.MetaData, actual.Metadata)...)

	if len(violations) > 0 {
		return &MismatchError{Violations: violations}
	}
	return nil
}

// normalise turns the produced contents into the generic form produced by
// encoding/json so that structs and maps compare alike.
func normalise(contents interface{}) (interface{}, error) {
	data, err := json.Marshal(contents)
	if err != nil {
		return nil, err
	}
	var result interface{}
	if err := json.Unmarshal(data, &result); err != nil {
		return nil, err
	}
	return result, nil
}

func addConstraints(path, query string, rules matchingRules, value interface{}, constraints []constraint) []constraint {
	if regex, covered := rules.lookup(path); covered {
		if regex != "" {
			constraints = append(constraints, constraint{Path: path, Query: query, Format: fmtRegex, Values: []interface{}{regex}})
		}
		return constraints
	}

	switch val := value.(type) {
	case map[string]interface{}:
		if _, exists := val["json_class"]; exists {
			return constraints
		}
		keys := make([]string, 0, len(val))
		for k := range val {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		for _, k := range keys {
			constraints = addConstraints(path+"."+k, query+"["+strconv.Quote(k)+"]", rules, val[k], constraints)
		}
	case []interface{}:
		constraints = append(constraints, constraint{Path: path, Query: query, Format: fmtLen, Values: []interface{}{len(val)}})
		for i, item := range val {
			index := fmt.Sprintf("[%d]", i)
			constraints = addConstraints(path+index, query+index, rules, item, constraints)
		}
	default:
		constraints = append(constraints, constraint{Path: path, Query: query, Format: "%v", Values: []interface{}{val}})
	}
	return constraints
}

// matchMetadata compares expected metadata with what the provider produced.
// Providers that produce no metadata at all are not checked.
func matchMetadata(expected, actual map[string]interface{}) []string {
	if len(actual) == 0 {
		return nil
	}

	keys := make([]string, 0, len(expected))
	for k := range expected {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var violations []string
	for _, k := range keys {
		actualValue, ok := actual[k]
		if !ok {
			violations = append(violations, fmt.Sprintf("metadata '%s' is missing", k))
			continue
		}
		if fmt.Sprintf("%v", expected[k]) != fmt.Sprintf("%v", actualValue) {
			violations = append(violations, fmt.Sprintf("metadata '%s' is '%v' but expected '%v'", k, actualValue, expected[k]))
		}
	}
	return violations
}
