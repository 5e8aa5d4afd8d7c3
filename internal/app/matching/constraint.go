package matching

import (
	"fmt"
	"regexp"
)

const (
	fmtLen   = "_length_"
	fmtRegex = "_regex_"
)

// constraint is a single expectation on the produced message. Path is the
// pact style path used in reports and matching rules; query is the jsonpath
// expression that selects the actual value.
type constraint struct {
	Path   string
	Query  string
	Values []interface{}
	Format string
}

func (c constraint) check(actualValue interface{}) error {
	switch c.Format {
	case fmtLen:
		if len(c.Values) != 1 {
			return fmt.Errorf(
				"expected single positive integer value for path %q length constraint, but there are %v expected values",
				c.Path, len(c.Values))
		}
		expected, ok := c.Values[0].(int)
		if !ok || expected < 0 {
			return fmt.Errorf("expected value for %q length constraint must be a positive integer", c.Path)
		}

		actualSlice, ok := actualValue.([]interface{})
		if !ok {
			return fmt.Errorf("value at path %q must be an array due to length constraint", c.Path)
		}
		if expected != len(actualSlice) {
			return fmt.Errorf("value of length %v at path %q does not match length constraint %v",
				len(actualSlice), c.Path, expected)
		}
		return nil
	case fmtRegex:
		pattern, ok := c.Values[0].(string)
		if !ok {
			return fmt.Errorf("regex matching rule for path %q is not a string", c.Path)
		}
		regex, err := regexp.Compile(pattern)
		if err != nil {
			return fmt.Errorf("regex matching rule %q for path %q cannot be compiled: %s", pattern, c.Path, err)
		}
		actual := fmt.Sprintf("%v", actualValue)
		if !regex.MatchString(actual) {
			return fmt.Errorf("value %q at path %q does not match regex %q", actual, c.Path, pattern)
		}
		return nil
	}

	expected := fmt.Sprintf(c.Format, c.Values...)
	actual := fmt.Sprintf("%v", actualValue)
	if expected != actual {
		return fmt.Errorf("value %q at path %q does not match constraint %q", actual, c.Path, expected)
	}
	return nil
}
