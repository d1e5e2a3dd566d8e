package mapping

import (
	"errors"
	"fmt"
	"reflect"
	"regexp"
	"strings"

	"enricher/internal/property"
)

// FieldPath is a parsed property path such as "Address.Street".
type FieldPath struct {
	Segments []string
}

func (p FieldPath) String() string {
	return strings.Join(p.Segments, ".")
}

// ParsePath parses a dotted property path.
func ParsePath(path string) (FieldPath, error) {
	if path == "" {
		return FieldPath{}, errors.New("empty path")
	}

	var segments []string

	for part := range strings.SplitSeq(path, ".") {
		switch {
		case part == "":
			return FieldPath{}, fmt.Errorf("invalid path %q: empty segment", path)
		case !segmentPattern.MatchString(part):
			return FieldPath{}, fmt.Errorf("invalid path %q: bad segment %q", path, part)
		}

		segments = append(segments, part)
	}

	return FieldPath{Segments: segments}, nil
}

// validatePathAgainstType checks that every segment of path names a field of
// the struct reached so far. Map and interface values end the check since
// their keys are only known at run time.
func validatePathAgainstType(path string, t reflect.Type) error {
	fp, err := ParsePath(path)
	if err != nil {
		return err
	}

	current := t
	for _, seg := range fp.Segments {
		current = property.Base(current)
		if current == nil {
			return fmt.Errorf("nil type while resolving %q", seg)
		}

		switch current.Kind() {
		case reflect.Map, reflect.Interface:
			return nil
		case reflect.Struct:
		default:
			return fmt.Errorf("cannot access field %q on non-struct kind %s", seg, current.Kind())
		}

		fld, ok := property.Describe(current).Field(seg)
		if !ok {
			return fmt.Errorf("field %q not found in %s", seg, current)
		}

		current = fld.Type
	}

	return nil
}

// segmentPattern accepts Go identifiers and json names such as "user-id".
var segmentPattern = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_-]*$`)
