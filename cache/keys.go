package cache

import (
	"fmt"
	"strconv"
	"strings"
)

// KeySeparator defines the delimiter used between cache key segments.
const KeySeparator = "::"

// defaultKeySerializer implements KeySerializer with deterministic rendering
// of the argument kinds entity keys are built from. Equal inputs always
// produce equal keys across calls and across process restarts.
type defaultKeySerializer struct{}

// NewDefaultKeySerializer creates a new instance of the default key serializer.
func NewDefaultKeySerializer() KeySerializer {
	return &defaultKeySerializer{}
}

// SerializeKey builds a cache key from an entity class and its identifying
// arguments, joined with KeySeparator.
func (s *defaultKeySerializer) SerializeKey(class string, args ...any) string {
	if len(args) == 0 {
		return class
	}

	parts := make([]string, 0, len(args)+1)
	parts = append(parts, class)
	for _, arg := range args {
		parts = append(parts, s.serializeValue(arg))
	}

	return strings.Join(parts, KeySeparator)
}

// serializeValue renders a single argument. Strings pass through untouched so
// domain-composed keys stay readable; everything else gets an unambiguous
// textual form.
func (s *defaultKeySerializer) serializeValue(v any) string {
	switch val := v.(type) {
	case nil:
		return "nil"
	case string:
		return val
	case fmt.Stringer:
		return val.String()
	case bool:
		return strconv.FormatBool(val)
	case int:
		return strconv.Itoa(val)
	case int64:
		return strconv.FormatInt(val, 10)
	case uint64:
		return strconv.FormatUint(val, 10)
	case []string:
		return "slice[" + strconv.Itoa(len(val)) + "]:{" + strings.Join(val, ",") + "}"
	case []byte:
		return string(val)
	default:
		return fmt.Sprintf("%v", val)
	}
}
