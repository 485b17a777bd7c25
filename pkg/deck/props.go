package deck

import (
	"fmt"
	"maps"
)

// Props is the property bag an engine object is constructed from.
type Props map[string]any

// Clone returns a shallow copy of the bag.
func (p Props) Clone() Props {
	if p == nil {
		return Props{}
	}
	return maps.Clone(p)
}

// String returns the string value stored under key.
func (p Props) String(key string) (string, bool) {
	v, ok := p[key].(string)
	return v, ok
}

// Bool returns the bool value stored under key.
func (p Props) Bool(key string) (bool, bool) {
	v, ok := p[key].(bool)
	return v, ok
}

// Float returns the numeric value stored under key as float64.
// Integer values decoded from scene files are accepted.
func (p Props) Float(key string) (float64, bool) {
	switch v := p[key].(type) {
	case float64:
		return v, true
	case float32:
		return float64(v), true
	case int:
		return float64(v), true
	case int64:
		return float64(v), true
	case uint64:
		return float64(v), true
	}
	return 0, false
}

// checkCommon validates the props every engine object shares.
func checkCommon(class string, p Props) error {
	if v, ok := p["id"]; ok {
		if _, isString := v.(string); !isString {
			return fmt.Errorf("%s: prop id must be a string, got %T", class, v)
		}
	}
	for _, key := range []string{"visible", "pickable"} {
		if v, ok := p[key]; ok {
			if _, isBool := v.(bool); !isBool {
				return fmt.Errorf("%s: prop %s must be a bool, got %T", class, key, v)
			}
		}
	}
	if _, ok := p["opacity"]; ok {
		o, isNum := p.Float("opacity")
		if !isNum {
			return fmt.Errorf("%s: prop opacity must be a number, got %T", class, p["opacity"])
		}
		if o < 0 || o > 1 {
			return fmt.Errorf("%s: prop opacity %v out of range [0, 1]", class, o)
		}
	}
	return nil
}
