package parser

import "fmt"

// Option keys interpreted by the resolver rather than by parsers.
const (
	OptionSourceBucket = "sourceBucket"
	OptionSourcePath   = "sourcePath"
)

// Options is the open-ended bag of values handed to a parser. Values are
// strings, float64 numbers, bools, []any or nested map[string]any.
type Options map[string]any

// String returns the value of key when it holds a string.
func (o Options) String(key string) (string, bool) {
	v, ok := o[key]
	if !ok {
		return "", false
	}
	s, ok := v.(string)
	return s, ok
}

// Bool returns the value of key when it holds a bool.
func (o Options) Bool(key string) (bool, bool) {
	v, ok := o[key]
	if !ok {
		return false, false
	}
	b, ok := v.(bool)
	return b, ok
}

// Merge returns a new bag containing defaults overlaid by o. Neither input is
// modified.
func (o Options) Merge(defaults Options) Options {
	out := make(Options, len(defaults)+len(o))
	for k, v := range defaults {
		out[k] = v
	}
	for k, v := range o {
		out[k] = v
	}
	return out
}

// RemoteHints returns the remote source hints when both are present.
func (o Options) RemoteHints() (bucket, path string, ok bool) {
	bucket, hasBucket := o.String(OptionSourceBucket)
	path, hasPath := o.String(OptionSourcePath)
	if !hasBucket || !hasPath || bucket == "" || path == "" {
		return "", "", false
	}
	return bucket, path, true
}

// FromMap converts a decoded map into Options, rejecting values that are not
// part of the options value space.
func FromMap(m map[string]any) (Options, error) {
	out := make(Options, len(m))
	for k, v := range m {
		if err := checkValue(v); err != nil {
			return nil, fmt.Errorf("option '%s': %w", k, err)
		}
		out[k] = v
	}
	return out, nil
}

func checkValue(v any) error {
	switch t := v.(type) {
	case nil, string, bool, float64, int, int64:
		return nil
	case []any:
		for _, e := range t {
			if err := checkValue(e); err != nil {
				return err
			}
		}
		return nil
	case map[string]any:
		for k, e := range t {
			if err := checkValue(e); err != nil {
				return fmt.Errorf("in key '%s': %w", k, err)
			}
		}
		return nil
	default:
		return fmt.Errorf("unsupported value type %T", v)
	}
}
