package resolver

import "fmt"

// Error is a resolution failure: fetching a remote module did not succeed.
type Error struct {
	Key    Key
	Object string
	Err    error
}

func (e *Error) Error() string {
	if e.Object == "" {
		return fmt.Sprintf("resolve module %s: %v", e.Key, e.Err)
	}
	return fmt.Sprintf("resolve module %s: fetch %s: %v", e.Key, e.Object, e.Err)
}

func (e *Error) Unwrap() error {
	return e.Err
}
