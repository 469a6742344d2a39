// Package curated implements a pattern-based error type for debugito.
//
// Curated errors are created with Errorf(). This is similar to fmt.Errorf()
// but keeps the pattern string around so that callers can later ask whether
// a particular error in a chain was produced by a specific call site,
// without resorting to string matching on the formatted message.
//
//	err := curated.Errorf("no binary loaded")
//	if curated.Is(err, "no binary loaded") {
//		...
//	}
package curated

import (
	"fmt"
	"strings"
)

// curated is the concrete error type. It satisfies the error interface.
type curated struct {
	pattern string
	values  []interface{}
}

// Errorf creates a new curated error. Unlike fmt.Errorf, the first argument
// is named "pattern" because it is also used as the comparison key in Is()
// and Has().
func Errorf(pattern string, values ...interface{}) error {
	return curated{pattern: pattern, values: values}
}

// Error returns the normalised error message. Normalisation drops the
// first ": "-separated message part when the second part repeats it, as
// tends to happen when curated errors wrap one another with "%w"-style
// formatting; later repeated parts are left as they are.
func (e curated) Error() string {
	s := fmt.Errorf(e.pattern, e.values...).Error()

	p := strings.SplitN(s, ": ", 3)
	if len(p) > 1 && p[0] == p[1] {
		return strings.Join(p[1:], ": ")
	}
	return strings.Join(p, ": ")
}

// Unwrap supports errors.Is/As for any wrapped error values.
func (e curated) Unwrap() error {
	for _, v := range e.values {
		if err, ok := v.(error); ok {
			return err
		}
	}
	return nil
}

// IsAny reports whether err was created by Errorf.
func IsAny(err error) bool {
	if err == nil {
		return false
	}
	_, ok := err.(curated)
	return ok
}

// Is reports whether err is a curated error created with the given pattern.
func Is(err error, pattern string) bool {
	if err == nil {
		return false
	}
	if e, ok := err.(curated); ok {
		return e.pattern == pattern
	}
	return false
}

// Has reports whether pattern occurs anywhere in err's curated chain.
func Has(err error, pattern string) bool {
	if err == nil || !IsAny(err) {
		return false
	}
	if Is(err, pattern) {
		return true
	}
	for _, v := range err.(curated).values {
		if e, ok := v.(curated); ok {
			if Has(e, pattern) {
				return true
			}
		}
	}
	return false
}
