package configs

import (
	"errors"
	"fmt"
	"iter"
	"time"
)

// First returns the first value at path, or the zero value if no file defines it.
// A value that fails to decode into T panics; the schema should have rejected it.
func First[T any](loader Loader, path string) T {
	var value T
	if err := loader.AssignFirst(path, &value); err != nil {
		if errors.Is(err, ErrValueNotFound) {
			return value
		}
		panic(err)
	}
	return value
}

// FirstDuration reads a duration string such as "90s" at path.
func FirstDuration(loader Loader, path string) time.Duration {
	str := First[string](loader, path)
	if str == "" {
		return 0
	}
	d, err := time.ParseDuration(str)
	if err != nil {
		panic(fmt.Errorf("config %s: %w", path, err))
	}
	return d
}

func All[T any](loader Loader, path string) iter.Seq[T] {
	return func(yield func(T) bool) {
		for value, err := range loader.IterCueValues(path) {
			if err != nil {
				panic(err)
			}
			var v T
			if err := value.Decode(&v); err != nil {
				panic(err)
			}
			if !yield(v) {
				return
			}
		}
	}
}
