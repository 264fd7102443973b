// Package assets serves static files through content filters.
package assets

import (
	"bytes"
	"fmt"
	"regexp"
)

// Filter transforms the content of an asset.
type Filter interface {
	Process(data []byte) ([]byte, error)
}

// FilterFunc adapts a function to Filter.
type FilterFunc func([]byte) ([]byte, error)

func (f FilterFunc) Process(data []byte) ([]byte, error) { return f(data) }

// Chain runs filters in order, each on the output of the previous one.
func Chain(filters ...Filter) Filter {
	return FilterFunc(func(data []byte) ([]byte, error) {
		var err error
		for i, f := range filters {
			if data, err = f.Process(data); err != nil {
				return nil, fmt.Errorf("filter %d: %w", i, err)
			}
		}
		return data, nil
	})
}

var blockComment = regexp.MustCompile(`(?s)/\*.*?\*/`)

// StripComments removes /* */ comments from CSS and JavaScript. Comments
// opened with /*! are kept. Comment markers inside string literals are not
// recognised.
var StripComments Filter = FilterFunc(func(data []byte) ([]byte, error) {
	return blockComment.ReplaceAllFunc(data, func(c []byte) []byte {
		if bytes.HasPrefix(c, []byte("/*!")) {
			return c
		}
		return nil
	}), nil
})

// Banner prepends text as a preserved block comment.
func Banner(text string) Filter {
	header := []byte("/*! " + text + " */\n")
	return FilterFunc(func(data []byte) ([]byte, error) {
		return append(append([]byte(nil), header...), data...), nil
	})
}
