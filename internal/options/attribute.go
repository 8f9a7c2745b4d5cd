// Package options resolves the poller's command-line arguments.
package options

import (
	"fmt"
	"strings"

	"jmxstat/internal/mbean"
	"jmxstat/internal/model"
)

// ParseAttributeToken parses a token of the form object[attr1,attr2.field,...].
//
// The boolean result reports whether the token has the bracketed form at all;
// tokens without it are not attribute lists and yield (nil, false, nil).
// A malformed object name is returned as an error.
//
// Each item is split on its first '.' only, so "a.b.c" selects field "b.c"
// of attribute "a". Empty items are passed through unchanged.
func ParseAttributeToken(token string) ([]model.AttributeReference, bool, error) {
	start := strings.Index(token, "[")
	end := strings.LastIndex(token, "]")
	if start < 0 || end <= start {
		return nil, false, nil
	}

	objectName, err := mbean.ParseObjectName(token[:start])
	if err != nil {
		return nil, true, fmt.Errorf("invalid attribute list %q: %w", token, err)
	}

	items := strings.Split(token[start+1:end], ",")
	refs := make([]model.AttributeReference, 0, len(items))
	for _, item := range items {
		ref := model.AttributeReference{Object: objectName, Attribute: item}
		if dot := strings.Index(item, "."); dot >= 0 {
			ref.Attribute = item[:dot]
			ref.SubField = item[dot+1:]
		}
		refs = append(refs, ref)
	}

	return refs, true, nil
}

// ParseAttributeTokens parses every bracketed token in order and concatenates
// the references. Tokens without the bracketed form are skipped.
func ParseAttributeTokens(tokens []string) ([]model.AttributeReference, error) {
	var refs []model.AttributeReference
	for _, token := range tokens {
		parsed, ok, err := ParseAttributeToken(token)
		if err != nil {
			return nil, err
		}
		if ok {
			refs = append(refs, parsed...)
		}
	}
	return refs, nil
}
