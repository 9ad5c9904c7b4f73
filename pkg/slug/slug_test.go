// Copyright (c) 2026 Revu. All rights reserved.
// Author: d.okoshkin.dev@gmail.com

package slug_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/okoshkin/revu/pkg/slug"
)

func TestFrom(t *testing.T) {
	testCases := []struct {
		name     string
		input    string
		expected string
	}{
		{name: "simple", input: "Drama", expected: "drama"},
		{name: "spaces", input: "Science Fiction", expected: "science-fiction"},
		{name: "accents", input: "Café Société", expected: "cafe-societe"},
		{name: "punctuation", input: "Rock & Roll!", expected: "rock-roll"},
		{name: "consecutive separators", input: "slice -- of  life", expected: "slice-of-life"},
		{name: "leading and trailing junk", input: "  --Thriller--  ", expected: "thriller"},
		{name: "digits kept", input: "Top 10 Picks", expected: "top-10-picks"},
		{name: "already a slug", input: "sci-fi", expected: "sci-fi"},
		{name: "empty", input: "", expected: ""},
		{name: "only separators", input: "!!!", expected: ""},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.expected, slug.From(tc.input))
		})
	}
}
