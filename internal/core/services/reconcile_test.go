package services

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSetDiff(t *testing.T) {
	cases := []struct {
		name             string
		current, desired []string
		add, remove      []string
	}{
		{"shifted", []string{"a", "b", "c"}, []string{"b", "c", "d"}, []string{"d"}, []string{"a"}},
		{"equal", []string{"a", "b"}, []string{"b", "a"}, nil, nil},
		{"from empty", nil, []string{"b", "a"}, []string{"a", "b"}, nil},
		{"to empty", []string{"a"}, nil, nil, []string{"a"}},
		{"duplicates", []string{"a", "a"}, []string{"b", "b"}, []string{"b"}, []string{"a"}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			add, remove := setDiff(tc.current, tc.desired)
			assert.Equal(t, tc.add, add)
			assert.Equal(t, tc.remove, remove)
		})
	}
}
