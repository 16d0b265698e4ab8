package models

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewSourceRejectsInvalid(t *testing.T) {
	tests := []struct {
		name  string
		label string
		pages []string
	}{
		{"empty label", "", []string{"page"}},
		{"nil pages", "foo", nil},
		{"empty page", "foo", []string{""}},
		{"only line breaks", "foo", []string{"\n\r\n"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewSource(tt.label, tt.pages, "", "")
			require.Error(t, err)
			assert.True(t, errors.Is(err, ErrInvalidSource))
		})
	}
}

func TestNewSourceDefaults(t *testing.T) {
	s, err := NewSource("label", []string{"page"}, "", "")
	require.NoError(t, err)
	assert.Equal(t, DefaultRootURL, s.URL)
	assert.True(t, s.Anonymous())

	s, err = NewSource("label", []string{"page"}, "   ", "foo")
	require.NoError(t, err)
	assert.Equal(t, DefaultRootURL, s.URL)
	assert.False(t, s.Anonymous())
	assert.Equal(t, "foo", s.APIKey)

	s, err = NewSource("label", []string{"page"}, "https://foo.com/v1", "")
	require.NoError(t, err)
	assert.Equal(t, "https://foo.com/v1/", s.URL)
}

func TestNewSourceSplitsPages(t *testing.T) {
	tests := []struct {
		name     string
		pages    []string
		expected []string
	}{
		{"single", []string{"one"}, []string{"one"}},
		{"newline separated", []string{"one\ntwo\r\nthree"}, []string{"one", "two", "three"}},
		{"blank lines dropped", []string{"one\n\n\ntwo\n"}, []string{"one", "two"}},
		{"list kept", []string{"one", "", "two words"}, []string{"one", "two words"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s, err := NewSource("label", tt.pages, "", "")
			require.NoError(t, err)
			assert.Equal(t, tt.expected, s.Pages)
		})
	}
}

func TestSourceEqualAndString(t *testing.T) {
	a, err := NewSource("blabel", []string{"bpage1"}, "https://bar.com", "bar-pwd")
	require.NoError(t, err)
	b, err := NewSource("blabel", []string{"bpage1"}, "https://bar.com/", "bar-pwd")
	require.NoError(t, err)
	c, err := NewSource("blabel", []string{"bpage1"}, "https://bar.com/", "")
	require.NoError(t, err)

	assert.True(t, a.Equal(b))
	assert.False(t, a.Equal(c))
	assert.NotContains(t, a.String(), "bar-pwd")
	assert.Contains(t, a.String(), "blabel")
}

func TestSourcesLabelsAndValidate(t *testing.T) {
	f, _ := NewSource("flabel", []string{"fpage"}, "", "")
	b, _ := NewSource("blabel", []string{"bpage"}, "", "")

	ss := Sources{f, b}
	assert.Equal(t, []string{"flabel", "blabel"}, ss.Labels())
	assert.NoError(t, ss.Validate())
	assert.Empty(t, Sources{}.Labels())

	err := Sources{f, b, f}.Validate()
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrInvalidSource))
}
