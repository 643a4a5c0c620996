package contentpath

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGet(t *testing.T) {
	doc := []byte(`{
		"title": "Intro",
		"body": {
			"items": [
				{"caption": "first"},
				{"caption": "second"}
			]
		}
	}`)

	tests := []struct {
		name     string
		path     string
		expected string
		found    bool
	}{
		{"top level", "title", "Intro", true},
		{"bracketed index", "body.items[1].caption", "second", true},
		{"first index", "body.items[0].caption", "first", true},
		{"missing leaf", "body.missing", "", false},
		{"out of range index", "body.items[9].caption", "", false},
		{"empty path", "", "", false},
		{"non-numeric index", "body.items[x].caption", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := Get(doc, tt.path)
			assert.Equal(t, tt.found, ok)
			assert.Equal(t, tt.expected, got)
		})
	}
}

func TestSet(t *testing.T) {
	doc := []byte(`{"title":"Old","items":["a","b"]}`)

	t.Run("updates leaf and leaves original alone", func(t *testing.T) {
		updated, err := Set(doc, "items[1]", "new value")
		require.NoError(t, err)

		got, ok := Get(updated, "items[1]")
		require.True(t, ok)
		assert.Equal(t, "new value", got)

		// original document unchanged
		orig, _ := Get(doc, "items[1]")
		assert.Equal(t, "b", orig)
	})

	t.Run("sibling leaves survive the update", func(t *testing.T) {
		updated, err := Set(doc, "title", "New")
		require.NoError(t, err)

		got, _ := Get(updated, "items[0]")
		assert.Equal(t, "a", got)
	})

	t.Run("rejects malformed paths", func(t *testing.T) {
		_, err := Set(doc, "items[1", "x")
		assert.Error(t, err)

		_, err = Set(doc, "", "x")
		assert.Error(t, err)
	})
}

func TestToGJSON(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
		wantErr  bool
	}{
		{"plain keys", "body.caption", "body.caption", false},
		{"single index", "items[2]", "items.2", false},
		{"nested indices", "body.items[2].caption", "body.items.2.caption", false},
		{"adjacent indices", "grid[1][2]", "grid.1.2", false},
		{"empty", "", "", true},
		{"unclosed bracket", "items[2", "", true},
		{"non-numeric index", "items[two]", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := toGJSON(tt.input)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.expected, got)
		})
	}
}
