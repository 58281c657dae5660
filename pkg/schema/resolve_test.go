package schema

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubNamer struct {
	names []string
	ok    bool
}

func (s stubNamer) FeatureNames() ([]string, bool) {
	return s.names, s.ok
}

func TestResolveSchema(t *testing.T) {
	tests := []struct {
		name     string
		model    FeatureNamer
		fallback []string
		want     []string
		source   Source
		wantErr  bool
	}{
		{"model names", stubNamer{names: []string{"Year", "Power"}, ok: true}, []string{"Tax"}, []string{"Year", "Power"}, SourceModel, false},
		{"fallback when absent", stubNamer{}, []string{"Year", "Tax"}, []string{"Year", "Tax"}, SourceFallback, false},
		{"fallback when empty", stubNamer{names: []string{}, ok: true}, []string{"Tax"}, []string{"Tax"}, SourceFallback, false},
		{"nil model", nil, []string{"Year"}, []string{"Year"}, SourceFallback, false},
		{"no names no fallback", stubNamer{}, nil, nil, "", true},
		{"duplicate model names", stubNamer{names: []string{"Year", "Year"}, ok: true}, nil, nil, SourceModel, true},
		{"blank fallback column", stubNamer{}, []string{"Year", ""}, nil, SourceFallback, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			schema, source, err := ResolveSchema(tt.model, tt.fallback)
			assert.Equal(t, tt.source, source)
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrSchemaUnavailable)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, schema.Columns())
		})
	}
}
