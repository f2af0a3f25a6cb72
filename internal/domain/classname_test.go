package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	m "gpgen.dev/pkg/gpgen/internal/model"
)

func TestDeriveClassName(t *testing.T) {
	tests := []struct {
		name string
		path string
		want string
	}{
		{name: "resource path", path: "res://scripts/Main.gd", want: "Main"},
		{name: "nested resource path", path: "res://actors/player/Player.cs", want: "Player"},
		{name: "plain file path", path: "scripts/Hud.gd", want: "Hud"},
		{name: "windows separators", path: `scripts\Hud.gd`, want: "Hud"},
		{name: "no extension", path: "res://scripts/Main", want: "Main"},
		{name: "no directory", path: "Main.gd", want: "Main"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := DeriveClassName(tt.path)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestDeriveClassNameRejectsEmpty(t *testing.T) {
	for _, path := range []string{"", "res://scripts/", ".gd", "res://scripts/.gd"} {
		_, err := DeriveClassName(path)
		assert.ErrorIs(t, err, m.ErrPatternNoMatch, "path %q", path)
	}
}
