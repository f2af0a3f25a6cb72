package adapter

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	m "gpgen.dev/pkg/gpgen/internal/model"
)

func writeScene(t *testing.T, content string) m.Path {
	t.Helper()

	path := filepath.Join(t.TempDir(), "Scene.tscn")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))

	return m.Path(path)
}

func TestLoadSceneGodot4(t *testing.T) {
	source := NewTscnSceneSource(NewLocalProjectFS())

	scene, err := source.LoadScene(writeScene(t, `[gd_scene load_steps=2 format=3 uid="uid://x"]

[ext_resource type="Script" path="res://scripts/Main.gd" id="1_h3x"]

[node name="Main" type="Node2D"]
script = ExtResource("1_h3x")

[node name="HUD" type="CanvasLayer" parent="."]

[node name="World" type="Node2D" parent="."]

[node name="Player" type="CharacterBody2D" parent="World"]
`))
	require.NoError(t, err)

	assert.Equal(t, "res://scripts/Main.gd", scene.Script)
	require.NotNil(t, scene.Root)
	assert.Equal(t, "Main", scene.Root.Name)
	require.Len(t, scene.Root.Children, 2)
	assert.Equal(t, "HUD", scene.Root.Children[0].Name)
	assert.Equal(t, "World", scene.Root.Children[1].Name)
	require.Len(t, scene.Root.Children[1].Children, 1)
	assert.Equal(t, "Player", scene.Root.Children[1].Children[0].Name)
}

func TestLoadSceneGodot3NumericIDs(t *testing.T) {
	source := NewTscnSceneSource(NewLocalProjectFS())

	scene, err := source.LoadScene(writeScene(t, `[gd_scene load_steps=2 format=2]

[ext_resource path="res://Main.gd" type="Script" id=1]

[node name="Main" type="Node2D"]
script = ExtResource( 1 )

[node name="HUD" parent="." type="CanvasLayer"]
`))
	require.NoError(t, err)

	assert.Equal(t, "res://Main.gd", scene.Script)
	require.Len(t, scene.Root.Children, 1)
	assert.Equal(t, "HUD", scene.Root.Children[0].Name)
}

func TestLoadSceneScriptlessRoot(t *testing.T) {
	source := NewTscnSceneSource(NewLocalProjectFS())

	scene, err := source.LoadScene(writeScene(t, `[gd_scene format=3]

[node name="Menu" type="Control"]

[node name="StartButton" type="Button" parent="."]
`))
	require.NoError(t, err)

	assert.Empty(t, scene.Script)
	assert.Equal(t, "Menu", scene.Root.Name)
}

func TestLoadSceneOnlyRootScriptCounts(t *testing.T) {
	source := NewTscnSceneSource(NewLocalProjectFS())

	// The child's script assignment must not be mistaken for the root's.
	scene, err := source.LoadScene(writeScene(t, `[gd_scene load_steps=2 format=3]

[ext_resource type="Script" path="res://scripts/Hud.gd" id="1_hud"]

[node name="Main" type="Node2D"]

[node name="HUD" type="CanvasLayer" parent="."]
script = ExtResource("1_hud")
`))
	require.NoError(t, err)

	assert.Empty(t, scene.Script)
}

func TestLoadSceneInstancedChild(t *testing.T) {
	source := NewTscnSceneSource(NewLocalProjectFS())

	scene, err := source.LoadScene(writeScene(t, `[gd_scene load_steps=3 format=3]

[ext_resource type="Script" path="res://scripts/Main.gd" id="1_main"]
[ext_resource type="PackedScene" path="res://scenes/Player.tscn" id="2_player"]

[node name="Main" type="Node2D"]
script = ExtResource("1_main")

[node name="Player" parent="." instance=ExtResource("2_player")]
`))
	require.NoError(t, err)

	assert.Equal(t, "res://scripts/Main.gd", scene.Script)
	require.Len(t, scene.Root.Children, 1)
	assert.Equal(t, "Player", scene.Root.Children[0].Name)
}

func TestLoadSceneMissingFile(t *testing.T) {
	source := NewTscnSceneSource(NewLocalProjectFS())

	_, err := source.LoadScene(m.Path(filepath.Join(t.TempDir(), "missing.tscn")))
	assert.ErrorIs(t, err, m.ErrMissingSource)
}

func TestLoadSceneMalformed(t *testing.T) {
	source := NewTscnSceneSource(NewLocalProjectFS())

	t.Run("no root node", func(t *testing.T) {
		_, err := source.LoadScene(writeScene(t, "[gd_scene format=3]\n"))
		assert.Error(t, err)
	})

	t.Run("unknown parent", func(t *testing.T) {
		_, err := source.LoadScene(writeScene(t, `[gd_scene format=3]

[node name="Main" type="Node2D"]

[node name="Orphan" type="Node" parent="Nowhere"]
`))
		assert.Error(t, err)
	})
}

func TestLoadSceneFromExampleProject(t *testing.T) {
	source := NewTscnSceneSource(NewLocalProjectFS())

	scene, err := source.LoadScene(m.Path(filepath.Join("..", "..", "examples", "dodge", "scenes", "Main.tscn")))
	require.NoError(t, err)

	assert.Equal(t, "Main", scene.Root.Name)
	assert.Equal(t, "res://scripts/Main.gd", scene.Script)
}
