package domain

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"gpgen.dev/pkg/gpgen/internal/adapter"
	m "gpgen.dev/pkg/gpgen/internal/model"
)

// captureUI records everything the orchestrator reports.
type captureUI struct {
	passes    []m.PassReport
	events    []m.Event
	scripts   int
	resources int
}

func (c *captureUI) Start(context.Context) error { return nil }
func (c *captureUI) Close(context.Context)       {}

func (c *captureUI) DisplayPass(_ context.Context, report m.PassReport) {
	c.passes = append(c.passes, report)
}

func (c *captureUI) DisplayEvent(_ context.Context, event m.Event) {
	c.events = append(c.events, event)
}

func (c *captureUI) DisplaySummary(_ context.Context, scripts, resources int) {
	c.scripts, c.resources = scripts, resources
}

func (c *captureUI) DisplayTracked(context.Context, m.Snapshot) error { return nil }

const mainScene = `[gd_scene load_steps=2 format=3]

[ext_resource type="Script" path="res://scripts/Main.gd" id="1_main"]

[node name="Main" type="Node2D"]
script = ExtResource("1_main")

[node name="HUD" type="CanvasLayer" parent="."]

[node name="World" type="Node2D" parent="."]

[node name="Player" type="CharacterBody2D" parent="World"]
`

func writeProjectFile(t *testing.T, root, rel, content string) string {
	t.Helper()

	path := filepath.Join(root, filepath.FromSlash(rel))
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o750))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))

	return path
}

func newTestOrchestrator(t *testing.T) (*Orchestrator, *captureUI, *fakeClock, string, string) {
	t.Helper()

	root := t.TempDir()
	generated := filepath.Join(root, "generated", "gpg")

	fs := adapter.NewLocalProjectFS()

	writer := NewWriter(fs, WriterConfig{
		Dir:       m.Path(generated),
		Extension: "cs",
		Namespace: "GPG",
		Scheme:    "res://",
	})

	ui := &captureUI{}

	orchestrator := NewOrchestrator(fs, adapter.NewTscnSceneSource(fs), writer, NewTracker(writer), ui, OrchestratorConfig{
		ProjectRoot: m.Path(root),
		Scheme:      "res://",
		SceneExt:    "tscn",
		Debounce:    100 * time.Millisecond,
	})

	clock := &fakeClock{at: time.Unix(1000, 0)}
	orchestrator.debounce.now = clock.now

	return orchestrator, ui, clock, root, generated
}

func TestHandleFilesystemChangedGenerates(t *testing.T) {
	orchestrator, ui, _, root, generated := newTestOrchestrator(t)

	writeProjectFile(t, root, "scripts/Main.gd", "extends Node2D\n")
	scenePath := writeProjectFile(t, root, "scenes/Main.tscn", mainScene)

	require.NoError(t, orchestrator.HandleFilesystemChanged(context.Background(), m.Path(scenePath)))

	content, err := os.ReadFile(filepath.Join(generated, "MainPath.cs"))
	require.NoError(t, err)

	assert.Contains(t, string(content), `public const string Main_World_Player = "/root/Main/World/Player";`)

	resContent, err := os.ReadFile(filepath.Join(generated, "Res.cs"))
	require.NoError(t, err)

	assert.Contains(t, string(resContent), `public const string scenes_Main_tscn = "res://scenes/Main.tscn";`)

	require.Len(t, ui.passes, 1)
	assert.Equal(t, "Main", ui.passes[0].ClassName)
	assert.Equal(t, 4, ui.passes[0].Constants)
	assert.Equal(t, "res://scenes/Main.tscn", ui.passes[0].Resource)
}

func TestHandleFilesystemChangedDebounces(t *testing.T) {
	orchestrator, ui, clock, root, _ := newTestOrchestrator(t)

	writeProjectFile(t, root, "scripts/Main.gd", "extends Node2D\n")
	scenePath := writeProjectFile(t, root, "scenes/Main.tscn", mainScene)

	require.NoError(t, orchestrator.HandleFilesystemChanged(context.Background(), m.Path(scenePath)))

	clock.advance(50 * time.Millisecond)
	require.NoError(t, orchestrator.HandleFilesystemChanged(context.Background(), m.Path(scenePath)))
	assert.Len(t, ui.passes, 1, "repeated change inside the window must be suppressed")

	clock.advance(150 * time.Millisecond)
	require.NoError(t, orchestrator.HandleFilesystemChanged(context.Background(), m.Path(scenePath)))
	assert.Len(t, ui.passes, 2, "change after the window must regenerate")
}

func TestHandleFilesystemChangedIgnoresNonScenes(t *testing.T) {
	orchestrator, ui, _, root, _ := newTestOrchestrator(t)

	path := writeProjectFile(t, root, "scripts/Main.gd", "extends Node2D\n")

	require.NoError(t, orchestrator.HandleFilesystemChanged(context.Background(), m.Path(path)))
	assert.Empty(t, ui.passes)
}

func TestHandleFilesystemChangedSkipsScriptlessRoot(t *testing.T) {
	orchestrator, ui, _, root, generated := newTestOrchestrator(t)

	scenePath := writeProjectFile(t, root, "scenes/Menu.tscn", `[gd_scene format=3]

[node name="Menu" type="Control"]
`)

	require.NoError(t, orchestrator.HandleFilesystemChanged(context.Background(), m.Path(scenePath)))
	assert.Empty(t, ui.passes)
	assert.NoFileExists(t, filepath.Join(generated, "MenuPath.cs"))
}

func TestHandleFilesystemChangedMissingScript(t *testing.T) {
	orchestrator, _, _, root, generated := newTestOrchestrator(t)

	scenePath := writeProjectFile(t, root, "scenes/Main.tscn", mainScene)

	err := orchestrator.HandleFilesystemChanged(context.Background(), m.Path(scenePath))
	assert.ErrorIs(t, err, m.ErrMissingSource)
	assert.NoFileExists(t, filepath.Join(generated, "MainPath.cs"))
}

func TestHandleFileRemovedDeletesGeneratedFile(t *testing.T) {
	orchestrator, _, _, root, generated := newTestOrchestrator(t)

	scriptPath := writeProjectFile(t, root, "scripts/Main.gd", "extends Node2D\n")
	scenePath := writeProjectFile(t, root, "scenes/Main.tscn", mainScene)

	require.NoError(t, orchestrator.HandleFilesystemChanged(context.Background(), m.Path(scenePath)))
	require.FileExists(t, filepath.Join(generated, "MainPath.cs"))

	require.NoError(t, orchestrator.HandleFileRemoved(context.Background(), m.Path(scriptPath)))
	assert.NoFileExists(t, filepath.Join(generated, "MainPath.cs"))
}

func TestHandleFilesMovedUpdatesResourceConstants(t *testing.T) {
	orchestrator, _, _, root, generated := newTestOrchestrator(t)

	writeProjectFile(t, root, "scripts/Main.gd", "extends Node2D\n")
	scenePath := writeProjectFile(t, root, "scenes/Main.tscn", mainScene)

	require.NoError(t, orchestrator.HandleFilesystemChanged(context.Background(), m.Path(scenePath)))

	moved := filepath.Join(root, "levels", "Main.tscn")
	require.NoError(t, orchestrator.HandleFilesMoved(context.Background(), m.Path(scenePath), m.Path(moved)))

	content, err := os.ReadFile(filepath.Join(generated, "Res.cs"))
	require.NoError(t, err)

	assert.Contains(t, string(content), `public const string levels_Main_tscn = "res://levels/Main.tscn";`)
	assert.NotContains(t, string(content), "scenes_Main_tscn")
}

func TestHandleFolderRemoved(t *testing.T) {
	orchestrator, _, _, root, generated := newTestOrchestrator(t)

	writeProjectFile(t, root, "scripts/Main.gd", "extends Node2D\n")
	scenePath := writeProjectFile(t, root, "scenes/Main.tscn", mainScene)

	require.NoError(t, orchestrator.HandleFilesystemChanged(context.Background(), m.Path(scenePath)))

	require.NoError(t, orchestrator.HandleFolderRemoved(context.Background(), m.Path(filepath.Join(root, "scripts"))))
	assert.NoFileExists(t, filepath.Join(generated, "MainPath.cs"))
}

func TestFullPassOverExampleProject(t *testing.T) {
	exampleRoot, err := filepath.Abs(filepath.Join("..", "..", "examples", "dodge"))
	require.NoError(t, err)

	generated := filepath.Join(t.TempDir(), "gpg")

	fs := adapter.NewLocalProjectFS()

	writer := NewWriter(fs, WriterConfig{
		Dir:       m.Path(generated),
		Extension: "cs",
		Namespace: "GPG",
		Scheme:    "res://",
	})

	ui := &captureUI{}

	orchestrator := NewOrchestrator(fs, adapter.NewTscnSceneSource(fs), writer, NewTracker(writer), ui, OrchestratorConfig{
		ProjectRoot: m.Path(exampleRoot),
		Scheme:      "res://",
		SceneExt:    "tscn",
		Debounce:    100 * time.Millisecond,
	})

	require.NoError(t, orchestrator.FullPass(context.Background()))

	assert.FileExists(t, filepath.Join(generated, "MainPath.cs"))
	assert.NoFileExists(t, filepath.Join(generated, "MenuPath.cs"), "scriptless roots generate nothing")

	assert.Equal(t, 1, ui.scripts)
	assert.Equal(t, 1, ui.resources)
}
