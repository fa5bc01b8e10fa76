package main

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nthnn/ura/domain/entities"
	"github.com/nthnn/ura/hostfuncs"
	"github.com/nthnn/ura/infrastructure/session"
	"github.com/nthnn/ura/internal/wasmtest"
)

func writeProgram(t *testing.T, root, name string, bin []byte) {
	t.Helper()
	dir := filepath.Join(root, "asm")
	require.NoError(t, os.MkdirAll(dir, 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, name+".wasm"), bin, 0o644))
}

func runCLI(t *testing.T, args ...string) (int, string, string) {
	t.Helper()
	var stdout, stderr bytes.Buffer
	code := run(context.Background(), args, strings.NewReader(""), &stdout, &stderr)
	return code, stdout.String(), stderr.String()
}

func TestRun_Usage(t *testing.T) {
	code, _, stderr := runCLI(t)
	assert.Equal(t, 2, code)
	assert.Contains(t, stderr, "Usage:")

	code, _, stderr = runCLI(t, "bogus")
	assert.Equal(t, 2, code)
	assert.Contains(t, stderr, `unknown command "bogus"`)

	code, stdout, _ := runCLI(t, "help")
	assert.Equal(t, 0, code)
	assert.Contains(t, stdout, "ura run")
}

func TestRun_RequiresNames(t *testing.T) {
	code, _, stderr := runCLI(t, "run", "-source", t.TempDir())
	assert.Equal(t, 2, code)
	assert.Contains(t, stderr, "at least one program name")
}

func TestRun_Programs(t *testing.T) {
	root := t.TempDir()
	writeProgram(t, root, "main", wasmtest.Noop("_start"))
	writeProgram(t, root, "other", wasmtest.Noop("_start"))

	code, _, stderr := runCLI(t, "run", "-source", root, "main", "other")
	assert.Equal(t, 0, code, stderr)
	assert.NotContains(t, stderr, "program load failed")
}

func TestRun_Failures(t *testing.T) {
	root := t.TempDir()
	writeProgram(t, root, "main", wasmtest.Noop("_start"))
	writeProgram(t, root, "exits", wasmtest.Exit("_start", 3))

	code, _, stderr := runCLI(t, "run", "-source", root, "main", "missing", "exits")
	assert.Equal(t, 1, code)
	assert.Contains(t, stderr, "program load failed")
	assert.Contains(t, stderr, `"program":"missing"`)
	assert.Contains(t, stderr, `"stage":"fetch"`)
	assert.Contains(t, stderr, `"stage":"run"`)
	assert.NotContains(t, stderr, "Error:")
}

func TestRun_CustomEntryPoint(t *testing.T) {
	root := t.TempDir()
	writeProgram(t, root, "main", wasmtest.Noop("main"))

	code, _, _ := runCLI(t, "run", "-source", root, "main")
	assert.Equal(t, 1, code)

	code, _, stderr := runCLI(t, "run", "-source", root, "-entry", "main", "main")
	assert.Equal(t, 0, code, stderr)
}

func TestRun_SessionFromConfig(t *testing.T) {
	root := t.TempDir()
	storePath := filepath.Join(root, "state", "session.yaml")
	writeProgram(t, root, "writer",
		wasmtest.Calling("_start", "ura_host", "session_set", []byte(`{"key":"greeting","value":"hi"}`)))

	cfgPath := filepath.Join(root, "ura.yaml")
	require.NoError(t, os.WriteFile(cfgPath, []byte("source: "+root+"\nsession:\n  path: "+storePath+"\n"), 0o600))

	code, _, stderr := runCLI(t, "run", "-config", cfgPath, "writer")
	require.Equal(t, 0, code, stderr)

	value, ok, err := session.NewFileStore(session.WithPath(storePath)).Get("greeting")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "hi", value)
}

func TestRun_BadConfig(t *testing.T) {
	cfgPath := filepath.Join(t.TempDir(), "ura.yaml")
	require.NoError(t, os.WriteFile(cfgPath, []byte("log:\n  level: loud\n"), 0o600))

	code, _, stderr := runCLI(t, "run", "-config", cfgPath, "main")
	assert.Equal(t, 1, code)
	assert.Contains(t, stderr, "Error: config validation failed")
}

func TestSchemaCommand(t *testing.T) {
	code, stdout, _ := runCLI(t, "schema")
	require.Equal(t, 0, code)

	var doc map[string]any
	require.NoError(t, json.Unmarshal([]byte(stdout), &doc))
	assert.Contains(t, doc, "properties")
}

func TestAPIBase(t *testing.T) {
	tests := []struct {
		name string
		cfg  entities.Config
		want string
	}{
		{"explicit", entities.Config{Source: "http://a", API: entities.APIConfig{BaseURL: "http://b"}}, "http://b"},
		{"http source", entities.Config{Source: "https://a/app/"}, "https://a/app/"},
		{"directory source", entities.Config{Source: "./site"}, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, apiBase(&tt.cfg))
		})
	}
}

func TestApp_Programs(t *testing.T) {
	root := t.TempDir()
	writeProgram(t, root, "b", wasmtest.Noop("_start"))
	writeProgram(t, root, "a", wasmtest.Noop("_start"))

	cfg := entities.NewConfig(entities.WithSource(root))
	ctx := context.Background()
	var out bytes.Buffer
	a, err := newApp(ctx, &cfg, nil, appIO{stdout: &out, stderr: &out})
	require.NoError(t, err)
	defer func() { _ = a.Close(ctx) }()

	names, err := a.programs(ctx, nil)
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "b"}, names)

	names, err = a.programs(ctx, []string{"x"})
	require.NoError(t, err)
	assert.Equal(t, []string{"x"}, names)
}

func TestPickModel(t *testing.T) {
	loads := make(chan string, 4)
	load := func(_ context.Context, name string) (*entities.LoadResult, error) {
		loads <- name
		if name == "bad" {
			return nil, errors.New("boom")
		}
		return &entities.LoadResult{Name: name, Size: 8}, nil
	}
	output := hostfuncs.NewBoundedBuffer(outputLimit)
	m := newPickModel(context.Background(), "./site", []string{"bad", "good"}, load, output)

	key := func(s string) tea.KeyMsg {
		if s == "enter" {
			return tea.KeyMsg{Type: tea.KeyEnter}
		}
		return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
	}

	t.Run("navigation", func(t *testing.T) {
		m.Update(key("j"))
		assert.Equal(t, 1, m.selected)
		m.Update(key("j"))
		assert.Equal(t, 1, m.selected)
		m.Update(key("k"))
		assert.Equal(t, 0, m.selected)
	})

	t.Run("load", func(t *testing.T) {
		_, cmd := m.Update(key("enter"))
		require.NotNil(t, cmd)
		assert.Equal(t, stateLoading, m.status["bad"].state)
		assert.Equal(t, 1, m.running)

		_, again := m.Update(key("enter"))
		assert.Nil(t, again)

		m.Update(stageMsg{Name: "bad", Stage: entities.StageCompile})
		assert.Equal(t, entities.StageCompile, m.status["bad"].stage)
		assert.Contains(t, m.View(), "compile")

		m.Update(loadDoneMsg{name: "bad", err: errors.New("boom")})
		assert.Equal(t, stateFailed, m.status["bad"].state)
		assert.Equal(t, 0, m.running)
		assert.Contains(t, m.View(), "boom")

		m.Update(key("j"))
		m.Update(key("enter"))
		m.Update(loadDoneMsg{name: "good", result: &entities.LoadResult{Name: "good", Size: 8}})
		assert.Equal(t, stateDone, m.status["good"].state)
		assert.Contains(t, m.View(), "8 bytes")
	})

	t.Run("output pane", func(t *testing.T) {
		_, _ = output.Write([]byte("hello from guest\n"))
		assert.Contains(t, m.View(), "hello from guest")
		m.Update(key("c"))
		assert.NotContains(t, m.View(), "hello from guest")
	})

	t.Run("quit", func(t *testing.T) {
		_, cmd := m.Update(key("q"))
		require.NotNil(t, cmd)
		assert.IsType(t, tea.QuitMsg{}, cmd())
	})
}

func TestPickModel_Empty(t *testing.T) {
	m := newPickModel(context.Background(), ".", nil, nil, hostfuncs.NewBoundedBuffer(16))
	_, cmd := m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	assert.Nil(t, cmd)
	assert.Contains(t, m.View(), "No programs found")
}

func TestLastLines(t *testing.T) {
	assert.Equal(t, "c\nd\n", lastLines("a\nb\nc\nd\n", 2))
	assert.Equal(t, "a\n", lastLines("a", 5))
}

func TestRun_InvalidAllowHosts(t *testing.T) {
	root := t.TempDir()
	cfgPath := filepath.Join(root, "ura.yaml")
	require.NoError(t, os.WriteFile(cfgPath, []byte("source: "+root+"\napi:\n  allow_hosts: [\"exa[mple.com\"]\n"), 0o600))

	code, _, stderr := runCLI(t, "run", "-config", cfgPath, "main")
	assert.Equal(t, 1, code)
	assert.Contains(t, stderr, "invalid api.allow_hosts")
}
