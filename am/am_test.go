package am

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/teranos/qlearn/errors"
	"github.com/teranos/qlearn/qtable"
)

func TestDefault(t *testing.T) {
	cfg := Default()

	assert.Equal(t, DefaultActions, cfg.Agent.Actions)
	assert.Equal(t, 0.9, cfg.Agent.Epsilon)
	assert.Equal(t, 0.2, cfg.Agent.Alpha)
	assert.Equal(t, 0.8, cfg.Agent.Gamma)
	assert.Equal(t, "non_negative", cfg.Agent.Clamp)
	assert.Equal(t, int64(0), cfg.Agent.Seed)
	assert.Equal(t, "qtable.json", cfg.Table.Path)
	assert.Equal(t, 500, cfg.Train.Episodes)
	assert.Equal(t, 200, cfg.Train.MaxSteps)
	assert.Equal(t, 100, cfg.Train.CheckpointEvery)
	assert.Empty(t, cfg.Train.PlotPath)
	assert.Equal(t, 400, cfg.Sim.TrackLength)
	assert.Equal(t, 0.05, cfg.Sim.CurveChange)
	assert.False(t, cfg.Log.JSON)

	require.NoError(t, cfg.Validate())
}

func TestLoadFromFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "am.toml")
	content := `
[agent]
actions = ["up", "down"]
alpha = 0.5
clamp = "none"
seed = 42

[table]
path = "robot.db"

[train]
episodes = 10
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))

	cfg, err := LoadFromFile(path)
	require.NoError(t, err)

	assert.Equal(t, []string{"up", "down"}, cfg.Agent.Actions)
	assert.Equal(t, 0.5, cfg.Agent.Alpha)
	assert.Equal(t, "none", cfg.Agent.Clamp)
	assert.Equal(t, int64(42), cfg.Agent.Seed)
	assert.Equal(t, "robot.db", cfg.Table.Path)
	assert.Equal(t, 10, cfg.Train.Episodes)

	// Untouched keys keep their defaults
	assert.Equal(t, 0.9, cfg.Agent.Epsilon)
	assert.Equal(t, 0.8, cfg.Agent.Gamma)
	assert.Equal(t, 200, cfg.Train.MaxSteps)
}

func TestLoadFromFile_Missing(t *testing.T) {
	_, err := LoadFromFile(filepath.Join(t.TempDir(), "nope.toml"))
	require.Error(t, err)
}

func TestLoadFromFile_Malformed(t *testing.T) {
	path := filepath.Join(t.TempDir(), "am.toml")
	require.NoError(t, os.WriteFile(path, []byte("[agent\nalpha = "), 0644))

	_, err := LoadFromFile(path)
	require.Error(t, err)
}

func TestEnvOverrides(t *testing.T) {
	t.Setenv("QLEARN_AGENT_ALPHA", "0.05")
	t.Setenv("QLEARN_AGENT_ACTIONS", "north,south")
	t.Setenv("QLEARN_TABLE_PATH", "/tmp/q.sqlite")
	t.Setenv("QLEARN_TRAIN_EPISODES", "7")

	cfg, err := LoadWithViper(newViper())
	require.NoError(t, err)

	assert.Equal(t, 0.05, cfg.Agent.Alpha)
	assert.Equal(t, []string{"north", "south"}, cfg.Agent.Actions)
	assert.Equal(t, "/tmp/q.sqlite", cfg.Table.Path)
	assert.Equal(t, 7, cfg.Train.Episodes)
}

func TestEnvBeatsConfigFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "am.toml")
	require.NoError(t, os.WriteFile(path, []byte("[agent]\ngamma = 0.3\n"), 0644))
	t.Setenv("QLEARN_AGENT_GAMMA", "0.6")

	v := newViper()
	v.SetConfigFile(path)
	require.NoError(t, v.MergeInConfig())

	cfg, err := LoadWithViper(v)
	require.NoError(t, err)
	assert.Equal(t, 0.6, cfg.Agent.Gamma)
}

func TestLoad_CachesUntilReset(t *testing.T) {
	Reset()
	defer Reset()

	first, err := Load()
	require.NoError(t, err)
	second, err := Load()
	require.NoError(t, err)
	assert.Same(t, first, second)

	Reset()
	third, err := Load()
	require.NoError(t, err)
	assert.NotSame(t, first, third)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"no actions", func(c *Config) { c.Agent.Actions = nil }},
		{"epsilon above one", func(c *Config) { c.Agent.Epsilon = 1.5 }},
		{"zero alpha", func(c *Config) { c.Agent.Alpha = 0 }},
		{"negative gamma", func(c *Config) { c.Agent.Gamma = -0.1 }},
		{"unknown clamp", func(c *Config) { c.Agent.Clamp = "sometimes" }},
		{"empty table path", func(c *Config) { c.Table.Path = "" }},
		{"negative episodes", func(c *Config) { c.Train.Episodes = -1 }},
		{"zero max steps", func(c *Config) { c.Train.MaxSteps = 0 }},
		{"negative checkpoint", func(c *Config) { c.Train.CheckpointEvery = -5 }},
		{"zero track", func(c *Config) { c.Sim.TrackLength = 0 }},
		{"curve change of one", func(c *Config) { c.Sim.CurveChange = 1 }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(cfg)

			err := cfg.Validate()
			require.Error(t, err)
			assert.True(t, errors.IsConfigurationError(err), "got %v", err)
		})
	}
}

func TestHyperparameters(t *testing.T) {
	cfg := Default()
	cfg.Agent.Epsilon = 0.3
	cfg.Agent.Alpha = 0.4
	cfg.Agent.Gamma = 0.5

	hp, err := cfg.Hyperparameters()
	require.NoError(t, err)
	assert.Equal(t, qtable.Hyperparameters{Epsilon: 0.3, Alpha: 0.4, Gamma: 0.5}, hp)
}

func TestNewAgent(t *testing.T) {
	cfg := Default()
	cfg.Agent.Clamp = "none"
	cfg.Agent.Seed = 7

	agent, err := cfg.NewAgent()
	require.NoError(t, err)
	assert.Equal(t, []qtable.Action{"forward", "left", "right"}, agent.Actions())
	assert.Equal(t, qtable.ClampNone, agent.Clamp())
	assert.Equal(t, 0.9, agent.Epsilon())

	// Same seed, same choices
	again, err := cfg.NewAgent()
	require.NoError(t, err)
	for i := 0; i < 50; i++ {
		assert.Equal(t, agent.ChooseAction("center"), again.ChooseAction("center"))
	}
}

func TestNewAgent_Invalid(t *testing.T) {
	cfg := Default()
	cfg.Agent.Actions = []string{"a", "a"}

	_, err := cfg.NewAgent()
	require.Error(t, err)
	assert.True(t, errors.IsConfigurationError(err))
}

func TestWriteDefault(t *testing.T) {
	path := filepath.Join(t.TempDir(), "am.toml")

	require.NoError(t, WriteDefault(path, false))

	cfg, err := LoadFromFile(path)
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)
}

func TestWriteDefault_RefusesOverwrite(t *testing.T) {
	path := filepath.Join(t.TempDir(), "am.toml")
	require.NoError(t, os.WriteFile(path, []byte("# mine\n"), 0644))

	err := WriteDefault(path, false)
	require.Error(t, err)
	assert.NotEmpty(t, errors.GetAllHints(err))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "# mine\n", string(data))
}

func TestWriteDefault_RotatesBackups(t *testing.T) {
	path := filepath.Join(t.TempDir(), "am.toml")

	for i, content := range []string{"# one\n", "# two\n", "# three\n", "# four\n"} {
		require.NoError(t, os.WriteFile(path, []byte(content), 0644), "write %d", i)
		require.NoError(t, WriteDefault(path, true))
	}

	read := func(p string) string {
		data, err := os.ReadFile(p)
		require.NoError(t, err)
		return string(data)
	}
	assert.Equal(t, "# four\n", read(path+".back1"))
	assert.Equal(t, "# three\n", read(path+".back2"))
	assert.Equal(t, "# two\n", read(path+".back3"))
}
