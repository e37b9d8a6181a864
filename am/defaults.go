package am

import "github.com/spf13/viper"

// DefaultActions is the action set of the line-follow simulation
var DefaultActions = []string{"forward", "left", "right"}

// SetDefaults configures default values for all configuration options
func SetDefaults(v *viper.Viper) {
	// Agent defaults
	v.SetDefault("agent.actions", DefaultActions)
	v.SetDefault("agent.epsilon", 0.9)
	v.SetDefault("agent.alpha", 0.2)
	v.SetDefault("agent.gamma", 0.8)
	v.SetDefault("agent.clamp", "non_negative")
	v.SetDefault("agent.seed", 0)

	// Table defaults
	v.SetDefault("table.path", "qtable.json")

	// Training defaults
	v.SetDefault("train.episodes", 500)
	v.SetDefault("train.max_steps", 200)
	v.SetDefault("train.checkpoint_every", 100)
	v.SetDefault("train.plot_path", "")

	// Simulation defaults
	v.SetDefault("sim.track_length", 400)
	v.SetDefault("sim.curve_change", 0.05)
	v.SetDefault("sim.seed", 0)

	v.SetDefault("log.json", false)
}

// Default returns the configuration with every default applied and no
// files or environment consulted.
func Default() *Config {
	v := viper.New()
	SetDefaults(v)
	cfg, err := LoadWithViper(v)
	if err != nil {
		// defaults always decode
		panic(err)
	}
	return cfg
}
