package qdevice

import (
	"github.com/go-playground/validator/v10"
	"github.com/pkg/errors"
	"github.com/spf13/viper"
)

/*
Config is the typed construction record for a Device. The engine-selection
flags are forwarded unchanged to the EngineFactory; the adapter itself only
reads Noise, Wires and Shots.
*/
type Config struct {
	HybridStabilizer         bool `mapstructure:"is_hybrid_stabilizer"`
	TensorNetwork            bool `mapstructure:"is_tensor_network"`
	SchmidtDecompose         bool `mapstructure:"is_schmidt_decomposed"`
	SchmidtDecomposeParallel bool `mapstructure:"is_schmidt_decomposition_parallel"`
	BinaryDecisionTree       bool `mapstructure:"is_qbdd"`
	GPU                      bool `mapstructure:"is_gpu"`
	Paged                    bool `mapstructure:"is_paged"`
	HybridCPUGPU             bool `mapstructure:"is_hybrid_cpu_gpu"`
	HostPointer              bool `mapstructure:"is_host_pointer"`

	// Noise is the depolarizing intensity per gate.
	Noise float64 `mapstructure:"noise" validate:"gte=0,lte=1"`

	// Wires caps the number of live registers. Zero means unbounded.
	Wires int `mapstructure:"wires" validate:"gte=0,lte=62"`

	Shots int `mapstructure:"shots" validate:"gte=1"`

	// Seed fixes the engine RNG. Zero draws a random seed.
	Seed uint64 `mapstructure:"seed"`
}

func NewConfig() *Config {
	return &Config{
		HybridStabilizer:         true,
		TensorNetwork:            true,
		SchmidtDecompose:         true,
		SchmidtDecomposeParallel: true,
		GPU:                      true,
		Shots:                    1,
	}
}

var validate = validator.New()

// Validate checks field ranges once; NewDevice calls it before building an engine.
func (cfg Config) Validate() error {
	if err := validate.Struct(cfg); err != nil {
		return invalidArgument("config: %v", err)
	}
	return nil
}

/*
LoadConfig reads a configuration file (any format viper understands) on top
of the defaults from NewConfig.
*/
func LoadConfig(path string) (*Config, error) {
	defaults := NewConfig()

	v := viper.New()
	v.SetConfigFile(path)
	v.SetDefault("is_hybrid_stabilizer", defaults.HybridStabilizer)
	v.SetDefault("is_tensor_network", defaults.TensorNetwork)
	v.SetDefault("is_schmidt_decomposed", defaults.SchmidtDecompose)
	v.SetDefault("is_schmidt_decomposition_parallel", defaults.SchmidtDecomposeParallel)
	v.SetDefault("is_qbdd", defaults.BinaryDecisionTree)
	v.SetDefault("is_gpu", defaults.GPU)
	v.SetDefault("is_paged", defaults.Paged)
	v.SetDefault("is_hybrid_cpu_gpu", defaults.HybridCPUGPU)
	v.SetDefault("is_host_pointer", defaults.HostPointer)
	v.SetDefault("noise", defaults.Noise)
	v.SetDefault("wires", defaults.Wires)
	v.SetDefault("shots", defaults.Shots)
	v.SetDefault("seed", defaults.Seed)

	if err := v.ReadInConfig(); err != nil {
		return nil, errors.Wrapf(err, "reading config file %s", path)
	}

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, errors.Wrapf(err, "unmarshalling config file %s", path)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}
