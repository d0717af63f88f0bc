// Package config loads the optional tool-path and Slurm settings file. Flags
// always win; the file only supplies site defaults (where repair.sh lives on
// the cluster, which partition to use, and so on).
package config

import (
	"github.com/carbocation/pfx"
	"github.com/spf13/viper"
)

// Config carries the external tool locations and scheduler defaults.
type Config struct {
	RepairExe     string `mapstructure:"repair_exe"`
	TrimGaloreExe string `mapstructure:"trim_galore_exe"`
	FastqcExe     string `mapstructure:"fastqc_exe"`
	SbatchExe     string `mapstructure:"sbatch_exe"`
	Threads       int    `mapstructure:"threads"`

	Slurm SlurmConfig `mapstructure:"slurm"`
}

// SlurmConfig holds per-site scheduler defaults applied to every submitted
// job unless overridden on the command line after `--`.
type SlurmConfig struct {
	Partition string `mapstructure:"partition"`
	Time      string `mapstructure:"time"`
	Memory    string `mapstructure:"memory"`
}

// Load reads the config file at path, or returns pure defaults when path is
// empty.
func Load(path string) (Config, error) {
	v := viper.New()
	v.SetDefault("repair_exe", "repair.sh")
	v.SetDefault("trim_galore_exe", "trim_galore")
	v.SetDefault("fastqc_exe", "fastqc")
	v.SetDefault("sbatch_exe", "sbatch")
	v.SetDefault("threads", 1)
	v.SetDefault("slurm.time", "8:00:00")
	v.SetDefault("slurm.memory", "8G")

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return Config{}, pfx.Err(err)
		}
	}

	var out Config
	if err := v.Unmarshal(&out); err != nil {
		return Config{}, pfx.Err(err)
	}

	return out, nil
}
