// Copyright (C) 2025 CardinalHQ, Inc
//
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as
// published by the Free Software Foundation, version 3.
//
// This program is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE. See the
// GNU Affero General Public License for more details.
//
// You should have received a copy of the GNU Affero General Public License
// along with this program. If not, see <http://www.gnu.org/licenses/>.

package config

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/hashicorp/go-multierror"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/cardinalhq/nitronav/internal/record"
	"github.com/cardinalhq/nitronav/internal/report"
	"github.com/cardinalhq/nitronav/internal/sorting"
)

// Config aggregates configuration for the application.
type Config struct {
	Sort   SortConfig   `mapstructure:"sort"`
	Input  InputConfig  `mapstructure:"input"`
	Output OutputConfig `mapstructure:"output"`
	Report ReportConfig `mapstructure:"report"`
}

type SortConfig struct {
	Algorithm string `mapstructure:"algorithm"`
	Key       string `mapstructure:"key"`
	// Verify checks each sorted output before it is reported.
	Verify bool `mapstructure:"verify"`
	Stats  bool `mapstructure:"stats"`
}

type InputConfig struct {
	Path string `mapstructure:"path"`
	// Lenient drops malformed rows instead of failing the read.
	Lenient   bool `mapstructure:"lenient"`
	MaxErrors int  `mapstructure:"max_errors"`
	BatchSize int  `mapstructure:"batch_size"`
}

type OutputConfig struct {
	Path string `mapstructure:"path"`
}

type ReportConfig struct {
	Format  string `mapstructure:"format"`
	Preview int    `mapstructure:"preview"`
}

func DefaultConfig() Config {
	return Config{
		Sort: SortConfig{
			Algorithm: "merge",
			Key:       "nitrogen",
			Stats:     true,
		},
		Input: InputConfig{
			MaxErrors: 100,
			BatchSize: 1000,
		},
		Report: ReportConfig{
			Format:  "text",
			Preview: 10,
		},
	}
}

// FlagKeys maps command line flag names to configuration keys.
var FlagKeys = map[string]string{
	"algorithm":  "sort.algorithm",
	"key":        "sort.key",
	"verify":     "sort.verify",
	"stats":      "sort.stats",
	"input":      "input.path",
	"lenient":    "input.lenient",
	"max-errors": "input.max_errors",
	"batch-size": "input.batch_size",
	"output":     "output.path",
	"format":     "report.format",
	"preview":    "report.preview",
}

// Load reads configuration from defaults, an optional nitronav.yaml in the
// working directory, environment variables and finally flags. Environment
// variables use the prefix "NITRONAV" and the dot character in keys is
// replaced by an underscore. For example, "sort.key" becomes
// "NITRONAV_SORT_KEY". Only flags set on the command line override the
// other sources. flags may be nil.
func Load(flags *pflag.FlagSet) (*Config, error) {
	cfg := DefaultConfig()

	v := viper.New()
	setDefaults(v, cfg)
	v.SetConfigName("nitronav")
	v.AddConfigPath(".")
	v.SetEnvPrefix("NITRONAV")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	bindEnvs(v, &cfg)

	explicit := false
	if flags != nil {
		if f := flags.Lookup("config"); f != nil && f.Value.String() != "" {
			v.SetConfigFile(f.Value.String())
			explicit = true
		}
		for name, key := range FlagKeys {
			f := flags.Lookup(name)
			if f == nil {
				continue
			}
			if err := v.BindPFlag(key, f); err != nil {
				return nil, fmt.Errorf("bind flag %s: %w", name, err)
			}
		}
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if explicit || !errors.As(err, &notFound) {
			return nil, fmt.Errorf("read config: %w", err)
		}
	}

	if err := v.Unmarshal(&cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks every enumerated setting and reports all problems at once.
func (c *Config) Validate() error {
	var errs *multierror.Error
	if _, err := sorting.ParseAlgorithm(c.Sort.Algorithm); err != nil {
		errs = multierror.Append(errs, fmt.Errorf("sort.algorithm: %w", err))
	}
	if _, err := record.ParseSortKey(c.Sort.Key); err != nil {
		errs = multierror.Append(errs, fmt.Errorf("sort.key: %w", err))
	}
	if _, err := report.ParseFormat(c.Report.Format); err != nil {
		errs = multierror.Append(errs, fmt.Errorf("report.format: %w", err))
	}
	if c.Input.Path == "" {
		errs = multierror.Append(errs, errors.New("input.path: required"))
	}
	if c.Report.Preview < 0 {
		errs = multierror.Append(errs, fmt.Errorf("report.preview: must not be negative, got %d", c.Report.Preview))
	}
	return errs.ErrorOrNil()
}

func setDefaults(v *viper.Viper, cfg Config) {
	v.SetDefault("sort.algorithm", cfg.Sort.Algorithm)
	v.SetDefault("sort.key", cfg.Sort.Key)
	v.SetDefault("sort.verify", cfg.Sort.Verify)
	v.SetDefault("sort.stats", cfg.Sort.Stats)
	v.SetDefault("input.lenient", cfg.Input.Lenient)
	v.SetDefault("input.max_errors", cfg.Input.MaxErrors)
	v.SetDefault("input.batch_size", cfg.Input.BatchSize)
	v.SetDefault("report.format", cfg.Report.Format)
	v.SetDefault("report.preview", cfg.Report.Preview)
}

// bindEnvs registers all keys within cfg so that viper will look up
// corresponding environment variables when unmarshalling.
func bindEnvs(v *viper.Viper, cfg any, parts ...string) {
	val := reflect.ValueOf(cfg)
	typ := reflect.TypeOf(cfg)
	if typ.Kind() == reflect.Ptr {
		val = val.Elem()
		typ = typ.Elem()
	}
	for i := 0; i < typ.NumField(); i++ {
		f := typ.Field(i)
		tag := f.Tag.Get("mapstructure")
		if tag == "" {
			tag = strings.ToLower(f.Name)
		}
		key := append(parts, tag)
		if f.Type.Kind() == reflect.Struct {
			bindEnvs(v, val.Field(i).Interface(), key...)
			continue
		}
		_ = v.BindEnv(strings.Join(key, "."))
	}
}
