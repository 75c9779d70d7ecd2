package config

import (
	"fmt"
	"path/filepath"
	"reflect"
	"strconv"
	"strings"
	"time"

	"github.com/hashicorp/go-multierror"
	"github.com/mitchellh/mapstructure"
	"github.com/pkg/errors"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"flexJobShop/internal/bench"
	"flexJobShop/internal/fjsp"
	"flexJobShop/internal/logging"
)

const envPrefix = "FJSP"

// Size is a shop size written as "JOBSxMACHINES", e.g. "20x5".
type Size struct {
	Jobs     int
	Machines int
}

func (s Size) String() string {
	return fmt.Sprintf("%dx%d", s.Jobs, s.Machines)
}

func ParseSize(s string) (Size, error) {
	jm := strings.Split(strings.TrimSpace(s), "x")
	if len(jm) != 2 {
		return Size{}, errors.Errorf("size %q must look like 50x10", s)
	}
	jobs, err := strconv.Atoi(strings.TrimSpace(jm[0]))
	if err != nil {
		return Size{}, errors.Errorf("size %q: job count is not an integer", s)
	}
	machines, err := strconv.Atoi(strings.TrimSpace(jm[1]))
	if err != nil {
		return Size{}, errors.Errorf("size %q: machine count is not an integer", s)
	}
	if jobs <= 0 || machines <= 0 {
		return Size{}, errors.Errorf("size %q: job and machine counts must be > 0", s)
	}
	return Size{Jobs: jobs, Machines: machines}, nil
}

// SizeDecodeHook decodes "JxM" strings into Size.
func SizeDecodeHook() mapstructure.DecodeHookFuncType {
	return func(
		f reflect.Type,
		t reflect.Type,
		data interface{},
	) (interface{}, error) {
		if f.Kind() != reflect.String || t != reflect.TypeOf(Size{}) {
			return data, nil
		}
		return ParseSize(data.(string))
	}
}

var decodeHooks = viper.DecodeHook(mapstructure.ComposeDecodeHookFunc(
	SizeDecodeHook(),
	mapstructure.StringToTimeDurationHookFunc(),
	mapstructure.StringToSliceHookFunc(","),
))

type Case struct {
	Name   string
	Family bench.Family
	// Path of an instance file, relative to the config file's directory.
	Path         string
	Size         Size
	InstanceSeed int64
}

type Config struct {
	Runs          int
	Samples       int
	Seed          int64
	Parallelism   int
	PerRunTimeout time.Duration
	Out           string
	MetricsAddr   string
	Logging       logging.Config
	Cases         []Case

	// BaseDir is the directory instance paths are resolved against; set by Load.
	BaseDir string `mapstructure:"-"`
}

func Default() Config {
	return Config{
		Runs:    30,
		Samples: 1000,
		Seed:    1000,
		Out:     "artifacts/samples.csv",
		Logging: logging.DefaultConfig(),
	}
}

func setDefaults(v *viper.Viper) {
	d := Default()
	v.SetDefault("runs", d.Runs)
	v.SetDefault("samples", d.Samples)
	v.SetDefault("seed", d.Seed)
	v.SetDefault("parallelism", d.Parallelism)
	v.SetDefault("perRunTimeout", d.PerRunTimeout)
	v.SetDefault("out", d.Out)
	v.SetDefault("metricsAddr", d.MetricsAddr)
	v.SetDefault("logging.level", d.Logging.Level)
	v.SetDefault("logging.format", d.Logging.Format)
}

// flagKeys maps command line flags to the config keys they override.
var flagKeys = map[string]string{
	"out":          "out",
	"metrics-addr": "metricsAddr",
	"runs":         "runs",
	"samples":      "samples",
	"seed":         "seed",
	"parallelism":  "parallelism",
}

// Load reads the config file at path. Scalar settings can be overridden with FJSP_* environment
// variables, e.g. FJSP_RUNS=5 or FJSP_LOGGING_LEVEL=debug, and with the flags of flags that
// appear in flagKeys and were set explicitly. flags may be nil.
func Load(path string, flags *pflag.FlagSet) (Config, error) {
	v := viper.New()
	setDefaults(v)
	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	if flags != nil {
		for name, key := range flagKeys {
			if f := flags.Lookup(name); f != nil {
				if err := v.BindPFlag(key, f); err != nil {
					return Config{}, errors.WithStack(err)
				}
			}
		}
	}

	v.SetConfigFile(path)
	if err := v.ReadInConfig(); err != nil {
		err = errors.WithMessagef(err, "failed to read config %s", path)
		return Config{}, errors.WithStack(err)
	}

	var cfg Config
	if err := v.Unmarshal(&cfg, decodeHooks); err != nil {
		err = errors.WithMessagef(err, "failed to unmarshal config %s", path)
		return Config{}, errors.WithStack(err)
	}
	cfg.BaseDir = filepath.Dir(path)
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate reports every invalid setting at once.
func (c Config) Validate() error {
	var result *multierror.Error
	if err := c.Runner().Validate(); err != nil {
		result = multierror.Append(result, err)
	}
	if c.Out == "" {
		result = multierror.Append(result, errors.New("out must not be empty"))
	}
	if len(c.Cases) == 0 {
		result = multierror.Append(result, errors.New("at least one case is required"))
	}
	seen := map[string]bool{}
	for i, bc := range c.BenchCases() {
		if bc.Name == "" {
			result = multierror.Append(result, errors.Errorf("case %d: name is required", i))
		} else if seen[bc.Name] {
			result = multierror.Append(result, errors.Errorf("case %q defined twice", bc.Name))
		}
		seen[bc.Name] = true
		if c.Cases[i].Path != "" && c.Cases[i].Size != (Size{}) {
			result = multierror.Append(result, errors.Errorf("case %q: path and size are mutually exclusive", bc.Name))
		}
		if err := bc.Validate(); err != nil {
			result = multierror.Append(result, err)
		}
	}
	return result.ErrorOrNil()
}

func (c Config) Runner() bench.Runner {
	return bench.Runner{
		Runs:          c.Runs,
		Samples:       c.Samples,
		BaseSeed:      c.Seed,
		Parallelism:   c.Parallelism,
		PerRunTimeout: c.PerRunTimeout,
		Loader:        fjsp.Loader{BaseDir: c.BaseDir},
	}
}

// BenchCases converts the configured cases. A case without a family is an FJSP case.
func (c Config) BenchCases() []bench.Case {
	out := make([]bench.Case, 0, len(c.Cases))
	for _, cc := range c.Cases {
		family := cc.Family
		if family == "" {
			family = bench.FamilyFJSP
		}
		out = append(out, bench.Case{
			Name:         cc.Name,
			Family:       family,
			Path:         cc.Path,
			Jobs:         cc.Size.Jobs,
			Machines:     cc.Size.Machines,
			InstanceSeed: cc.InstanceSeed,
		})
	}
	return out
}
