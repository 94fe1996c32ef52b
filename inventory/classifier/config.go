package classifier

import (
	"regexp"

	"github.com/hashicorp/go-multierror"
	"github.com/pkg/errors"

	"cryptohub/inventory/types"
)

var ErrInvalidConfig = errors.New("invalid classification config")

const (
	DefaultExpiryHorizonDays = 30
	MaxExpiryHorizonDays     = 36500
)

// DefaultWeakAlgorithmPatterns case-insensitive regular expressions, matched anywhere
var DefaultWeakAlgorithmPatterns = []string{
	`RSA[-_ ]?0*([1-9][0-9]{0,2}|10[01][0-9]|102[0-4])([^0-9]|$)`,
	`MD5`,
	`SHA-?1([^0-9]|$)`,
	`(^|[^A-Z])3?DES([^A-Z]|$)`,
	`RC4`,
}

// Config classification parameters
type Config struct {
	ExpiryHorizonDays            int                 `json:"expiry_horizon_days" yaml:"expiry_horizon_days"`
	WeakAlgorithmPatterns        []string            `json:"weak_algorithm_patterns" yaml:"weak_algorithm_patterns"`
	RotationExpectedEnvironments []types.Environment `json:"rotation_expected_environments" yaml:"rotation_expected_environments"`
}

func DefaultConfig() Config {
	return Config{
		ExpiryHorizonDays:            DefaultExpiryHorizonDays,
		WeakAlgorithmPatterns:        append([]string{}, DefaultWeakAlgorithmPatterns...),
		RotationExpectedEnvironments: []types.Environment{types.EnvironmentAWS, types.EnvironmentAzure, types.EnvironmentGCP},
	}
}

// compile validate the config and compile patterns
func (c *Config) compile() ([]*regexp.Regexp, error) {
	var result *multierror.Error

	switch {
	case c.ExpiryHorizonDays <= 0:
		result = multierror.Append(result, errors.Errorf("expiry_horizon_days must be positive: %d", c.ExpiryHorizonDays))
	case c.ExpiryHorizonDays > MaxExpiryHorizonDays:
		result = multierror.Append(result, errors.Errorf("expiry_horizon_days must be at most %d: %d", MaxExpiryHorizonDays, c.ExpiryHorizonDays))
	}

	patterns := make([]*regexp.Regexp, 0, len(c.WeakAlgorithmPatterns))
	for _, p := range c.WeakAlgorithmPatterns {
		if p == "" {
			result = multierror.Append(result, errors.New("empty weak algorithm pattern"))
			continue
		}

		re, err := regexp.Compile("(?i)" + p)
		if err != nil {
			result = multierror.Append(result, errors.Wrapf(err, "weak algorithm pattern %q", p))
			continue
		}
		patterns = append(patterns, re)
	}

	for _, env := range c.RotationExpectedEnvironments {
		if env == types.EnvironmentNone {
			result = multierror.Append(result, errors.New("unknown rotation expected environment"))
		}
	}

	if err := result.ErrorOrNil(); err != nil {
		return nil, errors.Wrap(ErrInvalidConfig, err.Error())
	}

	return patterns, nil
}
