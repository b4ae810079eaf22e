package monconfig

import (
	"bytes"
	"fmt"
	"os"

	"github.com/gagliardetto/solana-go"
	"github.com/spf13/viper"
)

const (
	defaultNotificationConcurrency = 16
)

// knownInstructions enumerates every instruction name spec.md §4.1 defines,
// keyed by program alias.
var knownInstructions = map[string]map[string]struct{}{
	"spl_stake_pool": {
		"increase_validator_stake":              {},
		"deposit_stake":                         {},
		"withdraw_stake":                        {},
		"deposit_sol":                           {},
		"withdraw_sol":                          {},
		"decrease_validator_stake_with_reserve": {},
	},
	"jito_vault": {
		"mint_to":            {},
		"enqueue_withdrawal": {},
	},
}

type rawProgramSpec struct {
	ProgramID    string                         `mapstructure:"program_id"`
	Instructions map[string]rawInstructionRule `mapstructure:"instructions"`
}

type rawConfig struct {
	Programs                map[string]rawProgramSpec `mapstructure:"programs"`
	Notifications           NotificationsConfig       `mapstructure:"notifications"`
	ExplorerURL             string                    `mapstructure:"explorer_url"`
	MessageTemplates        map[string]string         `mapstructure:"message_templates"`
	NotificationConcurrency int                       `mapstructure:"notification_concurrency"`
	USDThresholds           map[string]interface{}    `mapstructure:"usd_thresholds"`
}

// Load reads, env-interpolates, parses and validates the config file at
// path. A malformed file, missing required field, unknown destination
// name, or unresolved ${NAME} reference is a fatal ConfigError.
func Load(path string) (*Config, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, &ConfigError{Op: "read", Err: err}
	}

	interpolated, err := interpolateEnv(raw)
	if err != nil {
		return nil, &ConfigError{Op: "env-interpolate", Err: err}
	}

	v := viper.New()
	v.SetConfigType("yaml")
	if err := v.ReadConfig(bytes.NewReader(interpolated)); err != nil {
		return nil, &ConfigError{Op: "parse", Err: err}
	}

	var rc rawConfig
	if err := v.Unmarshal(&rc); err != nil {
		return nil, &ConfigError{Op: "unmarshal", Err: err}
	}

	return buildConfig(rc)
}

func buildConfig(rc rawConfig) (*Config, error) {
	cfg := &Config{
		Programs:                make(map[string]ProgramSpec, len(rc.Programs)),
		Notifications:           rc.Notifications,
		ExplorerURL:             rc.ExplorerURL,
		MessageTemplates:        rc.MessageTemplates,
		NotificationConcurrency: rc.NotificationConcurrency,
		USDThresholds:           rc.USDThresholds,
	}
	if cfg.NotificationConcurrency <= 0 {
		cfg.NotificationConcurrency = defaultNotificationConcurrency
	}

	if _, ok := cfg.MessageTemplates["default"]; !ok {
		return nil, &ConfigError{Op: "validate", Err: fmt.Errorf("message_templates missing required key %q", "default")}
	}

	for alias, rawSpec := range rc.Programs {
		if _, ok := knownInstructions[alias]; !ok {
			return nil, &ConfigError{Op: "validate", Err: fmt.Errorf("programs: unknown program alias %q", alias)}
		}
		if _, err := solana.PublicKeyFromBase58(rawSpec.ProgramID); err != nil {
			return nil, &ConfigError{Op: "validate", Err: fmt.Errorf("programs.%s: invalid program_id: %w", alias, err)}
		}

		spec := ProgramSpec{
			ProgramID:    rawSpec.ProgramID,
			Instructions: make(map[string]InstructionRule, len(rawSpec.Instructions)),
		}

		for ixName, rawRule := range rawSpec.Instructions {
			if _, ok := knownInstructions[alias][ixName]; !ok {
				return nil, &ConfigError{Op: "validate", Err: fmt.Errorf("programs.%s.instructions: unknown instruction %q", alias, ixName)}
			}
			rule, err := rawRule.resolve(ixName)
			if err != nil {
				return nil, &ConfigError{Op: "validate", Err: fmt.Errorf("programs.%s.instructions: %w", alias, err)}
			}
			if err := validateThresholds(rule); err != nil {
				return nil, &ConfigError{Op: "validate", Err: fmt.Errorf("programs.%s.instructions.%s: %w", alias, ixName, err)}
			}
			spec.Instructions[ixName] = rule
		}

		cfg.Programs[alias] = spec
	}

	return cfg, nil
}

// validateThresholds rejects unknown destination names and de-duplicates
// destinations within a single threshold's list (spec.md §9: duplicate
// destinations within one threshold collapse to a set).
func validateThresholds(rule InstructionRule) error {
	for assetKey, tl := range rule.Thresholds {
		for i, th := range tl.Thresholds {
			seen := make(map[DestinationID]struct{}, len(th.Notification.Destinations))
			deduped := make([]DestinationID, 0, len(th.Notification.Destinations))
			for _, d := range th.Notification.Destinations {
				if !validDestination(d) {
					return fmt.Errorf("asset %q: unknown destination %q", assetKey, d)
				}
				if _, dup := seen[d]; dup {
					continue
				}
				seen[d] = struct{}{}
				deduped = append(deduped, d)
			}
			th.Notification.Destinations = deduped
			tl.Thresholds[i] = th
		}
		rule.Thresholds[assetKey] = tl
	}
	return nil
}
