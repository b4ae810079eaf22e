// Package monconfig loads and validates the monitor's configuration file:
// monitored programs, their threshold rules, notification destinations,
// and message templates.
package monconfig

import "fmt"

// DestinationID identifies an outbound notification channel. Only the
// enumerated values are accepted by the loader.
type DestinationID string

const (
	DestSlack    DestinationID = "slack"
	DestDiscord  DestinationID = "discord"
	DestTelegram DestinationID = "telegram"
	DestTwitter  DestinationID = "twitter"
)

func validDestination(d DestinationID) bool {
	switch d {
	case DestSlack, DestDiscord, DestTelegram, DestTwitter:
		return true
	default:
		return false
	}
}

// AssetBucket names which config section an InstructionRule's keys are
// drawn from, per spec.md §3.
type AssetBucket string

const (
	BucketStakePools AssetBucket = "stake_pools"
	BucketLSTs       AssetBucket = "lsts"
	BucketVRTs       AssetBucket = "vrts"
)

// Notification is the payload attached to one Threshold.
type Notification struct {
	Description  string          `mapstructure:"description" yaml:"description"`
	Destinations []DestinationID `mapstructure:"destinations" yaml:"destinations"`
}

// Threshold is one tier of an InstructionRule's asset-keyed ThresholdList.
type Threshold struct {
	Value        float64      `mapstructure:"value" yaml:"value"`
	Notification Notification `mapstructure:"notification" yaml:"notification"`
}

// ThresholdList is the ordered (ascending by Value, as authored) tier list
// for one asset key.
type ThresholdList struct {
	Thresholds []Threshold `mapstructure:"thresholds" yaml:"thresholds"`
}

// InstructionRule maps an asset key (contextual per spec.md §3) to its
// ThresholdList. Bucket records which of stake_pools/lsts/vrts the rule
// was authored under; the loader rejects a block that mixes more than one.
// Neither the loader nor the policy engine checks that the bucket fits the
// instruction it is configured under.
type InstructionRule struct {
	Bucket     AssetBucket
	Thresholds map[string]ThresholdList
}

type rawInstructionRule struct {
	StakePools map[string]ThresholdList `mapstructure:"stake_pools" yaml:"stake_pools"`
	LSTs       map[string]ThresholdList `mapstructure:"lsts" yaml:"lsts"`
	VRTs       map[string]ThresholdList `mapstructure:"vrts" yaml:"vrts"`
}

func (r rawInstructionRule) resolve(instructionName string) (InstructionRule, error) {
	present := 0
	var bucket AssetBucket
	var thresholds map[string]ThresholdList
	if len(r.StakePools) > 0 {
		present++
		bucket, thresholds = BucketStakePools, r.StakePools
	}
	if len(r.LSTs) > 0 {
		present++
		bucket, thresholds = BucketLSTs, r.LSTs
	}
	if len(r.VRTs) > 0 {
		present++
		bucket, thresholds = BucketVRTs, r.VRTs
	}
	if present == 0 {
		return InstructionRule{}, fmt.Errorf("instruction %q: rule has no stake_pools/lsts/vrts block", instructionName)
	}
	if present > 1 {
		return InstructionRule{}, fmt.Errorf("instruction %q: rule mixes more than one of stake_pools/lsts/vrts", instructionName)
	}
	return InstructionRule{Bucket: bucket, Thresholds: thresholds}, nil
}

// ProgramSpec is one monitored program: its on-chain identity and the
// per-instruction rules that apply to it.
type ProgramSpec struct {
	ProgramID    string                     `mapstructure:"program_id" yaml:"program_id"`
	Instructions map[string]InstructionRule `mapstructure:"-" yaml:"-"`
}

// SlackConfig holds Slack webhook delivery credentials.
type SlackConfig struct {
	WebhookURL string `mapstructure:"webhook_url" yaml:"webhook_url"`
	Channel    string `mapstructure:"channel" yaml:"channel"`
}

// DiscordConfig holds Discord webhook delivery credentials.
type DiscordConfig struct {
	WebhookURL string `mapstructure:"webhook_url" yaml:"webhook_url"`
}

// TelegramConfig holds Telegram bot delivery credentials.
type TelegramConfig struct {
	BotToken string `mapstructure:"bot_token" yaml:"bot_token"`
	ChatID   string `mapstructure:"chat_id" yaml:"chat_id"`
}

// TwitterConfig holds OAuth1 credentials for posting microblog updates.
type TwitterConfig struct {
	BearerToken           string `mapstructure:"twitter_bearer_token" yaml:"twitter_bearer_token"`
	APIKey                string `mapstructure:"twitter_api_key" yaml:"twitter_api_key"`
	APISecret             string `mapstructure:"twitter_api_secret" yaml:"twitter_api_secret"`
	AccessToken           string `mapstructure:"twitter_access_token" yaml:"twitter_access_token"`
	AccessTokenSecret     string `mapstructure:"twitter_access_token_secret" yaml:"twitter_access_token_secret"`
}

// NotificationsConfig holds per-destination credentials.
type NotificationsConfig struct {
	Slack    SlackConfig    `mapstructure:"slack" yaml:"slack"`
	Discord  DiscordConfig  `mapstructure:"discord" yaml:"discord"`
	Telegram TelegramConfig `mapstructure:"telegram" yaml:"telegram"`
	Twitter  TwitterConfig  `mapstructure:"twitter" yaml:"twitter"`
}

// Config is the immutable, process-lifetime configuration loaded once at
// startup.
type Config struct {
	Programs                map[string]ProgramSpec
	Notifications            NotificationsConfig
	ExplorerURL               string
	MessageTemplates          map[string]string
	NotificationConcurrency   int
	// USDThresholds is the reserved, unimplemented USD-denominated
	// threshold section (spec.md §1 Non-goals / §9 Open Question).
	// Parsed but never interpreted.
	USDThresholds map[string]interface{}
}

// DestinationsReferenced returns the set of every destination name
// mentioned anywhere in the config's threshold notifications.
func (c *Config) DestinationsReferenced() map[DestinationID]struct{} {
	set := make(map[DestinationID]struct{})
	for _, prog := range c.Programs {
		for _, rule := range prog.Instructions {
			for _, tl := range rule.Thresholds {
				for _, th := range tl.Thresholds {
					for _, d := range th.Notification.Destinations {
						set[d] = struct{}{}
					}
				}
			}
		}
	}
	return set
}
