package policy

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rovshanmuradov/chain-monitor/internal/classifier"
	"github.com/rovshanmuradov/chain-monitor/internal/monconfig"
)

func tier(value float64, description string, dests ...monconfig.DestinationID) monconfig.Threshold {
	return monconfig.Threshold{
		Value: value,
		Notification: monconfig.Notification{
			Description:  description,
			Destinations: dests,
		},
	}
}

func jitoSOLConfig() *monconfig.Config {
	return &monconfig.Config{
		Programs: map[string]monconfig.ProgramSpec{
			"spl_stake_pool": {
				ProgramID: "stakepool111",
				Instructions: map[string]monconfig.InstructionRule{
					"deposit_sol": {
						Bucket: monconfig.BucketLSTs,
						Thresholds: map[string]monconfig.ThresholdList{
							"J1toso1...": {Thresholds: []monconfig.Threshold{
								tier(0.1, "JitoSOL stake deposit detected", monconfig.DestSlack, monconfig.DestTwitter),
								tier(1000, "Large JitoSOL stake deposit detected", monconfig.DestSlack),
							}},
						},
					},
					"deposit_stake": {
						Bucket: monconfig.BucketLSTs,
						Thresholds: map[string]monconfig.ThresholdList{
							"J1toso1...": {Thresholds: []monconfig.Threshold{
								tier(0.1, "JitoSOL stake deposit detected", monconfig.DestSlack, monconfig.DestTwitter),
								tier(1000, "Large JitoSOL stake deposit detected", monconfig.DestSlack),
							}},
						},
					},
					"increase_validator_stake": {
						Bucket: monconfig.BucketStakePools,
						Thresholds: map[string]monconfig.ThresholdList{
							"Jito4AP...": {Thresholds: []monconfig.Threshold{
								tier(0.1, "tier-1", monconfig.DestSlack),
								tier(100, "tier-2", monconfig.DestDiscord),
								tier(1000, "tier-3", monconfig.DestTelegram),
								tier(10000, "tier-4", monconfig.DestTwitter),
							}},
						},
					},
				},
			},
			"jito_vault": {
				ProgramID: "vault111",
				Instructions: map[string]monconfig.InstructionRule{
					"mint_to": {
						Bucket: monconfig.BucketVRTs,
						Thresholds: map[string]monconfig.ThresholdList{
							"CXSLcb8...": {Thresholds: []monconfig.Threshold{
								tier(0.1, "desc-0.1", monconfig.DestSlack, monconfig.DestTwitter),
								tier(1000, "desc-1000", monconfig.DestTelegram),
								tier(5000, "desc-5000", monconfig.DestSlack, monconfig.DestTelegram),
							}},
						},
					},
				},
			},
		},
		MessageTemplates: map[string]string{
			"default": "[{{currency_unit}}] {{description}}: {{amount}} ({{tx_hash}})",
		},
	}
}

func TestResolve_Scenario1_SmallDepositBelowAnyThreshold_NoNotifications(t *testing.T) {
	e := New(jitoSOLConfig())
	out := e.Resolve(classifier.Event{
		ProgramAlias:    "spl_stake_pool",
		InstructionName: "deposit_sol",
		AssetKey:        "J1toso1...",
		AmountHuman:     decimal.NewFromFloat(0.05),
		CurrencyUnit:    classifier.UnitSOL,
	})
	assert.Empty(t, out)
}

func TestResolve_Scenario2_MidTierJitoSOLStakeDeposit(t *testing.T) {
	e := New(jitoSOLConfig())
	out := e.Resolve(classifier.Event{
		ProgramAlias:         "spl_stake_pool",
		InstructionName:      "deposit_stake",
		AssetKey:             "J1toso1...",
		AmountHuman:          decimal.NewFromFloat(1500),
		CurrencyUnit:         classifier.UnitSOL,
		TransactionSignature: "sig",
	})
	require.Len(t, out, 3)
	var slackCount, twitterCount int
	for _, n := range out {
		switch n.Destination {
		case monconfig.DestSlack:
			slackCount++
		case monconfig.DestTwitter:
			twitterCount++
		}
	}
	assert.Equal(t, 2, slackCount)
	assert.Equal(t, 1, twitterCount)
}

func TestResolve_Scenario3_WhaleValidatorStakeIncrease_FourDescriptionsFire(t *testing.T) {
	e := New(jitoSOLConfig())
	out := e.Resolve(classifier.Event{
		ProgramAlias:    "spl_stake_pool",
		InstructionName: "increase_validator_stake",
		AssetKey:        "Jito4AP...",
		AmountHuman:     decimal.NewFromFloat(12000),
		CurrencyUnit:    classifier.UnitSOL,
	})
	require.Len(t, out, 4)
}

func TestResolve_Scenario4_VaultMintCascade(t *testing.T) {
	e := New(jitoSOLConfig())
	out := e.Resolve(classifier.Event{
		ProgramAlias:    "jito_vault",
		InstructionName: "mint_to",
		AssetKey:        "CXSLcb8...",
		AmountHuman:     decimal.NewFromFloat(5000),
		CurrencyUnit:    classifier.UnitVRT,
	})
	require.Len(t, out, 5)
	var slack, telegram, twitter int
	for _, n := range out {
		switch n.Destination {
		case monconfig.DestSlack:
			slack++
		case monconfig.DestTelegram:
			telegram++
		case monconfig.DestTwitter:
			twitter++
		}
	}
	assert.Equal(t, 2, slack)
	assert.Equal(t, 2, telegram)
	assert.Equal(t, 1, twitter)
}

func TestResolve_Scenario5_UnknownAssetKey_NoNotifications(t *testing.T) {
	e := New(jitoSOLConfig())
	out := e.Resolve(classifier.Event{
		ProgramAlias:    "spl_stake_pool",
		InstructionName: "deposit_sol",
		AssetKey:        "UnknownMint...",
		AmountHuman:     decimal.NewFromFloat(99999),
		CurrencyUnit:    classifier.UnitSOL,
	})
	assert.Empty(t, out)
}

func TestResolve_ThresholdMonotonicity(t *testing.T) {
	cfg := jitoSOLConfig()
	e := New(cfg)
	amount := decimal.NewFromFloat(100)
	out := e.Resolve(classifier.Event{
		ProgramAlias:    "spl_stake_pool",
		InstructionName: "increase_validator_stake",
		AssetKey:        "Jito4AP...",
		AmountHuman:     amount,
		CurrencyUnit:    classifier.UnitSOL,
	})
	// 0.1 and 100 tiers match (value <= 100); 1000 and 10000 do not.
	require.Len(t, out, 2)
}

func TestResolve_ExactZeroAmount_MatchesNothing(t *testing.T) {
	e := New(jitoSOLConfig())
	out := e.Resolve(classifier.Event{
		ProgramAlias:    "spl_stake_pool",
		InstructionName: "deposit_sol",
		AssetKey:        "J1toso1...",
		AmountHuman:     decimal.Zero,
		CurrencyUnit:    classifier.UnitSOL,
	})
	assert.Empty(t, out)
}

func TestResolve_UnknownProgramAlias_NoNotifications(t *testing.T) {
	e := New(jitoSOLConfig())
	out := e.Resolve(classifier.Event{
		ProgramAlias:    "unknown_program",
		InstructionName: "deposit_sol",
		AssetKey:        "J1toso1...",
		AmountHuman:     decimal.NewFromFloat(5000),
	})
	assert.Empty(t, out)
}

func TestResolve_IsDeterministic(t *testing.T) {
	cfg := jitoSOLConfig()
	ev := classifier.Event{
		ProgramAlias:         "jito_vault",
		InstructionName:      "mint_to",
		AssetKey:             "CXSLcb8...",
		AmountHuman:          decimal.NewFromFloat(5000),
		CurrencyUnit:         classifier.UnitVRT,
		TransactionSignature: "sig-determinism",
	}
	first := New(cfg).Resolve(ev)
	second := New(cfg).Resolve(ev)
	assert.Equal(t, first, second)
}

func TestFormatAmount_TrimsTrailingZerosAndTruncatesTo9Digits(t *testing.T) {
	cases := []struct {
		in   decimal.Decimal
		want string
	}{
		{decimal.NewFromFloat(1500), "1500"},
		{decimal.NewFromFloat(2.5), "2.5"},
		{decimal.RequireFromString("0.123456789123"), "0.123456789"},
		{decimal.Zero, "0"},
	}
	for _, c := range cases {
		assert.Equal(t, c.want, formatAmount(c.in))
	}
}

func TestRender_TemplateSubstitutionIdempotence(t *testing.T) {
	tmpl := "[{{currency_unit}}] {{description}}: {{amount}} ({{tx_hash}}) {{explorer_url}}"
	ev := classifier.Event{
		AmountHuman:          decimal.NewFromFloat(1500),
		CurrencyUnit:         classifier.UnitSOL,
		TransactionSignature: "abc123",
	}
	out := render(tmpl, "JitoSOL stake deposit detected", ev, "https://explorer.solana.com")
	assert.NotContains(t, out, "{{")
	assert.Contains(t, out, "JitoSOL stake deposit detected")
	assert.Contains(t, out, "abc123")
}

func TestRender_UnknownPlaceholder_LeftLiteral(t *testing.T) {
	tmpl := "{{description}} {{unknown_field}}"
	out := render(tmpl, "desc", classifier.Event{}, "")
	assert.Contains(t, out, "{{unknown_field}}")
}

func TestRender_ExplorerURL_JoinsConfiguredBaseWithTxHash(t *testing.T) {
	tmpl := "{{description}}: see {{explorer_url}}"
	ev := classifier.Event{TransactionSignature: "sig-abc"}
	out := render(tmpl, "desc", ev, "https://explorer.solana.com/")
	assert.Contains(t, out, "https://explorer.solana.com/tx/sig-abc")
}

func TestRender_ExplorerURL_EmptyWhenNotConfigured(t *testing.T) {
	tmpl := "{{explorer_url}}"
	out := render(tmpl, "desc", classifier.Event{TransactionSignature: "sig-abc"}, "")
	assert.Equal(t, "", out)
}

func TestResolve_ThreadsExplorerURLIntoRenderedMessage(t *testing.T) {
	cfg := jitoSOLConfig()
	cfg.ExplorerURL = "https://explorer.solana.com"
	cfg.MessageTemplates["default"] = "{{description}} {{explorer_url}}"

	e := New(cfg)
	out := e.Resolve(classifier.Event{
		ProgramAlias:         "spl_stake_pool",
		InstructionName:      "deposit_sol",
		AssetKey:             "J1toso1...",
		AmountHuman:          decimal.NewFromFloat(5000),
		CurrencyUnit:         classifier.UnitSOL,
		TransactionSignature: "sig-xyz",
	})
	require.NotEmpty(t, out)
	assert.Contains(t, out[0].Message, "https://explorer.solana.com/tx/sig-xyz")
}

func TestSelectTemplate_FallsBackToDefault(t *testing.T) {
	templates := map[string]string{"default": "default-tmpl", "slack": "slack-tmpl"}
	assert.Equal(t, "slack-tmpl", selectTemplate(templates, monconfig.DestSlack))
	assert.Equal(t, "default-tmpl", selectTemplate(templates, monconfig.DestDiscord))
}
