package pattern_attack

import (
	"regexp"

	"github.com/sentinel-seed/sentinel/pkg/types"
)

// attackPatterns holds the literal pattern tables per attack class. The
// tables are static data; detection logic lives in the detector.
var attackPatterns = map[types.AttackType][]*regexp.Regexp{
	types.AttackJailbreak: {
		regexp.MustCompile(`(?i)ignore (?:all |any )?(?:previous|prior|above|earlier) (?:instructions|directions|rules|prompts)`),
		regexp.MustCompile(`(?i)\byou are (?:now )?(?:DAN\b|free (?:of|from) (?:all )?restrictions)`),
		regexp.MustCompile(`(?i)\b(?:enable|enter|activate|switch to) (?:developer|god|jailbreak|unrestricted) mode\b`),
		regexp.MustCompile(`(?i)\bwithout (?:any )?(?:restrictions|limitations|filters|censorship|your guidelines)\b`),
		regexp.MustCompile(`(?i)\bdo anything now\b`),
		regexp.MustCompile(`(?i)\b(?:no longer|not) (?:bound|restricted|limited) by (?:your|any) (?:rules|guidelines|programming)\b`),
		regexp.MustCompile(`(?i)\bforget (?:everything|all) (?:you were|you've been) (?:told|taught|instructed)\b`),
	},
	types.AttackInjection: {
		regexp.MustCompile(`(?i)\b(?:reveal|show|print|repeat|output) (?:your|the) (?:system|initial|hidden) (?:prompt|message|instructions)\b`),
		regexp.MustCompile(`(?i)\bdisregard (?:your|the|any) (?:guidelines|instructions|system prompt|safety)`),
		regexp.MustCompile(`(?i)\bnew instructions?\s*:`),
		regexp.MustCompile(`(?i)\byour (?:true|real|actual|hidden) (?:purpose|instructions|directives)\b`),
		regexp.MustCompile(`(?i)\boverride (?:your|the|all) (?:instructions|programming|configuration)\b`),
		regexp.MustCompile(`(?i)<\s*/?system\s*>`),
	},
	types.AttackHarmfulRequest: {
		regexp.MustCompile(`(?i)\bhow to (?:make|build|create|construct|synthesize) (?:a |an )?(?:bomb|explosive|weapon|gun|poison|nerve agent|bioweapon)`),
		regexp.MustCompile(`(?i)\b(?:make|build|brew|synthesize) (?:a |an |some )?(?:bomb|explosives?|meth|napalm|ricin)\b`),
		regexp.MustCompile(`(?i)\bhow to (?:hack|break into|steal|launder)\b`),
		regexp.MustCompile(`(?i)\bstep[- ]by[- ]step (?:guide|instructions) (?:for|to) (?:making|building|hacking|stealing)\b`),
		regexp.MustCompile(`(?i)\b(?:kill|poison|hurt) (?:someone|a person|my neighbor)\b`),
		regexp.MustCompile(`(?i)\buntraceable (?:gun|weapon|poison)\b`),
	},
	types.AttackRoleplay: {
		regexp.MustCompile(`(?i)\bpretend (?:you are|to be|you're) \b`),
		regexp.MustCompile(`(?i)\blet'?s play a (?:game|role|character)\b`),
		regexp.MustCompile(`(?i)\b(?:act|roleplay) as (?:a |an |my )?(?:evil|unrestricted|uncensored|unfiltered)`),
		regexp.MustCompile(`(?i)\bin this (?:fictional|hypothetical) (?:story|world|scenario)[^.]*\b(?:anything is allowed|no rules|no restrictions)\b`),
		regexp.MustCompile(`(?i)\byou (?:must )?stay in character\b`),
		regexp.MustCompile(`(?i)\bmy (?:deceased|late) grandmother (?:used to|would) (?:tell|read) me\b`),
	},
}

// categoryConfidence is the base confidence assigned when at least one
// pattern of the class matches. Additional matches add a small increment.
var categoryConfidence = map[types.AttackType]float64{
	types.AttackJailbreak:      0.85,
	types.AttackInjection:      0.8,
	types.AttackHarmfulRequest: 0.8,
	types.AttackRoleplay:       0.6,
}
