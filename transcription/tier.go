package transcription

import (
	"fmt"
	"strings"

	"github.com/kbukum/audioscribe/errors"
	"github.com/kbukum/audioscribe/util"
)

// Defaults used when neither flags nor config choose.
const (
	DefaultTier     = "medium"
	DefaultLanguage = "fr"
)

// Tiers lists the whisper model sizes in increasing cost.
var Tiers = []string{"tiny", "base", "small", "medium", "large", "large-v2", "large-v3", "turbo"}

// ValidTier reports whether tier names a known model size. English-only
// variants such as "base.en" are accepted.
func ValidTier(tier string) bool {
	return util.Contains(Tiers, strings.TrimSuffix(tier, ".en"))
}

// CheckTier returns INVALID_INPUT for unknown tiers.
func CheckTier(tier string) error {
	if ValidTier(tier) {
		return nil
	}
	return errors.InvalidInput("transcription.tier",
		fmt.Sprintf("unknown model size %q (known: %s)", tier, strings.Join(Tiers, ", ")))
}
