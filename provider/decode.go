package provider

import (
	"github.com/go-viper/mapstructure/v2"

	"github.com/kbukum/audioscribe/errors"
	"github.com/kbukum/audioscribe/validation"
)

// DecodeConfig decodes a factory config map into out using mapstructure
// tags, converting duration strings such as "90s", then validates it.
func DecodeConfig(cfg map[string]any, out any) error {
	dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		Result:           out,
		TagName:          "mapstructure",
		WeaklyTypedInput: true,
		DecodeHook: mapstructure.ComposeDecodeHookFunc(
			mapstructure.StringToTimeDurationHookFunc(),
			mapstructure.StringToSliceHookFunc(","),
		),
	})
	if err != nil {
		return errors.Internal(err)
	}
	if err := dec.Decode(cfg); err != nil {
		return errors.InvalidInput("", err.Error()).WithCause(err)
	}
	return validation.Validate(out)
}
