package service

import (
	"github.com/tidwall/gjson"
	"github.com/tidwall/sjson"

	"osintbot/internal/config"
)

// BuildEnvelope stamps the branding fields into the upstream payload. Object
// payloads keep their key order and gain the two fields at the end; arrays
// and scalars are wrapped under "result" first. The input must be valid JSON
// (the upstream invoker guarantees that).
func BuildEnvelope(payload []byte, branding config.Branding) []byte {
	parsed := gjson.ParseBytes(payload)

	base := payload
	if !parsed.IsObject() {
		wrapped, err := sjson.SetRawBytes([]byte(`{}`), "result", payload)
		if err != nil {
			return payload
		}
		base = wrapped
	}

	stamped, err := sjson.SetBytes(base, "developer", branding.Developer)
	if err != nil {
		return base
	}
	stamped, err = sjson.SetBytes(stamped, "powered_by", branding.PoweredBy)
	if err != nil {
		return base
	}
	return stamped
}
