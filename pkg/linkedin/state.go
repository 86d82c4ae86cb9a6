package linkedin

import (
	"crypto/rand"
	"encoding/base64"
	"encoding/hex"
	"encoding/json"

	"github.com/rotisserie/eris"
)

// statePayload is the JSON carried through the OAuth state parameter. The
// hash ID correlates the callback with the respondent the verification email
// was sent to; the nonce only prevents state reuse across attempts.
type statePayload struct {
	HashID string `json:"hashId,omitempty"`
	Nonce  string `json:"nonce"`
}

// EncodeState packs a hash ID and a fresh nonce into an opaque state token.
func EncodeState(hashID string) (string, error) {
	nonce := make([]byte, 8)
	if _, err := rand.Read(nonce); err != nil {
		return "", eris.Wrap(err, "linkedin: state nonce")
	}
	raw, err := json.Marshal(statePayload{HashID: hashID, Nonce: hex.EncodeToString(nonce)})
	if err != nil {
		return "", eris.Wrap(err, "linkedin: marshal state")
	}
	return base64.RawURLEncoding.EncodeToString(raw), nil
}

// DecodeState recovers the hash ID from an opaque state token. Callers treat
// a failure here as "no hash ID": verification proceeds without attribute
// enrichment rather than aborting.
func DecodeState(state string) (string, error) {
	raw, err := base64.RawURLEncoding.DecodeString(state)
	if err != nil {
		// Tolerate standard (padded) encoding from older clients.
		raw, err = base64.StdEncoding.DecodeString(state)
		if err != nil {
			return "", eris.Wrap(err, "linkedin: decode state")
		}
	}
	var p statePayload
	if err := json.Unmarshal(raw, &p); err != nil {
		return "", eris.Wrap(err, "linkedin: unmarshal state")
	}
	return p.HashID, nil
}
