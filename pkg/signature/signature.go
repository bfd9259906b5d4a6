// Package signature signs and verifies survey callback URLs.
//
// Tokens are scoped to a survey and an outcome, not to a respondent: every
// respondent of a survey shares the same callback URL per outcome.
package signature

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"strings"

	"github.com/google/uuid"
)

// Token returns hex(HMAC-SHA256(secret, "<surveyID>:<outcome>")).
func Token(secret string, surveyID uuid.UUID, outcome string) string {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write([]byte(surveyID.String() + ":" + outcome))
	return hex.EncodeToString(mac.Sum(nil))
}

// Verify compares provided against the expected token in constant time.
func Verify(secret string, surveyID uuid.UUID, outcome, provided string) bool {
	if secret == "" || provided == "" {
		return false
	}
	got, err := hex.DecodeString(strings.ToLower(strings.TrimSpace(provided)))
	if err != nil {
		return false
	}
	want, _ := hex.DecodeString(Token(secret, surveyID, outcome))
	return hmac.Equal(got, want)
}
