package signature

import (
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
)

func TestVerify(t *testing.T) {
	surveyID := uuid.New()
	token := Token("s3cret", surveyID, "success")

	assert.Len(t, token, 64)
	assert.True(t, Verify("s3cret", surveyID, "success", token))
	assert.True(t, Verify("s3cret", surveyID, "success", strings.ToUpper(token)))

	assert.False(t, Verify("other", surveyID, "success", token), "different secret")
	assert.False(t, Verify("s3cret", uuid.New(), "success", token), "different survey")
	assert.False(t, Verify("s3cret", surveyID, "disqualified", token), "different outcome")
	assert.False(t, Verify("s3cret", surveyID, "success", "not-hex"))
	assert.False(t, Verify("s3cret", surveyID, "success", ""))
	assert.False(t, Verify("", surveyID, "success", token))
}

func TestTokenIsDeterministic(t *testing.T) {
	surveyID := uuid.New()
	assert.Equal(t, Token("k", surveyID, "quota_complete"), Token("k", surveyID, "quota_complete"))
}
