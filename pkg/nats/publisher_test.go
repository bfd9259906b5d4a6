package nats

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSubject(t *testing.T) {
	assert.Equal(t, "events.response_approved", Subject("RESPONSE_APPROVED"))
	assert.Equal(t, "events.withdrawal_completed", Subject("WITHDRAWAL_COMPLETED"))
}
