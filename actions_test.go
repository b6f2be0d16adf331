package xapi

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDMConversationID(t *testing.T) {
	assert.Equal(t, "123-456", DMConversationID("123", "456"))
	assert.Equal(t, "123-456", DMConversationID("456", "123"))
	// Numeric ordering, not lexicographic: 99 < 100.
	assert.Equal(t, "99-100", DMConversationID("100", "99"))
	assert.Equal(t, "5-5", DMConversationID("5", "5"))
}
