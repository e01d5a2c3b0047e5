package gmailclient

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestBuildMessage(t *testing.T) {
	msg := string(buildMessage("board@example.org", "kari@example.org", "Interview for Treasurer", "See you there"))

	headers, body, found := strings.Cut(msg, "\r\n\r\n")
	assert.True(t, found)
	assert.Equal(t, "See you there", body)
	assert.Contains(t, headers, "From: board@example.org\r\n")
	assert.Contains(t, headers, "To: kari@example.org\r\n")
	assert.Contains(t, headers, "Subject: Interview for Treasurer\r\n")
	assert.Contains(t, headers, "Content-Type: text/plain; charset=\"UTF-8\"")
}

func TestBuildMessage_NoSender(t *testing.T) {
	msg := string(buildMessage("", "kari@example.org", "Interview", "Body"))

	assert.NotContains(t, msg, "From:")
	assert.True(t, strings.HasPrefix(msg, "To: kari@example.org\r\n"))
}

func TestBuildMessage_EncodesNonASCIISubject(t *testing.T) {
	msg := string(buildMessage("", "kari@example.org", "Intervju for kasserer på Høst", "Body"))

	assert.Contains(t, msg, "Subject: =?utf-8?q?")
	assert.NotContains(t, msg, "Høst")
}
