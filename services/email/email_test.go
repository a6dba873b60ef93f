package emailsvc_test

import (
	"net/mail"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/codebox/didyoudoit/core"
	"github.com/codebox/didyoudoit/services/email"
)

func Test_consoleService_SendMessages(t *testing.T) {
	conf := &core.Config{AppName: "DidYouDoIt", FromEmail: "noreply@localhost"}
	svc := emailsvc.NewConsoleServiceMock(conf)

	sent := len(emailsvc.SentMessages)
	svc.SendMessages(
		&core.EmailMessage{
			To:      []mail.Address{{Name: "Alice", Address: "alice@test.edu"}},
			Subject: "Welcome aboard",
			BodyStr: "Hi Alice",
		},
		&core.EmailMessage{Subject: "no recipients, dropped"},
		&core.EmailMessage{To: []mail.Address{{Address: "bob@test.edu"}}}, // no content, dropped
	)

	require.Len(t, emailsvc.SentMessages, sent+1)
	msg := emailsvc.SentMessages[len(emailsvc.SentMessages)-1]
	assert.Equal(t, "Welcome aboard", msg.Subject)
	assert.Equal(t, "Hi Alice", msg.TextContent)
	require.Len(t, msg.To, 1)
	assert.Equal(t, "alice@test.edu", msg.To[0].Address)
}
