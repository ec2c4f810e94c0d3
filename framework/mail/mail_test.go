package mail_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/arcframework/arc/framework/mail"
)

func TestArrayMailer_RecordsMessages(t *testing.T) {
	m := mail.NewArrayMailer()

	err := m.Send(context.Background(), mail.Message{
		To:      []string{"alice@example.com"},
		Subject: "Welcome",
		Body:    "Hello Alice",
	})
	require.NoError(t, err)

	sent := m.Sent()
	require.Len(t, sent, 1)
	assert.Equal(t, "Welcome", sent[0].Subject)
}

func TestArrayMailer_SentTo(t *testing.T) {
	m := mail.NewArrayMailer()
	_ = m.Send(context.Background(), mail.Message{To: []string{"a@x.com"}, Subject: "one"})
	_ = m.Send(context.Background(), mail.Message{To: []string{"b@x.com"}, Subject: "two"})
	_ = m.Send(context.Background(), mail.Message{To: []string{"a@x.com", "b@x.com"}, Subject: "three"})

	toA := m.SentTo("a@x.com")
	require.Len(t, toA, 2)
	assert.Equal(t, "one", toA[0].Subject)
	assert.Equal(t, "three", toA[1].Subject)

	assert.Empty(t, m.SentTo("nobody@x.com"))
}

func TestArrayMailer_Reset(t *testing.T) {
	m := mail.NewArrayMailer()
	_ = m.Send(context.Background(), mail.Message{To: []string{"a@x.com"}})

	m.Reset()
	assert.Empty(t, m.Sent())
}

func TestMailers_RejectEmptyRecipients(t *testing.T) {
	ctx := context.Background()

	assert.Error(t, mail.NewArrayMailer().Send(ctx, mail.Message{Subject: "no to"}))
	assert.Error(t, mail.NewLogMailer(nil).Send(ctx, mail.Message{Subject: "no to"}))
}

func TestLogMailer_SendSucceeds(t *testing.T) {
	m := mail.NewLogMailer(nil)
	err := m.Send(context.Background(), mail.Message{To: []string{"a@x.com"}, Subject: "hi"})
	assert.NoError(t, err)
}
