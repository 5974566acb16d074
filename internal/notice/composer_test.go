package notice

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ignite/listflow/internal/domain"
)

// mockSender captures sent notices.
type mockSender struct {
	sent []sentNotice
}

type sentNotice struct {
	to, from, subject, body string
	attach                  *domain.Message
}

func (m *mockSender) Send(_ context.Context, to, from, subject, body string, attach *domain.Message) error {
	m.sent = append(m.sent, sentNotice{to: to, from: from, subject: subject, body: body, attach: attach})
	return nil
}

func testComposer() (*Composer, *mockSender) {
	sender := &mockSender{}
	c := NewComposer(URLs{
		ConfirmBase: "https://lists.example.com/confirm/",
		OptionsBase: "https://lists.example.com/options",
	}, "site-admin@example.com", sender)
	return c, sender
}

func noticeList() *domain.List {
	return &domain.List{
		ID:          "test.example.com",
		Name:        "test",
		Hostname:    "example.com",
		Description: "A test list",
		Footer:      "-- \n{{ listname }} mailing list\n",
	}
}

func TestSendDisabledWarning_FillsContractVariables(t *testing.T) {
	c, sender := testComposer()
	list := noticeList()
	token := "0123456789abcdef0123456789abcdef01234567"

	err := c.SendDisabledWarning(context.Background(), list, "anne@example.org", 2, token, "hunter2")
	require.NoError(t, err)
	require.Len(t, sender.sent, 1)

	got := sender.sent[0]
	assert.Equal(t, "anne@example.org", got.to)
	assert.Equal(t, "test-request@example.com", got.from)
	assert.Equal(t, "confirm "+token, got.subject)
	assert.Contains(t, got.body, "test@example.com")
	assert.Contains(t, got.body, "2 more reminders")
	assert.Contains(t, got.body, "https://lists.example.com/confirm/"+token)
	assert.Contains(t, got.body, "https://lists.example.com/options/test/anne@example.org")
	assert.Contains(t, got.body, "hunter2")
	assert.Contains(t, got.body, "test-owner@example.com")
	assert.NotContains(t, got.body, "{{", "unrendered template variable leaked")
}

func TestSendAdminBounceNotice_AttachesOriginal(t *testing.T) {
	c, sender := testComposer()
	list := noticeList()
	original := domain.NewMessage("<dsn>")
	original.Set("Subject", "Undelivered Mail Returned to Sender")

	err := c.SendAdminBounceNotice(context.Background(), list, "anne@example.org", original)
	require.NoError(t, err)
	require.Len(t, sender.sent, 1)

	got := sender.sent[0]
	assert.Equal(t, "test-owner@example.com", got.to)
	assert.Equal(t, "site-admin@example.com", got.from)
	assert.Equal(t, "Bounce action notification", got.subject)
	assert.Contains(t, got.body, "anne@example.org")
	assert.Contains(t, got.body, "Subscription disabled.")
	assert.Same(t, original, got.attach)
}

func TestSendSenderBounce_DefaultsDetail(t *testing.T) {
	c, sender := testComposer()
	original := domain.NewMessage("<post>")
	original.Set("From", "Outside Person <outsider@example.net>")
	original.Set("Subject", "a test")

	err := c.SendSenderBounce(context.Background(), noticeList(), original, "")
	require.NoError(t, err)
	require.Len(t, sender.sent, 1)

	got := sender.sent[0]
	assert.Equal(t, "outsider@example.net", got.to)
	assert.Equal(t, "a test", got.subject)
	assert.Equal(t, "[No bounce details are available]", got.body)
	assert.Same(t, original, got.attach)
}

func TestSendSenderBounce_NoSender_Fails(t *testing.T) {
	c, _ := testComposer()
	original := domain.NewMessage("<post>")

	err := c.SendSenderBounce(context.Background(), noticeList(), original, "detail")
	assert.Error(t, err)
}

func TestRenderFooter(t *testing.T) {
	c, _ := testComposer()
	footer, err := c.RenderFooter(noticeList())
	require.NoError(t, err)
	assert.Contains(t, footer, "test@example.com mailing list")
}

func TestFlattenAttachment(t *testing.T) {
	attach := domain.NewMessage("<orig>")
	attach.Set("Subject", "hello")
	attach.Body = "world\n"

	flat := FlattenAttachment("notice body", attach)
	assert.True(t, strings.HasPrefix(flat, "notice body"))
	assert.Contains(t, flat, "subject: hello")
	assert.Contains(t, flat, "world")
}
