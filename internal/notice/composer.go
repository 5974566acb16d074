// Package notice composes the human-facing notices the bounce state
// machine produces: disabled-delivery warnings, administrative bounce
// notices, and sender-facing rejection bounces. Bodies are rendered with
// Liquid templates; outbound submission goes through an external Sender
// collaborator that may block or fail without affecting caller state.
package notice

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/osteele/liquid"

	"github.com/ignite/listflow/internal/domain"
)

// Sender is the external mail-submission collaborator.
type Sender interface {
	// Send submits one notice. attach, when non-nil, is the original
	// message to include with the notice.
	Send(ctx context.Context, to, from, subject, body string, attach *domain.Message) error
}

// URLs configures the confirmation and member-options endpoints embedded
// in notices.
type URLs struct {
	// ConfirmBase is the confirmation endpoint; the token is appended as
	// a path segment.
	ConfirmBase string
	// OptionsBase is the member options page; list name and member are
	// appended as path segments.
	OptionsBase string
}

// Composer renders and sends notices.
type Composer struct {
	engine    *liquid.Engine
	urls      URLs
	siteOwner string
	sender    Sender
}

// NewComposer creates a composer submitting through the given sender.
// siteOwner is the site-wide administrative contact named in admin
// notices.
func NewComposer(urls URLs, siteOwner string, sender Sender) *Composer {
	return &Composer{
		engine:    liquid.NewEngine(),
		urls:      urls,
		siteOwner: siteOwner,
		sender:    sender,
	}
}

// ConfirmURL builds the confirmation URL for a token:
// <confirmation-endpoint>/<token>.
func (c *Composer) ConfirmURL(token string) string {
	return strings.TrimRight(c.urls.ConfirmBase, "/") + "/" + token
}

// ConfirmSubject builds the companion subject line for a confirmation
// token. The literal "confirm " prefix is a contract with the reply
// processor.
func ConfirmSubject(token string) string {
	return "confirm " + token
}

// OptionsURL builds the member options page URL.
func (c *Composer) OptionsURL(list *domain.List, member string) string {
	return strings.TrimRight(c.urls.OptionsBase, "/") + "/" + list.Name + "/" + member
}

func (c *Composer) render(template string, bindings map[string]any) (string, error) {
	out, err := c.engine.ParseAndRenderString(template, bindings)
	if err != nil {
		return "", fmt.Errorf("notice: render template: %w", err)
	}
	return out, nil
}

// SendDisabledWarning sends the "your delivery is disabled" warning with
// the re-enable confirmation link. The subject is "confirm <token>" so a
// plain reply also redeems the token.
func (c *Composer) SendDisabledWarning(ctx context.Context, list *domain.List, member string, noticesLeft int, token, password string) error {
	body, err := c.render(disabledTemplate, map[string]any{
		"listname":    list.PostingAddress(),
		"noticesleft": strconv.Itoa(noticesLeft),
		"confirmurl":  c.ConfirmURL(token),
		"optionsurl":  c.OptionsURL(list, member),
		"password":    password,
		"owneraddr":   list.OwnerAddress(),
	})
	if err != nil {
		return err
	}
	return c.sender.Send(ctx, member, list.RequestAddress(), ConfirmSubject(token), body, nil)
}

// SendAdminBounceNotice tells the list owner that a member's subscription
// was disabled, attaching the bouncing message for context.
func (c *Composer) SendAdminBounceNotice(ctx context.Context, list *domain.List, member string, original *domain.Message) error {
	body, err := c.render(adminBounceTemplate, map[string]any{
		"listname":  list.PostingAddress(),
		"addr":      member,
		"did":       "disabled",
		"owneraddr": c.siteOwner,
	})
	if err != nil {
		return err
	}
	return c.sender.Send(ctx, list.OwnerAddress(), c.siteOwner,
		"Bounce action notification", body, original)
}

// SendSenderBounce returns an undeliverable message to its sender with
// the failure detail and the original attached.
func (c *Composer) SendSenderBounce(ctx context.Context, list *domain.List, original *domain.Message, detail string) error {
	to := original.Sender()
	if to == "" {
		return fmt.Errorf("notice: original message has no sender")
	}
	body := detail
	if body == "" {
		body = senderBounceDefault
	}
	return c.sender.Send(ctx, to, list.OwnerAddress(), original.Subject(), body, original)
}

// RenderFooter renders the list's footer template for message
// decoration. Satisfies the pipeline's FooterRenderer contract.
func (c *Composer) RenderFooter(list *domain.List) (string, error) {
	return c.render(list.Footer, map[string]any{
		"listname":    list.PostingAddress(),
		"description": list.Description,
		"owneraddr":   list.OwnerAddress(),
	})
}

// FlattenAttachment renders a notice body plus attached message into a
// single text part for senders without MIME support.
func FlattenAttachment(body string, attach *domain.Message) string {
	if attach == nil {
		return body
	}
	var b strings.Builder
	b.WriteString(body)
	b.WriteString(attachmentDivider)
	for key, vals := range attach.Headers {
		for _, v := range vals {
			fmt.Fprintf(&b, "%s: %s\n", key, v)
		}
	}
	b.WriteString("\n")
	b.WriteString(attach.Body)
	return b.String()
}
