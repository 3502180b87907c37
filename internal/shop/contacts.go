package shop

import (
	"context"
	"errors"
	"strings"
	"time"

	"coffee-shop/internal/domain"
)

type ContactInput struct {
	Name    string
	Email   string
	Message string
}

// Contacts stores contact-form messages for the admin inbox.
type Contacts struct {
	store ContactStore
	now   func() time.Time
	newID func() string
}

func NewContacts(store ContactStore) (*Contacts, error) {
	if store == nil {
		return nil, errors.New("shop: contact store must not be nil")
	}
	return &Contacts{store: store, now: utcNow, newID: newID}, nil
}

func (c *Contacts) Submit(ctx context.Context, in ContactInput) (domain.Contact, error) {
	ct := domain.Contact{
		ID:          c.newID(),
		Name:        strings.TrimSpace(in.Name),
		Email:       strings.TrimSpace(in.Email),
		Message:     strings.TrimSpace(in.Message),
		SubmittedAt: c.now(),
		Status:      domain.ContactUnread,
	}
	switch {
	case ct.Name == "" || ct.Message == "":
		return domain.Contact{}, invalid("name_and_message_required")
	case !validEmail(strings.ToLower(ct.Email)):
		return domain.Contact{}, invalid("invalid_email")
	}
	if err := c.store.CreateContact(ctx, ct); err != nil {
		return domain.Contact{}, storeError("contact", err)
	}
	return ct, nil
}

// List returns every message, newest first.
func (c *Contacts) List(ctx context.Context) ([]domain.Contact, error) {
	contacts, err := c.store.ListContacts(ctx)
	if err != nil {
		return nil, storeError("contact", err)
	}
	return contacts, nil
}

func (c *Contacts) SetStatus(ctx context.Context, id, status string) error {
	switch status {
	case domain.ContactUnread, domain.ContactRead, domain.ContactReplied:
	default:
		return invalid("invalid_status")
	}
	if err := c.store.SetContactStatus(ctx, id, status); err != nil {
		return storeError("contact", err)
	}
	return nil
}

func (c *Contacts) Delete(ctx context.Context, id string) error {
	if err := c.store.DeleteContact(ctx, id); err != nil {
		return storeError("contact", err)
	}
	return nil
}
