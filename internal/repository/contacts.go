package repository

import (
	"context"
	"errors"
	"fmt"
	"sort"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"

	"coffee-shop/internal/domain"
)

func contactSK(id string) string {
	return skContactPrefix + id
}

func (c *Client) CreateContact(ctx context.Context, ct domain.Contact) error {
	if ct.ID == "" {
		return errors.New("repository: CreateContact: contact id is required")
	}
	_, err := c.api.PutItem(ctx, &dynamodb.PutItemInput{
		TableName: aws.String(c.tableName),
		Item: map[string]types.AttributeValue{
			"PK":          sAttr(pkContacts),
			"SK":          sAttr(contactSK(ct.ID)),
			"contactId":   sAttr(ct.ID),
			"name":        sAttr(ct.Name),
			"email":       sAttr(ct.Email),
			"message":     sAttr(ct.Message),
			"submittedAt": tAttr(ct.SubmittedAt),
			"status":      sAttr(ct.Status),
		},
		ConditionExpression: aws.String("attribute_not_exists(PK) AND attribute_not_exists(SK)"),
	})
	if conditionFailed(err) {
		return fmt.Errorf("repository: CreateContact: %w", ErrConflict)
	}
	if err != nil {
		return fmt.Errorf("repository: CreateContact: %w", err)
	}
	return nil
}

// ListContacts returns every contact message, newest first.
func (c *Client) ListContacts(ctx context.Context) ([]domain.Contact, error) {
	items, err := c.queryPartition(ctx, pkContacts, skContactPrefix, nil)
	if err != nil {
		return nil, fmt.Errorf("repository: ListContacts query: %w", err)
	}
	contacts := make([]domain.Contact, 0, len(items))
	for _, item := range items {
		id, err := strAttr(item, "contactId")
		if err != nil {
			return nil, fmt.Errorf("repository: ListContacts unmarshal: %w", err)
		}
		submitted, err := timeAttr(item, "submittedAt")
		if err != nil {
			return nil, fmt.Errorf("repository: ListContacts unmarshal: %w", err)
		}
		contacts = append(contacts, domain.Contact{
			ID:          id,
			Name:        optStrAttr(item, "name"),
			Email:       optStrAttr(item, "email"),
			Message:     optStrAttr(item, "message"),
			SubmittedAt: submitted,
			Status:      optStrAttr(item, "status"),
		})
	}
	sort.SliceStable(contacts, func(i, j int) bool {
		return contacts[i].SubmittedAt.After(contacts[j].SubmittedAt)
	})
	return contacts, nil
}

// SetContactStatus returns ErrNotFound for an unknown contact.
func (c *Client) SetContactStatus(ctx context.Context, id, status string) error {
	_, err := c.api.UpdateItem(ctx, &dynamodb.UpdateItemInput{
		TableName:                aws.String(c.tableName),
		Key:                      itemKey(pkContacts, contactSK(id)),
		UpdateExpression:         aws.String("SET #s = :s"),
		ConditionExpression:      aws.String("attribute_exists(PK)"),
		ExpressionAttributeNames: map[string]string{"#s": "status"},
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":s": sAttr(status),
		},
	})
	if conditionFailed(err) {
		return fmt.Errorf("repository: SetContactStatus: %w", ErrNotFound)
	}
	if err != nil {
		return fmt.Errorf("repository: SetContactStatus: %w", err)
	}
	return nil
}

// DeleteContact returns ErrNotFound for an unknown contact.
func (c *Client) DeleteContact(ctx context.Context, id string) error {
	_, err := c.api.DeleteItem(ctx, &dynamodb.DeleteItemInput{
		TableName:           aws.String(c.tableName),
		Key:                 itemKey(pkContacts, contactSK(id)),
		ConditionExpression: aws.String("attribute_exists(PK)"),
	})
	if conditionFailed(err) {
		return fmt.Errorf("repository: DeleteContact: %w", ErrNotFound)
	}
	if err != nil {
		return fmt.Errorf("repository: DeleteContact: %w", err)
	}
	return nil
}
