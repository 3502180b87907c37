package repository

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"

	"coffee-shop/internal/domain"
)

func userPK(id string) string {
	return "USER#" + id
}

// emailPK addresses the record that reserves an email address for one user.
func emailPK(email string) string {
	return "EMAIL#" + normalizeEmail(email)
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// CreateUser stores the profile and reserves its email in one transaction.
// It returns ErrConflict when the email is already registered.
func (c *Client) CreateUser(ctx context.Context, u domain.User) error {
	if u.ID == "" || normalizeEmail(u.Email) == "" {
		return errors.New("repository: CreateUser: id and email are required")
	}
	_, err := c.api.TransactWriteItems(ctx, &dynamodb.TransactWriteItemsInput{
		TransactItems: []types.TransactWriteItem{
			{
				Put: &types.Put{
					TableName: aws.String(c.tableName),
					Item: map[string]types.AttributeValue{
						"PK":     sAttr(emailPK(u.Email)),
						"SK":     sAttr(skEmail),
						"userId": sAttr(u.ID),
					},
					ConditionExpression: aws.String("attribute_not_exists(PK)"),
				},
			},
			{
				Put: &types.Put{
					TableName:           aws.String(c.tableName),
					Item:                userItem(u),
					ConditionExpression: aws.String("attribute_not_exists(PK)"),
				},
			},
		},
	})
	if conditionFailed(err) {
		return fmt.Errorf("repository: CreateUser: %w", ErrConflict)
	}
	if err != nil {
		return fmt.Errorf("repository: CreateUser: %w", err)
	}
	return nil
}

// GetUser returns ErrNotFound for an unknown id.
func (c *Client) GetUser(ctx context.Context, id string) (domain.User, error) {
	item, err := c.getItem(ctx, userPK(id), skProfile)
	if err != nil {
		return domain.User{}, fmt.Errorf("repository: GetUser: %w", err)
	}
	u, err := itemToUser(item)
	if err != nil {
		return domain.User{}, fmt.Errorf("repository: GetUser unmarshal: %w", err)
	}
	return u, nil
}

// GetUserByEmail resolves the email reservation and loads the profile.
func (c *Client) GetUserByEmail(ctx context.Context, email string) (domain.User, error) {
	item, err := c.getItem(ctx, emailPK(email), skEmail)
	if err != nil {
		return domain.User{}, fmt.Errorf("repository: GetUserByEmail: %w", err)
	}
	id, err := strAttr(item, "userId")
	if err != nil {
		return domain.User{}, fmt.Errorf("repository: GetUserByEmail unmarshal: %w", err)
	}
	return c.GetUser(ctx, id)
}

func userItem(u domain.User) map[string]types.AttributeValue {
	return map[string]types.AttributeValue{
		"PK":           sAttr(userPK(u.ID)),
		"SK":           sAttr(skProfile),
		"userId":       sAttr(u.ID),
		"name":         sAttr(u.Name),
		"email":        sAttr(normalizeEmail(u.Email)),
		"passwordHash": sAttr(u.PasswordHash),
	}
}

func itemToUser(item map[string]types.AttributeValue) (domain.User, error) {
	id, err := strAttr(item, "userId")
	if err != nil {
		return domain.User{}, err
	}
	email, err := strAttr(item, "email")
	if err != nil {
		return domain.User{}, err
	}
	return domain.User{
		ID:           id,
		Name:         optStrAttr(item, "name"),
		Email:        email,
		PasswordHash: optStrAttr(item, "passwordHash"),
	}, nil
}
