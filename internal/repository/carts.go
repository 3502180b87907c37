package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"

	"coffee-shop/internal/domain"
)

func cartPK(userID string) string {
	return "CART#" + userID
}

func cartSK(productID string) string {
	return skCartPrefix + productID
}

// AddCartItem atomically increments the quantity of a cart line, creating
// it when missing, and returns the new quantity.
func (c *Client) AddCartItem(ctx context.Context, userID, productID string, quantity int) (int, error) {
	if userID == "" || productID == "" {
		return 0, errors.New("repository: AddCartItem: user id and product id are required")
	}
	out, err := c.api.UpdateItem(ctx, &dynamodb.UpdateItemInput{
		TableName:        aws.String(c.tableName),
		Key:              itemKey(cartPK(userID), cartSK(productID)),
		UpdateExpression: aws.String("ADD #q :q SET userId = :u, productId = :p"),
		ExpressionAttributeNames: map[string]string{
			"#q": "quantity",
		},
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":q": iAttr(quantity),
			":u": sAttr(userID),
			":p": sAttr(productID),
		},
		ReturnValues: types.ReturnValueUpdatedNew,
	})
	if err != nil {
		return 0, fmt.Errorf("repository: AddCartItem: %w", err)
	}
	q, err := intAttr(out.Attributes, "quantity")
	if err != nil {
		return 0, fmt.Errorf("repository: AddCartItem decode quantity: %w", err)
	}
	return q, nil
}

// ListCart returns the lines of a user's cart.
func (c *Client) ListCart(ctx context.Context, userID string) ([]domain.CartLine, error) {
	items, err := c.queryPartition(ctx, cartPK(userID), skCartPrefix, nil)
	if err != nil {
		return nil, fmt.Errorf("repository: ListCart query: %w", err)
	}
	lines := make([]domain.CartLine, 0, len(items))
	for _, item := range items {
		productID, err := strAttr(item, "productId")
		if err != nil {
			return nil, fmt.Errorf("repository: ListCart unmarshal: %w", err)
		}
		q, err := intAttr(item, "quantity")
		if err != nil {
			return nil, fmt.Errorf("repository: ListCart unmarshal: %w", err)
		}
		lines = append(lines, domain.CartLine{UserID: userID, ProductID: productID, Quantity: q})
	}
	return lines, nil
}
