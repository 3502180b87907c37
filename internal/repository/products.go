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

func productSK(id string) string {
	return skProductPrefix + id
}

// ListProducts returns every product, oldest first.
func (c *Client) ListProducts(ctx context.Context) ([]domain.Product, error) {
	items, err := c.queryPartition(ctx, pkProducts, skProductPrefix, nil)
	if err != nil {
		return nil, fmt.Errorf("repository: ListProducts query: %w", err)
	}
	products := make([]domain.Product, 0, len(items))
	for _, item := range items {
		p, err := itemToProduct(item)
		if err != nil {
			return nil, fmt.Errorf("repository: ListProducts unmarshal: %w", err)
		}
		products = append(products, p)
	}
	sort.SliceStable(products, func(i, j int) bool {
		return products[i].CreatedAt.Before(products[j].CreatedAt)
	})
	return products, nil
}

// HasProducts reports whether at least one product exists.
func (c *Client) HasProducts(ctx context.Context) (bool, error) {
	out, err := c.api.Query(ctx, &dynamodb.QueryInput{
		TableName:              aws.String(c.tableName),
		KeyConditionExpression: aws.String("PK = :pk AND begins_with(SK, :prefix)"),
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":pk":     sAttr(pkProducts),
			":prefix": sAttr(skProductPrefix),
		},
		Limit: aws.Int32(1),
	})
	if err != nil {
		return false, fmt.Errorf("repository: HasProducts query: %w", err)
	}
	return len(out.Items) > 0, nil
}

// GetProduct returns ErrNotFound for an unknown id.
func (c *Client) GetProduct(ctx context.Context, id string) (domain.Product, error) {
	item, err := c.getItem(ctx, pkProducts, productSK(id))
	if err != nil {
		return domain.Product{}, fmt.Errorf("repository: GetProduct: %w", err)
	}
	p, err := itemToProduct(item)
	if err != nil {
		return domain.Product{}, fmt.Errorf("repository: GetProduct unmarshal: %w", err)
	}
	return p, nil
}

// CreateProduct stores a new product. It returns ErrConflict when the id is taken.
func (c *Client) CreateProduct(ctx context.Context, p domain.Product) error {
	if p.ID == "" {
		return errors.New("repository: CreateProduct: product id is required")
	}
	_, err := c.api.PutItem(ctx, &dynamodb.PutItemInput{
		TableName:           aws.String(c.tableName),
		Item:                productItem(p),
		ConditionExpression: aws.String("attribute_not_exists(PK) AND attribute_not_exists(SK)"),
	})
	if conditionFailed(err) {
		return fmt.Errorf("repository: CreateProduct: %w", ErrConflict)
	}
	if err != nil {
		return fmt.Errorf("repository: CreateProduct: %w", err)
	}
	return nil
}

// SetProductStock updates the stock flag and returns the updated product.
func (c *Client) SetProductStock(ctx context.Context, id string, inStock bool) (domain.Product, error) {
	out, err := c.api.UpdateItem(ctx, &dynamodb.UpdateItemInput{
		TableName:           aws.String(c.tableName),
		Key:                 itemKey(pkProducts, productSK(id)),
		UpdateExpression:    aws.String("SET inStock = :s"),
		ConditionExpression: aws.String("attribute_exists(PK)"),
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":s": bAttr(inStock),
		},
		ReturnValues: types.ReturnValueAllNew,
	})
	if conditionFailed(err) {
		return domain.Product{}, fmt.Errorf("repository: SetProductStock: %w", ErrNotFound)
	}
	if err != nil {
		return domain.Product{}, fmt.Errorf("repository: SetProductStock: %w", err)
	}
	p, err := itemToProduct(out.Attributes)
	if err != nil {
		return domain.Product{}, fmt.Errorf("repository: SetProductStock unmarshal: %w", err)
	}
	return p, nil
}

func productItem(p domain.Product) map[string]types.AttributeValue {
	item := map[string]types.AttributeValue{
		"PK":          sAttr(pkProducts),
		"SK":          sAttr(productSK(p.ID)),
		"productId":   sAttr(p.ID),
		"name":        sAttr(p.Name),
		"image":       sAttr(p.Image),
		"price":       nAttr(p.Price),
		"type":        sAttr(p.Type),
		"description": sAttr(p.Description),
		"inStock":     bAttr(p.InStock),
		"createdAt":   tAttr(p.CreatedAt),
	}
	if p.DiscountPrice != nil {
		item["discountPrice"] = nAttr(*p.DiscountPrice)
	}
	return item
}

func itemToProduct(item map[string]types.AttributeValue) (domain.Product, error) {
	id, err := strAttr(item, "productId")
	if err != nil {
		return domain.Product{}, err
	}
	name, err := strAttr(item, "name")
	if err != nil {
		return domain.Product{}, err
	}
	price, err := floatAttr(item, "price")
	if err != nil {
		return domain.Product{}, err
	}
	discount, err := optFloatAttr(item, "discountPrice")
	if err != nil {
		return domain.Product{}, err
	}
	inStock, err := boolAttrOr(item, "inStock", true)
	if err != nil {
		return domain.Product{}, err
	}
	createdAt, err := timeAttr(item, "createdAt")
	if err != nil {
		return domain.Product{}, err
	}
	return domain.Product{
		ID:            id,
		Name:          name,
		Image:         optStrAttr(item, "image"),
		Price:         price,
		DiscountPrice: discount,
		Type:          optStrAttr(item, "type"),
		Description:   optStrAttr(item, "description"),
		InStock:       inStock,
		CreatedAt:     createdAt,
	}, nil
}
