package repository

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
)

// Partition and sort keys of the single-table layout.
const (
	pkProducts = "PRODUCTS"
	pkOrders   = "ORDERS"
	pkStats    = "STATS"
	pkContacts = "CONTACTS"
	pkHealth   = "HEALTH"

	skProductPrefix = "PRODUCT#"
	skOrderPrefix   = "ORDER#"
	skContactPrefix = "CONTACT#"
	skCartPrefix    = "ITEM#"
	skProfile       = "PROFILE"
	skEmail         = "EMAIL"
	skPing          = "PING"
)

var (
	// ErrNotFound is returned when the addressed record does not exist.
	ErrNotFound = errors.New("repository: not found")
	// ErrConflict is returned when a record that must be unique already exists.
	ErrConflict = errors.New("repository: conflict")
)

// dynamodbAPI is the minimal DynamoDB interface required by Client.
// Defined here for testability.
type dynamodbAPI interface {
	GetItem(ctx context.Context, in *dynamodb.GetItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.GetItemOutput, error)
	PutItem(ctx context.Context, in *dynamodb.PutItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.PutItemOutput, error)
	UpdateItem(ctx context.Context, in *dynamodb.UpdateItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.UpdateItemOutput, error)
	DeleteItem(ctx context.Context, in *dynamodb.DeleteItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.DeleteItemOutput, error)
	Query(ctx context.Context, in *dynamodb.QueryInput, optFns ...func(*dynamodb.Options)) (*dynamodb.QueryOutput, error)
	TransactWriteItems(ctx context.Context, in *dynamodb.TransactWriteItemsInput, optFns ...func(*dynamodb.Options)) (*dynamodb.TransactWriteItemsOutput, error)
}

// Client wraps the coffee-shop DynamoDB table.
type Client struct {
	api       dynamodbAPI
	tableName string
}

// New creates a new repository Client.
func New(api dynamodbAPI, tableName string) (*Client, error) {
	if api == nil {
		return nil, errors.New("repository: api must not be nil")
	}
	if strings.TrimSpace(tableName) == "" {
		return nil, errors.New("repository: table name must not be empty")
	}
	return &Client{api: api, tableName: tableName}, nil
}

// Ping performs a cheap consistent read to verify the table is reachable.
func (c *Client) Ping(ctx context.Context) error {
	_, err := c.api.GetItem(ctx, &dynamodb.GetItemInput{
		TableName:            aws.String(c.tableName),
		Key:                  itemKey(pkHealth, skPing),
		ProjectionExpression: aws.String("PK"),
	})
	if err != nil {
		return fmt.Errorf("repository: Ping: %w", err)
	}
	return nil
}

func itemKey(pk, sk string) map[string]types.AttributeValue {
	return map[string]types.AttributeValue{
		"PK": sAttr(pk),
		"SK": sAttr(sk),
	}
}

func (c *Client) getItem(ctx context.Context, pk, sk string) (map[string]types.AttributeValue, error) {
	out, err := c.api.GetItem(ctx, &dynamodb.GetItemInput{
		TableName:      aws.String(c.tableName),
		Key:            itemKey(pk, sk),
		ConsistentRead: aws.Bool(true),
	})
	if err != nil {
		return nil, err
	}
	if out == nil || len(out.Item) == 0 {
		return nil, ErrNotFound
	}
	return out.Item, nil
}

// queryPartition returns every item of a partition whose sort key starts
// with prefix, following pagination.
func (c *Client) queryPartition(ctx context.Context, pk, prefix string, filter *filterExpr) ([]map[string]types.AttributeValue, error) {
	in := &dynamodb.QueryInput{
		TableName:              aws.String(c.tableName),
		KeyConditionExpression: aws.String("PK = :pk AND begins_with(SK, :prefix)"),
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":pk":     sAttr(pk),
			":prefix": sAttr(prefix),
		},
	}
	if filter != nil {
		in.FilterExpression = aws.String(filter.expr)
		for k, v := range filter.values {
			in.ExpressionAttributeValues[k] = v
		}
	}

	var items []map[string]types.AttributeValue
	p := dynamodb.NewQueryPaginator(c.api, in)
	for p.HasMorePages() {
		page, err := p.NextPage(ctx)
		if err != nil {
			return nil, err
		}
		items = append(items, page.Items...)
	}
	return items, nil
}

type filterExpr struct {
	expr   string
	values map[string]types.AttributeValue
}

// conditionFailed reports whether err is a failed condition expression,
// either on a single write or inside a cancelled transaction.
func conditionFailed(err error) bool {
	var ccf *types.ConditionalCheckFailedException
	if errors.As(err, &ccf) {
		return true
	}
	var tce *types.TransactionCanceledException
	if errors.As(err, &tce) {
		for _, r := range tce.CancellationReasons {
			if aws.ToString(r.Code) == "ConditionalCheckFailed" {
				return true
			}
		}
	}
	return false
}

func sAttr(v string) types.AttributeValue {
	return &types.AttributeValueMemberS{Value: v}
}

func nAttr(v float64) types.AttributeValue {
	return &types.AttributeValueMemberN{Value: strconv.FormatFloat(v, 'f', -1, 64)}
}

func iAttr(v int) types.AttributeValue {
	return &types.AttributeValueMemberN{Value: strconv.Itoa(v)}
}

func bAttr(v bool) types.AttributeValue {
	return &types.AttributeValueMemberBOOL{Value: v}
}

func tAttr(v time.Time) types.AttributeValue {
	return sAttr(v.UTC().Format(time.RFC3339Nano))
}

func strAttr(item map[string]types.AttributeValue, key string) (string, error) {
	v, ok := item[key]
	if !ok {
		return "", fmt.Errorf("repository: missing attribute %q", key)
	}
	s, ok := v.(*types.AttributeValueMemberS)
	if !ok {
		return "", fmt.Errorf("repository: attribute %q is not a string", key)
	}
	return s.Value, nil
}

// optStrAttr returns "" for a missing or non-string attribute.
func optStrAttr(item map[string]types.AttributeValue, key string) string {
	s, _ := strAttr(item, key)
	return s
}

func numAttr(item map[string]types.AttributeValue, key string) (string, bool, error) {
	v, ok := item[key]
	if !ok {
		return "", false, nil
	}
	n, ok := v.(*types.AttributeValueMemberN)
	if !ok {
		return "", true, fmt.Errorf("repository: attribute %q is not a number", key)
	}
	return n.Value, true, nil
}

func intAttr(item map[string]types.AttributeValue, key string) (int, error) {
	raw, ok, err := numAttr(item, key)
	if err != nil {
		return 0, err
	}
	if !ok {
		return 0, fmt.Errorf("repository: missing attribute %q", key)
	}
	parsed, err := strconv.Atoi(raw)
	if err != nil {
		return 0, fmt.Errorf("repository: parse attribute %q: %w", key, err)
	}
	return parsed, nil
}

func floatAttr(item map[string]types.AttributeValue, key string) (float64, error) {
	f, err := optFloatAttr(item, key)
	if err != nil {
		return 0, err
	}
	if f == nil {
		return 0, fmt.Errorf("repository: missing attribute %q", key)
	}
	return *f, nil
}

// optFloatAttr returns nil for a missing attribute.
func optFloatAttr(item map[string]types.AttributeValue, key string) (*float64, error) {
	raw, ok, err := numAttr(item, key)
	if err != nil || !ok {
		return nil, err
	}
	f, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return nil, fmt.Errorf("repository: parse attribute %q: %w", key, err)
	}
	return &f, nil
}

// boolAttrOr returns def for a missing attribute.
func boolAttrOr(item map[string]types.AttributeValue, key string, def bool) (bool, error) {
	v, ok := item[key]
	if !ok {
		return def, nil
	}
	b, ok := v.(*types.AttributeValueMemberBOOL)
	if !ok {
		return false, fmt.Errorf("repository: attribute %q is not a bool", key)
	}
	return b.Value, nil
}

// timeAttr returns the zero time for a missing attribute.
func timeAttr(item map[string]types.AttributeValue, key string) (time.Time, error) {
	s := optStrAttr(item, key)
	if s == "" {
		return time.Time{}, nil
	}
	t, err := time.Parse(time.RFC3339Nano, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("repository: parse attribute %q: %w", key, err)
	}
	return t, nil
}
