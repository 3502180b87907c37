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

// MaxOrderProducts bounds the distinct products of one order so that the
// order, its counters and the cart clean-up fit in a single transaction.
const MaxOrderProducts = 49

func orderSK(id string) string {
	return skOrderPrefix + id
}

// PlaceOrder writes the order, increments the per-product counters and
// removes the ordered products from the user's cart, all in one transaction.
func (c *Client) PlaceOrder(ctx context.Context, o domain.Order) error {
	if o.ID == "" || o.UserID == "" {
		return errors.New("repository: PlaceOrder: order id and user id are required")
	}
	totals := aggregateItems(o.Items)
	if len(totals) == 0 {
		return errors.New("repository: PlaceOrder: order has no items")
	}
	if len(totals) > MaxOrderProducts {
		return fmt.Errorf("repository: PlaceOrder: %d products exceed the limit of %d", len(totals), MaxOrderProducts)
	}

	tx := make([]types.TransactWriteItem, 0, 1+2*len(totals))
	tx = append(tx, types.TransactWriteItem{
		Put: &types.Put{
			TableName:           aws.String(c.tableName),
			Item:                orderItem(o),
			ConditionExpression: aws.String("attribute_not_exists(PK) AND attribute_not_exists(SK)"),
		},
	})
	for _, t := range totals {
		tx = append(tx, types.TransactWriteItem{
			Update: &types.Update{
				TableName:        aws.String(c.tableName),
				Key:              itemKey(pkStats, productSK(t.productID)),
				UpdateExpression: aws.String("ADD timesOrdered :q, totalRevenue :r SET productId = :p"),
				ExpressionAttributeValues: map[string]types.AttributeValue{
					":q": iAttr(t.quantity),
					":r": nAttr(t.revenue),
					":p": sAttr(t.productID),
				},
			},
		})
		tx = append(tx, types.TransactWriteItem{
			Delete: &types.Delete{
				TableName: aws.String(c.tableName),
				Key:       itemKey(cartPK(o.UserID), cartSK(t.productID)),
			},
		})
	}

	_, err := c.api.TransactWriteItems(ctx, &dynamodb.TransactWriteItemsInput{TransactItems: tx})
	if conditionFailed(err) {
		return fmt.Errorf("repository: PlaceOrder: %w", ErrConflict)
	}
	if err != nil {
		return fmt.Errorf("repository: PlaceOrder: %w", err)
	}
	return nil
}

type productTotal struct {
	productID string
	quantity  int
	revenue   float64
}

func aggregateItems(items []domain.OrderItem) []productTotal {
	index := make(map[string]int, len(items))
	var out []productTotal
	for _, it := range items {
		i, ok := index[it.ProductID]
		if !ok {
			i = len(out)
			index[it.ProductID] = i
			out = append(out, productTotal{productID: it.ProductID})
		}
		out[i].quantity += it.Quantity
		out[i].revenue += it.Subtotal
	}
	return out
}

// ListOrders returns every order, newest first.
func (c *Client) ListOrders(ctx context.Context) ([]domain.Order, error) {
	return c.listOrders(ctx, "ListOrders", nil)
}

// ListUserOrders returns the orders of one user, newest first.
func (c *Client) ListUserOrders(ctx context.Context, userID string) ([]domain.Order, error) {
	return c.listOrders(ctx, "ListUserOrders", &filterExpr{
		expr:   "userId = :u",
		values: map[string]types.AttributeValue{":u": sAttr(userID)},
	})
}

func (c *Client) listOrders(ctx context.Context, op string, filter *filterExpr) ([]domain.Order, error) {
	items, err := c.queryPartition(ctx, pkOrders, skOrderPrefix, filter)
	if err != nil {
		return nil, fmt.Errorf("repository: %s query: %w", op, err)
	}
	orders := make([]domain.Order, 0, len(items))
	for _, item := range items {
		o, err := itemToOrder(item)
		if err != nil {
			return nil, fmt.Errorf("repository: %s unmarshal: %w", op, err)
		}
		orders = append(orders, o)
	}
	sort.SliceStable(orders, func(i, j int) bool {
		return orders[i].Timestamp.After(orders[j].Timestamp)
	})
	return orders, nil
}

// SetOrderStatus returns ErrNotFound for an unknown order.
func (c *Client) SetOrderStatus(ctx context.Context, id, status string) error {
	_, err := c.api.UpdateItem(ctx, &dynamodb.UpdateItemInput{
		TableName:                aws.String(c.tableName),
		Key:                      itemKey(pkOrders, orderSK(id)),
		UpdateExpression:         aws.String("SET #s = :s"),
		ConditionExpression:      aws.String("attribute_exists(PK)"),
		ExpressionAttributeNames: map[string]string{"#s": "status"},
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":s": sAttr(status),
		},
	})
	if conditionFailed(err) {
		return fmt.Errorf("repository: SetOrderStatus: %w", ErrNotFound)
	}
	if err != nil {
		return fmt.Errorf("repository: SetOrderStatus: %w", err)
	}
	return nil
}

// ListProductStats returns the popularity counters of every ordered product.
func (c *Client) ListProductStats(ctx context.Context) ([]domain.ProductStats, error) {
	items, err := c.queryPartition(ctx, pkStats, skProductPrefix, nil)
	if err != nil {
		return nil, fmt.Errorf("repository: ListProductStats query: %w", err)
	}
	stats := make([]domain.ProductStats, 0, len(items))
	for _, item := range items {
		id, err := strAttr(item, "productId")
		if err != nil {
			return nil, fmt.Errorf("repository: ListProductStats unmarshal: %w", err)
		}
		times, err := intAttr(item, "timesOrdered")
		if err != nil {
			return nil, fmt.Errorf("repository: ListProductStats unmarshal: %w", err)
		}
		revenue, err := floatAttr(item, "totalRevenue")
		if err != nil {
			return nil, fmt.Errorf("repository: ListProductStats unmarshal: %w", err)
		}
		stats = append(stats, domain.ProductStats{ProductID: id, TimesOrdered: times, TotalRevenue: revenue})
	}
	return stats, nil
}

func orderItem(o domain.Order) map[string]types.AttributeValue {
	lines := make([]types.AttributeValue, 0, len(o.Items))
	for _, it := range o.Items {
		lines = append(lines, &types.AttributeValueMemberM{Value: map[string]types.AttributeValue{
			"productId": sAttr(it.ProductID),
			"name":      sAttr(it.Name),
			"price":     nAttr(it.Price),
			"quantity":  iAttr(it.Quantity),
			"subtotal":  nAttr(it.Subtotal),
		}})
	}
	return map[string]types.AttributeValue{
		"PK":          sAttr(pkOrders),
		"SK":          sAttr(orderSK(o.ID)),
		"orderId":     sAttr(o.ID),
		"userId":      sAttr(o.UserID),
		"items":       &types.AttributeValueMemberL{Value: lines},
		"totalAmount": nAttr(o.TotalAmount),
		"status":      sAttr(o.Status),
		"timestamp":   tAttr(o.Timestamp),
	}
}

func itemToOrder(item map[string]types.AttributeValue) (domain.Order, error) {
	id, err := strAttr(item, "orderId")
	if err != nil {
		return domain.Order{}, err
	}
	userID, err := strAttr(item, "userId")
	if err != nil {
		return domain.Order{}, err
	}
	total, err := floatAttr(item, "totalAmount")
	if err != nil {
		return domain.Order{}, err
	}
	ts, err := timeAttr(item, "timestamp")
	if err != nil {
		return domain.Order{}, err
	}
	status := optStrAttr(item, "status")
	if status == "" {
		status = domain.OrderPending
	}

	var lines []domain.OrderItem
	if raw, ok := item["items"].(*types.AttributeValueMemberL); ok {
		lines = make([]domain.OrderItem, 0, len(raw.Value))
		for _, v := range raw.Value {
			m, ok := v.(*types.AttributeValueMemberM)
			if !ok {
				return domain.Order{}, errors.New("repository: order item is not a map")
			}
			line, err := itemToOrderLine(m.Value)
			if err != nil {
				return domain.Order{}, err
			}
			lines = append(lines, line)
		}
	}

	return domain.Order{
		ID:          id,
		UserID:      userID,
		Items:       lines,
		TotalAmount: total,
		Status:      status,
		Timestamp:   ts,
	}, nil
}

func itemToOrderLine(m map[string]types.AttributeValue) (domain.OrderItem, error) {
	productID, err := strAttr(m, "productId")
	if err != nil {
		return domain.OrderItem{}, err
	}
	price, err := floatAttr(m, "price")
	if err != nil {
		return domain.OrderItem{}, err
	}
	quantity, err := intAttr(m, "quantity")
	if err != nil {
		return domain.OrderItem{}, err
	}
	subtotal, err := floatAttr(m, "subtotal")
	if err != nil {
		return domain.OrderItem{}, err
	}
	return domain.OrderItem{
		ProductID: productID,
		Name:      optStrAttr(m, "name"),
		Price:     price,
		Quantity:  quantity,
		Subtotal:  subtotal,
	}, nil
}
