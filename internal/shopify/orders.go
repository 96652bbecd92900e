package shopify

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/gitshopapp/trackpage/internal/models"
)

const displayStatusDelivered = "DELIVERED"

type orderNode struct {
	ID                       string `json:"id"`
	Name                     string `json:"name"`
	CreatedAt                string `json:"createdAt"`
	DisplayFulfillmentStatus string `json:"displayFulfillmentStatus"`
	DisplayFinancialStatus   string `json:"displayFinancialStatus"`
	Customer                 *struct {
		FirstName string `json:"firstName"`
		LastName  string `json:"lastName"`
	} `json:"customer"`
	ShippingAddress *struct {
		FirstName     string `json:"firstName"`
		LastName      string `json:"lastName"`
		Address1      string `json:"address1"`
		City          string `json:"city"`
		ProvinceCode  string `json:"provinceCode"`
		Zip           string `json:"zip"`
		CountryCodeV2 string `json:"countryCodeV2"`
	} `json:"shippingAddress"`
	Fulfillments []fulfillmentNode `json:"fulfillments"`
}

type fulfillmentNode struct {
	Status        string  `json:"status"`
	DisplayStatus string  `json:"displayStatus"`
	CreatedAt     string  `json:"createdAt"`
	DeliveredAt   *string `json:"deliveredAt"`
	TrackingInfo  []struct {
		Number string `json:"number"`
	} `json:"trackingInfo"`
}

type ordersData struct {
	Orders struct {
		Edges []struct {
			Node orderNode `json:"node"`
		} `json:"edges"`
	} `json:"orders"`
}

type metafieldData struct {
	Order *struct {
		Metafield *struct {
			Value     string `json:"value"`
			UpdatedAt string `json:"updatedAt"`
		} `json:"metafield"`
	} `json:"order"`
}

// GetOrderByNumber looks up an order by its display number. Both "1001" and
// "#1001" are accepted.
func (c *Client) GetOrderByNumber(ctx context.Context, number string) (*models.Order, error) {
	name := normalizeOrderNumber(number)
	if name == "" {
		return nil, ErrOrderNotFound
	}

	var data ordersData
	if err := c.execute(ctx, orderByNameQuery, map[string]any{"query": "name:" + name}, &data); err != nil {
		return nil, fmt.Errorf("failed to fetch order %s: %w", name, err)
	}

	for _, edge := range data.Orders.Edges {
		if strings.EqualFold(edge.Node.Name, name) {
			return edge.Node.toModel()
		}
	}
	return nil, ErrOrderNotFound
}

// GetReplacementTracking returns the order's replacement tracking metafield,
// or nil when the order has none.
func (c *Client) GetReplacementTracking(ctx context.Context, orderID string) (*models.ReplacementTracking, error) {
	var data metafieldData
	variables := map[string]any{
		"id":        orderID,
		"namespace": c.namespace,
		"key":       c.key,
	}
	if err := c.execute(ctx, orderMetafieldQuery, variables, &data); err != nil {
		return nil, fmt.Errorf("failed to fetch replacement tracking for %s: %w", orderID, err)
	}

	if data.Order == nil || data.Order.Metafield == nil {
		return nil, nil
	}
	value := strings.TrimSpace(data.Order.Metafield.Value)
	if value == "" {
		return nil, nil
	}

	updatedAt, err := parseTime(data.Order.Metafield.UpdatedAt)
	if err != nil {
		return nil, fmt.Errorf("%w: invalid metafield updatedAt: %w", ErrUnavailable, err)
	}

	return &models.ReplacementTracking{Value: value, UpdatedAt: updatedAt}, nil
}

func normalizeOrderNumber(number string) string {
	trimmed := strings.TrimPrefix(strings.TrimSpace(number), "#")
	trimmed = strings.TrimSpace(trimmed)
	if trimmed == "" {
		return ""
	}
	return "#" + trimmed
}

func (n orderNode) toModel() (*models.Order, error) {
	createdAt, err := parseTime(n.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("%w: invalid order createdAt: %w", ErrUnavailable, err)
	}

	order := &models.Order{
		ID:                n.ID,
		Name:              n.Name,
		CreatedAt:         createdAt,
		FulfillmentStatus: n.DisplayFulfillmentStatus,
		FinancialStatus:   n.DisplayFinancialStatus,
	}

	if addr := n.ShippingAddress; addr != nil {
		order.ShippingAddress = models.ShippingAddress{
			Address1:     addr.Address1,
			City:         addr.City,
			ProvinceCode: addr.ProvinceCode,
			Zip:          addr.Zip,
			CountryCode:  addr.CountryCodeV2,
		}
		order.CustomerName = joinName(addr.FirstName, addr.LastName)
	}
	if order.CustomerName == "" && n.Customer != nil {
		order.CustomerName = joinName(n.Customer.FirstName, n.Customer.LastName)
	}

	for _, node := range n.Fulfillments {
		fulfillment, err := node.toModel()
		if err != nil {
			return nil, err
		}
		order.Fulfillments = append(order.Fulfillments, fulfillment)
	}
	sort.SliceStable(order.Fulfillments, func(i, j int) bool {
		return order.Fulfillments[i].CreatedAt.Before(order.Fulfillments[j].CreatedAt)
	})

	order.IsDelivered, order.DeliveredAt = deliveryState(order.Fulfillments)
	return order, nil
}

func (n fulfillmentNode) toModel() (models.Fulfillment, error) {
	createdAt, err := parseTime(n.CreatedAt)
	if err != nil {
		return models.Fulfillment{}, fmt.Errorf("%w: invalid fulfillment createdAt: %w", ErrUnavailable, err)
	}

	fulfillment := models.Fulfillment{
		Status:         n.Status,
		ShipmentStatus: n.DisplayStatus,
		CreatedAt:      createdAt,
	}
	for _, info := range n.TrackingInfo {
		if number := strings.TrimSpace(info.Number); number != "" {
			fulfillment.TrackingNumbers = append(fulfillment.TrackingNumbers, number)
		}
	}
	if n.DeliveredAt != nil && *n.DeliveredAt != "" {
		deliveredAt, err := parseTime(*n.DeliveredAt)
		if err != nil {
			return models.Fulfillment{}, fmt.Errorf("%w: invalid fulfillment deliveredAt: %w", ErrUnavailable, err)
		}
		fulfillment.DeliveredAt = &deliveredAt
	}
	return fulfillment, nil
}

// deliveryState reports the order as delivered when any fulfillment is. The
// latest known delivery timestamp wins.
func deliveryState(fulfillments []models.Fulfillment) (bool, *time.Time) {
	delivered := false
	var deliveredAt *time.Time
	for _, f := range fulfillments {
		if !strings.EqualFold(f.ShipmentStatus, displayStatusDelivered) && f.DeliveredAt == nil {
			continue
		}
		delivered = true
		if f.DeliveredAt != nil && (deliveredAt == nil || f.DeliveredAt.After(*deliveredAt)) {
			at := *f.DeliveredAt
			deliveredAt = &at
		}
	}
	return delivered, deliveredAt
}

func joinName(first, last string) string {
	return strings.TrimSpace(strings.TrimSpace(first) + " " + strings.TrimSpace(last))
}

func parseTime(value string) (time.Time, error) {
	return time.Parse(time.RFC3339, strings.TrimSpace(value))
}
