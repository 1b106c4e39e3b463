package dto

import (
	"time"

	"github.com/agah-solutions/forge/internal/entity"
)

// OrderResponse represents an order as exposed via transport layers. Prices
// are serialised as fixed two-decimal strings.
type OrderResponse struct {
	Number                  string              `json:"number"`
	State                   string              `json:"state"`
	CustomerName            string              `json:"customer_name"`
	CustomerEmail           string              `json:"customer_email"`
	CustomerPhone           string              `json:"customer_phone,omitempty"`
	EstimatedPrice          string              `json:"estimated_price"`
	FinalPrice              *string             `json:"final_price"`
	EstimatedCompletionDays int                 `json:"estimated_completion_days,omitempty"`
	AdditionalNotes         string              `json:"additional_notes,omitempty"`
	AssignedUserID          *int64              `json:"assigned_user_id,omitempty"`
	Items                   []OrderItemResponse `json:"items"`
	CreatedAt               time.Time           `json:"created_at"`
	UpdatedAt               time.Time           `json:"updated_at"`
}

// OrderItemResponse represents one order line.
type OrderItemResponse struct {
	ID                 int64   `json:"id"`
	ServiceID          int64   `json:"service_id"`
	ServiceFamily      string  `json:"service_family,omitempty"`
	Description        string  `json:"description,omitempty"`
	Quantity           int     `json:"quantity"`
	Length             *string `json:"length_in,omitempty"`
	Width              *string `json:"width_in,omitempty"`
	Height             *string `json:"height_in,omitempty"`
	DesignMinutes      *int    `json:"design_minutes,omitempty"`
	ProcessMinutes     *int    `json:"process_minutes,omitempty"`
	PostProcessMinutes *int    `json:"post_process_minutes,omitempty"`
	MaterialCost       *string `json:"material_cost,omitempty"`
	MaterialUsedGrams  *string `json:"material_used_grams,omitempty"`
	Consumables        *string `json:"consumables,omitempty"`
	NeedsCustomDesign  bool    `json:"needs_custom_design"`
	CustomDesignPrice  *string `json:"custom_design_price,omitempty"`
	EstimatedUnitPrice string  `json:"estimated_unit_price"`
	FinalUnitPrice     *string `json:"final_unit_price"`
	EstimatedTotal     string  `json:"estimated_total"`
	FinalTotal         *string `json:"final_total"`
}

// ServiceTypeResponse represents a catalog entry.
type ServiceTypeResponse struct {
	ID               int64  `json:"id"`
	Slug             string `json:"slug"`
	Name             string `json:"name"`
	Description      string `json:"description,omitempty"`
	ShortDescription string `json:"short_description,omitempty"`
	Family           string `json:"family,omitempty"`
	BasePrice        string `json:"base_price"`
	IsFeatured       bool   `json:"is_featured"`
	DisplayOrder     int    `json:"display_order"`
}

// FromOrder maps an order aggregate to its response shape.
func FromOrder(order *entity.Order) OrderResponse {
	resp := OrderResponse{
		Number:                  order.Number,
		State:                   string(order.State),
		CustomerName:            order.CustomerName,
		CustomerEmail:           order.CustomerEmail,
		CustomerPhone:           order.CustomerPhone,
		EstimatedPrice:          order.EstimatedPrice.StringFixed(2),
		EstimatedCompletionDays: order.EstimatedCompletionDays,
		AdditionalNotes:         order.AdditionalNotes,
		AssignedUserID:          order.AssignedUserID,
		Items:                   make([]OrderItemResponse, 0, len(order.Items)),
		CreatedAt:               order.CreatedAt,
		UpdatedAt:               order.UpdatedAt,
	}
	if order.FinalPrice.Valid {
		price := order.FinalPrice.Decimal.StringFixed(2)
		resp.FinalPrice = &price
	}
	for _, item := range order.Items {
		resp.Items = append(resp.Items, FromOrderItem(item))
	}
	return resp
}

// FromOrders maps a list of orders.
func FromOrders(orders []*entity.Order) []OrderResponse {
	out := make([]OrderResponse, 0, len(orders))
	for _, order := range orders {
		out = append(out, FromOrder(order))
	}
	return out
}

// FromOrderItem maps one order line to its response shape.
func FromOrderItem(item *entity.OrderItem) OrderItemResponse {
	resp := OrderItemResponse{
		ID:                 item.ID,
		ServiceID:          item.ServiceID,
		ServiceFamily:      string(item.ServiceFamily),
		Description:        item.Description,
		Quantity:           item.Quantity,
		Length:             nullFixed(item.Length.Valid, item.Length.Decimal.String),
		Width:              nullFixed(item.Width.Valid, item.Width.Decimal.String),
		Height:             nullFixed(item.Height.Valid, item.Height.Decimal.String),
		DesignMinutes:      item.DesignMinutes,
		ProcessMinutes:     item.ProcessMinutes,
		PostProcessMinutes: item.PostProcessMinutes,
		MaterialCost:       nullFixed(item.MaterialCost.Valid, item.MaterialCost.Decimal.String),
		MaterialUsedGrams:  nullFixed(item.MaterialUsedGrams.Valid, item.MaterialUsedGrams.Decimal.String),
		Consumables:        nullFixed(item.Consumables.Valid, item.Consumables.Decimal.String),
		NeedsCustomDesign:  item.NeedsCustomDesign,
		CustomDesignPrice:  nullFixed(item.CustomDesignPrice.Valid, func() string { return item.CustomDesignPrice.Decimal.StringFixed(2) }),
		EstimatedUnitPrice: item.EstimatedUnitPrice.StringFixed(2),
		EstimatedTotal:     item.EstimatedTotal().StringFixed(2),
	}
	if item.FinalUnitPrice.Valid {
		unit := item.FinalUnitPrice.Decimal.StringFixed(2)
		total := item.FinalTotal().StringFixed(2)
		resp.FinalUnitPrice = &unit
		resp.FinalTotal = &total
	}
	return resp
}

// FromServiceType maps a catalog entry to its response shape.
func FromServiceType(service *entity.ServiceType) ServiceTypeResponse {
	return ServiceTypeResponse{
		ID:               service.ID,
		Slug:             service.Slug,
		Name:             service.Name,
		Description:      service.Description,
		ShortDescription: service.ShortDescription,
		Family:           string(service.Family),
		BasePrice:        service.BasePrice.StringFixed(2),
		IsFeatured:       service.IsFeatured,
		DisplayOrder:     service.DisplayOrder,
	}
}

// FromServiceTypes maps a list of catalog entries.
func FromServiceTypes(services []*entity.ServiceType) []ServiceTypeResponse {
	out := make([]ServiceTypeResponse, 0, len(services))
	for _, service := range services {
		out = append(out, FromServiceType(service))
	}
	return out
}

func nullFixed(valid bool, render func() string) *string {
	if !valid {
		return nil
	}
	s := render()
	return &s
}
