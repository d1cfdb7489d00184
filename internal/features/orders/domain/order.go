package domain

import (
	"time"

	trackingdomain "order-tracker/internal/features/tracking/domain"
)

// OrderRecord is one row of the order store as returned to the customer.
// It is a read-only snapshot; carrier augmentation only changes the in-memory copy.
type OrderRecord struct {
	// OrderName is the business key, e.g. "ST-1001".
	OrderName         string `json:"order_name"`
	Phone             string `json:"phone"`
	Tags              string `json:"tags"`
	FinancialStatus   string `json:"financial_status"`
	FulfillmentStatus string `json:"fulfillment_status"`
	// TrackingURL is either empty or an absolute URL.
	TrackingURL       string `json:"tracking_url"`
	FulfillmentNumber string `json:"fulfillment_number"`
	// CarrierOrderID is the carrier platform identifier as stored, possibly a global id.
	CarrierOrderID string `json:"carrier_order_id,omitempty"`

	CreatedAt           *time.Time `json:"created_at"`
	PaidAt              *time.Time `json:"paid_at"`
	OnfleetCreatedAt    *time.Time `json:"onfleet_created_at"`
	OnfleetDeliveredAt  *time.Time `json:"onfleet_delivered_at"`
	OnfleetFailedAt     *time.Time `json:"onfleet_failed_at"`
	LalamoveDeliveredAt *time.Time `json:"lalamove_delivered_at"`

	ShippingType string `json:"shipping_type"`
	FullAddress  string `json:"full_address"`
	Notes        string `json:"notes"`
	JTLabelURL   string `json:"jt_label_url"`
	JTURL        string `json:"jt_url"`

	// TrackingLookup is attached only when carrier augmentation was attempted.
	TrackingLookup *trackingdomain.TrackingLookup `json:"tracking_lookup,omitempty"`
}

// Stage is the customer-facing progress of an order.
type Stage string

const (
	StagePaymentPending   Stage = "payment_pending"
	StageLocalPreparing   Stage = "local_preparing"
	StageLocalFulfilled   Stage = "local_fulfilled"
	StageForaneoPreparing Stage = "foraneo_preparing"
	StageForaneoShipped   Stage = "foraneo_shipped"
	StageUnknown          Stage = "unknown"
)

// LookupResult is the outcome of a lookup. Order is nil when Found is false.
type LookupResult struct {
	Found bool         `json:"found"`
	Order *OrderRecord `json:"order"`
	Stage Stage        `json:"stage,omitempty"`
}
