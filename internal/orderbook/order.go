package orderbook

import (
	"github.com/google/uuid"

	"abmarket/internal/common"
)

// Settler is how a resting order's owning Agent is notified of a fill or a
// removal, without the orderbook package importing the agent package. The
// matching engine cannot hold a concrete *agent.Agent — that would create
// the Agent<->Order<->OrderList cycle the design explicitly rules out — so
// it holds this narrow interface instead.
type Settler interface {
	// Settle applies the cash/asset transfer for a trade of qty at price on
	// the named venue, from this settler's point of view: side is the side
	// THIS settler traded on (Bid = bought, Ask = sold).
	Settle(venueID int, side common.Side, qty uint64, price, transactionCost float64)

	// Release tells the settler one of its resting orders is no longer on
	// the book (fully filled or cancelled) so it can drop its handle.
	Release(orderID uuid.UUID)
}

// Order is a single resting or in-flight instruction against one venue's
// book. Quantity decrements as it is matched; it is consumed once Qty
// reaches zero. Book-initialization orders carry a nil Agent and skip
// settlement entirely.
type Order struct {
	ID        uuid.UUID
	Side      common.Side
	Type      common.OrderType
	Price     float64 // ignored for market orders
	Qty       uint64
	VenueID   int
	Agent     Settler // nil for book-initialization orders
}

// Filled reports whether the order has no remaining quantity.
func (o *Order) Filled() bool {
	return o.Qty == 0
}

// NewOrder constructs an order with a fresh identity. Price is rounded to
// the book's 1-decimal convention immediately so every comparison downstream
// sees the canonical value.
func NewOrder(side common.Side, typ common.OrderType, price float64, qty uint64, venueID int, agent Settler) *Order {
	return &Order{
		ID:      uuid.New(),
		Side:    side,
		Type:    typ,
		Price:   common.RoundPrice(price),
		Qty:     qty,
		VenueID: venueID,
		Agent:   agent,
	}
}
