package orderbook

import "errors"

// ErrEmptyBook is returned by any operation that needs a best price (spread,
// mid-price) when one side of the book has no
// resting orders. It is non-fatal: callers are expected to skip the action
// for this tick.
var ErrEmptyBook = errors.New("orderbook: empty book")

// ErrInvalidOrder marks a zero- or negative-quantity order. These are
// dropped silently before they ever reach an OrderList.
var ErrInvalidOrder = errors.New("orderbook: invalid order")
