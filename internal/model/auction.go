package model

import (
	"time"

	"github.com/GoPolymarket/econgate/internal/schema"
	"github.com/google/uuid"
)

type AuctionLot struct {
	LotID       uuid.UUID       `json:"lot_id" validate:"required"`
	SellerID    string          `json:"seller_id" validate:"required"`
	ItemID      string          `json:"item_id" validate:"required"`
	Quantity    int             `json:"quantity" validate:"required,min=1"`
	StartingBid schema.Decimal  `json:"starting_bid" validate:"required,dgte=0"`
	CurrentBid  *schema.Decimal `json:"current_bid,omitempty" validate:"omitempty,dgt=0"`
	BuyoutPrice *schema.Decimal `json:"buyout_price,omitempty" validate:"omitempty,dgt=0"`
	BidCount    int             `json:"bid_count" validate:"gte=0"`
	Status      AuctionStatus   `json:"status" validate:"required,enum"`
	ExpiresAt   time.Time       `json:"expires_at" validate:"required"`
}

type CreateAuctionLotRequest struct {
	SellerID      string          `json:"seller_id" validate:"required"`
	ItemID        string          `json:"item_id" validate:"required"`
	Quantity      int             `json:"quantity" validate:"required,min=1"`
	StartingBid   schema.Decimal  `json:"starting_bid" validate:"required,dgte=0"`
	BuyoutPrice   *schema.Decimal `json:"buyout_price,omitempty" validate:"omitempty,dgt=0"`
	DurationHours int             `json:"duration_hours" validate:"min=1,max=168" default:"24"`
}

func (r CreateAuctionLotRequest) Invariants() []schema.Violation {
	if r.BuyoutPrice == nil || !r.StartingBid.IsSet() {
		return nil
	}
	if r.BuyoutPrice.LessThan(r.StartingBid.Decimal) {
		return []schema.Violation{{
			Field:   "buyout_price",
			Rule:    "buyout_above_start",
			Message: "buyout price must not be below the starting bid " + r.StartingBid.Text(),
		}}
	}
	return nil
}

type CreateAuctionLotResponse struct {
	LotID      uuid.UUID      `json:"lot_id" validate:"required"`
	ListingFee schema.Decimal `json:"listing_fee" validate:"required,dgte=0"`
	ExpiresAt  time.Time      `json:"expires_at" validate:"required"`
}

type BidOnLotRequest struct {
	BidderID string         `json:"bidder_id" validate:"required"`
	Amount   schema.Decimal `json:"amount" validate:"required,dgt=0"`
}

type BidOnLotResponse struct {
	LotID           uuid.UUID       `json:"lotId" validate:"required"`
	BidAmount       schema.Decimal  `json:"bidAmount" validate:"required,dgt=0"`
	IsWinning       bool            `json:"isWinning"`
	HighestOtherBid *schema.Decimal `json:"highestOtherBid,omitempty" validate:"omitempty,dgte=0"`
	PlacedAt        time.Time       `json:"placedAt" validate:"required"`
}

func (r BidOnLotResponse) Invariants() []schema.Violation {
	if !r.IsWinning || r.HighestOtherBid == nil || !r.BidAmount.IsSet() {
		return nil
	}
	if r.BidAmount.LessThan(r.HighestOtherBid.Decimal) {
		return []schema.Violation{{
			Field:   "bidAmount",
			Rule:    "winning_bid_highest",
			Message: "a winning bid cannot be below the highest other bid " + r.HighestOtherBid.Text(),
		}}
	}
	return nil
}

type BuyoutLotResponse struct {
	LotID             uuid.UUID       `json:"lotId" validate:"required"`
	PricePaid         schema.Decimal  `json:"pricePaid" validate:"required,dgt=0"`
	ListedBuyoutPrice schema.Decimal  `json:"listedBuyoutPrice" validate:"required,dgt=0"`
	ExchangeFee       *schema.Decimal `json:"exchangeFee,omitempty" validate:"omitempty,dgte=0"`
	PurchasedAt       time.Time       `json:"purchasedAt" validate:"required"`
}

func (r BuyoutLotResponse) Invariants() []schema.Violation {
	if !r.PricePaid.IsSet() || !r.ListedBuyoutPrice.IsSet() {
		return nil
	}
	if r.PricePaid.LessThan(r.ListedBuyoutPrice.Decimal) {
		return []schema.Violation{{
			Field:   "pricePaid",
			Rule:    "buyout_paid_in_full",
			Message: "price paid is below the listed buyout price " + r.ListedBuyoutPrice.Text(),
		}}
	}
	return nil
}
