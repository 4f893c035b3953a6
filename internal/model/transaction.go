package model

import (
	"database/sql/driver"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

// Direction is the sign convention a reason applies to its quantity.
type Direction string

const (
	DirectionIn     Direction = "in"
	DirectionOut    Direction = "out"
	DirectionAdjust Direction = "adjust"
)

// Reason is a closed set of transaction reasons. Only the package-level
// Reason* values are valid; each one carries its direction.
type Reason struct {
	code      string
	direction Direction
}

var (
	ReasonOpeningBalance = Reason{"opening_balance", DirectionIn}
	ReasonPurchase       = Reason{"purchase", DirectionIn}
	ReasonDonation       = Reason{"donation", DirectionIn}
	ReasonReturn         = Reason{"return", DirectionIn}

	ReasonConsumption = Reason{"consumption", DirectionOut}
	ReasonWriteOff    = Reason{"writeoff", DirectionOut}
	ReasonExpired     = Reason{"expired", DirectionOut}
	ReasonDamaged     = Reason{"damaged", DirectionOut}

	ReasonCorrection = Reason{"correction", DirectionAdjust}
	ReasonStocktake  = Reason{"stocktake", DirectionAdjust}
)

var reasons = map[string]Reason{}

func init() {
	for _, r := range Reasons() {
		reasons[r.code] = r
	}
}

// Reasons lists every valid reason.
func Reasons() []Reason {
	return []Reason{
		ReasonOpeningBalance, ReasonPurchase, ReasonDonation, ReasonReturn,
		ReasonConsumption, ReasonWriteOff, ReasonExpired, ReasonDamaged,
		ReasonCorrection, ReasonStocktake,
	}
}

// ErrUnknownReason is returned by ParseReason for codes outside the table.
type ErrUnknownReason struct {
	Code string
}

func (e ErrUnknownReason) Error() string {
	return fmt.Sprintf("unknown transaction reason %q", e.Code)
}

func ParseReason(code string) (Reason, error) {
	r, ok := reasons[code]
	if !ok {
		return Reason{}, ErrUnknownReason{Code: code}
	}
	return r, nil
}

func (r Reason) String() string       { return r.code }
func (r Reason) Direction() Direction { return r.direction }
func (r Reason) IsZero() bool         { return r.code == "" }

// Signed applies the reason's direction to q. IN quantities pass through
// unchanged; the ledger rejects negative IN and OUT quantities before posting.
func (r Reason) Signed(q decimal.Decimal) decimal.Decimal {
	switch r.direction {
	case DirectionOut:
		return q.Abs().Neg()
	}
	return q
}

func (r Reason) MarshalText() ([]byte, error) {
	return []byte(r.code), nil
}

func (r *Reason) UnmarshalText(b []byte) error {
	parsed, err := ParseReason(string(b))
	if err != nil {
		return err
	}
	*r = parsed
	return nil
}

func (r Reason) Value() (driver.Value, error) {
	if r.IsZero() {
		return nil, fmt.Errorf("zero reason")
	}
	return r.code, nil
}

func (r *Reason) Scan(src any) error {
	switch v := src.(type) {
	case string:
		return r.UnmarshalText([]byte(v))
	case []byte:
		return r.UnmarshalText(v)
	}
	return fmt.Errorf("cannot scan %T into Reason", src)
}

// Related entity types linked from transactions.
const (
	RelatedFeedingLog    = "feeding_log"
	RelatedPurchaseOrder = "purchase_order"
)

// Transaction is an immutable ledger entry. Quantity is the signed delta.
type Transaction struct {
	ID             string          `db:"id" json:"id"`
	TenantID       string          `db:"tenant_id" json:"tenant_id"`
	ItemID         string          `db:"item_id" json:"item_id"`
	LotID          *string         `db:"lot_id" json:"lot_id,omitempty"`
	Direction      Direction       `db:"direction" json:"direction"`
	Reason         Reason          `db:"reason" json:"reason"`
	Quantity       decimal.Decimal `db:"quantity" json:"quantity"`
	QuantityBefore decimal.Decimal `db:"quantity_before" json:"quantity_before"`
	QuantityAfter  decimal.Decimal `db:"quantity_after" json:"quantity_after"`
	Note           string          `db:"note" json:"note"`
	RelatedType    *string         `db:"related_type" json:"related_type,omitempty"`
	RelatedID      *string         `db:"related_id" json:"related_id,omitempty"`
	ActorID        string          `db:"actor_id" json:"actor_id"`
	CreatedAt      time.Time       `db:"created_at" json:"created_at"`
}
