package payments

import "fmt"

// TransactionKind identifies the business transaction a payment settles.
// The set is closed: adding a kind needs a reference prefix, a checkout
// planner and a dispatch entry.
type TransactionKind string

const (
	KindRentTax              TransactionKind = "rent_tax"
	KindBulkRentTax          TransactionKind = "rent_tax_bulk"
	KindTenantRegistration   TransactionKind = "tenant_registration"
	KindLandlordRegistration TransactionKind = "landlord_registration"
	KindComplaintFee         TransactionKind = "complaint_fee"
	KindListingFee           TransactionKind = "listing_fee"
	KindViewingFee           TransactionKind = "viewing_fee"
)

// AllKinds lists every TransactionKind.
var AllKinds = []TransactionKind{
	KindRentTax,
	KindBulkRentTax,
	KindTenantRegistration,
	KindLandlordRegistration,
	KindComplaintFee,
	KindListingFee,
	KindViewingFee,
}

func ParseKind(s string) (TransactionKind, error) {
	for _, k := range AllKinds {
		if string(k) == s {
			return k, nil
		}
	}
	return "", fmt.Errorf("%w: unknown payment type %q", ErrInvalidRequest, s)
}
