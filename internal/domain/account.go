package domain

// Account is the read-side projection of a billing account that the
// payment core needs: enough to verify existence, resolve the primary
// payment method, and group work by service area.
type Account struct {
	ID              string
	AreaID          string
	Name            string
	AutopayMethodID *string
}
