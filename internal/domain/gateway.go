package domain

// GatewayID identifies an external payment processor.
type GatewayID string

const (
	// GatewayCard is the card processor.
	GatewayCard GatewayID = "cardworks"
	// GatewayACH is the ACH processor.
	GatewayACH GatewayID = "achdirect"
	// GatewayCheck is the manual pseudo-gateway for check and cash
	// payments; it never makes a network call.
	GatewayCheck GatewayID = "check"
	// GatewayTokenProxy is the tokenized transparent proxy in front of
	// the card processor.
	GatewayTokenProxy GatewayID = "tokenproxy"
)

// GatewayCapabilities is the single capability table consulted by the
// state machine instead of scattering "gateway supports X" predicates
// across the models.
type GatewayCapabilities struct {
	SupportsCancel bool
	SupportsCredit bool
	IsReal         bool
}

var gatewayCapabilities = map[GatewayID]GatewayCapabilities{
	GatewayCard:       {SupportsCancel: true, SupportsCredit: true, IsReal: true},
	GatewayACH:        {SupportsCancel: false, SupportsCredit: true, IsReal: true},
	GatewayCheck:      {SupportsCancel: false, SupportsCredit: false, IsReal: false},
	GatewayTokenProxy: {SupportsCancel: true, SupportsCredit: true, IsReal: true},
}

// CapabilitiesFor returns the capability row for a gateway.
func CapabilitiesFor(id GatewayID) (GatewayCapabilities, bool) {
	caps, ok := gatewayCapabilities[id]
	return caps, ok
}

// KnownGateway reports whether the gateway id is in the capability table.
func KnownGateway(id GatewayID) bool {
	_, ok := gatewayCapabilities[id]
	return ok
}
