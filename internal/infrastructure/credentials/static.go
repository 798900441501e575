package credentials

import (
	"context"
	"fmt"

	"github.com/clearbill/payments/internal/application"
	"github.com/clearbill/payments/internal/domain"
)

// StaticProvider serves a fixed credential map. Used in development and
// in tests where KMS is unavailable.
type StaticProvider struct {
	creds map[domain.GatewayID]application.Credentials
}

func NewStaticProvider(creds map[domain.GatewayID]application.Credentials) *StaticProvider {
	return &StaticProvider{creds: creds}
}

func (p *StaticProvider) Get(ctx context.Context, gateway domain.GatewayID) (application.Credentials, error) {
	creds, ok := p.creds[gateway]
	if !ok {
		return application.Credentials{}, fmt.Errorf("no credentials configured for gateway %s", gateway)
	}
	return creds, nil
}
