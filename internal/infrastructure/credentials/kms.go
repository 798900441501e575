// Package credentials resolves per-gateway merchant secrets.
package credentials

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"sync"

	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/kms"

	"github.com/clearbill/payments/internal/application"
	"github.com/clearbill/payments/internal/config"
	"github.com/clearbill/payments/internal/domain"
)

// kmsAPI is the slice of the KMS client the provider uses.
type kmsAPI interface {
	Decrypt(ctx context.Context, params *kms.DecryptInput, optFns ...func(*kms.Options)) (*kms.DecryptOutput, error)
}

// KMSProvider decrypts gateway credentials stored as KMS-encrypted
// base64 blobs in configuration. Decrypted credentials are cached for
// the life of the process; rotating a secret means restarting.
type KMSProvider struct {
	client kmsAPI
	blobs  map[domain.GatewayID]string

	mu    sync.RWMutex
	cache map[domain.GatewayID]application.Credentials
}

func NewKMSProvider(ctx context.Context, cfg config.CredentialsConfig) (*KMSProvider, error) {
	awsCfg, err := awsconfig.LoadDefaultConfig(ctx)
	if err != nil {
		return nil, fmt.Errorf("loading aws config: %w", err)
	}

	blobs := make(map[domain.GatewayID]string, len(cfg.EncryptedBlobs))
	for gateway, blob := range cfg.EncryptedBlobs {
		blobs[domain.GatewayID(gateway)] = blob
	}

	return &KMSProvider{
		client: kms.NewFromConfig(awsCfg),
		blobs:  blobs,
		cache:  make(map[domain.GatewayID]application.Credentials),
	}, nil
}

func (p *KMSProvider) Get(ctx context.Context, gateway domain.GatewayID) (application.Credentials, error) {
	p.mu.RLock()
	creds, ok := p.cache[gateway]
	p.mu.RUnlock()
	if ok {
		return creds, nil
	}

	blob, ok := p.blobs[gateway]
	if !ok {
		return application.Credentials{}, fmt.Errorf("no credentials configured for gateway %s", gateway)
	}

	ciphertext, err := base64.StdEncoding.DecodeString(blob)
	if err != nil {
		return application.Credentials{}, fmt.Errorf("decoding credential blob for %s: %w", gateway, err)
	}

	out, err := p.client.Decrypt(ctx, &kms.DecryptInput{CiphertextBlob: ciphertext})
	if err != nil {
		return application.Credentials{}, fmt.Errorf("decrypting credentials for %s: %w", gateway, err)
	}

	if err := json.Unmarshal(out.Plaintext, &creds); err != nil {
		return application.Credentials{}, fmt.Errorf("unmarshalling credentials for %s: %w", gateway, err)
	}

	p.mu.Lock()
	p.cache[gateway] = creds
	p.mu.Unlock()

	return creds, nil
}
