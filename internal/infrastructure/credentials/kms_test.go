package credentials

import (
	"context"
	"encoding/base64"
	"errors"
	"testing"

	"github.com/aws/aws-sdk-go-v2/service/kms"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/clearbill/payments/internal/application"
	"github.com/clearbill/payments/internal/domain"
)

type stubKMS struct {
	plaintext []byte
	err       error
	calls     int
}

func (s *stubKMS) Decrypt(ctx context.Context, params *kms.DecryptInput, optFns ...func(*kms.Options)) (*kms.DecryptOutput, error) {
	s.calls++
	if s.err != nil {
		return nil, s.err
	}
	return &kms.DecryptOutput{Plaintext: s.plaintext}, nil
}

func kmsProvider(client kmsAPI, blobs map[domain.GatewayID]string) *KMSProvider {
	return &KMSProvider{
		client: client,
		blobs:  blobs,
		cache:  make(map[domain.GatewayID]application.Credentials),
	}
}

func TestKMSProvider_DecryptsAndCaches(t *testing.T) {
	stub := &stubKMS{plaintext: []byte(`{"merchant_id":"merch-1","api_key":"key-1","api_secret":"secret-1"}`)}
	provider := kmsProvider(stub, map[domain.GatewayID]string{
		domain.GatewayCard: base64.StdEncoding.EncodeToString([]byte("ciphertext")),
	})

	creds, err := provider.Get(context.Background(), domain.GatewayCard)
	require.NoError(t, err)
	assert.Equal(t, "merch-1", creds.MerchantID)
	assert.Equal(t, "key-1", creds.APIKey)

	// Second lookup is served from cache.
	_, err = provider.Get(context.Background(), domain.GatewayCard)
	require.NoError(t, err)
	assert.Equal(t, 1, stub.calls)
}

func TestKMSProvider_UnknownGateway(t *testing.T) {
	stub := &stubKMS{}
	provider := kmsProvider(stub, map[domain.GatewayID]string{})

	_, err := provider.Get(context.Background(), domain.GatewayCard)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no credentials configured")
	assert.Zero(t, stub.calls)
}

func TestKMSProvider_BadBlob(t *testing.T) {
	stub := &stubKMS{}
	provider := kmsProvider(stub, map[domain.GatewayID]string{
		domain.GatewayCard: "%%%not-base64%%%",
	})

	_, err := provider.Get(context.Background(), domain.GatewayCard)
	require.Error(t, err)
	assert.Zero(t, stub.calls)
}

func TestKMSProvider_DecryptFailure(t *testing.T) {
	stub := &stubKMS{err: errors.New("access denied")}
	provider := kmsProvider(stub, map[domain.GatewayID]string{
		domain.GatewayCard: base64.StdEncoding.EncodeToString([]byte("ciphertext")),
	})

	_, err := provider.Get(context.Background(), domain.GatewayCard)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "decrypting credentials")
}

func TestStaticProvider(t *testing.T) {
	provider := NewStaticProvider(map[domain.GatewayID]application.Credentials{
		domain.GatewayCard: {MerchantID: "merch-1", APIKey: "key-1", APISecret: "secret-1"},
	})

	creds, err := provider.Get(context.Background(), domain.GatewayCard)
	require.NoError(t, err)
	assert.Equal(t, "merch-1", creds.MerchantID)

	_, err = provider.Get(context.Background(), domain.GatewayACH)
	require.Error(t, err)
}
