// Package azure discovers Key Vault keys and certificates of one vault and hands them to a normalizer.
package azure

import (
	"context"
	"regexp"
	"strconv"
	"strings"

	"github.com/Azure/azure-sdk-for-go/sdk/azcore"
	"github.com/Azure/azure-sdk-for-go/sdk/azcore/runtime"
	"github.com/Azure/azure-sdk-for-go/sdk/azidentity"
	"github.com/Azure/azure-sdk-for-go/sdk/security/keyvault/azcertificates"
	"github.com/Azure/azure-sdk-for-go/sdk/security/keyvault/azkeys"
	"github.com/pkg/errors"
	"github.com/whitekid/goxp/fx"
	"github.com/whitekid/goxp/log"

	"cryptohub/inventory/normalizer"
)

var ErrVaultURLRequired = errors.New("vault url required")

// KeysClient subset of the azkeys client used by the collector
type KeysClient interface {
	NewListKeyPropertiesPager(options *azkeys.ListKeyPropertiesOptions) *runtime.Pager[azkeys.ListKeyPropertiesResponse]
	GetKey(ctx context.Context, name string, version string, options *azkeys.GetKeyOptions) (azkeys.GetKeyResponse, error)
	GetKeyRotationPolicy(ctx context.Context, name string, options *azkeys.GetKeyRotationPolicyOptions) (azkeys.GetKeyRotationPolicyResponse, error)
}

// CertificatesClient subset of the azcertificates client used by the collector
type CertificatesClient interface {
	NewListCertificatePropertiesPager(options *azcertificates.ListCertificatePropertiesOptions) *runtime.Pager[azcertificates.ListCertificatePropertiesResponse]
	GetCertificate(ctx context.Context, name string, version string, options *azcertificates.GetCertificateOptions) (azcertificates.GetCertificateResponse, error)
}

type Collector struct {
	vaultURL string
	keys     KeysClient
	certs    CertificatesClient
}

// New authenticate with the default azure credential chain
func New(vaultURL string) (*Collector, error) {
	if vaultURL == "" {
		return nil, ErrVaultURLRequired
	}

	cred, err := azidentity.NewDefaultAzureCredential(nil)
	if err != nil {
		return nil, errors.Wrap(err, "fail to load azure credential")
	}

	return newWithCredential(vaultURL, cred)
}

func newWithCredential(vaultURL string, cred azcore.TokenCredential) (*Collector, error) {
	keys, err := azkeys.NewClient(vaultURL, cred, nil)
	if err != nil {
		return nil, errors.Wrap(err, "fail to create key client")
	}

	certs, err := azcertificates.NewClient(vaultURL, cred, nil)
	if err != nil {
		return nil, errors.Wrap(err, "fail to create certificate client")
	}

	return WithClients(vaultURL, keys, certs), nil
}

func WithClients(vaultURL string, keys KeysClient, certs CertificatesClient) *Collector {
	return &Collector{
		vaultURL: strings.TrimSuffix(vaultURL, "/"),
		keys:     keys,
		certs:    certs,
	}
}

// Collect feed every key and certificate of the vault to n
//
// A record that cannot be fetched is logged and left out; listing failures abort the collection.
func (c *Collector) Collect(ctx context.Context, n *normalizer.Normalizer) error {
	log.Infof("starting azure discovery for vault %s", c.vaultURL)

	keys, err := c.collectKeys(ctx, n)
	if err != nil {
		return err
	}

	certs, err := c.collectCertificates(ctx, n)
	if err != nil {
		return err
	}

	log.Infof("found %d keys and %d certificates in %s", keys, certs, c.vaultURL)
	return nil
}

func (c *Collector) collectKeys(ctx context.Context, n *normalizer.Normalizer) (int, error) {
	count := 0
	pager := c.keys.NewListKeyPropertiesPager(nil)
	for pager.More() {
		page, err := pager.NextPage(ctx)
		if err != nil {
			return count, errors.Wrap(err, "fail to list keys")
		}

		for _, props := range page.Value {
			if props == nil || props.KID == nil {
				continue
			}

			name := props.KID.Name()
			resp, err := c.keys.GetKey(ctx, name, "", nil)
			if err != nil {
				log.Errorf("fail to get key %s: %v", name, err)
				continue
			}

			raw := azureKey(&resp.KeyBundle)
			raw.Name = name
			if props.Attributes != nil && props.Attributes.Created != nil {
				raw.Created = props.Attributes.Created
			}
			if props.Managed != nil {
				raw.Managed = *props.Managed
			}

			// keys without a policy and callers without rotation permission both fail here
			if policy, err := c.keys.GetKeyRotationPolicy(ctx, name, nil); err != nil {
				log.Debugf("no rotation policy for key %s: %v", name, err)
			} else {
				raw.RotateAfterDays = rotateAfterDays(&policy.KeyRotationPolicy)
			}

			n.AzureKey(raw)
			count++
		}
	}

	return count, nil
}

func azureKey(bundle *azkeys.KeyBundle) *normalizer.AzureKey {
	raw := &normalizer.AzureKey{}

	if bundle.Attributes != nil {
		raw.Enabled = bundle.Attributes.Enabled
		raw.Created = bundle.Attributes.Created
		raw.VersionCreated = bundle.Attributes.Created
		raw.Expires = bundle.Attributes.Expires
	}

	if bundle.Managed != nil {
		raw.Managed = *bundle.Managed
	}

	jwk := bundle.Key
	if jwk == nil {
		return raw
	}

	if jwk.KID != nil {
		raw.ID = string(*jwk.KID)
	}
	if jwk.Kty != nil {
		raw.KeyType = string(*jwk.Kty)
	}
	if jwk.Crv != nil {
		raw.Curve = string(*jwk.Crv)
	}
	if len(jwk.N) > 0 {
		size := int32(len(jwk.N) * 8)
		raw.KeySize = &size
	}
	raw.KeyOps = fx.Map(fx.Filter(jwk.KeyOps, func(op *azkeys.KeyOperation) bool { return op != nil }),
		func(op *azkeys.KeyOperation) string { return string(*op) })

	return raw
}

var isoDays = regexp.MustCompile(`^P(?:(\d+)Y)?(?:(\d+)M)?(?:(\d+)D)?$`)

// rotateAfterDays days after creation of the rotate lifetime action, nil without one
func rotateAfterDays(policy *azkeys.KeyRotationPolicy) *int {
	for _, action := range policy.LifetimeActions {
		if action == nil || action.Action == nil || action.Action.Type == nil || action.Trigger == nil {
			continue
		}

		if !strings.EqualFold(string(*action.Action.Type), "rotate") || action.Trigger.TimeAfterCreate == nil {
			continue
		}

		if days := parseISODays(*action.Trigger.TimeAfterCreate); days > 0 {
			return &days
		}
	}

	return nil
}

// parseISODays P1Y, P3M, P90D; 0 when the duration is not expressed in days, months or years
func parseISODays(s string) int {
	m := isoDays.FindStringSubmatch(strings.ToUpper(strings.TrimSpace(s)))
	if m == nil {
		return 0
	}

	atoi := func(s string) int {
		v, _ := strconv.Atoi(s)
		return v
	}

	return atoi(m[1])*365 + atoi(m[2])*30 + atoi(m[3])
}

func (c *Collector) collectCertificates(ctx context.Context, n *normalizer.Normalizer) (int, error) {
	count := 0
	pager := c.certs.NewListCertificatePropertiesPager(nil)
	for pager.More() {
		page, err := pager.NextPage(ctx)
		if err != nil {
			return count, errors.Wrap(err, "fail to list certificates")
		}

		for _, props := range page.Value {
			if props == nil || props.ID == nil {
				continue
			}

			name := props.ID.Name()
			resp, err := c.certs.GetCertificate(ctx, name, "", nil)
			if err != nil {
				log.Errorf("fail to get certificate %s: %v", name, err)
				continue
			}

			raw := c.azureCertificate(&resp.Certificate)
			raw.Name = name
			if len(raw.Thumbprint) == 0 {
				raw.Thumbprint = props.X509Thumbprint
			}

			n.AzureCertificate(raw)
			count++
		}
	}

	return count, nil
}

func (c *Collector) azureCertificate(cert *azcertificates.Certificate) *normalizer.AzureCertificate {
	raw := &normalizer.AzureCertificate{
		VaultURL:   c.vaultURL,
		Thumbprint: cert.X509Thumbprint,
		CER:        cert.CER,
	}

	if cert.ID != nil {
		raw.ID = string(*cert.ID)
	}

	if attrs := cert.Attributes; attrs != nil {
		raw.Enabled = attrs.Enabled
		raw.NotBefore = attrs.NotBefore
		raw.Expires = attrs.Expires
	}

	policy := cert.Policy
	if policy == nil {
		return raw
	}

	if policy.IssuerParameters != nil && policy.IssuerParameters.Name != nil {
		raw.IssuerName = *policy.IssuerParameters.Name
	}
	if policy.KeyProperties != nil {
		raw.KeySize = policy.KeyProperties.KeySize
	}
	if props := policy.X509CertificateProperties; props != nil {
		if props.Subject != nil {
			raw.SubjectName = *props.Subject
		}
		if props.SubjectAlternativeNames != nil {
			raw.SANDNSNames = fx.Map(fx.Filter(props.SubjectAlternativeNames.DNSNames, func(s *string) bool { return s != nil }),
				func(s *string) string { return *s })
		}
	}

	return raw
}
