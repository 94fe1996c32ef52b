// Package aws discovers KMS keys and ACM certificates in one region and hands them to a normalizer.
package aws

import (
	"context"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/acm"
	"github.com/aws/aws-sdk-go-v2/service/kms"
	"github.com/pkg/errors"
	"github.com/whitekid/goxp/log"

	"cryptohub/inventory/normalizer"
)

const DefaultRegion = "us-east-1"

// KMSClient subset of the kms client used by the collector
type KMSClient interface {
	kms.ListKeysAPIClient
	DescribeKey(ctx context.Context, params *kms.DescribeKeyInput, optFns ...func(*kms.Options)) (*kms.DescribeKeyOutput, error)
	GetKeyRotationStatus(ctx context.Context, params *kms.GetKeyRotationStatusInput, optFns ...func(*kms.Options)) (*kms.GetKeyRotationStatusOutput, error)
}

// ACMClient subset of the acm client used by the collector
type ACMClient interface {
	acm.ListCertificatesAPIClient
	DescribeCertificate(ctx context.Context, params *acm.DescribeCertificateInput, optFns ...func(*acm.Options)) (*acm.DescribeCertificateOutput, error)
}

type Options struct {
	Region  string
	Profile string
}

type Collector struct {
	region string
	kms    KMSClient
	acm    ACMClient
}

// New load credentials from the default chain, optionally from a shared config profile
func New(ctx context.Context, opts Options) (*Collector, error) {
	region := opts.Region
	if region == "" {
		region = DefaultRegion
	}

	loadOpts := []func(*config.LoadOptions) error{
		config.WithRegion(region),
	}
	if opts.Profile != "" {
		loadOpts = append(loadOpts, config.WithSharedConfigProfile(opts.Profile))
	}

	cfg, err := config.LoadDefaultConfig(ctx, loadOpts...)
	if err != nil {
		return nil, errors.Wrap(err, "fail to load aws config")
	}

	return WithClients(region, kms.NewFromConfig(cfg), acm.NewFromConfig(cfg)), nil
}

func WithClients(region string, kmsClient KMSClient, acmClient ACMClient) *Collector {
	return &Collector{
		region: region,
		kms:    kmsClient,
		acm:    acmClient,
	}
}

// Collect feed every key and certificate of the region to n
//
// A record that cannot be described is logged and left out; listing failures abort the collection.
func (c *Collector) Collect(ctx context.Context, n *normalizer.Normalizer) error {
	log.Infof("starting aws discovery in %s", c.region)

	keys, err := c.collectKeys(ctx, n)
	if err != nil {
		return err
	}

	certs, err := c.collectCertificates(ctx, n)
	if err != nil {
		return err
	}

	log.Infof("found %d keys and %d certificates in %s", keys, certs, c.region)
	return nil
}

func (c *Collector) collectKeys(ctx context.Context, n *normalizer.Normalizer) (int, error) {
	count := 0
	paginator := kms.NewListKeysPaginator(c.kms, &kms.ListKeysInput{})
	for paginator.HasMorePages() {
		page, err := paginator.NextPage(ctx)
		if err != nil {
			return count, errors.Wrap(err, "fail to list kms keys")
		}

		for _, entry := range page.Keys {
			keyID := aws.ToString(entry.KeyId)

			desc, err := c.kms.DescribeKey(ctx, &kms.DescribeKeyInput{KeyId: entry.KeyId})
			if err != nil {
				log.Errorf("fail to describe key %s: %v", keyID, err)
				continue
			}

			raw := &normalizer.AWSKey{Metadata: desc.KeyMetadata}

			// aws managed and asymmetric keys refuse the rotation status call
			if rot, err := c.kms.GetKeyRotationStatus(ctx, &kms.GetKeyRotationStatusInput{KeyId: entry.KeyId}); err != nil {
				log.Debugf("no rotation status for key %s: %v", keyID, err)
			} else {
				raw.RotationEnabled = rot.KeyRotationEnabled
				raw.RotationPeriodInDays = rot.RotationPeriodInDays
			}

			n.AWSKey(raw)
			count++
		}
	}

	return count, nil
}

func (c *Collector) collectCertificates(ctx context.Context, n *normalizer.Normalizer) (int, error) {
	count := 0
	paginator := acm.NewListCertificatesPaginator(c.acm, &acm.ListCertificatesInput{})
	for paginator.HasMorePages() {
		page, err := paginator.NextPage(ctx)
		if err != nil {
			return count, errors.Wrap(err, "fail to list acm certificates")
		}

		for _, summary := range page.CertificateSummaryList {
			desc, err := c.acm.DescribeCertificate(ctx, &acm.DescribeCertificateInput{CertificateArn: summary.CertificateArn})
			if err != nil {
				log.Errorf("fail to describe certificate %s: %v", aws.ToString(summary.CertificateArn), err)
				continue
			}

			n.ACMCertificate(desc.Certificate)
			count++
		}
	}

	return count, nil
}
