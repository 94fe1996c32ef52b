// Package gcp discovers Cloud KMS crypto keys of one project location and hands them to a normalizer.
package gcp

import (
	"context"
	"fmt"
	"time"

	kms "cloud.google.com/go/kms/apiv1"
	"cloud.google.com/go/kms/apiv1/kmspb"
	"github.com/pkg/errors"
	"github.com/whitekid/goxp/log"
	"google.golang.org/api/iterator"
	"google.golang.org/api/option"
	"google.golang.org/protobuf/types/known/timestamppb"

	"cryptohub/inventory/normalizer"
)

const DefaultLocation = "global"

var ErrProjectRequired = errors.New("project required")

// KMSClient listing calls used by the collector
type KMSClient interface {
	ListKeyRings(ctx context.Context, parent string) ([]*kmspb.KeyRing, error)
	ListCryptoKeys(ctx context.Context, keyRing string) ([]*kmspb.CryptoKey, error)
}

type Options struct {
	Project         string
	Location        string
	CredentialsFile string // application default credentials if empty
}

type Collector struct {
	parent string
	client KMSClient
}

// New connect to Cloud KMS; call Close when done
func New(ctx context.Context, opts Options) (*Collector, func() error, error) {
	if opts.Project == "" {
		return nil, nil, ErrProjectRequired
	}

	var clientOpts []option.ClientOption
	if opts.CredentialsFile != "" {
		clientOpts = append(clientOpts, option.WithCredentialsFile(opts.CredentialsFile))
	}

	client, err := kms.NewKeyManagementClient(ctx, clientOpts...)
	if err != nil {
		return nil, nil, errors.Wrap(err, "fail to create kms client")
	}

	return WithClient(opts.Project, opts.Location, &kmsClient{client: client}), client.Close, nil
}

func WithClient(project, location string, client KMSClient) *Collector {
	if location == "" {
		location = DefaultLocation
	}

	return &Collector{
		parent: fmt.Sprintf("projects/%s/locations/%s", project, location),
		client: client,
	}
}

// Collect feed every crypto key of every key ring to n
//
// A key ring whose keys cannot be listed is logged and left out; failing to list key rings aborts.
func (c *Collector) Collect(ctx context.Context, n *normalizer.Normalizer) error {
	log.Infof("starting gcp discovery for %s", c.parent)

	rings, err := c.client.ListKeyRings(ctx, c.parent)
	if err != nil {
		return errors.Wrapf(err, "fail to list key rings of %s", c.parent)
	}

	count := 0
	for _, ring := range rings {
		keys, err := c.client.ListCryptoKeys(ctx, ring.GetName())
		if err != nil {
			log.Errorf("fail to list crypto keys of %s: %v", ring.GetName(), err)
			continue
		}

		for _, key := range keys {
			n.GCPCryptoKey(cryptoKey(key))
			count++
		}
	}

	log.Infof("found %d keys in %d key rings of %s", count, len(rings), c.parent)
	return nil
}

func cryptoKey(key *kmspb.CryptoKey) *normalizer.GCPCryptoKey {
	raw := &normalizer.GCPCryptoKey{
		Name:             key.GetName(),
		Purpose:          key.GetPurpose().String(),
		CreateTime:       timeOf(key.GetCreateTime()),
		NextRotationTime: timeOf(key.GetNextRotationTime()),
	}

	if period := key.GetRotationPeriod(); period != nil {
		d := period.AsDuration()
		raw.RotationPeriod = &d
	}

	if tmpl := key.GetVersionTemplate(); tmpl != nil {
		raw.VersionTemplateAlgorithm = tmpl.GetAlgorithm().String()
	}

	if primary := key.GetPrimary(); primary != nil {
		raw.Primary = &normalizer.GCPKeyVersion{
			Name:       primary.GetName(),
			State:      primary.GetState().String(),
			Algorithm:  primary.GetAlgorithm().String(),
			CreateTime: timeOf(primary.GetCreateTime()),
		}
	}

	return raw
}

func timeOf(ts *timestamppb.Timestamp) *time.Time {
	if ts == nil {
		return nil
	}
	t := ts.AsTime()
	return &t
}

// kmsClient drains the cloud kms iterators
type kmsClient struct {
	client *kms.KeyManagementClient
}

func (c *kmsClient) ListKeyRings(ctx context.Context, parent string) ([]*kmspb.KeyRing, error) {
	var rings []*kmspb.KeyRing
	it := c.client.ListKeyRings(ctx, &kmspb.ListKeyRingsRequest{Parent: parent})
	for {
		ring, err := it.Next()
		if err == iterator.Done {
			return rings, nil
		}
		if err != nil {
			return nil, err
		}
		rings = append(rings, ring)
	}
}

func (c *kmsClient) ListCryptoKeys(ctx context.Context, keyRing string) ([]*kmspb.CryptoKey, error) {
	var keys []*kmspb.CryptoKey
	it := c.client.ListCryptoKeys(ctx, &kmspb.ListCryptoKeysRequest{Parent: keyRing})
	for {
		key, err := it.Next()
		if err == iterator.Done {
			return keys, nil
		}
		if err != nil {
			return nil, err
		}
		keys = append(keys, key)
	}
}
