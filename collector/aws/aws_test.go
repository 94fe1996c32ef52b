package aws

import (
	"context"
	"fmt"
	"strconv"
	"testing"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/acm"
	acmtypes "github.com/aws/aws-sdk-go-v2/service/acm/types"
	"github.com/aws/aws-sdk-go-v2/service/kms"
	kmstypes "github.com/aws/aws-sdk-go-v2/service/kms/types"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/require"

	"cryptohub/inventory/normalizer"
	"cryptohub/inventory/types"
)

var errAccessDenied = errors.New("AccessDeniedException")

// fakeKMS pages keys two at a time
type fakeKMS struct {
	keys       []*kmstypes.KeyMetadata
	rotation   map[string]*kms.GetKeyRotationStatusOutput
	brokenKey  string
	listFailed bool
}

func (f *fakeKMS) ListKeys(ctx context.Context, params *kms.ListKeysInput, optFns ...func(*kms.Options)) (*kms.ListKeysOutput, error) {
	if f.listFailed {
		return nil, errAccessDenied
	}

	start := 0
	if params.Marker != nil {
		start, _ = strconv.Atoi(*params.Marker)
	}
	end := start + 2
	if end > len(f.keys) {
		end = len(f.keys)
	}

	out := &kms.ListKeysOutput{}
	for _, meta := range f.keys[start:end] {
		out.Keys = append(out.Keys, kmstypes.KeyListEntry{KeyId: meta.KeyId, KeyArn: meta.Arn})
	}
	if end < len(f.keys) {
		out.Truncated = true
		out.NextMarker = aws.String(strconv.Itoa(end))
	}
	return out, nil
}

func (f *fakeKMS) DescribeKey(ctx context.Context, params *kms.DescribeKeyInput, optFns ...func(*kms.Options)) (*kms.DescribeKeyOutput, error) {
	keyID := aws.ToString(params.KeyId)
	if keyID == f.brokenKey {
		return nil, errAccessDenied
	}

	for _, meta := range f.keys {
		if aws.ToString(meta.KeyId) == keyID {
			return &kms.DescribeKeyOutput{KeyMetadata: meta}, nil
		}
	}
	return nil, errors.Errorf("key not found: %s", keyID)
}

func (f *fakeKMS) GetKeyRotationStatus(ctx context.Context, params *kms.GetKeyRotationStatusInput, optFns ...func(*kms.Options)) (*kms.GetKeyRotationStatusOutput, error) {
	if out, ok := f.rotation[aws.ToString(params.KeyId)]; ok {
		return out, nil
	}
	return nil, errAccessDenied
}

type fakeACM struct {
	certs []*acmtypes.CertificateDetail
}

func (f *fakeACM) ListCertificates(ctx context.Context, params *acm.ListCertificatesInput, optFns ...func(*acm.Options)) (*acm.ListCertificatesOutput, error) {
	out := &acm.ListCertificatesOutput{}
	for _, cert := range f.certs {
		out.CertificateSummaryList = append(out.CertificateSummaryList, acmtypes.CertificateSummary{CertificateArn: cert.CertificateArn})
	}
	return out, nil
}

func (f *fakeACM) DescribeCertificate(ctx context.Context, params *acm.DescribeCertificateInput, optFns ...func(*acm.Options)) (*acm.DescribeCertificateOutput, error) {
	for _, cert := range f.certs {
		if aws.ToString(cert.CertificateArn) == aws.ToString(params.CertificateArn) {
			return &acm.DescribeCertificateOutput{Certificate: cert}, nil
		}
	}
	return nil, errors.New("certificate not found")
}

func newKeyMetadata(i int, manager kmstypes.KeyManagerType) *kmstypes.KeyMetadata {
	id := fmt.Sprintf("key-%d", i)
	return &kmstypes.KeyMetadata{
		KeyId:        aws.String(id),
		Arn:          aws.String("arn:aws:kms:us-east-1:123456789012:key/" + id),
		CreationDate: aws.Time(time.Date(2023, 1, 1, 0, 0, 0, 0, time.UTC)),
		KeyManager:   manager,
		KeySpec:      kmstypes.KeySpecSymmetricDefault,
		KeyState:     kmstypes.KeyStateEnabled,
		KeyUsage:     kmstypes.KeyUsageTypeEncryptDecrypt,
	}
}

func TestCollect(t *testing.T) {
	ctx := context.Background()

	kmsClient := &fakeKMS{
		keys: []*kmstypes.KeyMetadata{
			newKeyMetadata(1, kmstypes.KeyManagerTypeCustomer),
			newKeyMetadata(2, kmstypes.KeyManagerTypeAws),
			newKeyMetadata(3, kmstypes.KeyManagerTypeCustomer),
			newKeyMetadata(4, kmstypes.KeyManagerTypeCustomer),
			newKeyMetadata(5, kmstypes.KeyManagerTypeCustomer),
		},
		rotation: map[string]*kms.GetKeyRotationStatusOutput{
			"key-1": {KeyRotationEnabled: true, RotationPeriodInDays: aws.Int32(180)},
			"key-3": {KeyRotationEnabled: false},
		},
		brokenKey: "key-4",
	}
	acmClient := &fakeACM{
		certs: []*acmtypes.CertificateDetail{
			{
				CertificateArn: aws.String("arn:aws:acm:us-east-1:123456789012:certificate/1"),
				DomainName:     aws.String("www.example.com"),
				Serial:         aws.String("0a:1b"),
				NotBefore:      aws.Time(time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)),
				NotAfter:       aws.Time(time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)),
				Status:         acmtypes.CertificateStatusIssued,
				Type:           acmtypes.CertificateTypeAmazonIssued,
			},
			{
				CertificateArn: aws.String("arn:aws:acm:us-east-1:123456789012:certificate/2"),
				DomainName:     aws.String("pending.example.com"),
				Status:         acmtypes.CertificateStatusPendingValidation,
			},
		},
	}

	n := normalizer.New()
	err := WithClients(DefaultRegion, kmsClient, acmClient).Collect(ctx, n)
	require.NoError(t, err)

	result := n.Result()
	require.Len(t, result.Keys, 4, "key-4 could not be described")
	require.Equal(t, "arn:aws:kms:us-east-1:123456789012:key/key-1", result.Keys[0].KeyID)
	require.True(t, result.Keys[0].RotationEnabled)
	require.Equal(t, types.P(180), result.Keys[0].RotationIntervalDays)
	require.False(t, result.Keys[1].RotationEnabled, "aws managed key without rotation status")
	require.False(t, result.Keys[1].CustomerManaged)
	require.False(t, result.Keys[2].RotationEnabled)
	require.Nil(t, result.Keys[2].RotationIntervalDays)

	require.Len(t, result.Certificates, 1)
	require.Equal(t, "0a1b", result.Certificates[0].SerialNumber)
	require.Len(t, result.Skipped(), 1, "certificate without validity is skipped")
}

func TestCollectListFailed(t *testing.T) {
	n := normalizer.New()
	err := WithClients(DefaultRegion, &fakeKMS{listFailed: true}, &fakeACM{}).Collect(context.Background(), n)
	require.Error(t, err)
	require.ErrorIs(t, err, errAccessDenied)
	require.Empty(t, n.Result().Keys)
}
