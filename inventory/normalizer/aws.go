package normalizer

import (
	"strconv"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	acmtypes "github.com/aws/aws-sdk-go-v2/service/acm/types"
	kmstypes "github.com/aws/aws-sdk-go-v2/service/kms/types"

	"cryptohub/inventory/types"
)

const (
	SourceACM = "AWS ACM"

	// kms automatic rotation period when the provider does not report one
	awsDefaultRotationDays = 365
)

// AWSKey DescribeKey metadata with the key rotation status
type AWSKey struct {
	Metadata             *kmstypes.KeyMetadata
	RotationEnabled      bool
	RotationPeriodInDays *int32
}

func (n *Normalizer) AWSKey(raw *AWSKey) {
	key, err := awsKey(raw)
	n.addKey(types.EnvironmentAWS, awsKeyRecordID(raw), key, err)
}

func (n *Normalizer) ACMCertificate(raw *acmtypes.CertificateDetail) {
	cert, proxy, err := acmCertificate(raw)
	recordID := ""
	if raw != nil {
		recordID = aws.ToString(raw.CertificateArn)
	}
	n.addCertificate(types.EnvironmentAWS, recordID, cert, proxy, err)
}

func awsKeyRecordID(raw *AWSKey) string {
	if raw == nil || raw.Metadata == nil {
		return ""
	}
	return aws.ToString(raw.Metadata.KeyId)
}

func awsKey(raw *AWSKey) (*types.Key, error) {
	if raw == nil || raw.Metadata == nil {
		return nil, ErrMissingIdentity
	}

	meta := raw.Metadata
	arn := aws.ToString(meta.Arn)
	if arn == "" {
		return nil, ErrMissingIdentity
	}

	key := &types.Key{
		KeyID:           arn,
		Name:            nonEmptyP(defaultString(aws.ToString(meta.Description), aws.ToString(meta.KeyId))),
		Environment:     types.EnvironmentAWS,
		KeyType:         defaultString(string(meta.KeyUsage), "UNKNOWN"),
		Algorithm:       awsKeyAlgorithm(meta),
		State:           awsKeyState(meta.KeyState),
		CreationDate:    meta.CreationDate,
		RotationEnabled: raw.RotationEnabled,
		ExpiryDate:      meta.ValidTo,
		CustomerManaged: meta.KeyManager == kmstypes.KeyManagerTypeCustomer,
		Usage:           nonEmptyP(string(meta.KeyUsage)),
	}

	if raw.RotationEnabled {
		days := awsDefaultRotationDays
		if raw.RotationPeriodInDays != nil && *raw.RotationPeriodInDays > 0 {
			days = int(*raw.RotationPeriodInDays)
		}
		key.RotationIntervalDays = &days
	}

	return key, nil
}

// awsKeyAlgorithm KeySpec, CustomerMasterKeySpec for older metadata, e.g. RSA-4096, SYMMETRIC-DEFAULT
func awsKeyAlgorithm(meta *kmstypes.KeyMetadata) string {
	spec := string(meta.KeySpec)
	if spec == "" {
		spec = string(meta.CustomerMasterKeySpec)
	}
	return dashed(defaultString(spec, "SYMMETRIC_DEFAULT"))
}

func awsKeyState(state kmstypes.KeyState) types.KeyState {
	switch state {
	case kmstypes.KeyStateEnabled:
		return types.KeyStateEnabled
	case kmstypes.KeyStateDisabled:
		return types.KeyStateDisabled
	case kmstypes.KeyStatePendingDeletion, kmstypes.KeyStatePendingReplicaDeletion:
		return types.KeyStatePendingDeletion
	case kmstypes.KeyStateUnavailable, kmstypes.KeyStateCreating, kmstypes.KeyStatePendingImport, kmstypes.KeyStateUpdating:
		return types.KeyStateUnavailable
	default:
		return types.KeyStateUnavailable
	}
}

func acmCertificate(raw *acmtypes.CertificateDetail) (cert *types.Certificate, proxy string, err error) {
	if raw == nil {
		return nil, "", ErrMissingIdentity
	}

	serial := canonicalSerial(aws.ToString(raw.Serial))
	if serial == "" {
		serial = aws.ToString(raw.CertificateArn)
		proxy = "certificate ARN"
	}
	if serial == "" {
		return nil, "", ErrMissingIdentity
	}

	if raw.NotBefore == nil || raw.NotAfter == nil {
		return nil, "", ErrMissingValidity
	}

	commonName := aws.ToString(raw.DomainName)
	if commonName == "" {
		return nil, "", ErrMissingField
	}

	cert = &types.Certificate{
		SerialNumber:       serial,
		CommonName:         commonName,
		SANEntries:         append([]string{}, raw.SubjectAlternativeNames...),
		Issuer:             defaultString(aws.ToString(raw.Issuer), "Unknown"),
		SignatureAlgorithm: defaultString(aws.ToString(raw.SignatureAlgorithm), "Unknown"),
		KeySize:            acmKeySize(raw.KeyAlgorithm),
		ValidFrom:          *raw.NotBefore,
		ValidTo:            *raw.NotAfter,
		ChainStatus:        acmChainStatus(raw.Status),
		Source:             SourceACM,
		IssuanceType:       acmIssuanceType(raw.Type),
		AssociatedAsset:    nonEmptyP(strings.Join(raw.InUseBy, ",")),
	}

	return cert, proxy, nil
}

// acmKeySize bits of RSA_<bits> and EC_<curve>; 0 when unknown
func acmKeySize(alg acmtypes.KeyAlgorithm) int {
	s := string(alg)
	switch {
	case strings.HasPrefix(s, "RSA_"):
		bits, err := strconv.Atoi(strings.TrimPrefix(s, "RSA_"))
		if err != nil {
			return 0
		}
		return bits
	case s == "EC_prime256v1":
		return 256
	case s == "EC_secp384r1":
		return 384
	case s == "EC_secp521r1":
		return 521
	default:
		return 0
	}
}

func acmChainStatus(status acmtypes.CertificateStatus) types.ChainStatus {
	switch status {
	case acmtypes.CertificateStatusIssued:
		return types.ChainStatusValid
	case acmtypes.CertificateStatusExpired:
		return types.ChainStatusExpired
	case acmtypes.CertificateStatusRevoked:
		return types.ChainStatusRevoked
	case acmtypes.CertificateStatusValidationTimedOut, acmtypes.CertificateStatusPendingValidation,
		acmtypes.CertificateStatusInactive, acmtypes.CertificateStatusFailed:
		return types.ChainStatusUntrusted
	default:
		return types.ChainStatusUntrusted
	}
}

func acmIssuanceType(typ acmtypes.CertificateType) string {
	switch typ {
	case acmtypes.CertificateTypeAmazonIssued, acmtypes.CertificateTypePrivate:
		return types.IssuanceAutomated
	case acmtypes.CertificateTypeImported:
		return types.IssuanceImported
	default:
		return types.IssuanceImported
	}
}
