package workbook

import (
	"bytes"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"github.com/whitekid/goxp/fx"
	"github.com/xuri/excelize/v2"

	"cryptohub/inventory/classifier"
	"cryptohub/inventory/types"
)

var now = time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)

func newReport(t *testing.T) *classifier.Report {
	c, err := classifier.New(classifier.DefaultConfig())
	require.NoError(t, err)

	keys := []*types.Key{
		{
			KeyID: "weak", Name: types.P("alias/weak"), Environment: types.EnvironmentAWS, KeyType: "SIGN_VERIFY",
			Algorithm: "RSA-1024", State: types.KeyStateEnabled, RotationEnabled: true, RotationIntervalDays: types.P(90),
			LastRotated: types.P(now.AddDate(0, 0, -10)), CustomerManaged: true,
		},
		{
			KeyID: "healthy", Environment: types.EnvironmentGCP, KeyType: "ENCRYPT_DECRYPT",
			Algorithm: "GOOGLE-SYMMETRIC-ENCRYPTION", State: types.KeyStateEnabled, RotationEnabled: true, RotationIntervalDays: types.P(90),
			LastRotated: types.P(now.AddDate(0, 0, -10)), CustomerManaged: true,
		},
	}

	newCert := func(serial string, validTo time.Time) *types.Certificate {
		return &types.Certificate{
			SerialNumber: serial, CommonName: serial + ".example.com", SANEntries: []string{serial + ".example.com", "www.example.com"},
			Issuer: "Example CA", SignatureAlgorithm: "SHA256-RSA", KeySize: 2048,
			ValidFrom: now.AddDate(-1, 0, 0), ValidTo: validTo,
			ChainStatus: types.ChainStatusValid, Source: "AWS ACM", IssuanceType: types.IssuanceAutomated,
		}
	}
	certs := []*types.Certificate{
		newCert("0a", now.AddDate(0, 0, 10)),
		newCert("0b", now.AddDate(1, 0, 0)),
	}

	return c.Classify(now, keys, certs)
}

func TestWrite(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Write(&buf, newReport(t)))

	f, err := excelize.OpenReader(&buf)
	require.NoError(t, err)
	defer f.Close()

	require.Equal(t, []string{SheetDashboard, SheetKeys, SheetCertificates}, f.GetSheetList())

	dashboard, err := f.GetRows(SheetDashboard)
	require.NoError(t, err)
	require.Equal(t, "Cryptographic Asset Dashboard", dashboard[0][0])
	values := map[string]string{}
	for _, row := range dashboard {
		if len(row) == 2 {
			values[row[0]] = row[1]
		}
	}
	require.Equal(t, "2", values["Total Keys"])
	require.Equal(t, "2", values["Total Certificates"])
	require.Equal(t, "1", values["Expiring < 30 Days"])
	require.Equal(t, "1", values["Weak Keys"])
	require.Equal(t, "1", values["AWS"])
	require.Equal(t, "2", values["AWS ACM"])

	keys, err := f.GetRows(SheetKeys)
	require.NoError(t, err)
	require.Len(t, keys, 3)
	require.Equal(t, keyColumns, keys[0])
	require.Equal(t, "weak", keys[1][0])
	require.Equal(t, "alias/weak", keys[1][1])
	require.Equal(t, "RSA-1024", keys[1][4])
	require.Equal(t, "90", keys[1][8])
	require.Equal(t, "TRUE", keys[1][13], "weak algorithm")
	require.Equal(t, "FALSE", keys[2][13])

	certs, err := f.GetRows(SheetCertificates)
	require.NoError(t, err)
	require.Len(t, certs, 3)
	require.Equal(t, certificateColumns, certs[0])
	require.Equal(t, "0a.example.com, www.example.com", certs[1][2])
	require.Equal(t, now.AddDate(0, 0, 10).Format(dateLayout), certs[1][7])
	require.Equal(t, "10", certs[1][12])

	styleOf := func(sheet, cell string) int {
		style, err := f.GetCellStyle(sheet, cell)
		require.NoError(t, err)
		return style
	}

	header := styleOf(SheetKeys, "A1")
	critical := styleOf(SheetKeys, "A2")
	warning := styleOf(SheetCertificates, "A2")
	require.NotZero(t, header)
	require.NotZero(t, critical, "weak key is highlighted")
	require.NotZero(t, warning, "expiring certificate is highlighted")
	require.NotEqual(t, critical, warning)
	require.NotEqual(t, header, critical)
	require.Equal(t, critical, styleOf(SheetKeys, "R2"), "the whole row is highlighted")
	require.Zero(t, styleOf(SheetKeys, "A3"))
	require.Zero(t, styleOf(SheetCertificates, "A3"))

	filters := fx.Filter(f.GetDefinedName(), func(name excelize.DefinedName) bool { return name.Name == "_xlnm._FilterDatabase" })
	require.Len(t, filters, 2, "both inventory tabs have an autofilter")
}

func TestWriteEmpty(t *testing.T) {
	c, err := classifier.New(classifier.DefaultConfig())
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, Write(&buf, c.Classify(now, nil, nil)))

	f, err := excelize.OpenReader(&buf)
	require.NoError(t, err)
	defer f.Close()

	keys, err := f.GetRows(SheetKeys)
	require.NoError(t, err)
	require.Len(t, keys, 1, "header only")
}
