// Package workbook renders a classified inventory as an xlsx workbook: a dashboard tab and
// one inventory tab each for keys and certificates, with risky rows highlighted.
package workbook

import (
	"fmt"
	"io"
	"sort"
	"strings"
	"time"

	"github.com/pkg/errors"
	"github.com/whitekid/goxp/fx"
	"github.com/xuri/excelize/v2"

	"cryptohub/inventory/classifier"
)

const (
	SheetDashboard    = "Dashboard"
	SheetKeys         = "Keys Inventory"
	SheetCertificates = "Certificates Inventory"

	dateLayout = "2006-01-02"
)

var (
	keyColumns = []string{
		"Key ID", "Name", "Environment", "Key Type", "Algorithm", "State", "Creation Date",
		"Rotation Enabled", "Rotation Interval Days", "Last Rotated", "Expiry Date", "Customer Managed", "Usage",
		"Weak Algorithm", "Rotation Overdue", "Rotation Due", "Expired", "Expiring Soon",
	}

	certificateColumns = []string{
		"Serial Number", "Common Name", "SAN Entries", "Issuer", "Signature Algorithm", "Key Size",
		"Valid From", "Valid To", "Chain Status", "Source", "Issuance Type", "Associated Asset",
		"Days Remaining", "Weak Algorithm", "Expired", "Expiring Soon",
	}
)

type styles struct {
	header   int
	critical int // expired, weak or rotation overdue
	warning  int // expiring soon
}

func newStyles(f *excelize.File) (*styles, error) {
	header, err := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true, Color: "FFFFFF"},
		Fill: excelize.Fill{Type: "pattern", Pattern: 1, Color: []string{"1F497D"}},
	})
	if err != nil {
		return nil, err
	}

	critical, err := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Color: "9C0006"},
		Fill: excelize.Fill{Type: "pattern", Pattern: 1, Color: []string{"FFC7CE"}},
	})
	if err != nil {
		return nil, err
	}

	warning, err := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Color: "9C6500"},
		Fill: excelize.Fill{Type: "pattern", Pattern: 1, Color: []string{"FFEB9C"}},
	})
	if err != nil {
		return nil, err
	}

	return &styles{header: header, critical: critical, warning: warning}, nil
}

// Write render the report to w
func Write(w io.Writer, report *classifier.Report) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName(f.GetSheetName(0), SheetDashboard); err != nil {
		return errors.Wrap(err, "fail to create dashboard")
	}

	st, err := newStyles(f)
	if err != nil {
		return errors.Wrap(err, "fail to create styles")
	}

	if err := writeDashboard(f, st, report); err != nil {
		return errors.Wrap(err, "fail to write dashboard")
	}

	keyRows := fx.Map(report.Keys, func(k *classifier.KeyStatus) []interface{} { return keyRow(k) })
	keyStyles := fx.Map(report.Keys, func(k *classifier.KeyStatus) int {
		switch {
		case k.Expired || k.WeakAlgorithm || k.RotationOverdue:
			return st.critical
		case k.ExpiringSoon:
			return st.warning
		}
		return 0
	})
	if err := writeInventory(f, st, SheetKeys, keyColumns, keyRows, keyStyles); err != nil {
		return errors.Wrap(err, "fail to write keys")
	}

	certRows := fx.Map(report.Certificates, func(c *classifier.CertificateStatus) []interface{} { return certificateRow(c) })
	certStyles := fx.Map(report.Certificates, func(c *classifier.CertificateStatus) int {
		switch {
		case c.Expired || c.WeakAlgorithm:
			return st.critical
		case c.ExpiringSoon:
			return st.warning
		}
		return 0
	})
	if err := writeInventory(f, st, SheetCertificates, certificateColumns, certRows, certStyles); err != nil {
		return errors.Wrap(err, "fail to write certificates")
	}

	f.SetActiveSheet(0)
	return f.Write(w)
}

func writeDashboard(f *excelize.File, st *styles, report *classifier.Report) error {
	sheet := SheetDashboard
	summary := report.Summary

	if err := f.SetCellValue(sheet, "A1", "Cryptographic Asset Dashboard"); err != nil {
		return err
	}
	if err := f.SetCellStyle(sheet, "A1", "B1", st.header); err != nil {
		return err
	}

	rows := []struct {
		label     string
		value     interface{}
		highlight bool
	}{
		{"Generated At", report.GeneratedAt.UTC().Format(time.RFC3339), false},
		{"Expiry Horizon Days", report.ExpiryHorizonDays, false},
		{"Total Keys", summary.TotalKeys, false},
		{"Total Certificates", summary.TotalCertificates, false},
		{"Expired Certificates", summary.ExpiredCertificates, summary.ExpiredCertificates > 0},
		{fmt.Sprintf("Expiring < %d Days", report.ExpiryHorizonDays), summary.ExpiringCertificates, summary.ExpiringCertificates > 0},
		{"Weak Certificates", summary.WeakCertificates, summary.WeakCertificates > 0},
		{"Expired Keys", summary.ExpiredKeys, summary.ExpiredKeys > 0},
		{"Expiring Keys", summary.ExpiringKeys, summary.ExpiringKeys > 0},
		{"Weak Keys", summary.WeakKeys, summary.WeakKeys > 0},
		{"Rotation Overdue Keys", summary.RotationOverdueKeys, summary.RotationOverdueKeys > 0},
	}

	row := 3
	for _, r := range rows {
		if err := setRow(f, sheet, row, []interface{}{r.label, r.value}); err != nil {
			return err
		}
		if err := f.SetCellStyle(sheet, cell(1, row), cell(1, row), st.header); err != nil {
			return err
		}
		if r.highlight {
			if err := f.SetCellStyle(sheet, cell(2, row), cell(2, row), st.critical); err != nil {
				return err
			}
		}
		row++
	}

	for _, section := range []struct {
		title  string
		counts map[string]int
	}{
		{"Keys by Environment", summary.KeysByEnvironment},
		{"Certificates by Source", summary.CertificatesBySource},
	} {
		row++
		if err := f.SetCellValue(sheet, cell(1, row), section.title); err != nil {
			return err
		}
		if err := f.SetCellStyle(sheet, cell(1, row), cell(2, row), st.header); err != nil {
			return err
		}
		row++

		names := make([]string, 0, len(section.counts))
		for name := range section.counts {
			names = append(names, name)
		}
		sort.Strings(names)

		for _, name := range names {
			if err := setRow(f, sheet, row, []interface{}{name, section.counts[name]}); err != nil {
				return err
			}
			row++
		}
	}

	return f.SetColWidth(sheet, "A", "A", 32)
}

// writeInventory header, one row per record and an autofilter over the table
func writeInventory(f *excelize.File, st *styles, sheet string, columns []string, rows [][]interface{}, rowStyles []int) error {
	if _, err := f.NewSheet(sheet); err != nil {
		return err
	}

	header := fx.Map(columns, func(c string) interface{} { return c })
	if err := setRow(f, sheet, 1, header); err != nil {
		return err
	}
	if err := f.SetCellStyle(sheet, cell(1, 1), cell(len(columns), 1), st.header); err != nil {
		return err
	}

	for i, values := range rows {
		row := i + 2
		if err := setRow(f, sheet, row, values); err != nil {
			return err
		}

		if rowStyles[i] != 0 {
			if err := f.SetCellStyle(sheet, cell(1, row), cell(len(columns), row), rowStyles[i]); err != nil {
				return err
			}
		}
	}

	if err := f.SetColWidth(sheet, "A", "A", 48); err != nil {
		return err
	}

	return f.AutoFilter(sheet, cell(1, 1)+":"+cell(len(columns), len(rows)+1), nil)
}

func keyRow(status *classifier.KeyStatus) []interface{} {
	k := status.Key
	return []interface{}{
		k.KeyID,
		str(k.Name),
		k.Environment.String(),
		k.KeyType,
		k.Algorithm,
		k.State.String(),
		date(k.CreationDate),
		k.RotationEnabled,
		intOrEmpty(k.RotationIntervalDays),
		date(k.LastRotated),
		date(k.ExpiryDate),
		k.CustomerManaged,
		str(k.Usage),
		status.WeakAlgorithm,
		status.RotationOverdue,
		date(status.RotationDueAt),
		status.Expired,
		status.ExpiringSoon,
	}
}

func certificateRow(status *classifier.CertificateStatus) []interface{} {
	c := status.Certificate
	return []interface{}{
		c.SerialNumber,
		c.CommonName,
		strings.Join(c.SANEntries, ", "),
		c.Issuer,
		c.SignatureAlgorithm,
		c.KeySize,
		c.ValidFrom.UTC().Format(dateLayout),
		c.ValidTo.UTC().Format(dateLayout),
		c.ChainStatus.String(),
		c.Source,
		c.IssuanceType,
		str(c.AssociatedAsset),
		status.DaysRemaining,
		status.WeakAlgorithm,
		status.Expired,
		status.ExpiringSoon,
	}
}

func setRow(f *excelize.File, sheet string, row int, values []interface{}) error {
	return f.SetSheetRow(sheet, cell(1, row), &values)
}

// cell A1 style reference; col and row are 1-based
func cell(col, row int) string {
	name, _ := excelize.CoordinatesToCellName(col, row)
	return name
}

func str(p *string) string {
	if p == nil {
		return ""
	}
	return *p
}

func date(t *time.Time) string {
	if t == nil {
		return ""
	}
	return t.UTC().Format(dateLayout)
}

func intOrEmpty(p *int) interface{} {
	if p == nil {
		return ""
	}
	return *p
}
