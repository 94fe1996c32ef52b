// Package tlsscan captures the certificates presented by TLS endpoints.
package tlsscan

import (
	"context"
	"crypto/tls"
	"net"
	"sync"
	"time"

	"github.com/hashicorp/go-multierror"
	"github.com/pkg/errors"
	"github.com/whitekid/goxp/log"

	"cryptohub/inventory/normalizer"
	"cryptohub/pkg/helper/x509x"
)

const (
	SourceTLS      = "On-Prem TLS"
	DefaultTimeout = 5 * time.Second
)

var ErrNoPeerCertificate = errors.New("no peer certificate")

type Scanner struct {
	timeout time.Duration
}

func New(timeout time.Duration) *Scanner {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &Scanner{timeout: timeout}
}

// Scan handshake with addr and return its leaf certificate as a PEM bundle installed on addr.
// The chain is not verified.
func (s *Scanner) Scan(ctx context.Context, addr string) (*normalizer.PEMBundle, error) {
	host, _, err := net.SplitHostPort(addr)
	if err != nil {
		return nil, errors.Wrapf(err, "invalid address %s", addr)
	}

	dialer := &tls.Dialer{
		NetDialer: &net.Dialer{Timeout: s.timeout},
		Config: &tls.Config{
			ServerName:         host,
			InsecureSkipVerify: true,
		},
	}

	log.Debugf("scanning %s", addr)
	conn, err := dialer.DialContext(ctx, "tcp", addr)
	if err != nil {
		return nil, errors.Wrapf(err, "handshake failed: %s", addr)
	}
	defer conn.Close()

	state := conn.(*tls.Conn).ConnectionState()
	if len(state.PeerCertificates) == 0 {
		return nil, errors.Wrap(ErrNoPeerCertificate, addr)
	}

	return &normalizer.PEMBundle{
		PEM:    x509x.EncodeCertificateToPEM(state.PeerCertificates[0].Raw),
		Source: SourceTLS,
		Asset:  addr,
	}, nil
}

// ScanAll scan addrs concurrently and feed captured certificates to n in address order.
// Unreachable endpoints are reported in the returned error; the others are still normalized.
func (s *Scanner) ScanAll(ctx context.Context, n *normalizer.Normalizer, addrs ...string) error {
	bundles := make([]*normalizer.PEMBundle, len(addrs))
	errs := make([]error, len(addrs))

	var wg sync.WaitGroup
	for i, addr := range addrs {
		wg.Add(1)
		go func(i int, addr string) {
			defer wg.Done()
			bundles[i], errs[i] = s.Scan(ctx, addr)
		}(i, addr)
	}
	wg.Wait()

	var result error
	for i := range addrs {
		if errs[i] != nil {
			log.Errorf("%v", errs[i])
			result = multierror.Append(result, errs[i])
			continue
		}
		n.PEM(bundles[i])
	}

	return result
}
