package testutils

import (
	"context"
	"crypto/tls"
	"fmt"
	"net"
	"net/http"
)

// NewTLSServer start https server with given certificate, returns listen address
// server stops when ctx is done
func NewTLSServer(ctx context.Context, crt, key []byte) (string, error) {
	cert, err := tls.X509KeyPair(crt, key)
	if err != nil {
		return "", err
	}

	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		return "", err
	}

	go func() {
		<-ctx.Done()
		ln.Close()
	}()

	tlsLn := tls.NewListener(ln, &tls.Config{Certificates: []tls.Certificate{cert}})
	go func() {
		handler := http.NewServeMux()
		handler.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) { fmt.Fprintf(w, "hello") })
		http.Serve(tlsLn, handler)
	}()

	return ln.Addr().String(), nil
}
