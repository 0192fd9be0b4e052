package fskrx

/*------------------------------------------------------------------
 *
 * Purpose:   	Announce the TCP packet service using DNS-SD
 *
 * Description:
 *
 *     Most people would rather pick a receiver that is automatically
 *     discovered on the local network than type in an address and port.
 *
 *     This uses the pure-Go github.com/brutella/dnssd package, so no
 *     system daemon or C library is needed.
 */

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/brutella/dnssd"
)

const DNSSDServiceType = "_fskrx._tcp"

/* Get a default service name to publish. By default,
 * "fskrx on <hostname>", or just "fskrx" if hostname cannot
 * be obtained.
 */
func DefaultServiceName() string {
	var hostname, hostnameErr = os.Hostname()
	if hostnameErr != nil {
		return "fskrx"
	}

	// on some systems, an FQDN is returned; remove domain part
	hostname, _, _ = strings.Cut(hostname, ".")

	return "fskrx on " + hostname
}

// NewDNSSDService describes the TCP service without announcing it.
func NewDNSSDService(name string, port int) (dnssd.Service, error) {
	if name == "" {
		name = DefaultServiceName()
	}

	var cfg = dnssd.Config{ //nolint:exhaustruct
		Name: name,
		Type: DNSSDServiceType,
		Port: port,
	}

	var sv, err = dnssd.NewService(cfg)
	if err != nil {
		return sv, fmt.Errorf("DNS-SD: create service: %w", err)
	}

	return sv, nil
}

// AnnounceTCP responds to DNS-SD queries for the service until ctx is done.
func AnnounceTCP(ctx context.Context, name string, port int) error {
	var sv, svErr = NewDNSSDService(name, port)
	if svErr != nil {
		return svErr
	}

	var rp, rpErr = dnssd.NewResponder()
	if rpErr != nil {
		return fmt.Errorf("DNS-SD: create responder: %w", rpErr)
	}

	if _, err := rp.Add(sv); err != nil {
		return fmt.Errorf("DNS-SD: add service: %w", err)
	}

	Logger.Info("DNS-SD: Announcing TCP packet service", "port", port, "name", sv.Name)

	go func() {
		var respondErr = rp.Respond(ctx)
		if respondErr != nil && ctx.Err() == nil {
			Logger.Error("DNS-SD: Responder error", "err", respondErr)
		}
	}()

	return nil
}
