package hosts

import (
	"context"
	"net"
	"net/netip"
	"net/url"
	"strings"

	"github.com/pkg/errors"
)

// ResolveURL rewrites rawURL so that its domain is replaced by the address
// pinned in the table.
func (t *Table) ResolveURL(ctx context.Context, rawURL string) (string, error) {
	u, host, err := parseDomainURL(rawURL)
	if err != nil {
		return "", err
	}

	ip, err := t.Lookup(ctx, host)
	if err != nil {
		return "", err
	}

	resolved := t.substitute(rawURL, u, host, ip)
	t.log.Debug("resolved url", "url", rawURL, "resolved", resolved)
	return resolved, nil
}

// Substitute applies the table's rewrite mode to rawURL with an address
// already looked up for its host.
func (t *Table) Substitute(rawURL, ip string) (string, error) {
	u, host, err := parseDomainURL(rawURL)
	if err != nil {
		return "", err
	}
	return t.substitute(rawURL, u, host, ip), nil
}

// URLHost returns the domain of rawURL, failing the same way ResolveURL
// does for unusable input.
func URLHost(rawURL string) (string, error) {
	_, host, err := parseDomainURL(rawURL)
	return host, err
}

func (t *Table) substitute(rawURL string, u *url.URL, host, ip string) string {
	if !t.opts.StructuredRewrite {
		return strings.ReplaceAll(rawURL, host, ip)
	}

	out := *u
	if port := u.Port(); port != "" {
		out.Host = net.JoinHostPort(ip, port)
	} else {
		out.Host = ip
	}
	return out.String()
}

func parseDomainURL(rawURL string) (*url.URL, string, error) {
	u, err := url.Parse(rawURL)
	if err != nil {
		return nil, "", &ParseError{Input: rawURL, Err: err}
	}

	if u.Scheme == "" {
		return nil, "", &ParseError{Input: rawURL, Err: errors.New("missing scheme")}
	}

	host := u.Hostname()
	if host == "" {
		return nil, "", &UnsupportedError{Input: rawURL, Reason: "url has no host"}
	}

	if _, err := netip.ParseAddr(host); err == nil {
		return nil, "", &UnsupportedError{Input: rawURL, Reason: "host is an address, not a domain"}
	}

	return u, host, nil
}
