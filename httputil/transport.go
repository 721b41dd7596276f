package httputil

import (
	"errors"
	"net"
	"net/http"
	"strconv"

	"golang.org/x/net/proxy"

	"github.com/matijaslevang/spotminify/config"
)

// NewTransport returns the transport shared by every outgoing request.
// When a proxy is configured all traffic, including direct-to-storage
// transfers, is dialed through SOCKS5.
func NewTransport(conf config.Proxy) (http.RoundTripper, error) {
	t, ok := http.DefaultTransport.(*http.Transport)
	if !ok {
		return nil, errors.New("default transport is not *http.Transport")
	}
	t = t.Clone()

	if !conf.Enabled() {
		return t, nil
	}

	var auth *proxy.Auth
	if len(conf.Username) > 0 && len(conf.Password) > 0 {
		auth = &proxy.Auth{
			User:     conf.Username,
			Password: conf.Password,
		}
	}

	socks5, err := proxy.SOCKS5(
		"tcp",
		net.JoinHostPort(conf.Host, strconv.Itoa(conf.Port)),
		auth,
		proxy.Direct,
	)
	if nil != err {
		return nil, err
	}

	dialer, ok := socks5.(proxy.ContextDialer)
	if !ok {
		return nil, errors.New("failed to cast proxy to ContextDialer")
	}

	t.Proxy = nil
	t.DialContext = dialer.DialContext

	return t, nil
}
