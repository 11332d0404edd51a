package update

import (
	"context"
	"net"
	"net/http"
	"net/url"
	"os"
	"strings"
	"time"

	"golang.org/x/net/proxy"
)

type proxyEnv struct {
	httpProxy  string
	httpsProxy string
	allProxy   string
	noProxy    string
}

func envEither(upper, lower string) string {
	if v := strings.TrimSpace(os.Getenv(upper)); v != "" {
		return v
	}
	return strings.TrimSpace(os.Getenv(lower))
}

func readProxyEnv() proxyEnv {
	return proxyEnv{
		httpProxy:  envEither("HTTP_PROXY", "http_proxy"),
		httpsProxy: envEither("HTTPS_PROXY", "https_proxy"),
		allProxy:   envEither("ALL_PROXY", "all_proxy"),
		noProxy:    envEither("NO_PROXY", "no_proxy"),
	}
}

func chooseEffectiveProxy(manual string, env proxyEnv) (effective, source string) {
	if strings.TrimSpace(manual) != "" {
		return manual, "manual"
	}
	if env.httpsProxy != "" {
		return env.httpsProxy, "env"
	}
	if env.httpProxy != "" {
		return env.httpProxy, "env"
	}
	if env.allProxy != "" {
		return env.allProxy, "env"
	}
	return "", "none"
}

// redactProxy drops credentials from a proxy URL before it is logged.
func redactProxy(raw string) string {
	if raw == "" {
		return raw
	}
	parsed, err := url.Parse(raw)
	if err != nil || parsed.User == nil {
		return raw
	}
	parsed.User = nil
	return parsed.String()
}

// newHTTPClient builds a client that goes through manual when set, otherwise
// through the proxy environment. socks5 and socks5h are dialed via x/net/proxy.
func newHTTPClient(timeout time.Duration, manual string) *http.Client {
	effective, _ := chooseEffectiveProxy(manual, readProxyEnv())

	var tr *http.Transport
	if base, ok := http.DefaultTransport.(*http.Transport); ok {
		tr = base.Clone()
	} else {
		tr = &http.Transport{}
	}
	tr.Proxy = http.ProxyFromEnvironment

	if effective == "" {
		return &http.Client{Timeout: timeout, Transport: tr}
	}
	pu, err := url.Parse(effective)
	if err != nil {
		return &http.Client{Timeout: timeout, Transport: tr}
	}

	switch strings.ToLower(pu.Scheme) {
	case "http", "https":
		tr.Proxy = http.ProxyURL(pu)
	case "socks5", "socks5h":
		tr.Proxy = nil
		if strings.EqualFold(pu.Scheme, "socks5h") {
			pu.Scheme = "socks5"
		}
		dialer, err := proxy.FromURL(pu, proxy.Direct)
		if err == nil {
			tr.DialContext = func(ctx context.Context, network, addr string) (net.Conn, error) {
				if dctx, ok := dialer.(proxy.ContextDialer); ok {
					return dctx.DialContext(ctx, network, addr)
				}
				return dialer.Dial(network, addr)
			}
		}
	}

	return &http.Client{Timeout: timeout, Transport: tr}
}
