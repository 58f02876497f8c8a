package nets

import (
	"testing"

	"github.com/reusee/dscope"
	"github.com/reusee/rlm/configs"
	"github.com/reusee/rlm/modes"
)

func TestIsLocalAddr(t *testing.T) {
	dscope.New(
		modes.ForTest(t),
		new(Module),
		dscope.Provide(configs.NewLoader(nil, "")),
	).Call(func(
		isLocalAddr IsLocalAddr,
	) {
		for addr, expected := range map[string]bool{
			"127.0.0.1:10000": true,
			"localhost:80":    true,
			"[::1]:443":       true,
			"192.168.1.2":     true,
			"10.0.0.1:8080":   true,
			"8.8.8.8:53":      false,
		} {
			if got := isLocalAddr(addr); got != expected {
				t.Fatalf("%s: got %v", addr, got)
			}
		}
	})
}

func TestProxyAddrInDevelopment(t *testing.T) {
	t.Setenv("ALL_PROXY", "socks5://127.0.0.1:1080")
	dscope.New(
		modes.ForTest(t),
		new(Module),
		dscope.Provide(configs.NewLoader(nil, "")),
	).Call(func(
		addr ProxyAddr,
		getDialer GetProxyDialer,
		client HTTPClient,
	) {
		if addr != "" {
			t.Fatalf("got %v", addr)
		}
		dialer, err := getDialer()
		if err != nil {
			t.Fatal(err)
		}
		if dialer == nil {
			t.Fatal()
		}
		if client == nil {
			t.Fatal()
		}
	})
}

func TestParseProxyURL(t *testing.T) {
	u, err := parseProxyURL("socks://127.0.0.1:1080")
	if err != nil {
		t.Fatal(err)
	}
	if u.Scheme != "socks5" {
		t.Fatalf("got %v", u.Scheme)
	}
}
