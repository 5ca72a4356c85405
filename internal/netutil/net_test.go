package netutil

import (
	"net"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestRemoteIPIgnoresForwardingHeaders(t *testing.T) {
	r := httptest.NewRequest("GET", "/", nil)
	r.RemoteAddr = "10.0.0.7:5555"
	r.Header.Set("X-Forwarded-For", "1.2.3.4")
	r.Header.Set("X-Real-IP", "5.6.7.8")
	require.Equal(t, "10.0.0.7", IPString(RemoteIP(r)))
	require.Nil(t, RemoteIP(nil))
}

func TestClassifyClientSource(t *testing.T) {
	require.Equal(t, "loopback", ClassifyClientSource(net.ParseIP("127.0.0.1")))
	require.Equal(t, "loopback", ClassifyClientSource(net.ParseIP("::1")))
	require.Equal(t, "private", ClassifyClientSource(net.ParseIP("192.168.1.20")))
	require.Equal(t, "public", ClassifyClientSource(net.ParseIP("8.8.8.8")))
	require.Equal(t, "unknown", ClassifyClientSource(nil))
}

func TestIsLoopbackListen(t *testing.T) {
	cases := map[string]bool{
		"127.0.0.1:55557": true,
		"localhost:8095":  true,
		"[::1]:8095":      true,
		":8095":           false,
		"0.0.0.0:8095":    false,
		"10.1.2.3:8095":   false,
	}
	for addr, want := range cases {
		require.Equal(t, want, IsLoopbackListen(addr), addr)
	}
}
