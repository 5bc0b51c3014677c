package useragent

import (
	"crypto/rand"
	"math/big"
)

// Browser User-Agents grouped by the family whose TLS handshake they match.
var byBrowser = map[string][]string{
	"chrome": {
		"Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/121.0.0.0 Safari/537.36",
		"Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/121.0.0.0 Safari/537.36",
	},
	"firefox": {
		"Mozilla/5.0 (Windows NT 10.0; Win64; x64; rv:122.0) Gecko/20100101 Firefox/122.0",
		"Mozilla/5.0 (Macintosh; Intel Mac OS X 10.15; rv:121.0) Gecko/20100101 Firefox/121.0",
	},
	"safari": {
		"Mozilla/5.0 (iPhone; CPU iPhone OS 17_3 like Mac OS X) AppleWebKit/605.1.15 (KHTML, like Gecko) Version/17.3 Mobile/15E148 Safari/604.1",
		"Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) AppleWebKit/605.1.15 (KHTML, like Gecko) Version/17.3 Safari/605.1.15",
	},
}

// For returns a User-Agent consistent with the named browser family. "random"
// picks from every family. Unknown names, including "go", return "" so the
// caller keeps its own identifier.
func For(browser string) string {
	if browser == "random" {
		var all []string
		for _, family := range []string{"chrome", "firefox", "safari"} {
			all = append(all, byBrowser[family]...)
		}
		return pick(all)
	}
	return pick(byBrowser[browser])
}

func pick(uas []string) string {
	if len(uas) == 0 {
		return ""
	}
	n, err := rand.Int(rand.Reader, big.NewInt(int64(len(uas))))
	if err != nil {
		return uas[0]
	}
	return uas[n.Int64()]
}
