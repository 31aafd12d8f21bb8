// Package deliver picks how a stamped document reaches the end user.
//
// The original storefront ran this logic in the browser; as a service the
// same decision tree picks a response strategy instead: desktop clients get
// a direct attachment stream, share-capable mobile clients get the bytes
// with a share hint, other mobile browsers get a viewer page embedding the
// document, and embedded web views (which mishandle in-memory downloads)
// are redirected to a server endpoint that streams the stamped file with a
// forced attachment disposition.
package deliver

import (
	"fmt"
	"log"
	"net/http"
	"strings"
)

// EnvKind classifies the requesting runtime environment.
type EnvKind int

const (
	Desktop EnvKind = iota
	MobileBrowser
	EmbeddedWebView
)

func (k EnvKind) String() string {
	switch k {
	case MobileBrowser:
		return "mobile-browser"
	case EmbeddedWebView:
		return "embedded-webview"
	default:
		return "desktop"
	}
}

// Environment is the injectable capability the dispatcher branches on.
// It is only ever used to pick a delivery path, never for authorization.
type Environment struct {
	Kind     EnvKind
	CanShare bool
}

// Header names clients use to signal capabilities the user agent string
// cannot express.
const (
	HeaderNativeBridge = "X-Native-Bridge"
	HeaderNativeShare  = "X-Native-Share"
)

// DetectRequest derives the environment from an incoming request.
func DetectRequest(r *http.Request) Environment {
	return Detect(r.UserAgent(), r.Header.Get(HeaderNativeBridge) != "", r.Header.Get(HeaderNativeShare) == "1")
}

// Detect classifies a user agent plus explicit capability markers. The
// native bridge marker wins over any user agent sniffing.
func Detect(userAgent string, nativeBridge, shareCapable bool) Environment {
	ua := strings.ToLower(userAgent)
	if nativeBridge || strings.Contains(ua, "; wv)") || strings.Contains(ua, "webview") {
		return Environment{Kind: EmbeddedWebView}
	}
	if strings.Contains(ua, "mobi") || strings.Contains(ua, "android") ||
		strings.Contains(ua, "iphone") || strings.Contains(ua, "ipad") {
		return Environment{Kind: MobileBrowser, CanShare: shareCapable}
	}
	return Environment{Kind: Desktop}
}

// Outcome kinds, one per delivery path.
const (
	KindBlobLink      = "blob-link"
	KindShareSheet    = "share-sheet"
	KindViewerTab     = "viewer-tab"
	KindProxyRedirect = "proxy-redirect"
)

// Outcome records which delivery path was taken. URL is set for proxy
// redirects only.
type Outcome struct {
	Kind string
	URL  string
}

// Sink executes a delivery attempt. The HTTP layer implements it over a
// response writer; tests implement it with fakes to exercise fallbacks.
type Sink interface {
	BlobLink(filename string, data []byte) error
	ShareSheet(filename string, data []byte) error
	ViewerTab(filename string, data []byte) error
	ProxyRedirect(url string) error
}

// Deliver hands the stamped document to the user, trying paths in priority
// order for the detected environment. Failed paths fall through to the next
// one; the blob link path is the terminal fallback and its failure is the
// only one surfaced.
func Deliver(sink Sink, env Environment, filename string, data []byte, proxyURL string) (Outcome, error) {
	switch env.Kind {
	case EmbeddedWebView:
		if proxyURL != "" {
			err := sink.ProxyRedirect(proxyURL)
			if err == nil {
				return Outcome{Kind: KindProxyRedirect, URL: proxyURL}, nil
			}
			log.Printf("deliver: proxy redirect failed, falling back: %v", err)
		}
		if err := sink.ViewerTab(filename, data); err == nil {
			return Outcome{Kind: KindViewerTab}, nil
		}
	case MobileBrowser:
		if env.CanShare {
			err := sink.ShareSheet(filename, data)
			if err == nil {
				return Outcome{Kind: KindShareSheet}, nil
			}
			log.Printf("deliver: share sheet failed, falling back: %v", err)
		}
		if err := sink.ViewerTab(filename, data); err == nil {
			return Outcome{Kind: KindViewerTab}, nil
		}
	}
	if err := sink.BlobLink(filename, data); err != nil {
		return Outcome{}, fmt.Errorf("deliver: all paths failed: %w", err)
	}
	return Outcome{Kind: KindBlobLink}, nil
}
