package web

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"

	"github.com/JonMunkholm/ibportal/internal/export"
)

// asciiFilename strips accents and replaces anything else outside
// printable ASCII so the plain filename parameter is safe for old clients.
func asciiFilename(name string) string {
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	folded, _, err := transform.String(t, name)
	if err != nil {
		folded = name
	}
	return strings.Map(func(r rune) rune {
		if r < 0x20 || r > 0x7e || r == '"' || r == '\\' {
			return '_'
		}
		return r
	}, folded)
}

// contentDisposition builds an attachment header with an ASCII fallback
// and the RFC 5987 UTF-8 name.
func contentDisposition(name string) string {
	ascii := asciiFilename(name)
	if ascii == name {
		return fmt.Sprintf(`attachment; filename="%s"`, ascii)
	}
	return fmt.Sprintf(`attachment; filename="%s"; filename*=UTF-8''%s`, ascii, url.PathEscape(name))
}

// writeDownload sends an export result. A substituted format is announced
// in X-Export-Notice and as an HX-Trigger event for HTMX clients.
func writeDownload(w http.ResponseWriter, res *export.Result) {
	h := w.Header()
	h.Set("Content-Type", res.ContentType)
	h.Set("Content-Disposition", contentDisposition(res.Filename))
	h.Set("X-Export-Format", string(res.Format))
	h.Set("Cache-Control", "no-store")
	if res.Notice != "" {
		h.Set("X-Export-Notice", res.Notice)
		if trigger, err := json.Marshal(map[string]string{"exportNotice": res.Notice}); err == nil {
			h.Set("HX-Trigger", string(trigger))
		}
	}
	w.WriteHeader(http.StatusOK)
	w.Write(res.Data)
}
