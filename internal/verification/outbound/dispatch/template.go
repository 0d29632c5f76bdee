package dispatch

import (
	"bytes"
	"fmt"
	"strings"
	"text/template"

	"github.com/shandysiswandi/goverify/internal/verification/entity"
)

// messageSet holds the rendered-message sources for one (locale, purpose).
// SMS and voice share the plain-text form; email carries a subject and an
// HTML body.
type messageSet struct {
	Text         string
	EmailSubject string
	EmailHTML    string
	VoiceSay     string
}

// templateData is what every message template may reference.
type templateData struct {
	Code       string
	Product    string
	TTLMinutes int
}

// Catalog resolves message templates by locale and purpose, falling back to
// the default locale when a translation is missing.
type Catalog struct {
	defaultLocale string
	product       string
	ttlMinutes    int
	sets          map[string]map[entity.Purpose]messageSet
}

// CatalogConfig drives Catalog construction.
type CatalogConfig struct {
	DefaultLocale string
	Product       string
	TTLMinutes    int
}

// NewCatalog builds the built-in message catalog.
func NewCatalog(cfg CatalogConfig) *Catalog {
	if cfg.DefaultLocale == "" {
		cfg.DefaultLocale = "en"
	}
	if cfg.Product == "" {
		cfg.Product = "goverify"
	}
	if cfg.TTLMinutes <= 0 {
		cfg.TTLMinutes = 10
	}

	return &Catalog{
		defaultLocale: cfg.DefaultLocale,
		product:       cfg.Product,
		ttlMinutes:    cfg.TTLMinutes,
		sets:          builtinSets(),
	}
}

// Resolve renders the message set for the given locale and purpose. Unknown
// locales fall back to the default locale; the default locale covers every
// purpose, so Resolve only errors on a render failure.
func (c *Catalog) Resolve(locale string, purpose entity.Purpose, code string) (messageSet, error) {
	norm := normalizeLocale(locale)
	byPurpose, ok := c.sets[norm]
	if !ok {
		byPurpose = c.sets[c.defaultLocale]
	}
	set, ok := byPurpose[purpose]
	if !ok {
		set = c.sets[c.defaultLocale][purpose]
	}

	data := templateData{Code: code, Product: c.product, TTLMinutes: c.ttlMinutes}

	var err error
	if set.Text, err = render("text", set.Text, data); err != nil {
		return messageSet{}, err
	}
	if set.EmailSubject, err = render("subject", set.EmailSubject, data); err != nil {
		return messageSet{}, err
	}
	if set.EmailHTML, err = render("html", set.EmailHTML, data); err != nil {
		return messageSet{}, err
	}
	voiceData := data
	voiceData.Code = spellOut(code)
	if set.VoiceSay, err = render("voice", set.VoiceSay, voiceData); err != nil {
		return messageSet{}, err
	}

	return set, nil
}

func render(name, tpl string, data templateData) (string, error) {
	t, err := template.New(name).Option("missingkey=zero").Parse(tpl)
	if err != nil {
		return "", err
	}

	var buf bytes.Buffer
	if err := t.Execute(&buf, data); err != nil {
		return "", err
	}

	return buf.String(), nil
}

// normalizeLocale lowercases and trims a BCP 47 tag down to its language
// subtag: "en-US" and "en_GB" both resolve to "en".
func normalizeLocale(locale string) string {
	locale = strings.ToLower(strings.TrimSpace(locale))
	if i := strings.IndexAny(locale, "-_"); i > 0 {
		locale = locale[:i]
	}
	return locale
}

// spellOut spaces the code digits so text-to-speech reads them one by one.
func spellOut(code string) string {
	return strings.Join(strings.Split(code, ""), ", ")
}

func builtinSets() map[string]map[entity.Purpose]messageSet {
	mk := func(action string) messageSet {
		return messageSet{
			Text:         fmt.Sprintf("{{.Product}}: {{.Code}} is your %s code. It expires in {{.TTLMinutes}} minutes.", action),
			EmailSubject: fmt.Sprintf("Your {{.Product}} %s code", action),
			EmailHTML: fmt.Sprintf(`<p>Use this code to finish your %s:</p>
<p style="font-size:24px;font-weight:bold;letter-spacing:4px">{{.Code}}</p>
<p>The code expires in {{.TTLMinutes}} minutes. If you did not request it, ignore this email.</p>`, action),
			VoiceSay: fmt.Sprintf("Your {{.Product}} %s code is {{.Code}}. Again, {{.Code}}.", action),
		}
	}
	mkID := func(action string) messageSet {
		return messageSet{
			Text:         fmt.Sprintf("{{.Product}}: {{.Code}} adalah kode %s Anda. Berlaku {{.TTLMinutes}} menit.", action),
			EmailSubject: fmt.Sprintf("Kode %s {{.Product}} Anda", action),
			EmailHTML: fmt.Sprintf(`<p>Gunakan kode ini untuk menyelesaikan %s Anda:</p>
<p style="font-size:24px;font-weight:bold;letter-spacing:4px">{{.Code}}</p>
<p>Kode berlaku selama {{.TTLMinutes}} menit. Abaikan email ini jika Anda tidak memintanya.</p>`, action),
			VoiceSay: fmt.Sprintf("Kode %s {{.Product}} Anda adalah {{.Code}}. Sekali lagi, {{.Code}}.", action),
		}
	}

	return map[string]map[entity.Purpose]messageSet{
		"en": {
			entity.PurposeRegistration:  mk("registration"),
			entity.PurposeLogin:         mk("sign-in"),
			entity.PurposePasswordReset: mk("password reset"),
			entity.PurposeContactChange: mk("contact change"),
			entity.PurposeTwoFactor:     mk("two-factor"),
		},
		"id": {
			entity.PurposeRegistration:  mkID("pendaftaran"),
			entity.PurposeLogin:         mkID("masuk"),
			entity.PurposePasswordReset: mkID("atur ulang kata sandi"),
			entity.PurposeContactChange: mkID("perubahan kontak"),
			entity.PurposeTwoFactor:     mkID("dua faktor"),
		},
	}
}
