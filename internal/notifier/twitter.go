package notifier

import (
	"context"
	"crypto/hmac"
	"crypto/rand"
	"crypto/sha1"
	"encoding/base64"
	"encoding/hex"
	"fmt"
	"net/http"
	"net/url"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/rovshanmuradov/chain-monitor/internal/monconfig"
)

const twitterStatusUpdateURL = "https://api.twitter.com/1.1/statuses/update.json"

// TwitterDestination posts a status update signed with OAuth1 (spec.md
// §4.4). No OAuth1 library appears anywhere in the retrieved example pack,
// so the signature is built directly on crypto/hmac + crypto/sha1 per the
// standard algorithm (documented in DESIGN.md as a justified stdlib use).
type TwitterDestination struct {
	apiKey            string
	apiSecret         string
	accessToken       string
	accessTokenSecret string
}

// NewTwitterDestination builds a destination from config, or returns nil
// if cfg is missing any of the four OAuth1 credentials it requires.
func NewTwitterDestination(cfg monconfig.TwitterConfig) *TwitterDestination {
	if cfg.APIKey == "" || cfg.APISecret == "" || cfg.AccessToken == "" || cfg.AccessTokenSecret == "" {
		return nil
	}
	return &TwitterDestination{
		apiKey:            cfg.APIKey,
		apiSecret:         cfg.APISecret,
		accessToken:       cfg.AccessToken,
		accessTokenSecret: cfg.AccessTokenSecret,
	}
}

func (d *TwitterDestination) Name() string { return string(monconfig.DestTwitter) }

func (d *TwitterDestination) Send(ctx context.Context, message string) error {
	params := map[string]string{"status": message}

	authHeader, err := d.signedAuthHeader(http.MethodPost, twitterStatusUpdateURL, params)
	if err != nil {
		return transportFailure(d.Name(), fmt.Errorf("sign request: %w", err))
	}

	form := url.Values{}
	for k, v := range params {
		form.Set(k, v)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, twitterStatusUpdateURL, strings.NewReader(form.Encode()))
	if err != nil {
		return transportFailure(d.Name(), err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.Header.Set("Authorization", authHeader)

	resp, err := httpClient.Do(req)
	if err != nil {
		return transportFailure(d.Name(), err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return non2xxResponse(d.Name(), resp.StatusCode)
	}
	return nil
}

// signedAuthHeader builds the OAuth1 "Authorization" header value: HMAC-SHA1
// over the canonical signature base string (method, URL, sorted
// percent-encoded parameters including the oauth_* parameters).
func (d *TwitterDestination) signedAuthHeader(method, rawURL string, params map[string]string) (string, error) {
	nonce, err := generateNonce()
	if err != nil {
		return "", err
	}
	timestamp := strconv.FormatInt(time.Now().Unix(), 10)

	oauthParams := map[string]string{
		"oauth_consumer_key":     d.apiKey,
		"oauth_nonce":            nonce,
		"oauth_signature_method": "HMAC-SHA1",
		"oauth_timestamp":        timestamp,
		"oauth_token":            d.accessToken,
		"oauth_version":          "1.0",
	}

	all := make(map[string]string, len(params)+len(oauthParams))
	for k, v := range params {
		all[k] = v
	}
	for k, v := range oauthParams {
		all[k] = v
	}

	baseString := signatureBaseString(method, rawURL, all)
	signingKey := percentEncode(d.apiSecret) + "&" + percentEncode(d.accessTokenSecret)

	mac := hmac.New(sha1.New, []byte(signingKey))
	mac.Write([]byte(baseString))
	signature := base64.StdEncoding.EncodeToString(mac.Sum(nil))
	oauthParams["oauth_signature"] = signature

	keys := make([]string, 0, len(oauthParams))
	for k := range oauthParams {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var b strings.Builder
	b.WriteString("OAuth ")
	for i, k := range keys {
		if i > 0 {
			b.WriteString(", ")
		}
		b.WriteString(percentEncode(k))
		b.WriteString(`="`)
		b.WriteString(percentEncode(oauthParams[k]))
		b.WriteString(`"`)
	}
	return b.String(), nil
}

func signatureBaseString(method, rawURL string, params map[string]string) string {
	keys := make([]string, 0, len(params))
	for k := range params {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	pairs := make([]string, 0, len(keys))
	for _, k := range keys {
		pairs = append(pairs, percentEncode(k)+"="+percentEncode(params[k]))
	}
	encodedParams := strings.Join(pairs, "&")

	return strings.ToUpper(method) + "&" + percentEncode(rawURL) + "&" + percentEncode(encodedParams)
}

// percentEncode implements RFC 3986 encoding as OAuth1 requires it — Go's
// url.QueryEscape encodes spaces as "+" and diverges on a handful of
// reserved characters, so percent-triplets are normalized by hand.
func percentEncode(s string) string {
	var b strings.Builder
	for i := 0; i < len(s); i++ {
		c := s[i]
		if isUnreserved(c) {
			b.WriteByte(c)
			continue
		}
		b.WriteByte('%')
		b.WriteString(strings.ToUpper(hex.EncodeToString([]byte{c})))
	}
	return b.String()
}

func isUnreserved(c byte) bool {
	return (c >= 'A' && c <= 'Z') || (c >= 'a' && c <= 'z') || (c >= '0' && c <= '9') ||
		c == '-' || c == '.' || c == '_' || c == '~'
}

func generateNonce() (string, error) {
	buf := make([]byte, 16)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("generate nonce: %w", err)
	}
	return hex.EncodeToString(buf), nil
}
