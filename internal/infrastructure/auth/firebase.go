package auth

import (
	"context"
	"crypto/rsa"
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"go.uber.org/zap"
)

// DefaultCertsURL publishes the keys that sign Firebase ID tokens
const DefaultCertsURL = "https://www.googleapis.com/robot/v1/metadata/x509/securetoken@system.gserviceaccount.com"

const defaultCertsTTL = time.Hour

// FirebaseVerifier checks RS256 Firebase ID tokens for one project
type FirebaseVerifier struct {
	projectID  string
	certsURL   string
	httpClient *http.Client
	logger     *zap.Logger
	now        func() time.Time

	mu      sync.Mutex
	keys    map[string]*rsa.PublicKey
	expires time.Time
}

// FirebaseOption configures a FirebaseVerifier
type FirebaseOption func(*FirebaseVerifier)

// WithCertsURL overrides where signing certificates are fetched; "" keeps the default
func WithCertsURL(url string) FirebaseOption {
	return func(v *FirebaseVerifier) {
		if url != "" {
			v.certsURL = url
		}
	}
}

// WithHTTPClient sets the client used to fetch certificates
func WithHTTPClient(c *http.Client) FirebaseOption {
	return func(v *FirebaseVerifier) {
		if c != nil {
			v.httpClient = c
		}
	}
}

// WithVerifierLogger sets the logger
func WithVerifierLogger(l *zap.Logger) FirebaseOption {
	return func(v *FirebaseVerifier) {
		if l != nil {
			v.logger = l
		}
	}
}

// NewFirebaseVerifier creates a verifier for tokens issued to projectID
func NewFirebaseVerifier(projectID string, opts ...FirebaseOption) *FirebaseVerifier {
	v := &FirebaseVerifier{
		projectID:  projectID,
		certsURL:   DefaultCertsURL,
		httpClient: &http.Client{Timeout: 10 * time.Second},
		logger:     zap.NewNop(),
		now:        time.Now,
	}
	for _, opt := range opts {
		opt(v)
	}
	return v
}

// Verify implements TokenVerifier. The token must be RS256, signed by a
// current Google key, issued by securetoken for the project, and carry a subject.
func (v *FirebaseVerifier) Verify(ctx context.Context, token string) (*Identity, error) {
	claims := &Claims{}
	_, err := jwt.ParseWithClaims(token, claims, func(t *jwt.Token) (any, error) {
		kid, _ := t.Header["kid"].(string)
		return v.key(ctx, kid)
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodRS256.Alg()}),
		jwt.WithIssuer("https://securetoken.google.com/"+v.projectID),
		jwt.WithAudience(v.projectID),
		jwt.WithExpirationRequired(),
		jwt.WithIssuedAt(),
		jwt.WithTimeFunc(v.now),
	)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}
	return claims.identity()
}

func (v *FirebaseVerifier) key(ctx context.Context, kid string) (*rsa.PublicKey, error) {
	v.mu.Lock()
	defer v.mu.Unlock()

	if v.keys == nil || !v.now().Before(v.expires) {
		if err := v.refresh(ctx); err != nil {
			return nil, err
		}
	}
	key, ok := v.keys[kid]
	if !ok {
		return nil, ErrUnknownKey
	}
	return key, nil
}

// refresh downloads the certificate set; callers hold mu
func (v *FirebaseVerifier) refresh(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, v.certsURL, nil)
	if err != nil {
		return err
	}
	resp, err := v.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("failed to fetch signing certificates: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("failed to fetch signing certificates: status %d", resp.StatusCode)
	}

	var pems map[string]string
	if err := json.NewDecoder(resp.Body).Decode(&pems); err != nil {
		return fmt.Errorf("failed to decode signing certificates: %w", err)
	}

	keys := make(map[string]*rsa.PublicKey, len(pems))
	for kid, pem := range pems {
		key, err := jwt.ParseRSAPublicKeyFromPEM([]byte(pem))
		if err != nil {
			v.logger.Warn("Skipping unparsable signing certificate", zap.String("kid", kid), zap.Error(err))
			continue
		}
		keys[kid] = key
	}

	v.keys = keys
	v.expires = v.now().Add(maxAge(resp.Header.Get("Cache-Control")))
	v.logger.Debug("Signing certificates refreshed", zap.Int("keys", len(keys)), zap.Time("expires", v.expires))
	return nil
}

// maxAge reads max-age from a Cache-Control header
func maxAge(header string) time.Duration {
	for _, directive := range strings.Split(header, ",") {
		name, value, ok := strings.Cut(strings.TrimSpace(directive), "=")
		if !ok || !strings.EqualFold(name, "max-age") {
			continue
		}
		if secs, err := strconv.Atoi(value); err == nil && secs > 0 {
			return time.Duration(secs) * time.Second
		}
	}
	return defaultCertsTTL
}
