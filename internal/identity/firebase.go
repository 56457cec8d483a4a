// Package identity verifies Firebase ID tokens presented by clients.
package identity

import (
	"context"
	"crypto/rsa"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/golang-jwt/jwt/v5"
)

// DefaultCertsURL publishes the x509 certificates that sign Firebase ID tokens.
const DefaultCertsURL = "https://www.googleapis.com/robot/v1/metadata/x509/securetoken@system.gserviceaccount.com"

const defaultKeyTTL = time.Hour

// ErrInvalidToken means the token itself was rejected, as opposed to a
// failure to fetch the signing keys.
var ErrInvalidToken = errors.New("identity: invalid token")

// Identity is the verified subject of a Firebase ID token.
type Identity struct {
	UID     string
	Email   string
	Name    string
	Picture string
}

// Verifier checks an ID token and returns the identity it asserts.
type Verifier interface {
	Verify(ctx context.Context, idToken string) (*Identity, error)
}

type firebaseClaims struct {
	Email   string `json:"email"`
	Name    string `json:"name"`
	Picture string `json:"picture"`
	jwt.RegisteredClaims
}

type Options struct {
	ProjectID string
	CertsURL  string
	Timeout   time.Duration
}

// FirebaseVerifier validates RS256 ID tokens against Google's published
// certificates, caching them for the max-age Google advertises.
type FirebaseVerifier struct {
	projectID  string
	certsURL   string
	httpClient *resty.Client
	now        func() time.Time

	mu        sync.RWMutex
	keys      map[string]*rsa.PublicKey
	expiresAt time.Time
}

func NewFirebaseVerifier(opts Options) *FirebaseVerifier {
	certsURL := opts.CertsURL
	if certsURL == "" {
		certsURL = DefaultCertsURL
	}
	timeout := opts.Timeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &FirebaseVerifier{
		projectID:  opts.ProjectID,
		certsURL:   certsURL,
		httpClient: resty.New().SetDebug(false).SetTimeout(timeout),
		now:        time.Now,
	}
}

func (v *FirebaseVerifier) issuer() string {
	return "https://securetoken.google.com/" + v.projectID
}

// Verify checks signature, audience, issuer, expiry and subject of idToken.
func (v *FirebaseVerifier) Verify(ctx context.Context, idToken string) (*Identity, error) {
	if strings.TrimSpace(idToken) == "" {
		return nil, fmt.Errorf("%w: empty token", ErrInvalidToken)
	}
	keys, err := v.publicKeys(ctx)
	if err != nil {
		return nil, err
	}

	claims := &firebaseClaims{}
	token, err := jwt.ParseWithClaims(idToken, claims, func(t *jwt.Token) (any, error) {
		kid, _ := t.Header["kid"].(string)
		key, ok := keys[kid]
		if !ok {
			return nil, fmt.Errorf("unknown key id %q", kid)
		}
		return key, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodRS256.Alg()}),
		jwt.WithAudience(v.projectID),
		jwt.WithIssuer(v.issuer()),
		jwt.WithExpirationRequired(),
		jwt.WithIssuedAt(),
		jwt.WithTimeFunc(v.now),
	)
	if err != nil || !token.Valid {
		return nil, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}
	if claims.Subject == "" {
		return nil, fmt.Errorf("%w: missing subject", ErrInvalidToken)
	}

	return &Identity{
		UID:     claims.Subject,
		Email:   claims.Email,
		Name:    claims.Name,
		Picture: claims.Picture,
	}, nil
}

func (v *FirebaseVerifier) publicKeys(ctx context.Context) (map[string]*rsa.PublicKey, error) {
	v.mu.RLock()
	if v.keys != nil && v.now().Before(v.expiresAt) {
		keys := v.keys
		v.mu.RUnlock()
		return keys, nil
	}
	v.mu.RUnlock()

	v.mu.Lock()
	defer v.mu.Unlock()
	if v.keys != nil && v.now().Before(v.expiresAt) {
		return v.keys, nil
	}

	res, err := v.httpClient.NewRequest().SetContext(ctx).Get(v.certsURL)
	if err != nil {
		return nil, fmt.Errorf("fetch signing certificates: %w", err)
	}
	if res.IsError() {
		return nil, fmt.Errorf("fetch signing certificates: status %d", res.StatusCode())
	}

	var certs map[string]string
	if err := json.Unmarshal(res.Body(), &certs); err != nil {
		return nil, fmt.Errorf("decode signing certificates: %w", err)
	}
	keys := make(map[string]*rsa.PublicKey, len(certs))
	for kid, pemCert := range certs {
		key, err := jwt.ParseRSAPublicKeyFromPEM([]byte(pemCert))
		if err != nil {
			return nil, fmt.Errorf("parse certificate %s: %w", kid, err)
		}
		keys[kid] = key
	}

	v.keys = keys
	v.expiresAt = v.now().Add(maxAge(res.Header().Get("Cache-Control")))
	return keys, nil
}

// maxAge extracts max-age from a Cache-Control header.
func maxAge(header string) time.Duration {
	for _, directive := range strings.Split(header, ",") {
		directive = strings.TrimSpace(directive)
		if value, ok := strings.CutPrefix(directive, "max-age="); ok {
			if secs, err := strconv.Atoi(value); err == nil && secs > 0 {
				return time.Duration(secs) * time.Second
			}
		}
	}
	return defaultKeyTTL
}
