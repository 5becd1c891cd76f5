package identity

import (
	"context"
	"crypto/rsa"
	"crypto/x509"
	"encoding/json"
	"encoding/pem"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"sync"
	"time"
)

// GoogleCertsURL publishes the x509 certificates that sign Firebase ID tokens.
const GoogleCertsURL = "https://www.googleapis.com/robot/v1/metadata/x509/securetoken@system.gserviceaccount.com"

const defaultCertTTL = time.Hour

// CertSource returns the current signing keys indexed by key id.
type CertSource interface {
	Keys(ctx context.Context) (map[string]*rsa.PublicKey, error)
}

// GoogleCertSource fetches and caches the token signing certificates,
// honouring the max-age of the response.
type GoogleCertSource struct {
	url    string
	client *http.Client
	now    func() time.Time

	mu      sync.RWMutex
	keys    map[string]*rsa.PublicKey
	expires time.Time
}

func NewGoogleCertSource(client *http.Client) *GoogleCertSource {
	if client == nil {
		client = &http.Client{Timeout: 10 * time.Second}
	}
	return &GoogleCertSource{url: GoogleCertsURL, client: client, now: time.Now}
}

func (s *GoogleCertSource) Keys(ctx context.Context) (map[string]*rsa.PublicKey, error) {
	s.mu.RLock()
	if s.keys != nil && s.now().Before(s.expires) {
		keys := s.keys
		s.mu.RUnlock()
		return keys, nil
	}
	s.mu.RUnlock()

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.keys != nil && s.now().Before(s.expires) {
		return s.keys, nil
	}

	keys, ttl, err := s.fetch(ctx)
	if err != nil {
		return nil, err
	}
	s.keys = keys
	s.expires = s.now().Add(ttl)
	return keys, nil
}

func (s *GoogleCertSource) fetch(ctx context.Context) (map[string]*rsa.PublicKey, time.Duration, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.url, nil)
	if err != nil {
		return nil, 0, err
	}

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, 0, fmt.Errorf("fetch signing certificates: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, 0, fmt.Errorf("fetch signing certificates: unexpected status %d", resp.StatusCode)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return nil, 0, err
	}

	keys, err := parseCertificates(body)
	if err != nil {
		return nil, 0, err
	}

	return keys, maxAge(resp.Header.Get("Cache-Control")), nil
}

func parseCertificates(body []byte) (map[string]*rsa.PublicKey, error) {
	var certs map[string]string
	if err := json.Unmarshal(body, &certs); err != nil {
		return nil, fmt.Errorf("decode signing certificates: %w", err)
	}

	keys := make(map[string]*rsa.PublicKey, len(certs))
	for kid, certPEM := range certs {
		block, _ := pem.Decode([]byte(certPEM))
		if block == nil {
			return nil, fmt.Errorf("certificate %s: invalid PEM", kid)
		}
		cert, err := x509.ParseCertificate(block.Bytes)
		if err != nil {
			return nil, fmt.Errorf("certificate %s: %w", kid, err)
		}
		pub, ok := cert.PublicKey.(*rsa.PublicKey)
		if !ok {
			return nil, fmt.Errorf("certificate %s: not an RSA key", kid)
		}
		keys[kid] = pub
	}

	if len(keys) == 0 {
		return nil, errors.New("no signing certificates published")
	}
	return keys, nil
}

func maxAge(cacheControl string) time.Duration {
	for _, directive := range strings.Split(cacheControl, ",") {
		directive = strings.TrimSpace(directive)
		if !strings.HasPrefix(directive, "max-age=") {
			continue
		}
		secs, err := strconv.Atoi(strings.TrimPrefix(directive, "max-age="))
		if err != nil || secs <= 0 {
			break
		}
		return time.Duration(secs) * time.Second
	}
	return defaultCertTTL
}
