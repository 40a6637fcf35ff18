package storage

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"encoding/hex"
	"fmt"
	"strconv"
	"strings"
	"time"
)

// DownloadClaims is what a signed download token carries.
type DownloadClaims struct {
	ExportID  string
	TenantID  string
	Path      string
	ExpiresAt time.Time
}

// SignedURLSigner creates and validates signed download tokens.
type SignedURLSigner struct {
	secret []byte
	ttl    time.Duration
	now    func() time.Time
}

// NewSignedURLSigner constructs a signer with the provided secret and TTL.
func NewSignedURLSigner(secret string, ttl time.Duration) *SignedURLSigner {
	if ttl <= 0 {
		ttl = time.Hour
	}
	return &SignedURLSigner{secret: []byte(secret), ttl: ttl, now: time.Now}
}

// Generate returns a token binding the export to its tenant and stored path.
func (s *SignedURLSigner) Generate(exportID, tenantID, relPath string) (string, time.Time, error) {
	if exportID == "" || tenantID == "" || relPath == "" {
		return "", time.Time{}, fmt.Errorf("export id, tenant and path required")
	}
	if len(s.secret) == 0 {
		return "", time.Time{}, fmt.Errorf("signing secret missing")
	}
	expiresAt := s.now().Add(s.ttl).Truncate(time.Second)
	parts := []string{
		exportID,
		base64.RawURLEncoding.EncodeToString([]byte(tenantID)),
		strconv.FormatInt(expiresAt.Unix(), 10),
		base64.RawURLEncoding.EncodeToString([]byte(relPath)),
	}
	parts = append(parts, s.sign(parts))
	return strings.Join(parts, "."), expiresAt, nil
}

// Parse validates a token. When allowExpired is true the expiry check is skipped.
func (s *SignedURLSigner) Parse(token string, allowExpired bool) (DownloadClaims, error) {
	parts := strings.Split(token, ".")
	if len(parts) != 5 {
		return DownloadClaims{}, fmt.Errorf("invalid token format")
	}
	if !hmac.Equal([]byte(s.sign(parts[:4])), []byte(parts[4])) {
		return DownloadClaims{}, fmt.Errorf("invalid token signature")
	}

	tenant, err := base64.RawURLEncoding.DecodeString(parts[1])
	if err != nil {
		return DownloadClaims{}, fmt.Errorf("decode tenant: %w", err)
	}
	expUnix, err := strconv.ParseInt(parts[2], 10, 64)
	if err != nil {
		return DownloadClaims{}, fmt.Errorf("invalid timestamp")
	}
	path, err := base64.RawURLEncoding.DecodeString(parts[3])
	if err != nil {
		return DownloadClaims{}, fmt.Errorf("decode path: %w", err)
	}

	claims := DownloadClaims{
		ExportID:  parts[0],
		TenantID:  string(tenant),
		Path:      string(path),
		ExpiresAt: time.Unix(expUnix, 0),
	}
	if !allowExpired && s.now().After(claims.ExpiresAt) {
		return DownloadClaims{}, fmt.Errorf("token expired")
	}
	return claims, nil
}

func (s *SignedURLSigner) sign(parts []string) string {
	mac := hmac.New(sha256.New, s.secret)
	_, _ = mac.Write([]byte(strings.Join(parts, "|")))
	return hex.EncodeToString(mac.Sum(nil))
}
