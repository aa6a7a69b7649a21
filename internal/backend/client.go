package backend

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/bantay-barangay/backend/internal/logger"
	"github.com/bantay-barangay/backend/internal/rawvalue"
)

const accountPathPrefix = "auth/accounts"

// accountRecord is the identity service's own bookkeeping, stored in
// the same key space under auth/accounts.
type accountRecord struct {
	UID          string `json:"uid"`
	Email        string `json:"email"`
	PasswordHash string `json:"passwordHash"`
	CreatedAt    string `json:"createdAt"`
}

// Client is the concrete backend service: credential accounts with
// bcrypt hashes, JWT-backed sessions, and a path store plus blob store
// for the record hierarchy. One Client holds at most one active
// session, initialized once at startup and passed to every operation.
type Client struct {
	store  PathStore
	blobs  BlobStore
	secret []byte
	ttl    time.Duration

	mu    sync.Mutex
	token string
}

func NewClient(store PathStore, blobs BlobStore, secret []byte, sessionTTL time.Duration) *Client {
	return &Client{
		store:  store,
		blobs:  blobs,
		secret: secret,
		ttl:    sessionTTL,
	}
}

// emailKey flattens an email address into a segment the key space can
// hold.
var emailKeyReplacer = strings.NewReplacer(".", "_", "#", "_", "$", "_", "[", "_", "]", "_", "/", "_")

func emailKey(email string) string {
	return emailKeyReplacer.Replace(strings.ToLower(strings.TrimSpace(email)))
}

func accountPath(email string) string {
	return accountPathPrefix + "/" + emailKey(email)
}

func (c *Client) Authenticate(ctx context.Context, email, password string) (string, error) {
	raw, err := c.store.Get(ctx, accountPath(email))
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return "", ErrInvalidCredentials
		}
		return "", fmt.Errorf("load account: %w", err)
	}

	var account accountRecord
	if err := json.Unmarshal([]byte(raw), &account); err != nil {
		logger.WithError(err, "backend").Warn("Stored account record is malformed")
		return "", ErrInvalidCredentials
	}

	if err := bcrypt.CompareHashAndPassword([]byte(account.PasswordHash), []byte(password)); err != nil {
		return "", ErrInvalidCredentials
	}

	if err := c.openSession(account.UID, account.Email); err != nil {
		return "", err
	}
	return account.UID, nil
}

func (c *Client) Register(ctx context.Context, email, password string) (string, error) {
	path := accountPath(email)
	if _, err := c.store.Get(ctx, path); err == nil {
		return "", ErrAccountExists
	} else if !errors.Is(err, ErrNotFound) {
		return "", fmt.Errorf("check account: %w", err)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", fmt.Errorf("hash password: %w", err)
	}

	account := accountRecord{
		UID:          uuid.NewString(),
		Email:        strings.ToLower(strings.TrimSpace(email)),
		PasswordHash: string(hash),
		CreatedAt:    time.Now().UTC().Format(time.RFC3339),
	}
	data, err := json.Marshal(account)
	if err != nil {
		return "", fmt.Errorf("encode account: %w", err)
	}
	if err := c.store.Set(ctx, path, string(data)); err != nil {
		return "", fmt.Errorf("store account: %w", err)
	}

	if err := c.openSession(account.UID, account.Email); err != nil {
		return "", err
	}
	return account.UID, nil
}

func (c *Client) openSession(uid, email string) error {
	now := time.Now()
	claims := jwt.MapClaims{
		"sub":   uid,
		"email": email,
		"iat":   now.Unix(),
		"exp":   now.Add(c.ttl).Unix(),
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(c.secret)
	if err != nil {
		return fmt.Errorf("sign session token: %w", err)
	}

	c.mu.Lock()
	c.token = token
	c.mu.Unlock()
	return nil
}

func (c *Client) EndSession() {
	c.mu.Lock()
	c.token = ""
	c.mu.Unlock()
}

func (c *Client) CurrentSessionID() (string, bool) {
	c.mu.Lock()
	token := c.token
	c.mu.Unlock()

	if token == "" {
		return "", false
	}

	parsed, err := jwt.Parse(token, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, jwt.ErrSignatureInvalid
		}
		return c.secret, nil
	})
	if err != nil || !parsed.Valid {
		return "", false
	}

	claims, ok := parsed.Claims.(jwt.MapClaims)
	if !ok {
		return "", false
	}
	uid, _ := claims["sub"].(string)
	return uid, uid != ""
}

func (c *Client) IsAuthenticated() bool {
	_, ok := c.CurrentSessionID()
	return ok
}

func (c *Client) ReadAt(ctx context.Context, path string) (rawvalue.Value, error) {
	if err := ValidatePath(path); err != nil {
		return nil, err
	}

	raw, err := c.store.Get(ctx, path)
	if err == nil {
		value, err := rawvalue.FromJSON([]byte(raw))
		if err != nil {
			logger.WithBackend(path).WithField("error", err.Error()).Warn("Stored record is not valid interchange text")
			return nil, nil
		}
		return value, nil
	}
	if !errors.Is(err, ErrNotFound) {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}

	// Nothing at the exact path; the path may name a collection.
	children, err := c.store.List(ctx, path)
	if err != nil {
		return nil, fmt.Errorf("list %s: %w", path, err)
	}
	if len(children) == 0 {
		return nil, nil
	}

	collection := make(rawvalue.Map, len(children))
	for key, childRaw := range children {
		child, err := rawvalue.FromJSON([]byte(childRaw))
		if err != nil {
			logger.WithBackend(path + "/" + key).WithField("error", err.Error()).Warn("Skipping malformed child record")
			continue
		}
		collection[key] = child
	}
	return collection, nil
}

func (c *Client) WriteAt(ctx context.Context, path string, value rawvalue.Value) error {
	if err := ValidatePath(path); err != nil {
		return err
	}
	data, err := rawvalue.ToJSON(value)
	if err != nil {
		return fmt.Errorf("encode %s: %w", path, err)
	}
	if err := c.store.Set(ctx, path, string(data)); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	return nil
}

func (c *Client) UploadBlob(ctx context.Context, data []byte, path string) (string, error) {
	if err := ValidatePath(path); err != nil {
		return "", err
	}
	if err := c.blobs.Put(ctx, path, data); err != nil {
		return "", fmt.Errorf("upload blob %s: %w", path, err)
	}
	return "blob://" + path, nil
}

func (c *Client) DownloadBlob(ctx context.Context, path string) ([]byte, error) {
	if err := ValidatePath(path); err != nil {
		return nil, err
	}
	data, err := c.blobs.Fetch(ctx, path)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("download blob %s: %w", path, err)
	}
	return data, nil
}
