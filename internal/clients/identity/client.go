package identity

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/asteya/yogaflow-backend/internal/logger"
	"github.com/asteya/yogaflow-backend/internal/utils"
)

// Client is the hosted identity collaborator: credential exchange, signup,
// password change, and bearer-token verification against the provider's
// published key set. Every call is attempted once; failures surface to the
// caller.
type Client interface {
	SignUp(ctx context.Context, email, password, fullName string) (*Session, error)
	SignIn(ctx context.Context, email, password string) (*Session, error)
	ChangePassword(ctx context.Context, accessToken, newPassword string) error
	VerifyToken(ctx context.Context, tokenString string) (*TokenClaims, error)
}

type Session struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
	TokenType    string `json:"token_type"`
	ExpiresIn    int    `json:"expires_in"`
	User         struct {
		ID    string `json:"id"`
		Email string `json:"email"`
	} `json:"user"`
}

type TokenClaims struct {
	Subject uuid.UUID
	Email   string
	Role    string
}

type client struct {
	log        *logger.Logger
	httpClient *http.Client
	baseURL    string
	apiKey     string
	verifier   *tokenVerifier
}

func NewClient(log *logger.Logger) (Client, error) {
	serviceLog := log.With("service", "IdentityClient")

	baseURL := strings.TrimRight(utils.GetEnv("IDENTITY_BASE_URL", "", log), "/")
	if baseURL == "" {
		return nil, fmt.Errorf("missing env var IDENTITY_BASE_URL")
	}
	apiKey := utils.GetEnv("IDENTITY_API_KEY", "", log)

	httpClient := &http.Client{Timeout: 10 * time.Second}
	return &client{
		log:        serviceLog,
		httpClient: httpClient,
		baseURL:    baseURL,
		apiKey:     apiKey,
		verifier:   newTokenVerifier(httpClient, baseURL+"/auth/v1/keys"),
	}, nil
}

type identityError struct {
	Message          string `json:"message"`
	Msg              string `json:"msg"`
	ErrorDescription string `json:"error_description"`
}

func (e *identityError) text() string {
	switch {
	case e.Message != "":
		return e.Message
	case e.Msg != "":
		return e.Msg
	case e.ErrorDescription != "":
		return e.ErrorDescription
	}
	return ""
}

func (c *client) SignUp(ctx context.Context, email, password, fullName string) (*Session, error) {
	body := map[string]interface{}{
		"email":    email,
		"password": password,
	}
	if fullName != "" {
		body["data"] = map[string]interface{}{"full_name": fullName}
	}
	var session Session
	if err := c.do(ctx, http.MethodPost, "/auth/v1/signup", "", body, &session); err != nil {
		return nil, fmt.Errorf("identity signup: %w", err)
	}
	return &session, nil
}

func (c *client) SignIn(ctx context.Context, email, password string) (*Session, error) {
	body := map[string]interface{}{
		"email":    email,
		"password": password,
	}
	var session Session
	if err := c.do(ctx, http.MethodPost, "/auth/v1/token?grant_type=password", "", body, &session); err != nil {
		return nil, fmt.Errorf("identity sign-in: %w", err)
	}
	return &session, nil
}

func (c *client) ChangePassword(ctx context.Context, accessToken, newPassword string) error {
	body := map[string]interface{}{"password": newPassword}
	if err := c.do(ctx, http.MethodPut, "/auth/v1/user", accessToken, body, nil); err != nil {
		return fmt.Errorf("identity password change: %w", err)
	}
	return nil
}

func (c *client) VerifyToken(ctx context.Context, tokenString string) (*TokenClaims, error) {
	return c.verifier.verify(ctx, tokenString)
}

func (c *client) do(ctx context.Context, method, path, bearer string, body interface{}, out interface{}) error {
	var reqBody *bytes.Buffer
	if body != nil {
		raw, err := json.Marshal(body)
		if err != nil {
			return err
		}
		reqBody = bytes.NewBuffer(raw)
	} else {
		reqBody = bytes.NewBuffer(nil)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reqBody)
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	if c.apiKey != "" {
		req.Header.Set("apikey", c.apiKey)
	}
	if bearer != "" {
		req.Header.Set("Authorization", "Bearer "+bearer)
	}

	res, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer res.Body.Close()

	if res.StatusCode < 200 || res.StatusCode >= 300 {
		var ie identityError
		_ = json.NewDecoder(res.Body).Decode(&ie)
		if msg := ie.text(); msg != "" {
			return fmt.Errorf("%s: %s", res.Status, msg)
		}
		return fmt.Errorf("request failed: %s", res.Status)
	}

	if out != nil {
		if err := json.NewDecoder(res.Body).Decode(out); err != nil {
			return fmt.Errorf("decode response: %w", err)
		}
	}
	return nil
}
