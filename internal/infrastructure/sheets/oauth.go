package sheets

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	sonic "github.com/bytedance/sonic"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
)

// authorize builds an HTTP client carrying a user OAuth token for the given
// scope. The token is cached in tokensDir next to the credentials file name;
// when no cached token exists the consent URL is printed and the verification
// code read from stdin.
func authorize(ctx context.Context, credentials, scope, tokensDir string) (*http.Client, error) {
	raw, err := os.ReadFile(credentials)
	if err != nil {
		return nil, fmt.Errorf("read credentials: %w", err)
	}

	config, err := google.ConfigFromJSON(raw, scope)
	if err != nil {
		return nil, fmt.Errorf("parse credentials: %w", err)
	}

	if strings.TrimSpace(tokensDir) == "" {
		tokensDir = filepath.Dir(credentials)
	}
	name := strings.TrimSuffix(filepath.Base(credentials), filepath.Ext(credentials))
	tokens := filepath.Join(tokensDir, name+".tokens")

	token, err := tokenFromFile(tokens)
	if err != nil {
		if token, err = tokenFromWeb(ctx, config); err != nil {
			return nil, err
		}
		if err := saveToken(tokens, token); err != nil {
			return nil, err
		}
	}

	return config.Client(ctx, token), nil
}

func tokenFromWeb(ctx context.Context, config *oauth2.Config) (*oauth2.Token, error) {
	authURL := config.AuthCodeURL("state-token", oauth2.AccessTypeOffline)
	fmt.Printf("Go to the following link in your browser then type the authorization code:\n%v\n", authURL)

	var authCode string
	if _, err := fmt.Scan(&authCode); err != nil {
		return nil, fmt.Errorf("read authorization code: %w", err)
	}

	token, err := config.Exchange(ctx, authCode)
	if err != nil {
		return nil, fmt.Errorf("exchange authorization code: %w", err)
	}
	return token, nil
}

func tokenFromFile(path string) (*oauth2.Token, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	token := &oauth2.Token{}
	if err := sonic.Unmarshal(raw, token); err != nil {
		return nil, err
	}
	return token, nil
}

func saveToken(path string, token *oauth2.Token) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return fmt.Errorf("cache oauth token: %w", err)
	}
	raw, err := sonic.Marshal(token)
	if err != nil {
		return fmt.Errorf("cache oauth token: %w", err)
	}
	if err := os.WriteFile(path, raw, 0o600); err != nil {
		return fmt.Errorf("cache oauth token: %w", err)
	}
	return nil
}
