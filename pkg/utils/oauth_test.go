package utils

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/oauth2"

	"github.com/jakechorley/interview-allocator/internal/config"
)

func TestMissingScopes(t *testing.T) {
	tests := []struct {
		name     string
		granted  string
		expected []string
	}{
		{"all granted", ScopeSheets + " " + ScopeGmailSend, nil},
		{"extra scopes ignored", "openid " + ScopeGmailSend + " " + ScopeSheets, nil},
		{"gmail missing", ScopeSheets, []string{ScopeGmailSend}},
		{"nothing granted", "", []string{ScopeSheets, ScopeGmailSend}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, MissingScopes(tt.granted, RequiredScopes()))
		})
	}
}

func TestTokenStore_SaveLoadDelete(t *testing.T) {
	store, err := NewTokenStore(filepath.Join(t.TempDir(), "tokens"))
	require.NoError(t, err)

	loaded, err := store.Load("test")
	require.NoError(t, err)
	assert.Nil(t, loaded, "no token saved yet")

	token := &oauth2.Token{
		AccessToken:  "access",
		RefreshToken: "refresh",
		Expiry:       time.Date(2030, 1, 1, 0, 0, 0, 0, time.UTC),
	}
	require.NoError(t, store.Save("test", token))

	info, err := os.Stat(store.path("test"))
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(tokenFilePerms), info.Mode().Perm())

	loaded, err = store.Load("test")
	require.NoError(t, err)
	require.NotNil(t, loaded)
	assert.Equal(t, "access", loaded.AccessToken)
	assert.Equal(t, "refresh", loaded.RefreshToken)
	assert.True(t, token.Expiry.Equal(loaded.Expiry))

	other, err := store.Load("prod")
	require.NoError(t, err)
	assert.Nil(t, other, "tokens are kept per environment")

	require.NoError(t, store.Delete("test"))
	require.NoError(t, store.Delete("test"), "deleting twice is fine")

	loaded, err = store.Load("test")
	require.NoError(t, err)
	assert.Nil(t, loaded)
}

func TestTokenStore_CorruptFile(t *testing.T) {
	dir := t.TempDir()
	store, err := NewTokenStore(dir)
	require.NoError(t, err)

	require.NoError(t, os.WriteFile(filepath.Join(dir, "token-test.json"), []byte("not json"), 0600))

	_, err = store.Load("test")
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "failed to parse token file")
}

func TestGetOAuthConfig(t *testing.T) {
	oauthCfg := &config.OAuthClientConfig{
		Installed: &config.OAuthClient{
			ClientID:                "client-id",
			ProjectID:               "project",
			AuthURI:                 "https://accounts.google.com/o/oauth2/auth",
			TokenURI:                "https://oauth2.googleapis.com/token",
			AuthProviderX509CertURL: "https://www.googleapis.com/oauth2/v1/certs",
			ClientSecret:            "secret",
			RedirectURIs:            []string{"http://localhost"},
		},
	}

	cfg, err := GetOAuthConfig(oauthCfg)
	require.NoError(t, err)
	assert.Equal(t, "client-id", cfg.ClientID)
	assert.Equal(t, RequiredScopes(), cfg.Scopes)
	assert.Equal(t, "http://localhost:3000/oauth/callback", cfg.RedirectURL)

	cfg, err = GetOAuthConfig(oauthCfg, ScopeSheets)
	require.NoError(t, err)
	assert.Equal(t, []string{ScopeSheets}, cfg.Scopes)
}
