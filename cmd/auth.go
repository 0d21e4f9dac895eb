package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/urfave/cli/v3"
	"golang.org/x/oauth2"

	"github.com/desertthunder/lyrx/internal/shared"
)

// defaultTokenPath is where the Spotify token lands after 'auth exchange'.
const defaultTokenPath = "spotify_token.json"

func saveToken(path string, token *oauth2.Token) error {
	data, err := json.MarshalIndent(token, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal token: %w", err)
	}
	if err := os.WriteFile(path, data, 0600); err != nil {
		return fmt.Errorf("failed to write token file: %w", err)
	}
	return nil
}

func loadToken(path string) (*oauth2.Token, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var token oauth2.Token
	if err := json.Unmarshal(data, &token); err != nil {
		return nil, fmt.Errorf("failed to parse token file: %w", err)
	}
	return &token, nil
}

// AuthURL prints the Spotify authorization URL for the manual OAuth2 flow.
func (r *Runner) AuthURL(ctx context.Context, cmd *cli.Command) error {
	if r.spotify == nil {
		return fmt.Errorf("%w: Spotify credentials must be set in config.toml", shared.ErrMissingCredentials)
	}

	state := shared.GenerateID()
	url := r.spotify.GetAuthURL(state)

	r.writePlain("Open the following URL in your browser and authorize the application:\n\n")
	r.writePlain("%s\n\n", url)
	r.writePlain("Then run: lyrx auth exchange <code>\n")
	return nil
}

// AuthExchange trades an authorization code for tokens and persists them.
func (r *Runner) AuthExchange(ctx context.Context, cmd *cli.Command) error {
	if r.spotify == nil {
		return fmt.Errorf("%w: Spotify credentials must be set in config.toml", shared.ErrMissingCredentials)
	}

	code := cmd.StringArg("code")
	if code == "" {
		return fmt.Errorf("%w: authorization code is required", shared.ErrMissingArgument)
	}

	tokenPath := cmd.String("token-file")

	r.logger.Info("exchanging authorization code for tokens")

	token, err := r.spotify.Exchange(ctx, code)
	if err != nil {
		return fmt.Errorf("%w: code exchange failed: %v", shared.ErrAuthFailed, err)
	}

	if err := saveToken(tokenPath, token); err != nil {
		return err
	}

	r.logger.Info("token saved", "path", tokenPath)

	r.writePlainln("✓ Authorization successful")
	r.writePlain("✓ Tokens saved to %s\n\n", tokenPath)
	r.writePlain("You can now use: lyrx build \"your phrase\" --create\n")
	return nil
}

// AuthStatus reports whether a usable Spotify token is on disk.
func (r *Runner) AuthStatus(ctx context.Context, cmd *cli.Command) error {
	tokenPath := cmd.String("token-file")

	token, err := loadToken(tokenPath)
	if err != nil {
		if os.IsNotExist(err) {
			r.writePlain("✗ Not authenticated (no token at %s)\n", tokenPath)
			r.writePlain("Run 'lyrx auth url' to start the authorization flow.\n")
			return nil
		}
		return err
	}

	r.writePlain("Token file: %s\n", tokenPath)
	if token.RefreshToken != "" {
		r.writePlain("Refresh token: ✓ present\n")
	} else {
		r.writePlain("Refresh token: ✗ missing\n")
	}

	switch {
	case token.Expiry.IsZero():
		r.writePlain("Access token: no recorded expiry\n")
	case token.Expiry.Before(time.Now()):
		r.writePlain("Access token: expired %s (will refresh automatically)\n", token.Expiry.Format(time.RFC3339))
	default:
		r.writePlain("Access token: ✓ valid until %s\n", token.Expiry.Format(time.RFC3339))
	}
	return nil
}

// loadSpotifyToken attaches a persisted token to the Spotify service.
func (r *Runner) loadSpotifyToken(ctx context.Context, tokenPath string) error {
	if r.spotify == nil {
		return nil
	}
	if r.spotify.Token() != nil {
		return nil
	}

	token, err := loadToken(tokenPath)
	if err != nil {
		if os.IsNotExist(err) {
			return fmt.Errorf("%w: run 'lyrx auth url' first", shared.ErrNotAuthenticated)
		}
		return err
	}

	r.spotify.SetToken(ctx, token)
	return nil
}

func tokenFileFlag() cli.Flag {
	return &cli.StringFlag{
		Name:  "token-file",
		Usage: "Path to the persisted Spotify token",
		Value: defaultTokenPath,
	}
}

// authCommand handles the Spotify OAuth2 helper commands.
func authCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "auth",
		Usage: "Manage Spotify authentication",
		Commands: []*cli.Command{
			{
				Name:   "url",
				Usage:  "Print the Spotify authorization URL",
				Action: r.AuthURL,
			},
			{
				Name:  "exchange",
				Usage: "Exchange an authorization code for tokens",
				Arguments: []cli.Argument{
					&cli.StringArg{Name: "code"},
				},
				Flags:  []cli.Flag{tokenFileFlag()},
				Action: r.AuthExchange,
			},
			{
				Name:   "status",
				Usage:  "Check current authentication state",
				Flags:  []cli.Flag{tokenFileFlag()},
				Action: r.AuthStatus,
			},
		},
	}
}
