package core

import (
	"context"
	"encoding/json"
	"net/http"
	"net/url"
	"time"

	"golang.org/x/oauth2"
	googleoauth2 "google.golang.org/api/oauth2/v2"
	"google.golang.org/api/option"

	"github.com/pamcare/pamcare/crypto"
	"github.com/pamcare/pamcare/db"
)

// oauth2ExchangeTimeout bounds the code exchange and userinfo fetch so an
// unresponsive provider cannot hang the handler.
const oauth2ExchangeTimeout = 10 * time.Second

const googleProviderName = "google"

const oauth2StateCookie = "oauth2_state"

func (a *App) googleOauthConfig() (*oauth2.Config, bool) {
	provider, ok := a.Config().OAuth2Providers[googleProviderName]
	if !ok {
		return nil, false
	}
	return &oauth2.Config{
		ClientID:     provider.ClientID,
		ClientSecret: provider.ClientSecret,
		RedirectURL:  provider.RedirectURL,
		Scopes:       provider.Scopes,
		Endpoint: oauth2.Endpoint{
			AuthURL:  provider.AuthURL,
			TokenURL: provider.TokenURL,
		},
	}, true
}

// GoogleRedirectHandler starts the web OAuth2 flow by redirecting the
// browser to the Google consent screen. The state value is kept in a short
// lived cookie and checked on the way back.
// Endpoint: GET /api/auth/google
// Authenticated: No
func (a *App) GoogleRedirectHandler(w http.ResponseWriter, r *http.Request) {
	oauthCfg, ok := a.googleOauthConfig()
	if !ok {
		writeJsonError(w, errorOAuth2Provider)
		return
	}

	state := crypto.Oauth2State()
	http.SetCookie(w, &http.Cookie{
		Name:     oauth2StateCookie,
		Value:    state,
		Path:     "/",
		MaxAge:   600,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})

	http.Redirect(w, r, oauthCfg.AuthCodeURL(state), http.StatusTemporaryRedirect)
}

// GoogleCallbackHandler finishes the web flow: it validates the state,
// exchanges the code, fetches the Google profile, creates or backfills the
// user record and redirects to the frontend with a fresh token pair in the
// query string.
// Endpoint: GET /api/auth/google/callback
// Authenticated: No
func (a *App) GoogleCallbackHandler(w http.ResponseWriter, r *http.Request) {
	oauthCfg, ok := a.googleOauthConfig()
	if !ok {
		writeJsonError(w, errorOAuth2Provider)
		return
	}

	state := r.URL.Query().Get("state")
	cookie, err := r.Cookie(oauth2StateCookie)
	if err != nil || state == "" || cookie.Value != state {
		writeJsonError(w, errorOAuth2Exchange)
		return
	}

	code := r.URL.Query().Get("code")
	if code == "" {
		writeJsonError(w, errorOAuth2Exchange)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), oauth2ExchangeTimeout)
	defer cancel()

	token, err := oauthCfg.Exchange(ctx, code)
	if err != nil {
		a.Logger().Error("oauth2 code exchange failed", "error", err)
		writeJsonError(w, errorOAuth2Exchange)
		return
	}

	provider := a.Config().OAuth2Providers[googleProviderName]
	resp, err := oauthCfg.Client(ctx, token).Get(provider.UserInfoURL)
	if err != nil {
		writeJsonError(w, errorOAuth2UserInfo)
		return
	}
	defer resp.Body.Close()

	var info struct {
		Sub        string `json:"sub"`
		Email      string `json:"email"`
		GivenName  string `json:"given_name"`
		FamilyName string `json:"family_name"`
		Picture    string `json:"picture"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&info); err != nil || info.Email == "" {
		writeJsonError(w, errorOAuth2UserInfo)
		return
	}

	user, err := a.findOrCreateGoogleUser(db.User{
		Email:     info.Email,
		GoogleID:  info.Sub,
		FirstName: info.GivenName,
		LastName:  info.FamilyName,
		Avatar:    info.Picture,
	})
	if err != nil {
		a.Logger().Error("google sign in failed", "error", err)
		writeJsonError(w, errorAuthDatabaseError)
		return
	}

	pair, err := a.issueTokenPair(r.Context(), user)
	if err != nil {
		a.Logger().Error("token issuance failed", "error", err)
		writeJsonError(w, errorTokenGeneration)
		return
	}

	redirect := a.Config().Server.FrontendURL + "/auth/callback?" + url.Values{
		"access_token":  {pair.Access},
		"refresh_token": {pair.Refresh},
	}.Encode()
	http.Redirect(w, r, redirect, http.StatusTemporaryRedirect)
}

// GoogleTokenHandler is the mobile variant: the client obtained an id token
// from the Google SDK and posts it here for verification.
// Endpoint: POST /api/auth/google/token
// Authenticated: No
// Allowed Mimetype: application/json
func (a *App) GoogleTokenHandler(w http.ResponseWriter, r *http.Request) {
	if err, resp := a.Validator().ContentType(r, MimeTypeJSON); err != nil {
		writeJsonError(w, resp)
		return
	}

	provider, ok := a.Config().OAuth2Providers[googleProviderName]
	if !ok {
		writeJsonError(w, errorOAuth2Provider)
		return
	}

	var req struct {
		IdToken string `json:"id_token"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJsonError(w, errorInvalidRequest)
		return
	}
	if req.IdToken == "" {
		writeJsonError(w, errorMissingFields)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), oauth2ExchangeTimeout)
	defer cancel()

	svc, err := googleoauth2.NewService(ctx, option.WithoutAuthentication())
	if err != nil {
		a.Logger().Error("tokeninfo service init failed", "error", err)
		writeJsonError(w, errorServiceUnavailable)
		return
	}

	info, err := svc.Tokeninfo().IdToken(req.IdToken).Context(ctx).Do()
	if err != nil {
		writeJsonError(w, errorGoogleTokenInvalid)
		return
	}

	// The token must have been minted for this app, not any Google client.
	if info.Audience != provider.ClientID || info.Email == "" {
		writeJsonError(w, errorGoogleTokenInvalid)
		return
	}

	user, err := a.findOrCreateGoogleUser(db.User{
		Email:    info.Email,
		GoogleID: info.UserId,
	})
	if err != nil {
		a.Logger().Error("google sign in failed", "error", err)
		writeJsonError(w, errorAuthDatabaseError)
		return
	}

	pair, err := a.issueTokenPair(r.Context(), user)
	if err != nil {
		a.Logger().Error("token issuance failed", "error", err)
		writeJsonError(w, errorTokenGeneration)
		return
	}

	writeAuthResponse(w, pair, user)
}

// findOrCreateGoogleUser resolves a Google identity to a local account. The
// lookup tries the Google subject id first, then the email. A user found by
// email without a linked Google id gets it backfilled and is marked verified;
// the provider already proved ownership of the address.
func (a *App) findOrCreateGoogleUser(candidate db.User) (*db.User, error) {
	user, err := a.DbAuth().GetUserByGoogleId(candidate.GoogleID)
	if err != nil {
		return nil, err
	}
	if user != nil {
		return user, nil
	}

	candidate.Verified = true
	return a.DbAuth().CreateUserWithOauth2(candidate)
}
