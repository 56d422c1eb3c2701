package goAuthClient

import (
	"errors"

	"golang.org/x/oauth2"

	"github.com/MrEthical07/goAuthClient/jwt"
)

// ErrNoAccessToken is returned by the session token source while no access token
// is held.
var ErrNoAccessToken = errors.New("no access token")

// TokenSource exposes the session's current access token as an oauth2.TokenSource
// for libraries that take one. Expiry comes from the token's exp claim when it
// decodes; the source never refreshes on its own.
func (s *Session) TokenSource() oauth2.TokenSource {
	return sessionTokenSource{session: s}
}

type sessionTokenSource struct {
	session *Session
}

func (ts sessionTokenSource) Token() (*oauth2.Token, error) {
	access := ts.session.AccessToken()
	if access == "" {
		return nil, ErrNoAccessToken
	}
	return bearerToken(access), nil
}

func bearerToken(access string) *oauth2.Token {
	tok := &oauth2.Token{
		AccessToken: access,
		TokenType:   "Bearer",
	}
	if claims, err := jwt.Inspect(access); err == nil {
		tok.Expiry = claims.Expiry()
	}
	return tok
}
