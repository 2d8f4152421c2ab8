package httpserver

import (
	"errors"
	"net/http"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/Clark-Hu/cinescope/internal/auth"
)

const (
	clientIDHeader = "X-Client-Id"
	maxClientIDLen = 128
)

var (
	errNoIdentity      = errors.New("no client identity")
	errInvalidClientID = errors.New("invalid client id")
)

// bearerToken extracts the token of an "Authorization: Bearer" header.
func bearerToken(header string) (string, bool) {
	const prefix = "Bearer "
	if !strings.HasPrefix(header, prefix) {
		return "", false
	}
	token := strings.TrimSpace(strings.TrimPrefix(header, prefix))
	return token, token != ""
}

func validClientID(id string) bool {
	if id == "" || len(id) > maxClientIDLen || !utf8.ValidString(id) {
		return false
	}
	for _, r := range id {
		if !unicode.IsPrint(r) || unicode.IsSpace(r) {
			return false
		}
	}
	return true
}

// namespace resolves the favorites namespace of a request. A bearer token
// must be a valid session; otherwise X-Client-Id names an anonymous client.
// allowQuery also accepts access_token and client_id query parameters, for
// websocket clients that cannot set headers.
func (s *Server) namespace(r *http.Request, allowQuery bool) (string, error) {
	token, hasToken := bearerToken(r.Header.Get("Authorization"))
	clientID := strings.TrimSpace(r.Header.Get(clientIDHeader))
	if allowQuery {
		q := r.URL.Query()
		if !hasToken && q.Get("access_token") != "" {
			token, hasToken = q.Get("access_token"), true
		}
		if clientID == "" {
			clientID = strings.TrimSpace(q.Get("client_id"))
		}
	}

	if hasToken {
		user, err := s.auth.Authenticate(r.Context(), token)
		if err != nil {
			return "", err
		}
		return "user:" + user.ID, nil
	}
	if clientID == "" {
		return "", errNoIdentity
	}
	if !validClientID(clientID) {
		return "", errInvalidClientID
	}
	return "client:" + clientID, nil
}

// requireNamespace resolves the namespace or writes the error response and
// returns false.
func (s *Server) requireNamespace(w http.ResponseWriter, r *http.Request, allowQuery bool) (string, bool) {
	ns, err := s.namespace(r, allowQuery)
	if err == nil {
		return ns, true
	}
	switch {
	case errors.Is(err, errInvalidClientID):
		s.respondError(w, http.StatusBadRequest, "BAD_REQUEST", "X-Client-Id must be 1-128 printable characters")
	case errors.Is(err, errNoIdentity), errors.Is(err, auth.ErrInvalidSession):
		s.respondError(w, http.StatusUnauthorized, "UNAUTHORIZED", "Missing or invalid authentication information")
	default:
		s.logger.Printf("resolve namespace: %v", err)
		s.respondError(w, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to resolve client")
	}
	return "", false
}
