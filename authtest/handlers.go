package authtest

import (
	"net/http"
	"strings"
	"time"

	"golang.org/x/crypto/bcrypt"

	"github.com/MrEthical07/goAuthClient/internal"
)

/*
====================================
AUTH
====================================
*/

func (s *Server) handleRegister(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Name     string `json:"name"`
		Email    string `json:"email"`
		Password string `json:"password"`
		Phone    string `json:"phone"`
	}
	if err := decodeJSON(r, &req); err != nil || req.Email == "" || len(req.Password) < 6 || req.Name == "" {
		writeError(w, http.StatusBadRequest, "name, email and a password of at least 6 characters are required")
		return
	}

	user, err := s.AddUser(req.Name, req.Email, req.Password, "passenger")
	if err != nil {
		writeError(w, http.StatusConflict, err.Error())
		return
	}

	s.mu.Lock()
	acc := s.accounts[user.Email]
	acc.Phone = req.Phone
	user = acc.User
	s.mu.Unlock()

	access, refresh, err := s.issue(acc)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "token issue failed")
		return
	}
	s.writeAuth(w, http.StatusCreated, access, refresh, &user)
}

func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	s.mu.Lock()
	acc := s.accounts[strings.ToLower(strings.TrimSpace(req.Email))]
	s.mu.Unlock()
	if acc == nil || bcrypt.CompareHashAndPassword(acc.passwordHash, []byte(req.Password)) != nil {
		writeError(w, http.StatusUnauthorized, "invalid credentials")
		return
	}

	access, refresh, err := s.issue(acc)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "token issue failed")
		return
	}
	user := acc.User
	s.writeAuth(w, http.StatusOK, access, refresh, &user)
}

func (s *Server) handleRefresh(w http.ResponseWriter, r *http.Request) {
	s.refreshCalls.Add(1)
	if s.opts.RefreshDelay > 0 {
		time.Sleep(s.opts.RefreshDelay)
	}
	if s.failRefresh.Load() {
		writeError(w, http.StatusUnauthorized, "refresh token expired")
		return
	}

	presented, err := internal.ParseRefreshToken(s.presentedRefreshToken(r))
	if err != nil {
		writeError(w, http.StatusUnauthorized, "invalid refresh token")
		return
	}

	s.mu.Lock()
	fam, ok := s.families[presented.Family]
	if !ok || fam.revoked {
		s.mu.Unlock()
		writeError(w, http.StatusUnauthorized, "invalid refresh token")
		return
	}
	if !presented.Matches(fam.hash) {
		if s.opts.ReuseDetection {
			fam.revoked = true
			s.reuseDetected.Add(1)
		}
		s.mu.Unlock()
		writeError(w, http.StatusUnauthorized, "refresh token reuse detected")
		return
	}

	next := presented
	if s.opts.RotateRefresh {
		next, err = presented.Rotate()
		if err != nil {
			s.mu.Unlock()
			writeError(w, http.StatusInternalServerError, "token issue failed")
			return
		}
		fam.hash = next.Hash()
	}
	acc := s.accountByID(fam.userID)
	s.mu.Unlock()
	if acc == nil {
		writeError(w, http.StatusUnauthorized, "invalid refresh token")
		return
	}

	access, err := s.jwt.CreateAccess(acc.ID, acc.Email, acc.Role)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "token issue failed")
		return
	}
	s.mu.Lock()
	s.live[access] = acc.ID
	s.mu.Unlock()

	s.writeAuth(w, http.StatusOK, access, next, nil)
}

func (s *Server) handleLogout(w http.ResponseWriter, r *http.Request) {
	if presented, err := internal.ParseRefreshToken(s.presentedRefreshToken(r)); err == nil {
		s.mu.Lock()
		if fam, ok := s.families[presented.Family]; ok {
			fam.revoked = true
		}
		s.mu.Unlock()
	}
	if s.opts.CookieMode {
		s.setRefreshCookie(w, "", -1)
	}
	writeJSON(w, http.StatusOK, map[string]string{"message": "logged out"})
}

func (s *Server) handleMe(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, currentUser(r))
}
