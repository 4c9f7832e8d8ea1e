package main

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"golang.org/x/crypto/bcrypt"
)

// dummyHash is a pre-computed bcrypt hash used when a login username doesn't match.
// Running bcrypt against it (instead of returning early) keeps response time
// constant, preventing timing-based username enumeration.
var dummyHash, _ = bcrypt.GenerateFromPassword([]byte("dummy"), bcrypt.DefaultCost)

// login verifies username/password against the configured credentials and
// starts a session.
// POST /api/login (public, no auth required).
func (h *Handler) login(c *gin.Context) {
	var body struct {
		Username string `json:"username"`
		Password string `json:"password"`
	}
	if err := c.ShouldBindJSON(&body); err != nil {
		apiError(c, http.StatusBadRequest, "invalid request body")
		return
	}

	known := h.creds.Username != "" && h.creds.PasswordHash != "" && body.Username == h.creds.Username

	// Always run bcrypt so an unknown username takes as long as a wrong password.
	hashToCheck := string(dummyHash)
	if known {
		hashToCheck = h.creds.PasswordHash
	}
	compareErr := bcrypt.CompareHashAndPassword([]byte(hashToCheck), []byte(body.Password))

	if !known || compareErr != nil {
		apiError(c, http.StatusUnauthorized, "invalid credentials")
		return
	}

	token := h.sessions.Create()
	h.log.Infof("[login] session started for %s", body.Username)
	c.JSON(http.StatusOK, gin.H{"token": token})
}

// logout ends the caller's session. Queued workouts are discarded.
// POST /api/logout.
func (h *Handler) logout(c *gin.Context) {
	h.sessions.Delete(c.GetString("token"))
	c.Status(http.StatusNoContent)
}

// authMiddleware validates the Bearer token and sets the session on the context.
func (h *Handler) authMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		if !strings.HasPrefix(header, "Bearer ") {
			apiError(c, http.StatusUnauthorized, "missing or invalid authorization header")
			c.Abort()
			return
		}
		token := strings.TrimPrefix(header, "Bearer ")

		s, ok := h.sessions.Get(token)
		if !ok {
			apiError(c, http.StatusUnauthorized, "invalid token")
			c.Abort()
			return
		}

		c.Set("token", token)
		c.Set("session", s)
		c.Next()
	}
}

// currentSession returns the session set by authMiddleware.
func currentSession(c *gin.Context) *session {
	s, _ := c.Get("session")
	sess, _ := s.(*session)
	return sess
}
