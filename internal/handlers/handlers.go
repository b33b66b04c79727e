package handlers

import (
	"github.com/gin-contrib/sessions"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// Session keys for the question flow.
const (
	sessionKeyID           = "sessionID"
	sessionKeyAssessment   = "assessmentID"
	sessionKeyQuestionIdx  = "questionIndex"
	setupRedirect          = "/setup"
	errMissingCompanyType  = "company type not selected"
	errMissingAssessment   = "no assessment in progress"
	errGenericStoreFailure = "the record store is unavailable, please try again"
)

// apiError is the error panel payload. Redirect, when present, names the
// known-good step the client should offer a path back to.
type apiError struct {
	Success  bool   `json:"success"`
	Error    string `json:"error"`
	Redirect string `json:"redirect,omitempty"`
}

// apiData wraps successful mutation results the way callers are expected
// to check them.
type apiData struct {
	Success bool        `json:"success"`
	Data    interface{} `json:"data,omitempty"`
}

func fail(c *gin.Context, status int, msg, redirect string) {
	c.AbortWithStatusJSON(status, apiError{Error: msg, Redirect: redirect})
}

func ok(c *gin.Context, status int, data interface{}) {
	c.JSON(status, apiData{Success: true, Data: data})
}

// sessionID returns the stable id for this browser session, minting one on
// first use. It keys the device-local answer cache.
func sessionID(c *gin.Context) string {
	session := sessions.Default(c)
	if id, ok := session.Get(sessionKeyID).(string); ok && id != "" {
		return id
	}
	id := uuid.NewString()
	session.Set(sessionKeyID, id)
	session.Save()
	return id
}
