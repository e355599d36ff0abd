package compiler

import (
	"errors"

	"github.com/pyc-lang/pyc/token"
)

// Session is an interactive unit: batches of statements are appended one
// at a time and a batch is kept only if the whole unit still compiles.
type Session struct {
	FileName string
	accepted string
}

func NewSession(fileName string) *Session {
	return &Session{FileName: fileName}
}

// Add compiles the accepted source followed by src. On success src becomes
// part of the session and the C text of the whole unit is returned.
func (s *Session) Add(src string) (string, []error) {
	candidate := s.accepted + src + "\n"
	code, errs := CompileSource(s.FileName, candidate)
	if errs != nil {
		return "", errs
	}
	s.accepted = candidate
	return code, nil
}

func (s *Session) Source() string {
	return s.accepted
}

func (s *Session) Reset() {
	s.accepted = ""
}

// Incomplete reports whether src only fails to parse because it ends too
// early, so more input may complete it.
func (s *Session) Incomplete(src string) bool {
	_, errs := Parse(s.FileName, s.accepted+src+"\n")
	for _, err := range errs {
		var ce *token.CompileError
		if errors.As(err, &ce) && ce.Token.Type == token.EOF {
			return true
		}
	}
	return false
}
