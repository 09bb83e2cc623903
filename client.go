package reportprep

import (
	"fmt"
	"strings"
	"unicode"

	"github.com/etnz/reportprep/date"
)

// ClientContext identifies the client and the period of a run.
type ClientContext struct {
	DisplayName string      // client name as recorded upstream, used in records.
	Token       string      // "Surname I.O.", used in every file and folder name.
	Period      date.Period // reporting period.
}

// NewClientContext derives the client token from displayName.
func NewClientContext(displayName string, period date.Period) (ClientContext, error) {
	displayName = strings.TrimSpace(displayName)
	token, err := ClientToken(displayName)
	if err != nil {
		return ClientContext{}, err
	}
	if period.Start.IsZero() || period.End.IsZero() {
		return ClientContext{}, fmt.Errorf("client %q: %w: period is not set", displayName, ErrMalformedInput)
	}
	return ClientContext{DisplayName: displayName, Token: token, Period: period}, nil
}

// ClientToken renders name as "Surname I.O.".
//
// Both "Surname Name Patronymic" and "Surname N.P." are accepted: the
// initials are the first two letters following the surname.
func ClientToken(name string) (string, error) {
	name = strings.TrimSpace(name)
	i := strings.IndexFunc(name, unicode.IsSpace)
	if i < 0 {
		return "", fmt.Errorf("%w: not enough parts to build initials from %q", ErrMalformedInput, name)
	}
	surname, rest := sanitizeName(name[:i]), name[i:]
	if surname == "" {
		return "", fmt.Errorf("%w: no usable surname in %q", ErrMalformedInput, name)
	}
	var initials []rune
	for _, r := range rest {
		if unicode.IsLetter(r) {
			initials = append(initials, unicode.ToUpper(r))
			if len(initials) == 2 {
				break
			}
		}
	}
	if len(initials) < 2 {
		return "", fmt.Errorf("%w: cannot find two initials in %q", ErrMalformedInput, name)
	}
	return fmt.Sprintf("%s %c.%c.", surname, initials[0], initials[1]), nil
}

// sanitizeName drops characters that are not allowed in file names on common file systems.
func sanitizeName(s string) string {
	return strings.Map(func(r rune) rune {
		if unicode.IsControl(r) || strings.ContainsRune(`/\:*?"<>|`, r) {
			return -1
		}
		return r
	}, s)
}
