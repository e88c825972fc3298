package validation

import (
	"encoding/json"
	"errors"
	"io"
	"regexp"
	"strings"

	"github.com/rosterhq/roster/pkg/response"
)

// Input is the raw create/update payload. Pointer fields distinguish an
// absent field from an empty one, which is what makes partial updates work.
type Input struct {
	Name     *string `json:"name"`
	Email    *string `json:"email"`
	Password *string `json:"password"`
}

const MinPasswordLen = 6

var emailRe = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)

// rule is one row of the constraint table. The predicate returns true when
// the input satisfies the constraint; rules are independent, so a single
// request can collect several violations.
type rule struct {
	field   string
	message string
	ok      func(in Input) bool
}

var createRules = []rule{
	{"name", "is required", func(in Input) bool {
		return in.Name != nil && strings.TrimSpace(*in.Name) != ""
	}},
	{"email", "is required", func(in Input) bool {
		return in.Email != nil && strings.TrimSpace(*in.Email) != ""
	}},
	{"email", "must be a valid email", func(in Input) bool {
		// presence is reported by the rule above
		return in.Email == nil || strings.TrimSpace(*in.Email) == "" || emailRe.MatchString(normalizeEmail(*in.Email))
	}},
	{"password", "is required", func(in Input) bool {
		return in.Password != nil && *in.Password != ""
	}},
	{"password", "must be at least 6 characters long", func(in Input) bool {
		return in.Password == nil || *in.Password == "" || len(*in.Password) >= MinPasswordLen
	}},
}

// Update rules only constrain fields that are present; omission means
// "unchanged".
var updateRules = []rule{
	{"name", "must not be empty", func(in Input) bool {
		return in.Name == nil || strings.TrimSpace(*in.Name) != ""
	}},
	{"email", "must be a valid email", func(in Input) bool {
		return in.Email == nil || emailRe.MatchString(normalizeEmail(*in.Email))
	}},
	{"password", "must be at least 6 characters long", func(in Input) bool {
		return in.Password == nil || len(*in.Password) >= MinPasswordLen
	}},
}

func evaluate(rules []rule, in Input) []response.FieldError {
	var details []response.FieldError
	for _, r := range rules {
		if !r.ok(in) {
			details = append(details, response.FieldError{Field: r.field, Message: r.message})
		}
	}
	return details
}

// ValidateCreate checks a create payload against the rule table and returns
// every violation, or nil when the payload is acceptable.
func ValidateCreate(in Input) []response.FieldError {
	return evaluate(createRules, in)
}

// ValidateUpdate checks a partial update payload; absent fields pass.
func ValidateUpdate(in Input) []response.FieldError {
	return evaluate(updateRules, in)
}

// Normalize trims name and trims+lower-cases email in place. Passwords are
// taken verbatim. Call before validating so the grammar check sees the
// value that would be stored.
func Normalize(in *Input) {
	if in.Name != nil {
		t := strings.TrimSpace(*in.Name)
		in.Name = &t
	}
	if in.Email != nil {
		t := normalizeEmail(*in.Email)
		in.Email = &t
	}
}

func normalizeEmail(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

// BindDetails converts a body-binding error into envelope details. Anything
// that is not valid JSON is rejected here, before the rule table runs.
func BindDetails(err error) []response.FieldError {
	if err == nil {
		return nil
	}
	var se *json.SyntaxError
	var ute *json.UnmarshalTypeError
	if errors.As(err, &se) || errors.As(err, &ute) ||
		errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) {
		return []response.FieldError{{Field: "payload", Message: "invalid json"}}
	}
	return []response.FieldError{{Field: "payload", Message: "invalid payload"}}
}
