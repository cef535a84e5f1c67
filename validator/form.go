package validator

import (
	"net/url"
	"slices"
	"strings"
	"time"
	"unicode"

	"golang.org/x/text/unicode/norm"
)

// FieldError is one failed rule, in submission order.
type FieldError struct {
	Field string `json:"param"`
	Msg   string `json:"msg"`
	Value string `json:"value"`
}

// Form runs rule chains over submitted form values and collects their errors.
// Rules never abort the request: callers inspect Valid and decide.
type Form struct {
	values url.Values
	errors []FieldError
}

func NewForm(values url.Values) *Form {
	if values == nil {
		values = url.Values{}
	}
	return &Form{values: values}
}

// Valid returns true if no rule has failed.
func (f *Form) Valid() bool {
	return len(f.errors) == 0
}

// Errors returns the failures in the order the rules ran.
func (f *Form) Errors() []FieldError {
	return slices.Clone(f.errors)
}

// AddError records a failure for field.
func (f *Form) AddError(field, msg, value string) {
	f.errors = append(f.errors, FieldError{Field: field, Msg: msg, Value: value})
}

// Field starts a rule chain over the first submitted value of name.
func (f *Form) Field(name string) *Chain {
	return &Chain{form: f, name: name, value: f.values.Get(name)}
}

// Array starts a chain over every submitted value of name. An absent field
// yields an empty set and a single value a singleton, so later rules always
// see the same shape.
func (f *Form) Array(name string) *ArrayChain {
	values := f.values[name]
	if values == nil {
		values = []string{}
	}
	return &ArrayChain{values: slices.Clone(values)}
}

// Chain is an ordered list of sanitizers and validators for one field.
// Sanitizers always apply. After the first failed validator the remaining
// validators of the chain are skipped.
type Chain struct {
	form   *Form
	name   string
	value  string
	failed bool
}

// Trim strips surrounding whitespace and normalizes the text to NFC.
func (c *Chain) Trim() *Chain {
	c.value = norm.NFC.String(strings.TrimSpace(c.value))
	return c
}

// Escape replaces HTML special characters with entities.
func (c *Chain) Escape() *Chain {
	c.value = escape(c.value)
	return c
}

// Default substitutes v when the current value is empty.
func (c *Chain) Default(v string) *Chain {
	if c.value == "" {
		c.value = v
	}
	return c
}

// Required fails when the value is empty.
func (c *Chain) Required(msg string) *Chain {
	return c.check(c.value != "", msg)
}

// Alphanumeric fails when the value contains anything but letters and digits.
func (c *Chain) Alphanumeric(msg string) *Chain {
	return c.check(isAlphanumeric(c.value), msg)
}

// OneOf fails when the value is not in allowed.
func (c *Chain) OneOf(msg string, allowed ...string) *Chain {
	return c.check(slices.Contains(allowed, c.value), msg)
}

// String returns the sanitized value.
func (c *Chain) String() string {
	return c.value
}

// Date treats the value as an optional calendar date. Empty, "0" and "false"
// mean absent and yield nil. Anything else must parse as an ISO 8601 date or
// timestamp, otherwise msg is recorded and nil is returned.
func (c *Chain) Date(msg string) *time.Time {
	if c.failed || isFalsy(c.value) {
		return nil
	}
	t, ok := parseDate(c.value)
	if !ok {
		c.check(false, msg)
		return nil
	}
	return &t
}

func (c *Chain) check(ok bool, msg string) *Chain {
	if c.failed || ok {
		return c
	}
	c.failed = true
	c.form.AddError(c.name, msg, c.value)
	return c
}

// ArrayChain applies sanitizers to every element of a multi-valued field.
type ArrayChain struct {
	values []string
}

func (a *ArrayChain) Trim() *ArrayChain {
	for i, v := range a.values {
		a.values[i] = norm.NFC.String(strings.TrimSpace(v))
	}
	return a
}

func (a *ArrayChain) Escape() *ArrayChain {
	for i, v := range a.values {
		a.values[i] = escape(v)
	}
	return a
}

// Compact drops empty elements.
func (a *ArrayChain) Compact() *ArrayChain {
	a.values = slices.DeleteFunc(a.values, func(v string) bool { return v == "" })
	return a
}

func (a *ArrayChain) Strings() []string {
	return slices.Clone(a.values)
}

var dateLayouts = []string{
	"2006-01-02",
	time.RFC3339Nano,
	"2006-01-02T15:04:05",
	"2006-01-02T15:04",
}

// parseDate keeps the calendar day as written, whatever offset the value
// carries, and returns it as midnight UTC.
func parseDate(s string) (time.Time, bool) {
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC), true
		}
	}
	return time.Time{}, false
}

func isFalsy(s string) bool {
	switch strings.TrimSpace(s) {
	case "", "0", "false":
		return true
	}
	return false
}

func isAlphanumeric(s string) bool {
	for _, r := range s {
		if !unicode.IsLetter(r) && !unicode.IsDigit(r) {
			return false
		}
	}
	return true
}

var escaper = strings.NewReplacer(
	"&", "&amp;",
	`"`, "&quot;",
	"'", "&#x27;",
	"<", "&lt;",
	">", "&gt;",
	"/", "&#x2F;",
	`\`, "&#x5C;",
	"`", "&#96;",
)

func escape(s string) string {
	return escaper.Replace(s)
}
