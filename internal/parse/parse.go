// Package parse pulls the quantity and calorie annotations out of a free-form
// food line.
//
// A line such as "rice 2x 400" carries a count token ("2x" or "x2") and a
// calorie token (a bare digit run). Extract removes both and returns what is
// left as the food name:
//
//	e := parse.Extract("rice 2x 400")
//	e.Food         // "rice"
//	e.CountValue() // "2x"
//	e.CalValue()   // "400"
package parse

import (
	"regexp"
	"strings"
	"unicode"
	"unicode/utf8"
)

// DefaultCount is reported when a line carries no count token.
const DefaultCount = "1x"

var (
	countPattern   = regexp.MustCompile(`[0-9]+x|x[0-9]+`)
	caloriePattern = regexp.MustCompile(`[0-9]+`)
)

// Annotation is one token found in a line.
type Annotation struct {
	Value  string // matched text
	Index  int    // offset in runes into the original line
	Length int    // length in runes
}

// Entry is the result of parsing one line.
type Entry struct {
	Food  string
	Count *Annotation // nil when the line has no count token
	Cal   *Annotation // nil when the line has no calorie token
}

// CountValue returns the count token, or DefaultCount when there is none.
func (e Entry) CountValue() string {
	if e.Count == nil {
		return DefaultCount
	}
	return e.Count.Value
}

// CalValue returns the calorie token, or "" when there is none.
func (e Entry) CalValue() string {
	if e.Cal == nil {
		return ""
	}
	return e.Cal.Value
}

// Extract parses a line. The count token is removed before the calorie
// pattern runs, so calorie matching never sees the digits of a count.
// Extract never fails; missing tokens leave the matching field nil.
func Extract(line string) Entry {
	var e Entry
	t := newText(line)

	if loc := countPattern.FindStringIndex(t.s); loc != nil {
		e.Count = t.annotate(loc)
		t = t.excise(loc)
	}
	// Offsets are taken from the shortened text, never reused from the
	// count pass.
	if loc := caloriePattern.FindStringIndex(t.s); loc != nil {
		e.Cal = t.annotate(loc)
		t = t.excise(loc)
	}

	e.Food = t.trim().s
	return e
}

// text is a working copy of the line. orig[i] is the byte offset in the
// original line of byte i of s.
type text struct {
	line string
	s    string
	orig []int
}

func newText(line string) text {
	orig := make([]int, len(line))
	for i := range orig {
		orig[i] = i
	}
	return text{line: line, s: line, orig: orig}
}

func (t text) annotate(loc []int) *Annotation {
	start := t.orig[loc[0]]
	value := t.s[loc[0]:loc[1]]
	return &Annotation{
		Value:  value,
		Index:  utf8.RuneCountInString(t.line[:start]),
		Length: utf8.RuneCountInString(value),
	}
}

// excise cuts s[loc[0]:loc[1]], collapses the whitespace on either side of
// the cut into one run, and trims the result.
func (t text) excise(loc []int) text {
	left, right := t.s[:loc[0]], t.s[loc[1]:]
	rightOrig := t.orig[loc[1]:]

	if endsWithSpace(left) {
		trimmed := strings.TrimLeftFunc(right, unicode.IsSpace)
		rightOrig = rightOrig[len(right)-len(trimmed):]
		right = trimmed
	}

	orig := make([]int, 0, len(left)+len(right))
	orig = append(orig, t.orig[:loc[0]]...)
	orig = append(orig, rightOrig...)

	return text{line: t.line, s: left + right, orig: orig}.trim()
}

func (t text) trim() text {
	start := len(t.s) - len(strings.TrimLeftFunc(t.s, unicode.IsSpace))
	end := len(strings.TrimRightFunc(t.s, unicode.IsSpace))
	if start >= end {
		return text{line: t.line}
	}
	return text{line: t.line, s: t.s[start:end], orig: t.orig[start:end]}
}

func endsWithSpace(s string) bool {
	r, size := utf8.DecodeLastRuneInString(s)
	return size > 0 && unicode.IsSpace(r)
}
