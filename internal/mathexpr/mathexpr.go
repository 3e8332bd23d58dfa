// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package mathexpr evaluates arithmetic expressions safely.
//
// Input is sanitized down to a numeric character class before parsing, then
// evaluated by a recursive-descent parser restricted to a numeric expression
// grammar: the four arithmetic operators, exponentiation, parentheses, unary
// minus and floating-point literals. There is no identifier resolution and no
// function calls - nothing in the input can ever be executed as code.
package mathexpr

import (
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/jeranaias/usbai/internal/classify"
)

// ErrEvaluation is the sentinel all evaluation failures wrap.
var ErrEvaluation = errors.New("math evaluation failed")

// EvaluationError describes why an expression could not be evaluated.
type EvaluationError struct {
	Expr    string // sanitized expression that failed
	Message string
}

func (e *EvaluationError) Error() string {
	if e.Expr == "" {
		return "math evaluation failed: " + e.Message
	}
	return fmt.Sprintf("math evaluation failed for %q: %s", e.Expr, e.Message)
}

func (e *EvaluationError) Unwrap() error { return ErrEvaluation }

// sanitizeRunes is the character class that survives sanitation. This is a
// security boundary, not cosmetics: no identifiers and no function calls may
// reach the parser.
const sanitizeRunes = "0123456789+-*/^(). \t\r\n"

// Sanitize strips a leading "solve" token and deletes every rune outside the
// numeric expression character class.
func Sanitize(text string) string {
	t := classify.StripSolve(text)
	var b strings.Builder
	for _, r := range t {
		if strings.ContainsRune(sanitizeRunes, r) {
			b.WriteRune(r)
		}
	}
	return strings.TrimSpace(b.String())
}

// Evaluate sanitizes and evaluates an arithmetic expression.
// Standard operator precedence applies; + - * / associate left-to-right and
// ^ associates right. Returns an *EvaluationError on empty input, parse
// failure, division by zero or overflow.
func Evaluate(text string) (float64, error) {
	expr := Sanitize(text)
	if expr == "" {
		return 0, &EvaluationError{Message: "sanitized expression is empty"}
	}

	p := &parser{input: expr}
	v, err := p.parseExpr()
	if err != nil {
		return 0, err
	}
	p.skipSpace()
	if p.pos < len(p.input) {
		return 0, &EvaluationError{Expr: expr, Message: fmt.Sprintf("unexpected %q at offset %d", p.input[p.pos], p.pos)}
	}
	if math.IsInf(v, 0) || math.IsNaN(v) {
		return 0, &EvaluationError{Expr: expr, Message: "result overflows"}
	}
	return v, nil
}

// =============================================================================
// PARSER
// =============================================================================

// parser is a recursive-descent evaluator over the sanitized expression.
//
// Grammar:
//
//	expr    := term  (('+' | '-') term)*
//	term    := unary (('*' | '/') unary)*
//	unary   := '-' unary | power
//	power   := primary ('^' unary)?          right associative
//	primary := number | '(' expr ')'
type parser struct {
	input string
	pos   int
}

func (p *parser) fail(msg string) error {
	return &EvaluationError{Expr: p.input, Message: msg}
}

func (p *parser) skipSpace() {
	for p.pos < len(p.input) {
		switch p.input[p.pos] {
		case ' ', '\t', '\r', '\n':
			p.pos++
		default:
			return
		}
	}
}

// peek returns the next non-space byte without consuming it, or 0 at the end.
func (p *parser) peek() byte {
	p.skipSpace()
	if p.pos >= len(p.input) {
		return 0
	}
	return p.input[p.pos]
}

func (p *parser) parseExpr() (float64, error) {
	v, err := p.parseTerm()
	if err != nil {
		return 0, err
	}
	for {
		switch p.peek() {
		case '+':
			p.pos++
			rhs, err := p.parseTerm()
			if err != nil {
				return 0, err
			}
			v += rhs
		case '-':
			p.pos++
			rhs, err := p.parseTerm()
			if err != nil {
				return 0, err
			}
			v -= rhs
		default:
			return v, nil
		}
	}
}

func (p *parser) parseTerm() (float64, error) {
	v, err := p.parseUnary()
	if err != nil {
		return 0, err
	}
	for {
		switch p.peek() {
		case '*':
			p.pos++
			rhs, err := p.parseUnary()
			if err != nil {
				return 0, err
			}
			v *= rhs
		case '/':
			p.pos++
			rhs, err := p.parseUnary()
			if err != nil {
				return 0, err
			}
			if rhs == 0 {
				return 0, p.fail("division by zero")
			}
			v /= rhs
		default:
			return v, nil
		}
	}
}

func (p *parser) parseUnary() (float64, error) {
	if p.peek() == '-' {
		p.pos++
		v, err := p.parseUnary()
		if err != nil {
			return 0, err
		}
		return -v, nil
	}
	return p.parsePower()
}

func (p *parser) parsePower() (float64, error) {
	base, err := p.parsePrimary()
	if err != nil {
		return 0, err
	}
	if p.peek() == '^' {
		p.pos++
		// Right associative; the exponent may itself be signed.
		exp, err := p.parseUnary()
		if err != nil {
			return 0, err
		}
		return math.Pow(base, exp), nil
	}
	return base, nil
}

func (p *parser) parsePrimary() (float64, error) {
	c := p.peek()
	switch {
	case c == '(':
		p.pos++
		v, err := p.parseExpr()
		if err != nil {
			return 0, err
		}
		if p.peek() != ')' {
			return 0, p.fail("missing closing parenthesis")
		}
		p.pos++
		return v, nil
	case c >= '0' && c <= '9', c == '.':
		return p.parseNumber()
	case c == 0:
		return 0, p.fail("unexpected end of expression")
	default:
		return 0, p.fail(fmt.Sprintf("unexpected %q at offset %d", c, p.pos))
	}
}

func (p *parser) parseNumber() (float64, error) {
	start := p.pos
	seenDot := false
	for p.pos < len(p.input) {
		c := p.input[p.pos]
		if c >= '0' && c <= '9' {
			p.pos++
			continue
		}
		if c == '.' && !seenDot {
			seenDot = true
			p.pos++
			continue
		}
		break
	}
	lit := p.input[start:p.pos]
	v, err := strconv.ParseFloat(lit, 64)
	if err != nil {
		return 0, p.fail(fmt.Sprintf("invalid number %q", lit))
	}
	return v, nil
}

// FormatResult renders a result the way answers embed it: integers without a
// trailing ".0", everything else with minimal digits.
func FormatResult(v float64) string {
	if v == math.Trunc(v) && math.Abs(v) < 1e15 {
		return strconv.FormatFloat(v, 'f', 0, 64)
	}
	return strconv.FormatFloat(v, 'g', -1, 64)
}
