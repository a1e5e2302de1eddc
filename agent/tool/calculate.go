package tool

import (
	"context"
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"
	"unicode"

	einotool "github.com/cloudwego/eino/components/tool"
	"github.com/cloudwego/eino/schema"
)

const ToolCalculate = "calculate"

type calculateInput struct {
	Expression string `json:"expression"`
}

type CalculateOutput struct {
	Expression string  `json:"expression"`
	Result     float64 `json:"result"`
}

func CalculateTool() einotool.InvokableTool {
	return NewInvokable(ToolCalculate,
		"Evaluate an arithmetic expression with + - * / % and parentheses, e.g. totals for nights, rooms or persons.",
		map[string]*schema.ParameterInfo{
			"expression": {Type: schema.String, Desc: "Arithmetic expression, e.g. (2499 * 3) + 500", Required: true},
		},
		func(_ context.Context, in calculateInput) (any, error) {
			expr := strings.TrimSpace(in.Expression)
			v, err := Evaluate(expr)
			if err != nil {
				return Failure(err.Error()), nil
			}
			return CalculateOutput{Expression: expr, Result: v}, nil
		},
	)
}

type token struct {
	kind byte // 'n' number, 'o' operator, '(' or ')'
	num  float64
	op   byte
}

var precedence = map[byte]int{'+': 1, '-': 1, '*': 2, '/': 2, '%': 2, '~': 3}

// Evaluate computes an arithmetic expression. '~' is the internal unary minus.
func Evaluate(expr string) (float64, error) {
	if strings.TrimSpace(expr) == "" {
		return 0, errors.New("expression is empty")
	}
	tokens, err := tokenize(expr)
	if err != nil {
		return 0, err
	}
	rpn, err := toRPN(tokens)
	if err != nil {
		return 0, err
	}
	return evalRPN(rpn)
}

func tokenize(expr string) ([]token, error) {
	var out []token
	for i := 0; i < len(expr); {
		c := expr[i]
		switch {
		case c == ' ' || c == '\t':
			i++
		case unicode.IsDigit(rune(c)) || c == '.':
			j := i
			for j < len(expr) && (unicode.IsDigit(rune(expr[j])) || expr[j] == '.' || expr[j] == ',') {
				j++
			}
			n, err := strconv.ParseFloat(strings.ReplaceAll(expr[i:j], ",", ""), 64)
			if err != nil {
				return nil, fmt.Errorf("invalid number %q", expr[i:j])
			}
			out = append(out, token{kind: 'n', num: n})
			i = j
		case strings.IndexByte("+-*/%", c) >= 0:
			op := c
			if c == '-' && (len(out) == 0 || out[len(out)-1].kind == 'o' || out[len(out)-1].kind == '(') {
				op = '~'
			}
			if c == '+' && (len(out) == 0 || out[len(out)-1].kind == 'o' || out[len(out)-1].kind == '(') {
				i++
				continue
			}
			out = append(out, token{kind: 'o', op: op})
			i++
		case c == '(' || c == ')':
			out = append(out, token{kind: c})
			i++
		default:
			return nil, fmt.Errorf("unexpected character %q at position %d", c, i)
		}
	}
	return out, nil
}

func toRPN(tokens []token) ([]token, error) {
	var out, stack []token
	for _, t := range tokens {
		switch t.kind {
		case 'n':
			out = append(out, t)
		case 'o':
			for len(stack) > 0 {
				top := stack[len(stack)-1]
				if top.kind != 'o' {
					break
				}
				// unary minus is right-associative
				if precedence[top.op] > precedence[t.op] || (precedence[top.op] == precedence[t.op] && t.op != '~') {
					out = append(out, top)
					stack = stack[:len(stack)-1]
					continue
				}
				break
			}
			stack = append(stack, t)
		case '(':
			stack = append(stack, t)
		case ')':
			matched := false
			for len(stack) > 0 {
				top := stack[len(stack)-1]
				stack = stack[:len(stack)-1]
				if top.kind == '(' {
					matched = true
					break
				}
				out = append(out, top)
			}
			if !matched {
				return nil, errors.New("unbalanced parentheses")
			}
		}
	}
	for len(stack) > 0 {
		top := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		if top.kind == '(' {
			return nil, errors.New("unbalanced parentheses")
		}
		out = append(out, top)
	}
	return out, nil
}

func evalRPN(rpn []token) (float64, error) {
	var st []float64
	for _, t := range rpn {
		if t.kind == 'n' {
			st = append(st, t.num)
			continue
		}
		if t.op == '~' {
			if len(st) < 1 {
				return 0, errors.New("malformed expression")
			}
			st[len(st)-1] = -st[len(st)-1]
			continue
		}
		if len(st) < 2 {
			return 0, errors.New("malformed expression")
		}
		a, b := st[len(st)-2], st[len(st)-1]
		st = st[:len(st)-2]
		var v float64
		switch t.op {
		case '+':
			v = a + b
		case '-':
			v = a - b
		case '*':
			v = a * b
		case '/':
			if b == 0 {
				return 0, errors.New("division by zero")
			}
			v = a / b
		case '%':
			if b == 0 {
				return 0, errors.New("modulo by zero")
			}
			v = math.Mod(a, b)
		}
		st = append(st, v)
	}
	if len(st) != 1 {
		return 0, errors.New("malformed expression")
	}
	return st[0], nil
}
