package steam

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"strings"
)

// KeyValues is one level of a parsed Valve KeyValues (VDF) document. Values
// are either strings or nested KeyValues.
type KeyValues map[string]any

// Block returns the nested block under key, or nil
func (kv KeyValues) Block(key string) KeyValues {
	b, _ := kv[key].(KeyValues)
	return b
}

// String returns the string value under key, or ""
func (kv KeyValues) String(key string) string {
	s, _ := kv[key].(string)
	return s
}

type token struct {
	text   string
	quoted bool
}

// ParseVDF reads a text VDF document such as libraryfolders.vdf or an
// appmanifest .acf file.
func ParseVDF(r io.Reader) (KeyValues, error) {
	lex := &lexer{r: bufio.NewReader(r)}
	root, err := parseBlock(lex, true)
	if err != nil {
		return nil, fmt.Errorf("parsing vdf: %w", err)
	}
	return root, nil
}

func parseBlock(lex *lexer, top bool) (KeyValues, error) {
	kv := make(KeyValues)
	for {
		key, err := lex.next()
		if errors.Is(err, io.EOF) {
			if top {
				return kv, nil
			}
			return nil, errors.New("unexpected end of input, missing }")
		}
		if err != nil {
			return nil, err
		}
		if !key.quoted && key.text == "}" {
			if top {
				return nil, errors.New("unbalanced }")
			}
			return kv, nil
		}
		if !key.quoted && key.text == "{" {
			return nil, errors.New("block without a key")
		}

		val, err := lex.next()
		if errors.Is(err, io.EOF) {
			return nil, fmt.Errorf("unexpected end after key %q", key.text)
		}
		if err != nil {
			return nil, err
		}
		switch {
		case !val.quoted && val.text == "{":
			child, err := parseBlock(lex, false)
			if err != nil {
				return nil, err
			}
			kv[key.text] = child
		case !val.quoted && val.text == "}":
			return nil, fmt.Errorf("key %q has no value", key.text)
		default:
			kv[key.text] = val.text
		}
	}
}

type lexer struct {
	r *bufio.Reader
}

func (l *lexer) next() (token, error) {
	for {
		c, _, err := l.r.ReadRune()
		if err != nil {
			return token{}, err
		}
		switch {
		case c == ' ' || c == '\t' || c == '\n' || c == '\r':
			continue
		case c == '/':
			if p, _ := l.r.Peek(1); len(p) == 1 && p[0] == '/' {
				if _, err := l.r.ReadString('\n'); err != nil && !errors.Is(err, io.EOF) {
					return token{}, err
				}
				continue
			}
			return l.bare(c)
		case c == '{' || c == '}':
			return token{text: string(c)}, nil
		case c == '"':
			return l.quoted()
		default:
			return l.bare(c)
		}
	}
}

func (l *lexer) quoted() (token, error) {
	var sb strings.Builder
	for {
		c, _, err := l.r.ReadRune()
		if errors.Is(err, io.EOF) {
			return token{}, errors.New("unclosed quote")
		}
		if err != nil {
			return token{}, err
		}
		switch c {
		case '"':
			return token{text: sb.String(), quoted: true}, nil
		case '\\':
			e, _, err := l.r.ReadRune()
			if err != nil {
				return token{}, errors.New("unclosed quote")
			}
			switch e {
			case 'n':
				sb.WriteRune('\n')
			case 't':
				sb.WriteRune('\t')
			default:
				sb.WriteRune(e)
			}
		default:
			sb.WriteRune(c)
		}
	}
}

func (l *lexer) bare(first rune) (token, error) {
	var sb strings.Builder
	sb.WriteRune(first)
	for {
		c, _, err := l.r.ReadRune()
		if errors.Is(err, io.EOF) {
			return token{text: sb.String()}, nil
		}
		if err != nil {
			return token{}, err
		}
		if c == ' ' || c == '\t' || c == '\n' || c == '\r' || c == '"' || c == '{' || c == '}' {
			_ = l.r.UnreadRune()
			return token{text: sb.String()}, nil
		}
		sb.WriteRune(c)
	}
}
