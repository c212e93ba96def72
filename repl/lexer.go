// Package repl implements the operator console surface: a bounded lexer,
// a catalog-driven parser, the completion engine, and the command executor
// that turns parsed commands into scheduled strap sequences.
//
// The parser and the completion engine interpret the same static catalog,
// so keywords, defaults, and value layouts cannot drift apart.
package repl

import (
	"fmt"

	"github.com/NathanHowell/orinctl/internal/constants"
)

// MaxTokens bounds the token stream produced for one REPL line. Commands
// stay short; longer input fails lexing.
const MaxTokens = constants.MaxTokens

// TokenKind classifies one lexical token.
type TokenKind int

const (
	// TokenDuration is an integer literal suffixed with ms or s.
	TokenDuration TokenKind = iota
	// TokenInteger is an unsuffixed integer literal.
	TokenInteger
	// TokenIdent is an identifier or keyword; keyword matching is
	// case-insensitive and happens in the parser.
	TokenIdent
	// TokenFlag is a CLI-style flag placeholder for future extensions.
	TokenFlag
	// TokenEquals is the equals sign of a key=value assignment.
	TokenEquals
	// TokenComma is a comma separator.
	TokenComma
	// TokenEol is an end-of-line marker (\r, \n, or \r\n).
	TokenEol
	// TokenError marks a single unsupported character.
	TokenError
)

func (k TokenKind) String() string {
	switch k {
	case TokenDuration:
		return "duration literal"
	case TokenInteger:
		return "integer literal"
	case TokenIdent:
		return "identifier"
	case TokenFlag:
		return "flag"
	case TokenEquals:
		return "equals sign"
	case TokenComma:
		return "comma"
	case TokenEol:
		return "end-of-line marker"
	case TokenError:
		return "unsupported token"
	default:
		return fmt.Sprintf("token(%d)", int(k))
	}
}

// Token is one lexed token with its byte span in the source line.
type Token struct {
	Kind   TokenKind
	Lexeme string
	Start  int
	End    int
}

// Lex tokenizes a line. Inline whitespace is skipped; anything the grammar
// does not recognize becomes a single-character error token. Lexing fails
// only when the line produces more tokens than the bounded buffer allows.
func Lex(line string) ([]Token, error) {
	var tokens []Token
	push := func(tok Token) error {
		if len(tokens) >= MaxTokens {
			return &ParseError{Kind: ErrTooManyTokens, Processed: len(tokens) + 1}
		}
		tokens = append(tokens, tok)
		return nil
	}

	i := 0
	for i < len(line) {
		c := line[i]
		start := i

		switch {
		case c == ' ' || c == '\t':
			i++
			continue

		case c == '\r':
			i++
			if i < len(line) && line[i] == '\n' {
				i++
			}
			if err := push(Token{Kind: TokenEol, Lexeme: line[start:i], Start: start, End: i}); err != nil {
				return nil, err
			}

		case c == '\n':
			i++
			if err := push(Token{Kind: TokenEol, Lexeme: line[start:i], Start: start, End: i}); err != nil {
				return nil, err
			}

		case c == '=':
			i++
			if err := push(Token{Kind: TokenEquals, Lexeme: "=", Start: start, End: i}); err != nil {
				return nil, err
			}

		case c == ',':
			i++
			if err := push(Token{Kind: TokenComma, Lexeme: ",", Start: start, End: i}); err != nil {
				return nil, err
			}

		case isDigit(c):
			for i < len(line) && isDigit(line[i]) {
				i++
			}
			kind := TokenInteger
			// Duration suffix takes priority over a bare integer.
			if i+1 < len(line) && line[i] == 'm' && line[i+1] == 's' {
				i += 2
				kind = TokenDuration
			} else if i < len(line) && line[i] == 's' {
				i++
				kind = TokenDuration
			}
			if err := push(Token{Kind: kind, Lexeme: line[start:i], Start: start, End: i}); err != nil {
				return nil, err
			}

		case isAlpha(c):
			i++
			for i < len(line) && isIdentByte(line[i]) {
				i++
			}
			if err := push(Token{Kind: TokenIdent, Lexeme: line[start:i], Start: start, End: i}); err != nil {
				return nil, err
			}

		case c == '-':
			dashes := 1
			if i+1 < len(line) && line[i+1] == '-' {
				dashes = 2
			}
			if i+dashes < len(line) && isAlpha(line[i+dashes]) {
				i += dashes + 1
				for i < len(line) && isIdentByte(line[i]) {
					i++
				}
				if err := push(Token{Kind: TokenFlag, Lexeme: line[start:i], Start: start, End: i}); err != nil {
					return nil, err
				}
			} else {
				i++
				if err := push(Token{Kind: TokenError, Lexeme: line[start:i], Start: start, End: i}); err != nil {
					return nil, err
				}
			}

		default:
			i++
			if err := push(Token{Kind: TokenError, Lexeme: line[start:i], Start: start, End: i}); err != nil {
				return nil, err
			}
		}
	}

	return tokens, nil
}

func isDigit(c byte) bool {
	return c >= '0' && c <= '9'
}

func isAlpha(c byte) bool {
	return (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z')
}

func isIdentByte(c byte) bool {
	return isAlpha(c) || isDigit(c) || c == '-'
}
