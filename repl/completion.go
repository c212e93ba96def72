package repl

import "strings"

// MaxSuggestions bounds the candidate list returned for one completion.
const MaxSuggestions = 16

// Replacement describes which portion of the buffer should be substituted
// by the completion value.
type Replacement struct {
	Start       int
	End         int
	Value       string
	AppendSpace bool
}

// CompletionResult is returned for one completion request. Replacement is
// nil unless a single candidate matches or the candidates share a prefix
// longer than what is already typed.
type CompletionResult struct {
	Replacement *Replacement
	Options     []string
}

// CompletionEngine computes suggestions from the same catalog the parser
// interprets.
type CompletionEngine struct{}

// NewCompletionEngine creates a stateless completion engine.
func NewCompletionEngine() *CompletionEngine {
	return &CompletionEngine{}
}

var rootCommands = []string{"reboot", "recovery", "fault", "status", "help"}

func rebootArgs() []string {
	return choiceKeywords(rebootGrammar)
}

func recoveryArgs() []string {
	return choiceKeywords(recoveryGrammar)
}

func faultSubcommands() []string {
	names := make([]string, 0, len(faultGrammar.Subcommands))
	for _, branch := range faultGrammar.Subcommands {
		names = append(names, branch.Name)
	}
	return names
}

func choiceKeywords(node *Node) []string {
	keywords := make([]string, 0, len(node.Choices))
	for _, choice := range node.Choices {
		keywords = append(keywords, choice.Keyword)
	}
	return keywords
}

// Complete computes completions for the buffer at the given cursor byte
// offset. The caller enforces ASCII input, so any cursor within range sits
// on a character boundary.
func (e *CompletionEngine) Complete(buffer string, cursor int) CompletionResult {
	if cursor < 0 || cursor > len(buffer) {
		return CompletionResult{}
	}

	uptoCursor := buffer[:cursor]
	prefixStart := tokenStart(uptoCursor)
	prefix := uptoCursor[prefixStart:]
	leading := uptoCursor[:prefixStart]

	leadingTokens, err := Lex(leading)
	if err != nil {
		return CompletionResult{}
	}
	for _, tok := range leadingTokens {
		if tok.Kind == TokenError {
			return CompletionResult{}
		}
	}

	context := determineContext(leadingTokens)
	var candidates []string
	switch context {
	case contextRoot:
		candidates = rootCommands
	case contextRebootArg:
		candidates = rebootArgs()
	case contextRecoveryArg:
		candidates = recoveryArgs()
	case contextFaultKeyword:
		candidates = faultSubcommands()
	case contextFaultRetry:
		candidates = FaultRetrySuggestions
	case contextHelpTopic:
		candidates = rootCommands
	default:
		return CompletionResult{}
	}

	var matches []string
	for _, candidate := range candidates {
		if len(matches) >= MaxSuggestions {
			break
		}
		if startsWithFold(candidate, prefix) {
			matches = append(matches, candidate)
		}
	}
	if len(matches) == 0 {
		return CompletionResult{}
	}

	var value string
	appendSpace := false
	if len(matches) == 1 {
		value = matches[0]
		appendSpace = shouldAppendSpace(context, value)
	} else {
		lcp := longestCommonPrefix(matches)
		shared := commonPrefixLenFold(prefix, lcp)
		if len(lcp) > shared {
			value = lcp
		}
	}

	result := CompletionResult{Options: matches}
	if value != "" {
		result.Replacement = &Replacement{
			Start:       prefixStart,
			End:         cursor,
			Value:       value,
			AppendSpace: appendSpace,
		}
	}
	return result
}

type completionContext int

const (
	contextRoot completionContext = iota
	contextRebootArg
	contextRecoveryArg
	contextFaultKeyword
	contextFaultRetry
	contextHelpTopic
	contextNone
)

func determineContext(tokens []Token) completionContext {
	if len(tokens) == 0 {
		return contextRoot
	}
	for _, tok := range tokens {
		if tok.Kind == TokenError {
			return contextNone
		}
	}

	cmd, _, perr := parseTokensPartial(tokens)
	if perr != nil {
		return classifyError(tokens, perr)
	}
	return classifySuccess(tokens, cmd)
}

func classifySuccess(tokens []Token, cmd Command) completionContext {
	switch cmd.(type) {
	case RebootCommand:
		if len(tokens) == 1 {
			return contextRebootArg
		}
	case RecoveryCommand:
		if len(tokens) == 1 {
			return contextRecoveryArg
		}
	case FaultCommand:
		if len(tokens) == 2 && strings.EqualFold(tokens[1].Lexeme, "recover") {
			return contextFaultRetry
		}
		if len(tokens) == 1 {
			return contextFaultKeyword
		}
	case HelpCommand:
		if len(tokens) == 1 {
			return contextHelpTopic
		}
	}
	return inferFromTokens(tokens)
}

func classifyError(tokens []Token, perr *ParseError) completionContext {
	switch perr.Kind {
	case ErrUnexpectedEnd, ErrUnexpectedToken:
		switch perr.Expected {
		case "command keyword":
			return contextRoot
		case "recover":
			return contextFaultKeyword
		case "identifier":
			if firstTokenIs(tokens, "help") {
				return contextHelpTopic
			}
		}
	}
	return inferFromTokens(tokens)
}

func inferFromTokens(tokens []Token) completionContext {
	switch len(tokens) {
	case 0:
		return contextRoot
	case 1:
		switch {
		case strings.EqualFold(tokens[0].Lexeme, "reboot"):
			return contextRebootArg
		case strings.EqualFold(tokens[0].Lexeme, "recovery"):
			return contextRecoveryArg
		case strings.EqualFold(tokens[0].Lexeme, "fault"):
			return contextFaultKeyword
		case strings.EqualFold(tokens[0].Lexeme, "help"):
			return contextHelpTopic
		}
	case 2:
		if strings.EqualFold(tokens[0].Lexeme, "fault") && strings.EqualFold(tokens[1].Lexeme, "recover") {
			return contextFaultRetry
		}
	}
	return contextNone
}

func firstTokenIs(tokens []Token, expected string) bool {
	return len(tokens) > 0 && strings.EqualFold(tokens[0].Lexeme, expected)
}

// tokenStart finds the byte where the token under completion begins: the
// position after the last inline whitespace before the cursor.
func tokenStart(buffer string) int {
	index := len(buffer)
	for index > 0 {
		b := buffer[index-1]
		if b == ' ' || b == '\t' {
			break
		}
		index--
	}
	return index
}

func startsWithFold(candidate, prefix string) bool {
	if prefix == "" {
		return true
	}
	if len(prefix) > len(candidate) {
		return false
	}
	return strings.EqualFold(candidate[:len(prefix)], prefix)
}

func commonPrefixLenFold(lhs, rhs string) int {
	n := 0
	for n < len(lhs) && n < len(rhs) {
		l, r := lhs[n], rhs[n]
		if l != r && toLower(l) != toLower(r) {
			break
		}
		n++
	}
	return n
}

func toLower(b byte) byte {
	if b >= 'A' && b <= 'Z' {
		return b + ('a' - 'A')
	}
	return b
}

func longestCommonPrefix(candidates []string) string {
	if len(candidates) == 0 {
		return ""
	}
	prefix := candidates[0]
	for _, candidate := range candidates[1:] {
		n := commonPrefixLenFold(prefix, candidate)
		prefix = prefix[:n]
		if prefix == "" {
			break
		}
	}
	return prefix
}

// shouldAppendSpace reports whether completing a root command should also
// insert the separator, which is the case exactly when the command takes
// further arguments.
func shouldAppendSpace(context completionContext, candidate string) bool {
	if context != contextRoot {
		return false
	}
	tokens, err := Lex(candidate)
	if err != nil {
		return false
	}
	next := determineContext(tokens)
	return next != contextRoot && next != contextNone
}
