package repl

import "strings"

// CommandTag identifies a root command.
type CommandTag int

const (
	TagReboot CommandTag = iota
	TagRecovery
	TagFault
	TagStatus
	TagHelp
)

// SubcommandTag identifies a second-level keyword.
type SubcommandTag int

const (
	TagFaultRecover SubcommandTag = iota
)

// ChoiceTag identifies an argument keyword within a command.
type ChoiceTag int

const (
	ChoiceRebootNow ChoiceTag = iota
	ChoiceRebootDelay
	ChoiceRecoveryEnter
	ChoiceRecoveryExit
	ChoiceRecoveryNow
	ChoiceFaultRetries
)

// ValueKind selects the value layout attached to a choice keyword.
type ValueKind int

const (
	// ValueNone means the keyword stands alone.
	ValueNone ValueKind = iota
	// ValueDuration expects a duration literal after the keyword.
	ValueDuration
	// ValueIntegerAssignment expects `keyword=<integer>`.
	ValueIntegerAssignment
)

// ValueSpec describes a choice's value layout plus completion suggestions.
type ValueSpec struct {
	Kind        ValueKind
	Suggestions []string
}

// NodeKind discriminates grammar tree nodes.
type NodeKind int

const (
	// NodeEnd terminates a grammar branch.
	NodeEnd NodeKind = iota
	// NodeOptionalChoice matches one of several keywords, or a default
	// when the line ends here.
	NodeOptionalChoice
	// NodeSubcommands requires one of several subcommand keywords.
	NodeSubcommands
	// NodeTopic matches an optional free-form identifier.
	NodeTopic
)

// Node is one vertex of the shared grammar tree. The parser and the
// completion engine both interpret it.
type Node struct {
	Kind        NodeKind
	Choices     []ChoiceBranch
	Default     *DefaultChoice
	Subcommands []SubcommandBranch
	Next        *Node
}

// ChoiceBranch binds a keyword to a tag and value layout.
type ChoiceBranch struct {
	Keyword string
	Tag     ChoiceTag
	Value   ValueSpec
	Next    *Node
}

// DefaultChoice is applied when an optional choice is omitted.
type DefaultChoice struct {
	Tag  ChoiceTag
	Next *Node
}

// SubcommandBranch binds a subcommand keyword to its grammar.
type SubcommandBranch struct {
	Name    string
	Tag     SubcommandTag
	Grammar *Node
}

// CommandSpec is one root command of the catalog.
type CommandSpec struct {
	Name    string
	Tag     CommandTag
	Grammar *Node
}

var endNode = &Node{Kind: NodeEnd}

// FaultRetrySuggestions are offered when completing `fault recover `.
var FaultRetrySuggestions = []string{"retries=1", "retries=2", "retries=3"}

var rebootGrammar = &Node{
	Kind: NodeOptionalChoice,
	Choices: []ChoiceBranch{
		{Keyword: "now", Tag: ChoiceRebootNow, Value: ValueSpec{Kind: ValueNone}, Next: endNode},
		{Keyword: "delay", Tag: ChoiceRebootDelay, Value: ValueSpec{Kind: ValueDuration}, Next: endNode},
	},
	Default: &DefaultChoice{Tag: ChoiceRebootNow, Next: endNode},
}

var recoveryGrammar = &Node{
	Kind: NodeOptionalChoice,
	Choices: []ChoiceBranch{
		{Keyword: "enter", Tag: ChoiceRecoveryEnter, Value: ValueSpec{Kind: ValueNone}, Next: endNode},
		{Keyword: "exit", Tag: ChoiceRecoveryExit, Value: ValueSpec{Kind: ValueNone}, Next: endNode},
		{Keyword: "now", Tag: ChoiceRecoveryNow, Value: ValueSpec{Kind: ValueNone}, Next: endNode},
	},
	Default: &DefaultChoice{Tag: ChoiceRecoveryEnter, Next: endNode},
}

var faultRecoverGrammar = &Node{
	Kind: NodeOptionalChoice,
	Choices: []ChoiceBranch{
		{
			Keyword: "retries",
			Tag:     ChoiceFaultRetries,
			Value:   ValueSpec{Kind: ValueIntegerAssignment, Suggestions: FaultRetrySuggestions},
			Next:    endNode,
		},
	},
}

var faultGrammar = &Node{
	Kind: NodeSubcommands,
	Subcommands: []SubcommandBranch{
		{Name: "recover", Tag: TagFaultRecover, Grammar: faultRecoverGrammar},
	},
}

var helpGrammar = &Node{Kind: NodeTopic, Next: endNode}

var commandCatalog = []CommandSpec{
	{Name: "reboot", Tag: TagReboot, Grammar: rebootGrammar},
	{Name: "recovery", Tag: TagRecovery, Grammar: recoveryGrammar},
	{Name: "fault", Tag: TagFault, Grammar: faultGrammar},
	{Name: "status", Tag: TagStatus, Grammar: endNode},
	{Name: "help", Tag: TagHelp, Grammar: helpGrammar},
}

// Commands returns the full command catalog.
func Commands() []CommandSpec {
	return commandCatalog
}

// Find looks up a command by name, case-insensitively.
func Find(name string) (CommandSpec, bool) {
	for _, spec := range commandCatalog {
		if strings.EqualFold(spec.Name, name) {
			return spec, true
		}
	}
	return CommandSpec{}, false
}
