package prompt

import (
	"fmt"
	"strings"
)

// Entry is one row of a reference table.
type Entry struct {
	Name    string
	Summary string
}

var ProgrammingConcepts = []Entry{
	{"variables", "Containers that store data values"},
	{"loops", "Repeat code blocks multiple times"},
	{"functions", "Reusable blocks of code"},
	{"conditionals", "Make decisions based on conditions"},
	{"lists", "Collections of items"},
	{"dictionaries", "Key-value pairs for organizing data"},
	{"classes", "Blueprints for creating objects"},
	{"errors", "Messages telling you what went wrong"},
}

var CommonErrors = []Entry{
	{"NameError", "Variable or function not defined"},
	{"TypeError", "Wrong data type for operation"},
	{"IndexError", "Accessing list index that doesn't exist"},
	{"KeyError", "Dictionary key doesn't exist"},
	{"SyntaxError", "Code structure is incorrect"},
	{"IndentationError", "Incorrect spacing/indentation"},
	{"AttributeError", "Object doesn't have that attribute"},
	{"ValueError", "Value is wrong type or format"},
}

var DebuggingTips = []string{
	"Read the error message carefully - it tells you what's wrong",
	"Check the line number where the error occurred",
	"Print variables to see their values",
	"Use a debugger to step through code",
	"Check for typos in variable names",
	"Verify data types match what you expect",
	"Test with simple examples first",
	"Break complex code into smaller pieces",
}

var BestPractices = []Entry{
	{"naming", "Use clear, descriptive variable names"},
	{"comments", "Explain WHY, not WHAT"},
	{"functions", "Keep functions small and focused"},
	{"testing", "Test your code with different inputs"},
	{"readability", "Write code others can understand"},
	{"dry", "Don't Repeat Yourself - use functions"},
	{"error_handling", "Handle errors gracefully"},
}

// Lookup finds an entry by case-insensitive name.
func Lookup(table []Entry, name string) (Entry, bool) {
	for _, e := range table {
		if strings.EqualFold(e.Name, name) {
			return e, true
		}
	}
	return Entry{}, false
}

// ErrorName returns the exception name that starts an error message, e.g.
// "NameError" for "NameError: name 'x' is not defined".
func ErrorName(errorMessage string) string {
	name, _, _ := strings.Cut(strings.TrimSpace(errorMessage), ":")
	if fields := strings.Fields(name); len(fields) > 0 {
		return fields[len(fields)-1]
	}
	return ""
}

// WithReference appends the table entry for name to question when one
// exists.
func WithReference(question string, table []Entry, name string) string {
	e, ok := Lookup(table, name)
	if !ok {
		return question
	}
	return fmt.Sprintf("%s\n\nQuick reference: %s means %q.", question, e.Name, e.Summary)
}

// Tips renders the debugging tips and best practices as a checklist.
func Tips() string {
	var b strings.Builder
	b.WriteString("Debugging tips:\n")
	for i, tip := range DebuggingTips {
		fmt.Fprintf(&b, "%d. %s\n", i+1, tip)
	}
	b.WriteString("\nBest practices:\n")
	for _, e := range BestPractices {
		fmt.Fprintf(&b, "- %s: %s\n", e.Name, e.Summary)
	}
	return b.String()
}
