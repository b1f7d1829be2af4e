package notify

import "strings"

// Field is a single label/value pair in a notification body
type Field struct {
	Key   string
	Value string
}

// Fields is an ordered list of body fields. A slice rather than a map:
// body lines must render in insertion order.
type Fields []Field

// Add returns fields with an extra entry appended
func (f Fields) Add(key, value string) Fields {
	return append(f, Field{Key: key, Value: value})
}

// Render serializes the fields to body text, one "key: value" line per
// entry. Values are not escaped; an embedded newline breaks the line
// format visually but is not an error.
func (f Fields) Render() string {
	var sb strings.Builder
	for _, field := range f {
		sb.WriteString(field.Key)
		sb.WriteString(": ")
		sb.WriteString(field.Value)
		sb.WriteString("\n")
	}
	return sb.String()
}
