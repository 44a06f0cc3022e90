package corpus

import (
	"bufio"
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"gopkg.in/yaml.v3"
)

// Format selects an output encoding.
type Format string

// Supported output formats.
const (
	FormatText  Format = "text"
	FormatJSON  Format = "json"
	FormatYAML  Format = "yaml"
	FormatAlexa Format = "alexa"
)

// Formats lists the supported formats in documentation order.
var Formats = []Format{FormatText, FormatJSON, FormatYAML, FormatAlexa}

// DefaultInvocationName is used by the alexa format when none is configured.
const DefaultInvocationName = "my skill"

// ParseFormat converts a string to a Format.
func ParseFormat(s string) (Format, error) {
	switch f := Format(strings.ToLower(strings.TrimSpace(s))); f {
	case FormatText, FormatJSON, FormatYAML, FormatAlexa:
		return f, nil
	case "txt", "":
		return FormatText, nil
	case "yml":
		return FormatYAML, nil
	default:
		return "", fmt.Errorf("unknown output format %q (want one of %s)", s, formatList())
	}
}

func formatList() string {
	names := make([]string, len(Formats))
	for i, f := range Formats {
		names[i] = string(f)
	}
	return strings.Join(names, ", ")
}

// WriteOptions configures format-specific output.
type WriteOptions struct {
	// InvocationName is the skill invocation name for FormatAlexa.
	InvocationName string
}

// Write encodes c to w in the given format.
func Write(w io.Writer, c *Corpus, f Format, opts WriteOptions) error {
	switch f {
	case FormatText:
		return writeText(w, c)
	case FormatJSON:
		return writeJSON(w, c)
	case FormatYAML:
		return writeYAML(w, c)
	case FormatAlexa:
		return writeAlexa(w, c, opts)
	default:
		return fmt.Errorf("unknown output format %q", f)
	}
}

// writeText writes one "<intent> <utterance>" line per utterance.
func writeText(w io.Writer, c *Corpus) error {
	bw := bufio.NewWriter(w)
	for _, intent := range c.intents {
		for _, u := range c.utterances[intent] {
			if u == "" {
				_, _ = bw.WriteString(intent + "\n")
				continue
			}
			_, _ = bw.WriteString(intent + " " + u + "\n")
		}
	}
	return bw.Flush()
}

func newJSONEncoder(w io.Writer) *json.Encoder {
	enc := json.NewEncoder(w)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	return enc
}

func writeJSON(w io.Writer, c *Corpus) error {
	return newJSONEncoder(w).Encode(c)
}

// MarshalJSON encodes the corpus as an object whose keys keep intent order.
func (c *Corpus) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)

	buf.WriteByte('{')
	for i, intent := range c.intents {
		if i > 0 {
			buf.WriteByte(',')
		}
		if err := enc.Encode(intent); err != nil {
			return nil, err
		}
		buf.WriteByte(':')
		if err := enc.Encode(c.utterances[intent]); err != nil {
			return nil, err
		}
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

func writeYAML(w io.Writer, c *Corpus) error {
	root := &yaml.Node{Kind: yaml.MappingNode}
	for _, intent := range c.intents {
		seq := &yaml.Node{Kind: yaml.SequenceNode}
		utterances := c.utterances[intent]
		if len(utterances) == 0 {
			seq.Style = yaml.FlowStyle
		}
		for _, u := range utterances {
			seq.Content = append(seq.Content, &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!str", Value: u})
		}
		root.Content = append(root.Content,
			&yaml.Node{Kind: yaml.ScalarNode, Tag: "!!str", Value: intent},
			seq,
		)
	}

	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(root); err != nil {
		return err
	}
	return enc.Close()
}

// Interaction model types for FormatAlexa.
type (
	alexaDocument struct {
		InteractionModel alexaInteractionModel `json:"interactionModel"`
	}
	alexaInteractionModel struct {
		LanguageModel alexaLanguageModel `json:"languageModel"`
	}
	alexaLanguageModel struct {
		InvocationName string        `json:"invocationName"`
		Intents        []alexaIntent `json:"intents"`
	}
	alexaIntent struct {
		Name    string   `json:"name"`
		Samples []string `json:"samples"`
	}
)

// writeAlexa writes an interaction model. Sample utterances must be unique
// and non-empty there, so duplicates and empty strings are dropped.
func writeAlexa(w io.Writer, c *Corpus, opts WriteOptions) error {
	name := opts.InvocationName
	if name == "" {
		name = DefaultInvocationName
	}

	doc := alexaDocument{}
	doc.InteractionModel.LanguageModel.InvocationName = name
	doc.InteractionModel.LanguageModel.Intents = make([]alexaIntent, 0, len(c.intents))
	for _, intent := range c.intents {
		samples := []string{}
		for _, u := range c.Unique(intent) {
			if u != "" {
				samples = append(samples, u)
			}
		}
		doc.InteractionModel.LanguageModel.Intents = append(doc.InteractionModel.LanguageModel.Intents,
			alexaIntent{Name: intent, Samples: samples})
	}
	return newJSONEncoder(w).Encode(doc)
}
