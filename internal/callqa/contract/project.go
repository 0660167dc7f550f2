package contract

import (
	"encoding/json"
	"strconv"

	"github.com/invopop/jsonschema"
	"google.golang.org/genai"
)

// GenAISchema projects the contract into the response schema Gemini enforces.
func (c *Contract) GenAISchema() *genai.Schema {
	return toGenAI(c.root)
}

func toGenAI(f Field) *genai.Schema {
	s := &genai.Schema{Description: f.Description}

	switch f.Kind {
	case String:
		s.Type = genai.TypeString
		if len(f.Enum) > 0 {
			s.Format = "enum"
			s.Enum = append([]string(nil), f.Enum...)
		}
		if f.MinLength > 0 {
			s.MinLength = genai.Ptr(int64(f.MinLength))
		}
	case Integer:
		s.Type = genai.TypeInteger
	case Number:
		s.Type = genai.TypeNumber
	case Boolean:
		s.Type = genai.TypeBoolean
	case Array:
		s.Type = genai.TypeArray
		if f.Items != nil {
			s.Items = toGenAI(*f.Items)
		}
	case Object:
		s.Type = genai.TypeObject
		s.Properties = make(map[string]*genai.Schema, len(f.Properties))
		for _, p := range f.Properties {
			s.Properties[p.Name] = toGenAI(p)
			s.PropertyOrdering = append(s.PropertyOrdering, p.Name)
			if p.Required {
				s.Required = append(s.Required, p.Name)
			}
		}
	}

	if f.Min != nil {
		s.Minimum = genai.Ptr(*f.Min)
	}
	if f.Max != nil {
		s.Maximum = genai.Ptr(*f.Max)
	}
	return s
}

// JSONSchema projects the contract into a draft 2020-12 JSON Schema document.
func (c *Contract) JSONSchema() *jsonschema.Schema {
	s := toJSONSchema(c.root)
	s.Version = jsonschema.Version
	s.Title = c.root.Name
	return s
}

func toJSONSchema(f Field) *jsonschema.Schema {
	s := &jsonschema.Schema{
		Type:        f.Kind.String(),
		Description: f.Description,
	}

	switch f.Kind {
	case String:
		for _, v := range f.Enum {
			s.Enum = append(s.Enum, v)
		}
		if f.MinLength > 0 {
			n := uint64(f.MinLength)
			s.MinLength = &n
		}
	case Array:
		if f.Items != nil {
			s.Items = toJSONSchema(*f.Items)
		}
	case Object:
		s.Properties = jsonschema.NewProperties()
		for _, p := range f.Properties {
			s.Properties.Set(p.Name, toJSONSchema(p))
			if p.Required {
				s.Required = append(s.Required, p.Name)
			}
		}
	}

	if f.Min != nil {
		s.Minimum = number(*f.Min)
	}
	if f.Max != nil {
		s.Maximum = number(*f.Max)
	}
	return s
}

func number(v float64) json.Number {
	return json.Number(strconv.FormatFloat(v, 'f', -1, 64))
}
