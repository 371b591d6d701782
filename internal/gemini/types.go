package gemini

// Wire types for the generateContent REST surface. The proxy endpoint
// forwards caller payloads in exactly this shape, so the codec stays raw
// instead of hiding behind an SDK.

const (
	TypeObject = "OBJECT"
	TypeArray  = "ARRAY"
	TypeString = "STRING"
	TypeNumber = "NUMBER"
)

// Schema is the declarative response shape the transport enforces
// structurally.
type Schema struct {
	Type        string             `json:"type,omitempty"`
	Description string             `json:"description,omitempty"`
	Properties  map[string]*Schema `json:"properties,omitempty"`
	Items       *Schema            `json:"items,omitempty"`
	Required    []string           `json:"required,omitempty"`
}

type Part struct {
	Text string `json:"text,omitempty"`
}

type Content struct {
	Role  string `json:"role,omitempty"`
	Parts []Part `json:"parts"`
}

type GenerationConfig struct {
	ResponseMIMEType string   `json:"responseMimeType,omitempty"`
	ResponseSchema   *Schema  `json:"responseSchema,omitempty"`
	Temperature      *float64 `json:"temperature,omitempty"`
}

type GenerateContentRequest struct {
	Contents          []Content         `json:"contents"`
	GenerationConfig  *GenerationConfig `json:"generationConfig,omitempty"`
	SystemInstruction *Content          `json:"systemInstruction,omitempty"`
}

type Candidate struct {
	Content Content `json:"content"`
}

type GenerateContentResponse struct {
	Candidates []Candidate `json:"candidates"`
}

// Text returns the first candidate's first text part, empty when absent.
func (r *GenerateContentResponse) Text() string {
	if r == nil || len(r.Candidates) == 0 {
		return ""
	}
	for _, part := range r.Candidates[0].Content.Parts {
		if part.Text != "" {
			return part.Text
		}
	}
	return ""
}

// UserText is a convenience for single-prompt requests.
func UserText(prompt string) []Content {
	return []Content{{Parts: []Part{{Text: prompt}}}}
}

// SystemText wraps a system instruction.
func SystemText(instruction string) *Content {
	return &Content{Parts: []Part{{Text: instruction}}}
}

func Temperature(t float64) *float64 {
	return &t
}

// FirstPromptText digs the first text part out of a request, for call logs.
func (r *GenerateContentRequest) FirstPromptText() string {
	if r == nil {
		return ""
	}
	for _, content := range r.Contents {
		for _, part := range content.Parts {
			if part.Text != "" {
				return part.Text
			}
		}
	}
	return ""
}
