package generation

import (
	"regexp"
	"strings"
	"text/template"
)

var promptTemplate = template.Must(template.New("roadmap").Parse(`Generate a detailed career roadmap for someone who wants to become a "{{.}}".
Return ONLY valid JSON in the following format, no markdown, no explanation:

{
  "title": "Career Roadmap: {{.}}",
  "description": "A brief 1-2 sentence description of this career path",
  "stages": [
    {
      "id": "stage-1",
      "label": "Stage Name",
      "type": "stage",
      "level": 0,
      "description": "Brief description of this stage",
      "duration": "e.g. 1-3 months",
      "skills": ["skill1", "skill2", "skill3"],
      "resources": ["resource1", "resource2"],
      "children": ["stage-2"]
    }
  ]
}

RULES:
- Create 6-10 stages that form one logical forward progression
- Each stage should have 3-6 skills
- Each stage should have 2-4 resources (courses, books, platforms)
- The "children" array must only reference ids of other stages defined in this same document
- The first stage must have level 0, and a child's level is never lower than its parent's
- Use realistic, specific skill names and resource names
- Make the roadmap practical and actionable
- Return ONLY the JSON object, no prose before or after it and no markdown code blocks
`))

// Prompt renders the instruction sent to the generator for a career goal.
func Prompt(topic string) string {
	var b strings.Builder
	// quotes would break out of the goal string inside the prompt
	topic = strings.ReplaceAll(strings.TrimSpace(topic), `"`, `'`)
	if err := promptTemplate.Execute(&b, topic); err != nil {
		panic(err)
	}
	return b.String()
}

var fence = regexp.MustCompile("```(?:json|JSON)?\\n?")

// StripFences removes markdown code fence markers the generator sometimes wraps its
// answer in.
func StripFences(text string) string {
	return strings.TrimSpace(fence.ReplaceAllString(text, ""))
}
