package blog

import "github.com/tmc/langchaingo/prompts"

const articleTemplate = `Given the following information, generate a blog post in Brazilian Portuguese (Português do Brasil).
Write a full blog post that will rank for the following keywords in Brazilian Portuguese: {{.keyword}}

Instructions:
The blog should be properly and beautifully formatted using markdown.
The blog title should be SEO optimized for Brazilian Portuguese search.
The blog title should be crafted with the keyword in mind and should be catchy and engaging in Brazilian Portuguese. But not overly expressive.
Generate a title that is concise and direct. Avoid using introductory phrases like 'Explorando' or 'Descubra'. For example:

Incorrect: 'Explorando São Paulo: 10 Melhores Lugares para Visitar em São Paulo'
Correct: '10 Melhores Lugares para Visitar em São Paulo'

Incorrect: 'Quem é Elon Musk: Explorando a Mente de um Alquimista dos Apps'
Correct: 'A História de Elon Musk'

Please provide titles in the correct format.
Do not include : in the title.
Each sub-section should have at least 3 paragraphs.
Each section should have at least three subsections.
Sub-section headings should be clearly marked.

Clearly indicate the title, headings, and sub-headings using markdown.
Each section should cover the specific aspects as outlined.

For each section, generate detailed content that aligns with the provided subtopics. Ensure that the content is informative and covers the key points.
Ensure that the content is consistent with the title and subtopics. Do not mention an entity in the title and not write about it in the content.

Ensure that the content flows logically from one section to another, maintaining coherence and readability.

Where applicable, include examples, case studies, or insights that can provide a deeper understanding of the topic.
Use examples and references that are relevant to the Brazilian audience when possible.

Always include discussions on ethical considerations, especially in sections dealing with data privacy, bias, and responsible use. Only add this where it is applicable.

In the final section, provide a forward-looking perspective on the topic and a conclusion.
Please ensure proper and standard markdown formatting always.

Make the blog post sound as human and as engaging as possible in Brazilian Portuguese, add real world examples relevant to Brazil when possible and make it as informative as possible.
Use natural Brazilian Portuguese expressions and avoid literal translations from English.

You are a professional Brazilian blog post writer and SEO expert.
Each blog post should have at least 5 sections with 3 sub-sections each.
Each sub section should have at least 3 paragraphs.
Context: {{.context}}

Important: The entire blog post MUST be written in Brazilian Portuguese.

Blog Post:
`

const imageSystemPrompt = "You are a minimalist art director specialized in high-impact editorial covers, focusing on symbolic imagery without text."

const imageTemplate = `Carefully analyze the provided context and generate a description for a minimalist and impactful image.

IMAGE STRUCTURE:
1. A single central symbolic element that represents the essence of the theme
2. Solid contrasting background
3. Clean composition without text

DESIGN GUIDELINES:
- Extreme simplicity: one symbol, one message
- Golden ratio positioning
- Abundant negative space (at least 40% of composition)
- Dramatic scale of main element
- NO text or typography elements

VISUAL TREATMENT:
- Colors: exactly 2 high-impact colors
- Primary color: for the main symbol
- Secondary color: for the background
- Texture: none
- Finish: clean and professional
- Lighting: dramatic and clear

HIERARCHY:
1. Symbolic element (80% of visual focus)
2. Background color (20% of impact)

REFERENCE STYLE:
- Modern editorial (The Economist)
- Corporate minimalism
- Conceptual design
- Apple-style simplicity

Keyword: {{.keyword}}

Article context: {{.context}}

CRITICAL RULES:
- Choose only ONE symbolic element
- NO text or typography
- NO decorative elements
- NO gradients or complex effects
- Maintain generous negative space
- Use only 2 contrasting colors
- Create clear figure-ground relationship
- Ensure the symbol is immediately recognizable
- Make the meaning obvious at first glance

Additional instructions:
- Create a photorealistic 3D render
- Use dramatic lighting with clear shadows
- Ensure professional quality
- Make it suitable for editorial use
- Keep the composition balanced but slightly asymmetrical
`

var (
	articlePrompt = prompts.NewPromptTemplate(articleTemplate, []string{"keyword", "context"})
	imagePrompt   = prompts.NewPromptTemplate(imageTemplate, []string{"keyword", "context"})
)

func formatPrompt(tmpl prompts.PromptTemplate, keyword, context string) (string, error) {
	return tmpl.Format(map[string]any{
		"keyword": keyword,
		"context": context,
	})
}
