package llm

// classifyPromptTemplate is the closed classification prompt. The taxonomy
// is enumerated inline; any answer outside it is discarded by the caller.
const classifyPromptTemplate = `Classify the following content into exactly one of these categories: %s

Title: %s
Description: %s

Respond with ONLY a JSON object, no other text:
{"category": "<one of the categories above>", "confidence": <integer 0-100>, "reasoning": "<one sentence>"}`

// articlePromptTemplate requests a full cited article for a trending topic.
const articlePromptTemplate = `Write a news article about the trending topic below, drawing on the listed sources.

Topic: %s
Sources:
%s

Respond with ONLY a JSON object, no other text, matching this schema exactly:
{
  "title": "<article headline>",
  "summary": "<two sentence summary>",
  "sections": [
    {
      "heading": "<section heading>",
      "paragraphs": [
        {"content": "<paragraph text>", "source_ids": ["<id of a source backing this paragraph>"]}
      ]
    }
  ]
}
Use 2-4 sections with 1-3 paragraphs each. Reference source ids from the list above.`

// briefPromptTemplate requests a creative content brief for a classified
// topic.
const briefPromptTemplate = `Create a creative content brief for the topic below.

Title: %s
Description: %s
Category: %s
Sources:
%s

Respond with ONLY a JSON object, no other text, matching this schema exactly:
{
  "hooks": ["<attention-grabbing opening line>"],
  "platform_tips": {"tiktok": "<tip>", "instagram": "<tip>", "youtube": "<tip>"},
  "visual_boldness": <integer 1-10>,
  "steps": ["<outline step>"],
  "hashtags": "<space separated hashtags>"
}
Provide 3 hooks and 4-6 outline steps.`
